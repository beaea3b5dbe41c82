package service

import (
	"context"
	"sync"
	"time"

	"howlo/internal/domain"
	"howlo/internal/period"
)

// сколько позиций рейтинга помнит трекер
const TrackedTopN = 5

type LeaderChange struct {
	NewLeader      domain.LeaderboardEntry `json:"new_leader"`
	PreviousLeader domain.LeaderboardEntry `json:"previous_leader"`
	Period         period.Period           `json:"period"`
}

// LeaderTracker помнит последний верх рейтинга активного периода и
// сообщает о смене первого места. Состояние живёт, пока живёт процесс.
type LeaderTracker struct {
	mu         sync.Mutex
	board      *LeaderboardService
	classifier *period.Classifier
	topN       int

	seeded    bool
	periodKey string
	snapshot  []domain.LeaderboardEntry
}

func NewLeaderTracker(board *LeaderboardService, classifier *period.Classifier) *LeaderTracker {
	return &LeaderTracker{
		board:      board,
		classifier: classifier,
		topN:       TrackedTopN,
	}
}

// Check сравнивает текущий верх с запомненным.
// Первый вызов и первый вызов в новом периоде только запоминают состояние.
func (t *LeaderTracker) Check(ctx context.Context, now time.Time) (*LeaderChange, error) {
	p := t.classifier.Classify(now)
	if p.Regime == period.RegimePreLaunch {
		return nil, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	current, err := t.board.Rank(ctx, t.classifier.Filter(now), t.topN)
	if err != nil {
		return nil, err
	}

	if !t.seeded || t.periodKey != p.Key {
		t.seeded = true
		t.periodKey = p.Key
		t.snapshot = current
		return nil, nil
	}

	var change *LeaderChange
	if len(current) > 0 && len(t.snapshot) > 0 && current[0].UserID != t.snapshot[0].UserID {
		change = &LeaderChange{
			NewLeader:      current[0],
			PreviousLeader: t.snapshot[0],
			Period:         p,
		}
		leaderChanges.Inc()
	}
	t.snapshot = current
	return change, nil
}

// Snapshot - копия запомненного верха
func (t *LeaderTracker) Snapshot() []domain.LeaderboardEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]domain.LeaderboardEntry(nil), t.snapshot...)
}
