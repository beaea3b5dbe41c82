package service

import (
	"context"
	"testing"
	"time"

	"howlo/internal/bingo"
	"howlo/internal/domain"
	"howlo/internal/gateway"
	"howlo/internal/period"
	"howlo/internal/repository"
)

const testChannel = "C-ANNOUNCE"

var (
	launchStart = time.Date(2025, time.March, 24, 0, 0, 0, 0, time.UTC)
	resetStart  = time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	// середина стартового периода
	inLaunch = time.Date(2025, time.April, 10, 12, 0, 0, 0, time.UTC)
)

type testEnv struct {
	store      *repository.MemoryStore
	classifier *period.Classifier
	gw         *gateway.Recorder
	scoring    *ScoringService
	board      *LeaderboardService
	tracker    *LeaderTracker
	announcer  *Announcer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	c, err := period.NewClassifier(launchStart, resetStart, time.UTC)
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}
	store := repository.NewMemoryStore()
	gw := gateway.NewRecorder()
	board := NewLeaderboardService(store, c)
	return &testEnv{
		store:      store,
		classifier: c,
		gw:         gw,
		scoring:    NewScoringService(store, c, false),
		board:      board,
		tracker:    NewLeaderTracker(board, c),
		announcer: NewAnnouncer(gw, testChannel, c, func(userID string) string {
			return "https://howlo.test/card/" + userID
		}),
	}
}

func input(userID string, slot int) AchievementInput {
	return AchievementInput{
		UserID:    userID,
		Challenge: bingo.Card[slot],
		Companion: domain.Companion{Name: "Pat"},
		Location:  "Coffee Chat",
	}
}

func (e *testEnv) record(t *testing.T, userID string, slot int, at time.Time) *AchievementResult {
	t.Helper()
	res, err := e.scoring.RecordAchievement(context.Background(), input(userID, slot), at)
	if err != nil {
		t.Fatalf("RecordAchievement(%s, %d): %v", userID, slot, err)
	}
	return res
}

// записывает n заданий подряд, каждое на минуту позже
func (e *testEnv) recordMany(t *testing.T, userID string, slots []int, at time.Time) *AchievementResult {
	t.Helper()
	var res *AchievementResult
	for i, s := range slots {
		res = e.record(t, userID, s, at.Add(time.Duration(i)*time.Minute))
	}
	return res
}

func (e *testEnv) totalXP(t *testing.T, userID string, f period.Filter) int {
	t.Helper()
	entries, err := e.board.Rank(context.Background(), f, 0)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	for _, en := range entries {
		if en.UserID == userID {
			return en.TotalXP
		}
	}
	return 0
}
