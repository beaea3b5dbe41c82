package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"howlo/internal/domain"
	"howlo/internal/period"
)

// DefaultDisplayLimit - сколько строк показывать в /howlo leaderboard
const DefaultDisplayLimit = 10

// Aggregator - часть хранилища, нужная для рейтинга
type Aggregator interface {
	Aggregate(ctx context.Context, f period.Filter, limit int) ([]domain.LeaderboardEntry, error)
}

// NameResolver ищет отображаемое имя пользователя
type NameResolver interface {
	ResolveDisplayName(ctx context.Context, userID string) (string, error)
}

type Leaderboard struct {
	Period  period.Period             `json:"period"`
	Entries []domain.LeaderboardEntry `json:"entries"`
}

type LeaderboardService struct {
	store      Aggregator
	classifier *period.Classifier
}

func NewLeaderboardService(store Aggregator, classifier *period.Classifier) *LeaderboardService {
	return &LeaderboardService{store: store, classifier: classifier}
}

// Rank - рейтинг по фильтру. limit <= 0 - все пользователи
func (s *LeaderboardService) Rank(ctx context.Context, f period.Filter, limit int) ([]domain.LeaderboardEntry, error) {
	if f.Kind == period.FilterNone {
		return nil, nil
	}
	entries, err := s.store.Aggregate(ctx, f, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRankingUnavailable, err)
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// RankOf - место пользователя (с 1) или nil, если записей за период нет
func (s *LeaderboardService) RankOf(ctx context.Context, userID string, f period.Filter) (*int, error) {
	entries, err := s.Rank(ctx, f, 0)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.UserID == userID {
			rank := e.Rank
			return &rank, nil
		}
	}
	return nil, nil
}

// GetUserRank - место в текущем периоде
func (s *LeaderboardService) GetUserRank(ctx context.Context, userID string, now time.Time) (*int, error) {
	return s.RankOf(ctx, userID, s.classifier.Filter(now))
}

// GetLeaderboard - верх рейтинга текущего периода
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, now time.Time, limit int) (*Leaderboard, error) {
	if limit <= 0 {
		limit = DefaultDisplayLimit
	}
	entries, err := s.Rank(ctx, s.classifier.Filter(now), limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	return &Leaderboard{Period: s.classifier.Classify(now), Entries: entries}, nil
}

// WithDisplayNames заполняет DisplayName; при ошибке остаётся упоминание <@id>
func WithDisplayNames(ctx context.Context, names NameResolver, entries []domain.LeaderboardEntry) {
	for i := range entries {
		entries[i].DisplayName = displayName(ctx, names, entries[i].UserID)
	}
}

func displayName(ctx context.Context, names NameResolver, userID string) string {
	if names != nil {
		if name, err := names.ResolveDisplayName(ctx, userID); err == nil && name != "" {
			return name
		}
	}
	return "<@" + userID + ">"
}

// FormatRank - "🥇 1st Place", "🏆 11th Place" или "Not ranked yet"
func FormatRank(rank *int) string {
	if rank == nil || *rank <= 0 {
		return "Not ranked yet"
	}
	r := *rank
	return Medal(r) + " " + Ordinal(r) + " Place"
}

func Ordinal(n int) string {
	suffix := "th"
	switch {
	case n%10 == 1 && n%100 != 11:
		suffix = "st"
	case n%10 == 2 && n%100 != 12:
		suffix = "nd"
	case n%10 == 3 && n%100 != 13:
		suffix = "rd"
	}
	return strconv.Itoa(n) + suffix
}

func Medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return "🏆"
}
