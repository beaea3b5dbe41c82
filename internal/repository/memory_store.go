package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"howlo/internal/domain"
	"howlo/internal/period"

	"github.com/google/uuid"
)

// MemoryStore - хранилище в памяти процесса для STORE=memory и тестов.
// Реализует те же методы, что и postgres репозитории.
type MemoryStore struct {
	mu            sync.Mutex
	records       []*domain.Accomplishment
	announcements map[string]*domain.PeriodAnnouncement
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		announcements: make(map[string]*domain.PeriodAnnouncement),
	}
}

func (s *MemoryStore) Insert(_ context.Context, a *domain.Accomplishment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	cp := *a
	s.records = append(s.records, &cp)
	return nil
}

func (s *MemoryStore) FindByUser(_ context.Context, userID string, f period.Filter) ([]*domain.Accomplishment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var list []*domain.Accomplishment
	for _, r := range s.records {
		if r.UserID == userID && f.Matches(r.CreatedAt, r.Month, r.Year) {
			cp := *r
			list = append(list, &cp)
		}
	}
	return list, nil
}

func (s *MemoryStore) HasBonus(_ context.Context, userID string, f period.Filter, kind domain.BonusKind) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.UserID == userID && f.Matches(r.CreatedAt, r.Month, r.Year) && hasBonus(r, kind) {
			return true, nil
		}
	}
	return false, nil
}

// проверка и запись под одним локом
func (s *MemoryStore) AwardBonus(_ context.Context, id string, kind domain.BonusKind, at time.Time) (bool, error) {
	if kind.XP() == 0 {
		return false, fmt.Errorf("unknown bonus kind %q", kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var target *domain.Accomplishment
	for _, r := range s.records {
		if r.ID == id {
			target = r
			break
		}
	}
	if target == nil {
		return false, fmt.Errorf("award %s bonus: accomplishment %s not found", kind, id)
	}

	for _, r := range s.records {
		if r.UserID == target.UserID && r.PeriodKey == target.PeriodKey && hasBonus(r, kind) {
			return false, nil
		}
	}

	awardedAt := at
	switch kind {
	case domain.BonusLine:
		target.LineBonus = true
		target.LineBonusAt = &awardedAt
	case domain.BonusFullBoard:
		target.FullBoardBonus = true
		target.FullBoardAt = &awardedAt
	}
	target.XP += kind.XP()
	return true, nil
}

func (s *MemoryStore) Aggregate(_ context.Context, f period.Filter, limit int) ([]domain.LeaderboardEntry, error) {
	s.mu.Lock()
	byUser := make(map[string]*domain.LeaderboardEntry)
	for _, r := range s.records {
		if !f.Matches(r.CreatedAt, r.Month, r.Year) {
			continue
		}
		e, ok := byUser[r.UserID]
		if !ok {
			e = &domain.LeaderboardEntry{UserID: r.UserID}
			byUser[r.UserID] = e
		}
		e.TotalXP += r.XP
		e.AccomplishmentCount++
		e.HasLineBonus = e.HasLineBonus || r.LineBonus
		e.HasFullBoardBonus = e.HasFullBoardBonus || r.FullBoardBonus
	}
	s.mu.Unlock()

	result := make([]domain.LeaderboardEntry, 0, len(byUser))
	for _, e := range byUser {
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.TotalXP != b.TotalXP {
			return a.TotalXP > b.TotalXP
		}
		if a.AccomplishmentCount != b.AccomplishmentCount {
			return a.AccomplishmentCount > b.AccomplishmentCount
		}
		return a.UserID < b.UserID
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	for i := range result {
		result[i].Rank = i + 1
	}
	return result, nil
}

func (s *MemoryStore) IsAnnounced(_ context.Context, kind domain.AnnouncementKind, periodKey string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.announcements[announcementKey(kind, periodKey)]
	return ok, nil
}

func (s *MemoryStore) MarkAnnounced(_ context.Context, kind domain.AnnouncementKind, periodKey string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := announcementKey(kind, periodKey)
	if _, ok := s.announcements[key]; !ok {
		s.announcements[key] = &domain.PeriodAnnouncement{Kind: kind, PeriodKey: periodKey, AnnouncedAt: at}
	}
	return nil
}

func (s *MemoryStore) ListRecent(_ context.Context, limit int) ([]*domain.PeriodAnnouncement, error) {
	s.mu.Lock()
	list := make([]*domain.PeriodAnnouncement, 0, len(s.announcements))
	for _, a := range s.announcements {
		cp := *a
		list = append(list, &cp)
	}
	s.mu.Unlock()

	sort.Slice(list, func(i, j int) bool { return list[i].AnnouncedAt.After(list[j].AnnouncedAt) })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func hasBonus(r *domain.Accomplishment, kind domain.BonusKind) bool {
	switch kind {
	case domain.BonusLine:
		return r.LineBonus
	case domain.BonusFullBoard:
		return r.FullBoardBonus
	}
	return false
}

func announcementKey(kind domain.AnnouncementKind, periodKey string) string {
	return string(kind) + "|" + periodKey
}
