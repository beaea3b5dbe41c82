package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"howlo/internal/bingo"
	"howlo/internal/domain"
	"howlo/internal/logger"
	"howlo/internal/period"
)

// AccomplishmentStore - хранилище записей (postgres или память)
type AccomplishmentStore interface {
	Insert(ctx context.Context, a *domain.Accomplishment) error
	FindByUser(ctx context.Context, userID string, f period.Filter) ([]*domain.Accomplishment, error)
	HasBonus(ctx context.Context, userID string, f period.Filter, kind domain.BonusKind) (bool, error)
	// выставляет флаг, только если у пользователя в периоде его ещё нет
	AwardBonus(ctx context.Context, id string, kind domain.BonusKind, at time.Time) (bool, error)
	Aggregate(ctx context.Context, f period.Filter, limit int) ([]domain.LeaderboardEntry, error)
}

type AchievementInput struct {
	UserID    string
	Challenge string
	Companion domain.Companion
	Location  string
}

// AchievementResult - итог записи достижения
type AchievementResult struct {
	Record *domain.Accomplishment
	Period period.Period
	// XP, начисленные этой записью вместе с бонусами
	XPAwarded             int
	LineBonusAwarded      bool
	FullBoardBonusAwarded bool
	// все собранные линии после записи
	Lines []bingo.Line
	// линии, которые замкнула именно эта запись
	NewLines []bingo.Line
	// карточка закрыта именно этой записью
	BoardCompleted bool
	Grid           bingo.Grid
}

// Progress - состояние карточки пользователя в текущем периоде
type Progress struct {
	UserID    string        `json:"user_id"`
	Period    period.Period `json:"period"`
	Grid      bingo.Grid    `json:"-"`
	Cells     []bingo.Cell  `json:"cells"`
	Lines     []bingo.Line  `json:"lines"`
	FullBoard bool          `json:"full_board"`
	Completed int           `json:"completed"`
	TotalXP   int           `json:"total_xp"`
	Records   int           `json:"records"`
}

type ScoringService struct {
	store      AccomplishmentStore
	classifier *period.Classifier
	// запрет повторно отмечать того же человека в одном периоде
	preventDuplicateCompanion bool
	log                       *slog.Logger
}

func NewScoringService(store AccomplishmentStore, classifier *period.Classifier, preventDuplicateCompanion bool) *ScoringService {
	return &ScoringService{
		store:                     store,
		classifier:                classifier,
		preventDuplicateCompanion: preventDuplicateCompanion,
		log:                       logger.With("component", "scoring"),
	}
}

// проверяет ввод; возвращает клетку карточки
func (s *ScoringService) validate(in AchievementInput) (bingo.Slot, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return bingo.Slot{}, invalid(FieldUser, nil, "missing user")
	}
	slot, ok := bingo.Lookup(in.Challenge)
	if !ok {
		return bingo.Slot{}, invalid(FieldChallenge, ErrInvalidChallenge, "Please choose a challenge from the card")
	}
	if strings.TrimSpace(in.Location) == "" {
		return bingo.Slot{}, invalid(FieldLocation, nil, "Please enter an event or location")
	}
	if !in.Companion.Valid() {
		return bingo.Slot{}, invalid(FieldCompanion, ErrAmbiguousCompanion, "Please select a user or enter a name, not both")
	}
	return slot, nil
}

// RecordAchievement сохраняет достижение и начисляет разовые бонусы периода
func (s *ScoringService) RecordAchievement(ctx context.Context, in AchievementInput, now time.Time) (*AchievementResult, error) {
	slot, err := s.validate(in)
	if err != nil {
		if ve, ok := err.(*ValidationError); ok {
			achievementsRejected.WithLabelValues(ve.Field).Inc()
		}
		return nil, err
	}

	p := s.classifier.Classify(now)
	f := s.classifier.Filter(now)
	userID := strings.TrimSpace(in.UserID)
	tag := in.Companion.Tag()

	// записи до вставки: для правила дублей и для поиска новых линий
	var before []*domain.Accomplishment
	if f.Kind != period.FilterNone {
		before, err = s.store.FindByUser(ctx, userID, f)
		if err != nil {
			return nil, fmt.Errorf("%w: find accomplishments: %w", ErrPersistence, err)
		}
	}

	if s.preventDuplicateCompanion {
		for _, r := range before {
			if r.TaggedUser == tag {
				achievementsRejected.WithLabelValues(FieldCompanion).Inc()
				return nil, invalid(FieldCompanion, ErrDuplicateCompanion, "You already tagged "+tag+" this period")
			}
		}
	}

	rec := &domain.Accomplishment{
		UserID:          userID,
		Challenge:       slot.Text,
		TaggedUser:      tag,
		CompanionUserID: strings.TrimSpace(in.Companion.UserID),
		EventLocation:   strings.TrimSpace(in.Location),
		CreatedAt:       now,
		Month:           p.Month,
		Year:            p.Year,
		PeriodKey:       p.Key,
		XP:              domain.BaseXP,
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("%w: insert accomplishment: %w", ErrPersistence, err)
	}
	achievementsRecorded.WithLabelValues(string(p.Regime)).Inc()

	res := &AchievementResult{
		Record:    rec,
		Period:    p,
		XPAwarded: domain.BaseXP,
	}

	all := append(append([]*domain.Accomplishment{}, before...), rec)
	prevGrid := bingo.BuildGrid(before)
	res.Grid = bingo.BuildGrid(all)
	res.Lines = bingo.DetectLines(res.Grid)
	res.NewLines = bingo.NewLines(bingo.DetectLines(prevGrid), res.Lines)
	required := bingo.RequiredSlots()
	full := bingo.DetectFullBoard(res.Grid, required)
	res.BoardCompleted = full && !bingo.DetectFullBoard(prevGrid, required)

	// до старта бонусов нет: записи вне рейтинга
	if p.Regime == period.RegimePreLaunch {
		s.log.Info("достижение до старта", "user", userID, "slot", slot.Index)
		return res, nil
	}

	if len(res.Lines) > 0 {
		awarded, err := s.award(ctx, rec, f, domain.BonusLine, now)
		if err != nil {
			return nil, err
		}
		res.LineBonusAwarded = awarded
	}
	if full {
		awarded, err := s.award(ctx, rec, f, domain.BonusFullBoard, now)
		if err != nil {
			return nil, err
		}
		res.FullBoardBonusAwarded = awarded
	}

	if res.LineBonusAwarded {
		res.XPAwarded += domain.LineBonusXP
	}
	if res.FullBoardBonusAwarded {
		res.XPAwarded += domain.FullBoardBonusXP
	}

	s.log.Info("достижение записано",
		"user", userID,
		"slot", slot.Index,
		"period", p.Key,
		"lines", len(res.Lines),
		"full_board", full,
		"xp", res.XPAwarded,
	)
	return res, nil
}

// award: быстрая проверка флага, затем атомарная установка в хранилище
func (s *ScoringService) award(ctx context.Context, rec *domain.Accomplishment, f period.Filter, kind domain.BonusKind, now time.Time) (bool, error) {
	has, err := s.store.HasBonus(ctx, rec.UserID, f, kind)
	if err != nil {
		return false, fmt.Errorf("%w: check %s bonus: %w", ErrPersistence, kind, err)
	}
	if has {
		return false, nil
	}
	ok, err := s.store.AwardBonus(ctx, rec.ID, kind, now)
	if err != nil {
		return false, fmt.Errorf("%w: award %s bonus: %w", ErrPersistence, kind, err)
	}
	if !ok {
		return false, nil
	}

	at := now
	switch kind {
	case domain.BonusLine:
		rec.LineBonus = true
		rec.LineBonusAt = &at
	case domain.BonusFullBoard:
		rec.FullBoardBonus = true
		rec.FullBoardAt = &at
	}
	rec.XP += kind.XP()
	bonusesAwarded.WithLabelValues(string(kind)).Inc()
	return true, nil
}

// Progress собирает карточку пользователя за текущий период
func (s *ScoringService) Progress(ctx context.Context, userID string, now time.Time) (*Progress, error) {
	p := s.classifier.Classify(now)
	f := s.classifier.Filter(now)
	if p.Regime == period.RegimePreLaunch {
		// до старта показываем записи текущего месяца, без рейтинга
		f = period.MonthFilter(p.Month, p.Year)
	}

	records, err := s.store.FindByUser(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("%w: find accomplishments: %w", ErrPersistence, err)
	}

	g := bingo.BuildGrid(records)
	pr := &Progress{
		UserID:    userID,
		Period:    p,
		Grid:      g,
		Cells:     g.Cells(),
		Lines:     bingo.DetectLines(g),
		FullBoard: bingo.DetectFullBoard(g, bingo.RequiredSlots()),
		Completed: g.Completed(),
		Records:   len(records),
	}
	for _, r := range records {
		pr.TotalXP += r.XP
	}
	return pr, nil
}
