package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"howlo/internal/domain"
	"howlo/internal/logger"
	"howlo/internal/period"
)

// сколько призёров объявляется по итогам периода
const WinnersCount = 3

// AnnouncementStore - флаги "объявление уже отправлено"
type AnnouncementStore interface {
	IsAnnounced(ctx context.Context, kind domain.AnnouncementKind, periodKey string) (bool, error)
	MarkAnnounced(ctx context.Context, kind domain.AnnouncementKind, periodKey string, at time.Time) error
}

// TransitionService отправляет объявления на границах периодов ровно один раз
type TransitionService struct {
	classifier *period.Classifier
	board      *LeaderboardService
	flags      AnnouncementStore
	announcer  *Announcer
	log        *slog.Logger
}

func NewTransitionService(classifier *period.Classifier, board *LeaderboardService, flags AnnouncementStore, announcer *Announcer) *TransitionService {
	return &TransitionService{
		classifier: classifier,
		board:      board,
		flags:      flags,
		announcer:  announcer,
		log:        logger.With("component", "transitions"),
	}
}

// RunPeriodTransitionCheck - три независимые проверки; ошибка одной не отменяет другие
func (s *TransitionService) RunPeriodTransitionCheck(ctx context.Context, now time.Time) error {
	return errors.Join(
		s.checkLaunch(ctx, now),
		s.checkLaunchWinners(ctx, now),
		s.checkMonthWinners(ctx, now),
	)
}

func (s *TransitionService) checkLaunch(ctx context.Context, now time.Time) error {
	if !s.classifier.SameDay(now, s.classifier.LaunchStart) {
		return nil
	}
	return s.once(ctx, domain.AnnouncementLaunch, period.LaunchKey, now, func() (bool, error) {
		return true, s.announcer.Launch(ctx)
	})
}

func (s *TransitionService) checkLaunchWinners(ctx context.Context, now time.Time) error {
	if !s.classifier.SameDay(now, s.classifier.FirstResetStart) {
		return nil
	}
	return s.once(ctx, domain.AnnouncementLaunchWinners, period.LaunchKey, now, func() (bool, error) {
		winners, err := s.board.Rank(ctx, s.classifier.LaunchFilter(), WinnersCount)
		if err != nil || len(winners) == 0 {
			return false, err
		}
		return true, s.announcer.LaunchWinners(ctx, winners)
	})
}

func (s *TransitionService) checkMonthWinners(ctx context.Context, now time.Time) error {
	p := s.classifier.Classify(now)
	if p.Regime != period.RegimeMonthly || !s.classifier.IsFirstOfMonth(now) {
		return nil
	}
	month, year := period.Previous(p.Month, p.Year)
	// предыдущий месяц целиком входил в стартовый период
	if s.classifier.MonthStart(month, year).Before(s.classifier.FirstResetStart) {
		return nil
	}

	return s.once(ctx, domain.AnnouncementMonthWinners, period.MonthKey(month, year), now, func() (bool, error) {
		winners, err := s.board.Rank(ctx, period.MonthFilter(month, year), WinnersCount)
		if err != nil || len(winners) == 0 {
			return false, err
		}
		return true, s.announcer.MonthWinners(ctx, winners, month, year)
	})
}

// once: флаг уже стоит - ничего; send вернул (false, nil) - отправлять было
// нечего, флаг не ставим; ошибка отправки - флаг не ставим, повтор на следующем тике
func (s *TransitionService) once(ctx context.Context, kind domain.AnnouncementKind, key string, now time.Time, send func() (bool, error)) error {
	done, err := s.flags.IsAnnounced(ctx, kind, key)
	if err != nil {
		return fmt.Errorf("check %s/%s announcement: %w", kind, key, err)
	}
	if done {
		return nil
	}

	sent, err := send()
	if err != nil {
		announcementsSent.WithLabelValues(string(kind), "failed").Inc()
		s.log.Error("объявление не отправлено", "kind", kind, "period", key, "error", err)
		return fmt.Errorf("%s/%s announcement: %w", kind, key, err)
	}
	if !sent {
		s.log.Info("некого объявлять", "kind", kind, "period", key)
		return nil
	}

	if err := s.flags.MarkAnnounced(ctx, kind, key, now); err != nil {
		return fmt.Errorf("mark %s/%s announcement: %w", kind, key, err)
	}
	announcementsSent.WithLabelValues(string(kind), "sent").Inc()
	s.log.Info("объявление отправлено", "kind", kind, "period", key)
	return nil
}
