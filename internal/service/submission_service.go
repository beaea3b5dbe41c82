package service

import (
	"context"
	"log/slog"
	"time"

	"howlo/internal/logger"
)

// EventPublisher - живая лента (ws hub)
type EventPublisher interface {
	Publish(eventType string, data any)
}

// типы событий ленты
const (
	EventAchievement  = "achievement"
	EventLeaderChange = "leader_change"
)

type achievementEvent struct {
	UserID         string `json:"user_id"`
	Period         string `json:"period"`
	XPAwarded      int    `json:"xp_awarded"`
	LineBonus      bool   `json:"line_bonus"`
	FullBoardBonus bool   `json:"full_board_bonus"`
}

// SubmissionService - полный сценарий отправки формы: запись и начисление,
// затем сообщения, трекер лидера и лента. Побочные эффекты не ломают запись.
type SubmissionService struct {
	scoring   *ScoringService
	tracker   *LeaderTracker
	announcer *Announcer
	events    EventPublisher
	log       *slog.Logger
}

func NewSubmissionService(scoring *ScoringService, tracker *LeaderTracker, announcer *Announcer, events EventPublisher) *SubmissionService {
	return &SubmissionService{
		scoring:   scoring,
		tracker:   tracker,
		announcer: announcer,
		events:    events,
		log:       logger.With("component", "submissions"),
	}
}

// Submit записывает достижение; channel - канал, где вызвана команда
func (s *SubmissionService) Submit(ctx context.Context, channel string, in AchievementInput, now time.Time) (*AchievementResult, error) {
	res, err := s.scoring.RecordAchievement(ctx, in, now)
	if err != nil {
		return nil, err
	}

	if err := s.announcer.AchievementRecorded(ctx, channel, res); err != nil {
		s.log.Warn("сообщения о достижении не доставлены", "user", in.UserID, "error", err)
	}

	s.publish(EventAchievement, achievementEvent{
		UserID:         res.Record.UserID,
		Period:         res.Period.Key,
		XPAwarded:      res.XPAwarded,
		LineBonus:      res.LineBonusAwarded,
		FullBoardBonus: res.FullBoardBonusAwarded,
	})

	change, err := s.tracker.Check(ctx, now)
	if err != nil {
		s.log.Warn("трекер лидера недоступен", "error", err)
		return res, nil
	}
	if change != nil {
		if err := s.announcer.LeaderChange(ctx, change); err != nil {
			s.log.Warn("объявление о новом лидере не отправлено", "leader", change.NewLeader.UserID, "error", err)
		}
		s.publish(EventLeaderChange, change)
	}
	return res, nil
}

func (s *SubmissionService) publish(eventType string, data any) {
	if s.events != nil {
		s.events.Publish(eventType, data)
	}
}
