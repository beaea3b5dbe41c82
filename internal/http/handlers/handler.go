package handlers

import (
	"context"
	"time"

	"howlo/internal/domain"
	"howlo/internal/gateway"
	"howlo/internal/service"
	"howlo/internal/token"
)

// AnnouncementLister - история объявлений для /api/announcements
type AnnouncementLister interface {
	ListRecent(ctx context.Context, limit int) ([]*domain.PeriodAnnouncement, error)
}

// Handler держит зависимости всех http обработчиков
type Handler struct {
	Submissions   *service.SubmissionService
	Scoring       *service.ScoringService
	Board         *service.LeaderboardService
	Announcements AnnouncementLister
	Gateway       gateway.Gateway
	Signer        *token.Signer
	BaseURL       string
	Version       string
	Now           func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// CardURL - подписанная ссылка на карточку пользователя
func (h *Handler) CardURL(userID string) string {
	return h.signedURL("/howlo/card", userID)
}

func (h *Handler) blankCardURL(userID string) string {
	return h.signedURL("/howlo/blank-card", userID)
}

func (h *Handler) signedURL(path, userID string) string {
	tok, err := h.Signer.Issue(userID)
	if err != nil {
		return ""
	}
	return h.BaseURL + path + "?token=" + tok
}
