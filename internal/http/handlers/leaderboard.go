package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"howlo/internal/service"

	"github.com/gin-gonic/gin"
)

const maxAPILimit = 100

func queryLimit(c *gin.Context, def int) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		return def
	}
	if limit > maxAPILimit {
		return maxAPILimit
	}
	return limit
}

// рейтинг текущего периода с именами из слака
func (h *Handler) GetLeaderboard(c *gin.Context) {
	ctx := c.Request.Context()
	lb, err := h.Board.GetLeaderboard(ctx, h.now(), queryLimit(c, service.DefaultDisplayLimit))
	if err != nil {
		if errors.Is(err, service.ErrRankingUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "leaderboard unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get leaderboard"})
		return
	}
	service.WithDisplayNames(ctx, h.Gateway, lb.Entries)

	c.JSON(http.StatusOK, gin.H{
		"leaderboard": lb.Entries,
		"period":      lb.Period,
		"label":       lb.Period.Label(),
	})
}

// место пользователя, rank = null если он вне рейтинга
func (h *Handler) GetUserRank(c *gin.Context) {
	userID := c.Param("user")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user required"})
		return
	}

	rank, err := h.Board.GetUserRank(c.Request.Context(), userID, h.now())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "leaderboard unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":   userID,
		"rank":      rank,
		"formatted": service.FormatRank(rank),
	})
}

// последние объявления границ периодов
func (h *Handler) GetAnnouncements(c *gin.Context) {
	items, err := h.Announcements.ListRecent(c.Request.Context(), queryLimit(c, 20))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get announcements"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"announcements": items})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.Version})
}
