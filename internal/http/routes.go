package http

import (
	"howlo/internal/http/handlers"
	"howlo/internal/http/middleware"
	"howlo/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouteOptions - то, что нужно маршрутам помимо обработчиков
type RouteOptions struct {
	SigningSecret string
	Limiter       *middleware.RedisRateLimiter
	Hub           *ws.Hub
	AllowedOrigin string
}

// RegisterRoutes подключает все маршруты приложения
func RegisterRoutes(r *gin.Engine, h *handlers.Handler, opts RouteOptions) {
	r.SetHTMLTemplate(handlers.Templates())

	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	slack := r.Group("/slack", middleware.VerifySlackSignature(opts.SigningSecret))
	{
		slack.POST("/commands",
			opts.Limiter.Middleware(handlers.CommandUserID, handlers.RateLimited),
			h.SlackCommand,
		)
		slack.POST("/interactions", h.SlackInteraction)
	}

	howlo := r.Group("/howlo")
	{
		howlo.GET("/card", h.Card)
		howlo.GET("/blank-card", h.BlankCard)
	}

	api := r.Group("/api")
	{
		api.GET("/leaderboard", h.GetLeaderboard)
		api.GET("/rank/:user", h.GetUserRank)
		api.GET("/announcements", h.GetAnnouncements)
	}

	if opts.Hub != nil {
		r.GET("/ws/leaderboard", ws.HandleWS(opts.Hub, opts.AllowedOrigin))
	}
}
