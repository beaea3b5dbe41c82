package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"howlo/internal/config"
	"howlo/internal/db"
	"howlo/internal/gateway"
	httpServer "howlo/internal/http"
	"howlo/internal/http/handlers"
	"howlo/internal/http/middleware"
	"howlo/internal/logger"
	"howlo/internal/period"
	"howlo/internal/repository"
	"howlo/internal/service"
	"howlo/internal/token"
	"howlo/internal/ws"

	"github.com/gin-gonic/gin"
)

// Version устанавливается при сборке
var Version = "dev"

// хранилище, общее для сервисов
type store interface {
	service.AccomplishmentStore
	service.AnnouncementStore
	handlers.AnnouncementLister
}

type pgStore struct {
	*repository.AccomplishmentRepository
	*repository.AnnouncementRepository
}

func main() {
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logger.Init(logLevel, os.Getenv("LOG_FORMAT") == "json")
	log := logger.Get()

	cfg := config.Load()

	var st store
	if cfg.Store == config.StorePostgres {
		pool := db.Connect(cfg.DatabaseURL)
		defer pool.Close()
		if err := db.Migrate(context.Background(), pool); err != nil {
			logger.Fatal("migration failed", "error", err)
		}
		st = pgStore{
			AccomplishmentRepository: repository.NewAccomplishmentRepository(pool),
			AnnouncementRepository:   repository.NewAnnouncementRepository(pool),
		}
	} else {
		log.Warn("используется хранилище в памяти, данные не сохраняются между запусками")
		st = repository.NewMemoryStore()
	}

	var primary gateway.Gateway
	if cfg.SlackBotToken != "" {
		primary = gateway.NewSlack(cfg.SlackBotToken)
	} else {
		log.Warn("SLACK_BOT_TOKEN не задан, сообщения только пишутся в лог")
		primary = gateway.NewRecorder()
	}
	var sinks []gateway.Sink
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		tg, err := gateway.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			log.Error("telegram зеркало не запущено", "error", err)
		} else {
			sinks = append(sinks, tg)
		}
	}
	gw := gateway.NewMirror(primary, cfg.AnnouncementsChannelID, sinks...)

	classifier, err := period.NewClassifier(cfg.LaunchStart, cfg.FirstResetStart, cfg.Location)
	if err != nil {
		logger.Fatal("invalid period configuration", "error", err)
	}

	h := &handlers.Handler{
		Announcements: st,
		Gateway:       gw,
		Signer:        token.NewSigner(cfg.SecretKey, token.DefaultTTL),
		BaseURL:       cfg.AppBaseURL,
		Version:       Version,
	}

	hub := ws.NewHub()
	scoring := service.NewScoringService(st, classifier, cfg.PreventDuplicateCompanion)
	board := service.NewLeaderboardService(st, classifier)
	tracker := service.NewLeaderTracker(board, classifier)
	announcer := service.NewAnnouncer(gw, cfg.AnnouncementsChannelID, classifier, h.CardURL)
	transitions := service.NewTransitionService(classifier, board, st, announcer)

	h.Scoring = scoring
	h.Board = board
	h.Submissions = service.NewSubmissionService(scoring, tracker, announcer, hub)

	// первый снимок рейтинга, чтобы рестарт не объявлял текущего лидера заново
	if _, err := tracker.Check(context.Background(), time.Now()); err != nil {
		log.Warn("трекер лидера не инициализирован", "error", err)
	}

	limiter := middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RateLimitPerMinute)
	defer limiter.Close()

	r := gin.Default()

	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	httpServer.RegisterRoutes(r, h, httpServer.RouteOptions{
		SigningSecret: cfg.SlackSigningSecret,
		Limiter:       limiter,
		Hub:           hub,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		log.Info("server started", "port", cfg.AppPort, "version", Version, "store", cfg.Store)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	watcher := service.NewPeriodWatcher(transitions, cfg.TransitionInterval)
	go watcher.Start()
	log.Info("period watcher запущен", "interval", cfg.TransitionInterval)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	watcher.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
