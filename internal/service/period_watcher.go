package service

import (
	"context"
	"sync"
	"time"

	"howlo/internal/logger"
)

// PeriodWatcher периодически запускает проверку границ периодов
type PeriodWatcher struct {
	transitions *TransitionService
	interval    time.Duration
	now         func() time.Time
	mu          sync.Mutex
	stop        chan struct{}
	running     bool
}

func NewPeriodWatcher(transitions *TransitionService, interval time.Duration) *PeriodWatcher {
	return &PeriodWatcher{
		transitions: transitions,
		interval:    interval,
		now:         time.Now,
		stop:        make(chan struct{}),
	}
}

// Start блокирует до Stop; запускать в горутине
func (w *PeriodWatcher) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	log := logger.With("component", "period_watcher")
	log.Info("запуск period watcher", "interval", w.interval)

	w.tick()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick()
		case <-w.stop:
			log.Info("остановка period watcher")
			return
		}
	}
}

func (w *PeriodWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stop)
		w.running = false
	}
}

func (w *PeriodWatcher) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := w.transitions.RunPeriodTransitionCheck(ctx, w.now()); err != nil {
		logger.Warn("проверка границ периодов завершилась с ошибкой", "error", err)
	}
}
