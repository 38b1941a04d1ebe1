package workers

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/huynnh/calsync/internal/calendar/application"
	"github.com/huynnh/calsync/internal/calendar/domain"
)

// DefaultSyncInterval is the default interval between background sync cycles.
const DefaultSyncInterval = 300 * time.Second

// Syncer runs one background sync cycle for a provider.
type Syncer interface {
	SyncBackground(ctx context.Context, provider domain.Provider) (application.SyncOutcome, error)
}

// SyncWorker periodically syncs one connected provider.
type SyncWorker struct {
	syncer   Syncer
	provider domain.Provider
	interval time.Duration
	logger   *slog.Logger
	running  atomic.Bool
	cycles   atomic.Int64
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewSyncWorker creates a worker for provider.
func NewSyncWorker(syncer Syncer, provider domain.Provider, interval time.Duration, logger *slog.Logger) *SyncWorker {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	return &SyncWorker{
		syncer:   syncer,
		provider: provider,
		interval: interval,
		logger:   logger.With("provider", provider.String()),
		stopCh:   make(chan struct{}),
	}
}

// Run syncs once immediately, then on every tick, until the context is
// cancelled or Stop is called.
func (w *SyncWorker) Run(ctx context.Context) error {
	if w.syncer == nil {
		w.logger.Warn("syncer not configured, worker will not start")
		return nil
	}

	w.running.Store(true)
	defer w.running.Store(false)
	w.logger.Info("background sync worker started", "interval", w.interval)

	w.runCycle(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("background sync worker stopped (context cancelled)")
			return ctx.Err()
		case <-w.stopCh:
			w.logger.Info("background sync worker stopped (stop signal)")
			return nil
		case <-ticker.C:
			w.runCycle(ctx)
		}
	}
}

// Stop signals the worker to stop gracefully.
func (w *SyncWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// IsRunning returns true if the worker is currently running.
func (w *SyncWorker) IsRunning() bool {
	return w.running.Load()
}

// Cycles returns the number of cycles attempted.
func (w *SyncWorker) Cycles() int64 {
	return w.cycles.Load()
}

func (w *SyncWorker) runCycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	w.cycles.Add(1)
	outcome, err := w.syncer.SyncBackground(ctx, w.provider)
	switch {
	case errors.Is(err, domain.ErrNotConnected):
		w.logger.Debug("provider no longer connected, skipping cycle")
	case err != nil:
		w.logger.Debug("background sync failed", "error", err)
	case outcome.Dropped:
		w.logger.Debug("sync already in flight, skipped")
	}
}
