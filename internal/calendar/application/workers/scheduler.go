package workers

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/huynnh/calsync/internal/calendar/domain"
)

type runningWorker struct {
	worker *SyncWorker
	cancel context.CancelFunc
	done   chan struct{}
}

// Scheduler keeps one SyncWorker per connected provider. Workers are started
// when a provider connects and stopped when it disconnects.
type Scheduler struct {
	parent   context.Context
	syncer   Syncer
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	workers map[domain.Provider]*runningWorker
}

// NewScheduler creates a scheduler. Workers run until ctx is cancelled.
func NewScheduler(ctx context.Context, syncer Syncer, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		parent:   ctx,
		syncer:   syncer,
		interval: interval,
		logger:   logger,
		workers:  make(map[domain.Provider]*runningWorker),
	}
}

// Start launches the provider's worker unless one is already running.
func (s *Scheduler) Start(provider domain.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.workers[provider]; ok {
		return
	}
	ctx, cancel := context.WithCancel(s.parent)
	rw := &runningWorker{
		worker: NewSyncWorker(s.syncer, provider, s.interval, s.logger),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.workers[provider] = rw

	go func() {
		defer close(rw.done)
		_ = rw.worker.Run(ctx)
	}()
}

// Stop stops the provider's worker. It does not wait for an in-flight cycle.
func (s *Scheduler) Stop(provider domain.Provider) {
	s.mu.Lock()
	rw, ok := s.workers[provider]
	delete(s.workers, provider)
	s.mu.Unlock()

	if ok {
		rw.worker.Stop()
		rw.cancel()
	}
}

// Running reports whether the provider has a worker.
func (s *Scheduler) Running(provider domain.Provider) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.workers[provider]
	return ok
}

// Shutdown stops every worker and waits for them to exit.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	workers := s.workers
	s.workers = make(map[domain.Provider]*runningWorker)
	s.mu.Unlock()

	for _, rw := range workers {
		rw.worker.Stop()
		rw.cancel()
		<-rw.done
	}
}
