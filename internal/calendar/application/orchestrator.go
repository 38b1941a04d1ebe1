package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/huynnh/calsync/internal/calendar/domain"
	sharedDomain "github.com/huynnh/calsync/internal/shared/domain"
	"github.com/huynnh/calsync/pkg/observability"
)

// Google cycle steps, in execution order.
const (
	StepPullEvents = "pull_events"
	StepPushEvents = "push_events"
	StepPullTasks  = "pull_tasks"
	StepPushTasks  = "push_tasks"
	StepSnapshot   = "snapshot"
	// StepSync is the single combined Outlook step.
	StepSync = "sync"
)

// SyncOutcome describes a sync request.
type SyncOutcome struct {
	// Dropped is true when a sync for the provider was already in flight.
	Dropped bool
	// Items is the number of records the provider returned.
	Items    int
	Steps    []string
	Duration time.Duration
}

// Scheduler runs background sync for connected providers.
type Scheduler interface {
	Start(provider domain.Provider)
	Stop(provider domain.Provider)
}

type providerSlot struct {
	mu     sync.Mutex
	conn   *domain.ProviderConnection
	client ProviderAPI
	// inFlight is set while a cycle runs, across disconnect and reconnect.
	inFlight bool
}

// Orchestrator owns the provider connections and drives connect, disconnect
// and sync cycles against them.
type Orchestrator struct {
	google  GoogleAPI
	outlook OutlookAPI
	slots   map[domain.Provider]*providerSlot

	// lifecycle serializes connect, disconnect and refresh so at most one
	// provider is ever connected.
	lifecycle sync.Mutex

	schedMu   sync.RWMutex
	scheduler Scheduler

	publisher EventPublisher
	metrics   observability.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewOrchestrator creates an orchestrator. Either client may be nil, in which
// case that provider stays disconnected.
func NewOrchestrator(google GoogleAPI, outlook OutlookAPI) *Orchestrator {
	o := &Orchestrator{
		google:  google,
		outlook: outlook,
		slots:   make(map[domain.Provider]*providerSlot, 2),
		metrics: observability.NoopMetrics{},
		logger:  slog.Default(),
		now:     time.Now,
	}
	o.slots[domain.ProviderGoogle] = &providerSlot{conn: domain.NewProviderConnection(domain.ProviderGoogle)}
	o.slots[domain.ProviderOutlook] = &providerSlot{conn: domain.NewProviderConnection(domain.ProviderOutlook)}
	if google != nil {
		o.slots[domain.ProviderGoogle].client = google
	}
	if outlook != nil {
		o.slots[domain.ProviderOutlook].client = outlook
	}
	return o
}

// WithPublisher sets the domain event publisher.
func (o *Orchestrator) WithPublisher(publisher EventPublisher) *Orchestrator {
	o.publisher = publisher
	return o
}

// WithMetrics sets the metrics sink.
func (o *Orchestrator) WithMetrics(metrics observability.Metrics) *Orchestrator {
	if metrics != nil {
		o.metrics = metrics
	}
	return o
}

// WithLogger sets the logger.
func (o *Orchestrator) WithLogger(logger *slog.Logger) *Orchestrator {
	if logger != nil {
		o.logger = logger
	}
	return o
}

// SetScheduler attaches the background sync scheduler. Providers already
// connected are started.
func (o *Orchestrator) SetScheduler(scheduler Scheduler) {
	o.schedMu.Lock()
	o.scheduler = scheduler
	o.schedMu.Unlock()

	if scheduler == nil {
		return
	}
	for _, p := range domain.AllProviders() {
		if o.IsConnected(p) {
			scheduler.Start(p)
		}
	}
}

func (o *Orchestrator) startBackground(p domain.Provider) {
	o.schedMu.RLock()
	defer o.schedMu.RUnlock()
	if o.scheduler != nil {
		o.scheduler.Start(p)
	}
}

func (o *Orchestrator) stopBackground(p domain.Provider) {
	o.schedMu.RLock()
	defer o.schedMu.RUnlock()
	if o.scheduler != nil {
		o.scheduler.Stop(p)
	}
}

func (o *Orchestrator) slot(p domain.Provider) (*providerSlot, error) {
	s, ok := o.slots[p]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", p)
	}
	if s.client == nil {
		return nil, fmt.Errorf("%s is not configured", p.DisplayName())
	}
	return s, nil
}

// Status returns a snapshot of one provider connection.
func (o *Orchestrator) Status(p domain.Provider) domain.ConnectionStatus {
	s, ok := o.slots[p]
	if !ok {
		return domain.ConnectionStatus{Provider: p, State: domain.StateDisconnected, Status: domain.StatusTextNotConnected}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Snapshot()
}

// Statuses returns snapshots of every provider.
func (o *Orchestrator) Statuses() []domain.ConnectionStatus {
	providers := domain.AllProviders()
	out := make([]domain.ConnectionStatus, 0, len(providers))
	for _, p := range providers {
		out = append(out, o.Status(p))
	}
	return out
}

// IsConnected reports whether p is connected, including mid-sync.
func (o *Orchestrator) IsConnected(p domain.Provider) bool {
	return o.Status(p).Connected
}

// ConnectedProvider returns the connected provider, if any.
func (o *Orchestrator) ConnectedProvider() (domain.Provider, bool) {
	for _, p := range domain.AllProviders() {
		if o.IsConnected(p) {
			return p, true
		}
	}
	return "", false
}

// Client returns the provider's client, or nil when it is not configured.
func (o *Orchestrator) Client(p domain.Provider) ProviderAPI {
	if s, ok := o.slots[p]; ok {
		return s.client
	}
	return nil
}

// Connect connects p. The other provider is disconnected first when it is
// connected. When the backend needs the user to authorize, the result carries
// the auth URL and the connection stays in connecting until Refresh sees it
// connected.
func (o *Orchestrator) Connect(ctx context.Context, p domain.Provider) (*ConnectResult, error) {
	s, err := o.slot(p)
	if err != nil {
		return nil, err
	}

	o.lifecycle.Lock()
	defer o.lifecycle.Unlock()

	if other := p.Other(); o.IsConnected(other) {
		o.logger.Info("disconnecting competing provider", "provider", p, "other", other)
		if err := o.disconnectLocked(ctx, other); err != nil {
			return nil, fmt.Errorf("disconnect %s: %w", other, err)
		}
	}

	s.mu.Lock()
	// A pending authorization may be restarted to obtain a fresh URL.
	pending := s.conn.State() == domain.StateConnecting && s.conn.AuthURL() != ""
	if !pending {
		if err := s.conn.BeginConnect(); err != nil {
			s.mu.Unlock()
			return nil, err
		}
	}
	s.mu.Unlock()

	result, err := s.client.Connect(ctx)
	if err != nil {
		s.mu.Lock()
		_ = s.conn.FailConnect(ErrorText(err, domain.StatusTextConnectionFailed))
		s.mu.Unlock()
		o.logger.Warn("provider connect failed", "provider", p, "error", err)
		return nil, err
	}

	if result.AlreadyConnected() {
		s.mu.Lock()
		err := s.conn.MarkConnected()
		s.mu.Unlock()
		if err != nil {
			return nil, err
		}
		o.logger.Info("provider connected", "provider", p)
		o.publish(ctx, domain.NewProviderConnectedEvent(p))
		o.startBackground(p)
		return result, nil
	}

	s.mu.Lock()
	err = s.conn.AwaitAuthorization(result.AuthURL)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	o.logger.Info("provider awaiting authorization", "provider", p)
	return result, nil
}

// Disconnect disconnects p. lastSyncedAt is cleared immediately and is not
// restored by a sync that finishes afterwards. When the backend refuses, the
// connection returns to connected.
func (o *Orchestrator) Disconnect(ctx context.Context, p domain.Provider) error {
	if _, err := o.slot(p); err != nil {
		return err
	}
	o.lifecycle.Lock()
	defer o.lifecycle.Unlock()
	return o.disconnectLocked(ctx, p)
}

func (o *Orchestrator) disconnectLocked(ctx context.Context, p domain.Provider) error {
	s, err := o.slot(p)
	if err != nil {
		return err
	}

	s.mu.Lock()
	err = s.conn.BeginDisconnect()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	o.stopBackground(p)

	if err := s.client.Disconnect(ctx); err != nil {
		s.mu.Lock()
		_ = s.conn.FailDisconnect(ErrorText(err, "Disconnect failed"))
		s.mu.Unlock()
		o.logger.Warn("provider disconnect failed", "provider", p, "error", err)
		o.startBackground(p)
		return err
	}

	s.mu.Lock()
	err = s.conn.MarkDisconnected()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	o.logger.Info("provider disconnected", "provider", p)
	o.publish(ctx, domain.NewProviderDisconnectedEvent(p))
	return nil
}

// Hydrate initializes both connections from the backend. When both report
// connected, Google is adopted and Outlook is left disconnected locally.
func (o *Orchestrator) Hydrate(ctx context.Context) error {
	return o.Refresh(ctx)
}

// Refresh polls the backend connection checks. It completes pending
// authorizations and notices grants revoked elsewhere.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	o.lifecycle.Lock()
	defer o.lifecycle.Unlock()

	var errs []error
	for _, p := range domain.AllProviders() {
		s, err := o.slot(p)
		if err != nil {
			continue
		}
		connected, err := s.client.CheckConnection(ctx)
		if err != nil {
			o.logger.Debug("connection check failed", "provider", p, "error", err)
			errs = append(errs, err)
			continue
		}

		if connected && !o.IsConnected(p) && o.IsConnected(p.Other()) {
			o.logger.Warn("ignoring second connected provider", "provider", p, "connected", p.Other())
			continue
		}

		s.mu.Lock()
		wasConnected := s.conn.Connected()
		became := s.conn.Rehydrate(connected)
		nowConnected := s.conn.Connected()
		s.mu.Unlock()

		switch {
		case became:
			o.logger.Info("provider connected", "provider", p)
			o.publish(ctx, domain.NewProviderConnectedEvent(p))
			o.startBackground(p)
		case wasConnected && !nowConnected:
			o.logger.Info("provider disconnected remotely", "provider", p)
			o.stopBackground(p)
			o.publish(ctx, domain.NewProviderDisconnectedEvent(p))
		}
	}
	return errors.Join(errs...)
}

// Sync runs one foreground sync cycle for p.
func (o *Orchestrator) Sync(ctx context.Context, p domain.Provider) (SyncOutcome, error) {
	return o.sync(ctx, p, false)
}

// SyncBackground runs one background cycle. Failures only update the
// connection status.
func (o *Orchestrator) SyncBackground(ctx context.Context, p domain.Provider) (SyncOutcome, error) {
	return o.sync(ctx, p, true)
}

func (o *Orchestrator) sync(ctx context.Context, p domain.Provider, background bool) (SyncOutcome, error) {
	s, err := o.slot(p)
	if err != nil {
		return SyncOutcome{}, err
	}
	tags := []observability.Tag{observability.T("provider", p.String())}
	ctx = observability.WithProvider(observability.WithOperation(ctx, "provider.sync"), p.String())

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return o.dropSync(p, tags), nil
	}
	ticket, err := s.conn.BeginSync()
	if err == nil {
		s.inFlight = true
	}
	s.mu.Unlock()
	if errors.Is(err, domain.ErrSyncInProgress) {
		return o.dropSync(p, tags), nil
	}
	if err != nil {
		return SyncOutcome{}, err
	}
	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	start := o.now()
	var outcome SyncOutcome
	var cycleErr *CycleError
	switch p {
	case domain.ProviderGoogle:
		outcome, cycleErr = o.googleCycle(ctx)
	default:
		outcome, cycleErr = o.outlookCycle(ctx)
	}
	outcome.Duration = o.now().Sub(start)
	o.metrics.Counter(observability.MetricSyncCycles, 1, tags...)
	o.metrics.Timing(observability.MetricSyncDuration, outcome.Duration, tags...)

	if cycleErr != nil {
		s.mu.Lock()
		current := s.conn.FailSync(ticket, ErrorText(cycleErr, domain.StatusTextSyncFailed))
		s.mu.Unlock()
		o.metrics.Counter(observability.MetricSyncFailures, 1, append(tags, observability.T("step", cycleErr.Step))...)
		if background {
			o.logger.Debug("background sync failed", "provider", p, "step", cycleErr.Step, "error", cycleErr.Err)
		} else {
			o.logger.Warn("sync failed", "provider", p, "step", cycleErr.Step, "error", cycleErr.Err)
		}
		if current {
			o.publish(ctx, domain.NewProviderSyncFailedEvent(p, cycleErr.Step, ErrorText(cycleErr, domain.StatusTextSyncFailed), background))
		}
		return outcome, cycleErr
	}

	s.mu.Lock()
	current := s.conn.CompleteSync(ticket, o.now())
	s.mu.Unlock()
	if !current {
		o.logger.Debug("sync finished after disconnect, discarding result", "provider", p)
		return outcome, nil
	}
	o.logger.Debug("sync complete",
		"provider", p,
		"items", outcome.Items,
		"duration_ms", outcome.Duration.Milliseconds(),
		"background", background,
	)
	o.publish(ctx, domain.NewProviderSyncedEvent(p, outcome.Steps, outcome.Items, outcome.Duration, background))
	return outcome, nil
}

func (o *Orchestrator) dropSync(p domain.Provider, tags []observability.Tag) SyncOutcome {
	o.metrics.Counter(observability.MetricSyncDropped, 1, tags...)
	o.logger.Debug("sync already in flight, dropping request", "provider", p)
	return SyncOutcome{Dropped: true}
}

// googleCycle runs pull events, push events, pull tasks, push tasks and the
// snapshot in order, stopping at the first failure.
func (o *Orchestrator) googleCycle(ctx context.Context) (SyncOutcome, *CycleError) {
	var outcome SyncOutcome
	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{StepPullEvents, o.google.PullEvents},
		{StepPushEvents, o.google.PushEvents},
		{StepPullTasks, o.google.PullTasks},
		{StepPushTasks, o.google.PushTasks},
		{StepSnapshot, func(ctx context.Context) error {
			snapshot, err := o.google.Snapshot(ctx)
			if err == nil && snapshot != nil {
				outcome.Items = len(snapshot.Events) + len(snapshot.Tasks)
			}
			return err
		}},
	}
	for _, step := range steps {
		timer := observability.StartTimer(step.name).
			WithLogger(o.logger).
			WithMetrics(o.metrics, observability.MetricSyncStepDuration,
				observability.T("provider", domain.ProviderGoogle.String()),
				observability.T("step", step.name))
		err := step.run(ctx)
		timer.Stop(ctx, err)
		if err != nil {
			return outcome, &CycleError{Provider: domain.ProviderGoogle, Step: step.name, Err: err}
		}
		outcome.Steps = append(outcome.Steps, step.name)
	}
	return outcome, nil
}

func (o *Orchestrator) outlookCycle(ctx context.Context) (SyncOutcome, *CycleError) {
	var outcome SyncOutcome
	result, err := o.outlook.Sync(ctx)
	if err != nil {
		return outcome, &CycleError{Provider: domain.ProviderOutlook, Step: StepSync, Err: err}
	}
	outcome.Steps = []string{StepSync}
	if result != nil {
		outcome.Items = len(result.PullEvents.Events) + len(result.PullTasks.Tasks)
	}
	return outcome, nil
}

func (o *Orchestrator) publish(ctx context.Context, events ...sharedDomain.DomainEvent) {
	publishEvents(ctx, o.publisher, o.logger, events...)
}
