package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/huynnh/calsync/internal/calendar/domain"
	"github.com/huynnh/calsync/pkg/observability"
)

// Branch names one concurrent fetch of an aggregation cycle.
type Branch string

const (
	BranchLocalTasks Branch = "local_tasks"
	BranchGoogle     Branch = "google"
	BranchOutlook    Branch = "outlook"
	BranchEventModel Branch = "event_model"
)

// MsgFetchFailed is shown when every attempted branch failed.
const MsgFetchFailed = "Failed to fetch tasks and events. Please try again."

// ErrFetchFailed is reported when every attempted branch failed.
var ErrFetchFailed = errors.New("all calendar sources failed")

// SourceError is the failure of one branch.
type SourceError struct {
	Branch Branch
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Branch, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// FetchError is returned when no branch succeeded. The store is untouched.
type FetchError struct {
	Errors []*SourceError
}

func (e *FetchError) Error() string {
	return MsgFetchFailed
}

// UserMessage returns the message shown to the user.
func (e *FetchError) UserMessage() string {
	return MsgFetchFailed
}

func (e *FetchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Errors)+1)
	errs = append(errs, ErrFetchFailed)
	for _, err := range e.Errors {
		errs = append(errs, err)
	}
	return errs
}

// AggregateResult describes one aggregation cycle.
type AggregateResult struct {
	Items     []domain.CalendarItem
	Attempted []Branch
	Failed    []*SourceError
	FetchedAt time.Time
	// Cached is true when the items came from the snapshot cache.
	Cached bool
}

// Partial reports whether some, but not all, branches failed.
func (r *AggregateResult) Partial() bool {
	return len(r.Failed) > 0
}

// ConnectionView answers whether a provider is currently connected.
type ConnectionView interface {
	IsConnected(provider domain.Provider) bool
}

// Aggregator fetches every source concurrently and replaces the store with
// the normalized batch.
type Aggregator struct {
	tasks       TaskAPI
	events      EventAPI
	google      GoogleAPI
	outlook     OutlookAPI
	connections ConnectionView
	store       *Store
	normalizer  *Normalizer

	cache     SnapshotCache
	publisher EventPublisher
	metrics   observability.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewAggregator creates an aggregator. google and outlook may be nil.
func NewAggregator(
	tasks TaskAPI,
	events EventAPI,
	google GoogleAPI,
	outlook OutlookAPI,
	connections ConnectionView,
	store *Store,
	normalizer *Normalizer,
) *Aggregator {
	if normalizer == nil {
		normalizer = NewNormalizer(nil)
	}
	return &Aggregator{
		tasks:       tasks,
		events:      events,
		google:      google,
		outlook:     outlook,
		connections: connections,
		store:       store,
		normalizer:  normalizer,
		metrics:     observability.NoopMetrics{},
		logger:      slog.Default(),
		now:         time.Now,
	}
}

// WithCache sets the snapshot cache written after every successful cycle.
func (a *Aggregator) WithCache(cache SnapshotCache) *Aggregator {
	a.cache = cache
	return a
}

// WithPublisher sets the domain event publisher.
func (a *Aggregator) WithPublisher(publisher EventPublisher) *Aggregator {
	a.publisher = publisher
	return a
}

// WithMetrics sets the metrics sink.
func (a *Aggregator) WithMetrics(metrics observability.Metrics) *Aggregator {
	if metrics != nil {
		a.metrics = metrics
	}
	return a
}

// WithLogger sets the logger.
func (a *Aggregator) WithLogger(logger *slog.Logger) *Aggregator {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// Store returns the store the aggregator writes to.
func (a *Aggregator) Store() *Store {
	return a.store
}

type branchFetch struct {
	branch Branch
	fetch  func(ctx context.Context) ([]RawRecord, error)
}

type branchResult struct {
	records []RawRecord
	err     error
}

// FetchAll runs one aggregation cycle. Failed branches contribute no items;
// if every branch fails the store is left as it was and a *FetchError is
// returned.
func (a *Aggregator) FetchAll(ctx context.Context) (*AggregateResult, error) {
	start := a.now()
	branches := a.branches()
	results := make([]branchResult, len(branches))

	var wg sync.WaitGroup
	for i, b := range branches {
		wg.Add(1)
		go func(i int, b branchFetch) {
			defer wg.Done()
			records, err := b.fetch(ctx)
			results[i] = branchResult{records: records, err: err}
		}(i, b)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &AggregateResult{FetchedAt: a.now()}
	var records []RawRecord
	for i, b := range branches {
		result.Attempted = append(result.Attempted, b.branch)
		if err := results[i].err; err != nil {
			result.Failed = append(result.Failed, &SourceError{Branch: b.branch, Err: err})
			a.metrics.Counter(observability.MetricSourceFailures, 1, observability.T("branch", string(b.branch)))
			a.logger.Warn("aggregation branch failed", "branch", b.branch, "error", err)
			continue
		}
		records = append(records, results[i].records...)
	}

	if len(result.Failed) == len(branches) {
		a.metrics.Counter(observability.MetricAggregations, 1, observability.T("outcome", "failed"))
		return nil, &FetchError{Errors: result.Failed}
	}

	result.Items = a.normalizer.NormalizeAll(records)
	a.store.ReplaceAll(result.Items)

	outcome := "ok"
	if result.Partial() {
		outcome = "partial"
	}
	a.metrics.Counter(observability.MetricAggregations, 1, observability.T("outcome", outcome))
	a.metrics.Gauge(observability.MetricAggregatedItems, float64(len(result.Items)))
	a.logger.Debug("aggregation complete",
		"items", len(result.Items),
		"failed", len(result.Failed),
		"duration_ms", a.now().Sub(start).Milliseconds(),
	)

	if a.cache != nil {
		if err := a.cache.Save(ctx, Snapshot{Items: result.Items, FetchedAt: result.FetchedAt}); err != nil {
			a.logger.Warn("failed to cache snapshot", "error", err)
		}
	}

	failed := make([]string, 0, len(result.Failed))
	for _, f := range result.Failed {
		failed = append(failed, string(f.Branch))
	}
	publishEvents(ctx, a.publisher, a.logger, domain.NewAggregationRefreshedEvent(len(result.Items), failed))

	return result, nil
}

// LoadCached replaces the store with the cached snapshot.
func (a *Aggregator) LoadCached(ctx context.Context) (*AggregateResult, error) {
	if a.cache == nil {
		return nil, ErrNoSnapshot
	}
	snapshot, err := a.cache.Load(ctx)
	if err != nil {
		return nil, err
	}
	a.store.ReplaceAll(snapshot.Items)
	return &AggregateResult{
		Items:     snapshot.Items,
		FetchedAt: snapshot.FetchedAt,
		Cached:    true,
	}, nil
}

// branches lists the fetches of one cycle in merge order. Outlook is only
// attempted while it is connected.
func (a *Aggregator) branches() []branchFetch {
	var branches []branchFetch
	if a.tasks != nil {
		branches = append(branches, branchFetch{BranchLocalTasks, a.fetchLocalTasks})
	}
	if a.google != nil {
		branches = append(branches, branchFetch{BranchGoogle, a.fetchGoogle})
	}
	if a.outlook != nil && a.connections != nil && a.connections.IsConnected(domain.ProviderOutlook) {
		branches = append(branches, branchFetch{BranchOutlook, a.fetchOutlook})
	}
	if a.events != nil {
		branches = append(branches, branchFetch{BranchEventModel, a.fetchEventModel})
	}
	return branches
}

func (a *Aggregator) fetchLocalTasks(ctx context.Context) ([]RawRecord, error) {
	tasks, err := a.tasks.List(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]RawRecord, 0, len(tasks))
	for _, t := range tasks {
		records = append(records, t)
	}
	return records, nil
}

func (a *Aggregator) fetchGoogle(ctx context.Context) ([]RawRecord, error) {
	snapshot, err := a.google.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, nil
	}
	records := make([]RawRecord, 0, len(snapshot.Tasks)+len(snapshot.Events))
	for _, t := range snapshot.Tasks {
		records = append(records, t)
	}
	for _, e := range snapshot.Events {
		records = append(records, e)
	}
	return records, nil
}

func (a *Aggregator) fetchOutlook(ctx context.Context) ([]RawRecord, error) {
	result, err := a.outlook.Sync(ctx)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	records := make([]RawRecord, 0, len(result.PullTasks.Tasks)+len(result.PullEvents.Events))
	for _, t := range result.PullTasks.Tasks {
		records = append(records, t)
	}
	for _, e := range result.PullEvents.Events {
		records = append(records, e)
	}
	return records, nil
}

func (a *Aggregator) fetchEventModel(ctx context.Context) ([]RawRecord, error) {
	events, err := a.events.List(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]RawRecord, 0, len(events))
	for _, e := range events {
		records = append(records, e)
	}
	return records, nil
}
