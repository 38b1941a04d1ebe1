package application

import (
	"context"
	"errors"
	"sync"

	"github.com/huynnh/calsync/internal/calendar/domain"
	sharedDomain "github.com/huynnh/calsync/internal/shared/domain"
)

var errBackend = errors.New("backend exploded")

type fakeTasks struct {
	mu       sync.Mutex
	records  []LocalTaskRecord
	err      error
	creates  []TaskPayload
	updates  map[string]TaskPayload
	calls    int
	createID string
}

func (f *fakeTasks) List(ctx context.Context) ([]LocalTaskRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.records, f.err
}

func (f *fakeTasks) Get(ctx context.Context, id string) (*LocalTaskRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.records {
		if r.ID.String() == id {
			rec := r
			return &rec, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeTasks) Create(ctx context.Context, p TaskPayload) (*LocalTaskRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.creates = append(f.creates, p)
	if f.err != nil {
		return nil, f.err
	}
	id := f.createID
	if id == "" {
		id = "1"
	}
	rec := LocalTaskRecord{ID: domain.RecordID(id), TaskName: p.TaskName, Priority: p.Priority, Status: p.Status}
	if p.StartTime != nil {
		rec.StartTime = p.StartTime.Format("2006-01-02T15:04:05Z07:00")
	}
	if p.EndTime != nil {
		rec.EndTime = p.EndTime.Format("2006-01-02T15:04:05Z07:00")
	}
	if p.DueDate != nil {
		rec.DueDate = p.DueDate.Format("2006-01-02T15:04:05Z07:00")
	}
	return &rec, nil
}

func (f *fakeTasks) Update(ctx context.Context, id string, p TaskPayload) (*LocalTaskRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.updates == nil {
		f.updates = make(map[string]TaskPayload)
	}
	f.updates[id] = p
	if f.err != nil {
		return nil, f.err
	}
	return &LocalTaskRecord{ID: domain.RecordID(id), TaskName: p.TaskName, Status: p.Status}, nil
}

func (f *fakeTasks) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *fakeTasks) Complete(ctx context.Context, id string) (*LocalTaskRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return &LocalTaskRecord{ID: domain.RecordID(id), Status: "completed"}, f.err
}

func (f *fakeTasks) Cancel(ctx context.Context, id string) (*LocalTaskRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return &LocalTaskRecord{ID: domain.RecordID(id), Status: "cancelled"}, f.err
}

func (f *fakeTasks) Upcoming(ctx context.Context) ([]LocalTaskRecord, error) {
	return f.List(ctx)
}

func (f *fakeTasks) Completed(ctx context.Context) ([]LocalTaskRecord, error) {
	return f.List(ctx)
}

func (f *fakeTasks) Cancelled(ctx context.Context) ([]LocalTaskRecord, error) {
	return f.List(ctx)
}

func (f *fakeTasks) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeEvents struct {
	mu      sync.Mutex
	records []EventModelRecord
	err     error
	creates []EventPayload
	calls   int
}

func (f *fakeEvents) List(ctx context.Context) ([]EventModelRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.records, f.err
}

func (f *fakeEvents) Get(ctx context.Context, id string) (*EventModelRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &EventModelRecord{ID: domain.RecordID(id)}, nil
}

func (f *fakeEvents) Create(ctx context.Context, p EventPayload) (*EventModelRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.creates = append(f.creates, p)
	if f.err != nil {
		return nil, f.err
	}
	return &EventModelRecord{ID: "7", Title: p.Title, Start: p.Start, End: p.End, Location: p.Location}, nil
}

func (f *fakeEvents) Update(ctx context.Context, id string, p EventPayload) (*EventModelRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &EventModelRecord{ID: domain.RecordID(id), Title: p.Title, Start: p.Start, End: p.End}, nil
}

func (f *fakeEvents) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *fakeEvents) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type pushCall struct {
	id      string
	asEvent bool
}

// journal is a call log shared between fakes.
type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(entry string) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]string, len(j.entries))
	copy(out, j.entries)
	return out
}

// fakeProvider records every call in order. A step listed in failOn fails;
// when gate is set each cycle call blocks until it is closed.
type fakeProvider struct {
	provider domain.Provider

	mu            sync.Mutex
	calls         []string
	pushes        []pushCall
	failOn        map[string]error
	connected     bool
	checkErr      error
	connectResult *ConnectResult
	connectErr    error
	disconnectErr error
	gate          chan struct{}
	started       chan struct{}

	snapshot *GoogleSnapshot
	outlook  *OutlookSyncResult
	journal  *journal
}

func newFakeProvider(p domain.Provider) *fakeProvider {
	return &fakeProvider{
		provider:      p,
		failOn:        make(map[string]error),
		connectResult: &ConnectResult{Status: ConnectStatusAlreadyConnected},
	}
}

func (f *fakeProvider) record(call string) error {
	f.journal.add(string(f.provider) + ":" + call)
	f.mu.Lock()
	f.calls = append(f.calls, call)
	err := f.failOn[call]
	gate, started := f.gate, f.started
	f.mu.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if gate != nil {
		<-gate
	}
	return err
}

func (f *fakeProvider) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeProvider) count(call string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeProvider) Provider() domain.Provider { return f.provider }

func (f *fakeProvider) CheckConnection(ctx context.Context) (bool, error) {
	f.journal.add(string(f.provider) + ":check")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "check")
	return f.connected, f.checkErr
}

func (f *fakeProvider) Connect(ctx context.Context) (*ConnectResult, error) {
	f.journal.add(string(f.provider) + ":connect")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "connect")
	if f.connectErr != nil {
		return nil, f.connectErr
	}
	return f.connectResult, nil
}

func (f *fakeProvider) Disconnect(ctx context.Context) error {
	f.journal.add(string(f.provider) + ":disconnect")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "disconnect")
	return f.disconnectErr
}

func (f *fakeProvider) PushItem(ctx context.Context, nativeID string, asEvent bool) error {
	f.journal.add(string(f.provider) + ":push_item")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "push_item")
	f.pushes = append(f.pushes, pushCall{id: nativeID, asEvent: asEvent})
	return f.failOn["push_item"]
}

func (f *fakeProvider) PullEvents(ctx context.Context) error { return f.record(StepPullEvents) }
func (f *fakeProvider) PushEvents(ctx context.Context) error { return f.record(StepPushEvents) }
func (f *fakeProvider) PullTasks(ctx context.Context) error  { return f.record(StepPullTasks) }
func (f *fakeProvider) PushTasks(ctx context.Context) error  { return f.record(StepPushTasks) }

func (f *fakeProvider) Snapshot(ctx context.Context) (*GoogleSnapshot, error) {
	if err := f.record(StepSnapshot); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.snapshot == nil {
		return &GoogleSnapshot{}, nil
	}
	return f.snapshot, nil
}

func (f *fakeProvider) Sync(ctx context.Context) (*OutlookSyncResult, error) {
	if err := f.record(StepSync); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.outlook == nil {
		return &OutlookSyncResult{}, nil
	}
	return f.outlook, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []sharedDomain.DomainEvent
}

func (p *recordingPublisher) PublishDomainEvent(ctx context.Context, event sharedDomain.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.RoutingKey())
	}
	return out
}

type staticConnections map[domain.Provider]bool

func (s staticConnections) IsConnected(p domain.Provider) bool { return s[p] }

type memoryCache struct {
	mu       sync.Mutex
	snapshot *Snapshot
	saves    int
}

func (c *memoryCache) Save(ctx context.Context, s Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = &s
	c.saves++
	return nil
}

func (c *memoryCache) Load(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot == nil {
		return nil, ErrNoSnapshot
	}
	return c.snapshot, nil
}
