package application

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/huynnh/calsync/internal/calendar/domain"
	"github.com/huynnh/calsync/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	mu     sync.Mutex
	tasks  []string
	events []string
	err    error
}

func (n *fakeNotifier) TaskCreated(ctx context.Context, id string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tasks = append(n.tasks, id)
	return n.err
}

func (n *fakeNotifier) EventCreated(ctx context.Context, id string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, id)
	return n.err
}

type staticPushTarget struct {
	provider domain.Provider
	client   ProviderAPI
}

func (s staticPushTarget) ConnectedProvider() (domain.Provider, bool) {
	return s.provider, s.provider != ""
}

func (s staticPushTarget) Client(p domain.Provider) ProviderAPI {
	if p != s.provider {
		return nil
	}
	return s.client
}

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newTaskServiceFixture(push PushTarget, logger *slog.Logger) (*TaskService, *fakeTasks, *fakeNotifier) {
	tasks := &fakeTasks{createID: "42"}
	notifier := &fakeNotifier{}
	if logger == nil {
		logger = observability.Discard()
	}
	svc := NewTaskService(tasks, notifier, push, NewNormalizer(time.UTC), logger)
	svc.now = func() time.Time { return fixedNow }
	return svc, tasks, notifier
}

func TestTaskService_CreateRejectsPastEndBeforeAnyRequest(t *testing.T) {
	google := newFakeProvider(domain.ProviderGoogle)
	svc, tasks, notifier := newTaskServiceFixture(staticPushTarget{domain.ProviderGoogle, google}, nil)

	_, err := svc.Create(context.Background(), TaskInput{
		Name:    "Report",
		EndTime: fixedNow.Add(-time.Hour),
	})

	require.Error(t, err)
	assert.Equal(t, domain.MsgTaskEndInPast, err.Error())
	assert.True(t, IsValidationError(err))
	assert.Zero(t, tasks.callCount())
	assert.Empty(t, notifier.tasks)
	assert.Empty(t, google.Calls())
}

func TestTaskService_CreateCompletedMayEndInPast(t *testing.T) {
	svc, tasks, _ := newTaskServiceFixture(nil, nil)

	_, err := svc.Create(context.Background(), TaskInput{
		Name:    "Done already",
		EndTime: fixedNow.Add(-time.Hour),
		Status:  domain.StatusCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, tasks.callCount())
}

func TestTaskService_CreateValidation(t *testing.T) {
	tests := []struct {
		name string
		in   TaskInput
		msg  string
	}{
		{"missing name", TaskInput{Name: "  ", EndTime: fixedNow.Add(time.Hour)}, domain.MsgTaskNameRequired},
		{"end before start", TaskInput{Name: "x", StartTime: fixedNow.Add(2 * time.Hour), EndTime: fixedNow.Add(time.Hour)}, domain.MsgEndBeforeStart},
		{"bad status", TaskInput{Name: "x", EndTime: fixedNow.Add(time.Hour), Status: "sleeping"}, domain.MsgInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, tasks, _ := newTaskServiceFixture(nil, nil)
			_, err := svc.Create(context.Background(), tt.in)
			require.Error(t, err)
			assert.Equal(t, tt.msg, err.Error())
			assert.Zero(t, tasks.callCount())
		})
	}
}

func TestTaskService_CreateSetsDueToEndAndNotifies(t *testing.T) {
	svc, tasks, notifier := newTaskServiceFixture(nil, nil)
	start := fixedNow.Add(time.Hour)
	end := fixedNow.Add(3 * time.Hour)

	item, err := svc.Create(context.Background(), TaskInput{
		Name:      "Write summary",
		Priority:  domain.PriorityHigh,
		StartTime: start,
		EndTime:   end,
	})
	require.NoError(t, err)

	require.Len(t, tasks.creates, 1)
	payload := tasks.creates[0]
	assert.Equal(t, "pending", payload.Status)
	assert.Equal(t, "high", payload.Priority)
	require.NotNil(t, payload.DueDate)
	assert.True(t, payload.DueDate.Equal(end))

	assert.Equal(t, "local_task_42", item.ID)
	assert.Equal(t, "42", item.NativeID)
	assert.Equal(t, domain.SourceLocal, item.Source)
	assert.Equal(t, []string{"42"}, notifier.tasks)
}

func TestTaskService_CreatePushesToConnectedProvider(t *testing.T) {
	outlook := newFakeProvider(domain.ProviderOutlook)
	svc, _, _ := newTaskServiceFixture(staticPushTarget{domain.ProviderOutlook, outlook}, nil)

	_, err := svc.Create(context.Background(), TaskInput{
		Name:      "Push me",
		StartTime: fixedNow.Add(time.Hour),
		EndTime:   fixedNow.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, []pushCall{{id: "42", asEvent: true}}, outlook.pushes)
}

func TestTaskService_CreateStartOnlyPushesAsTask(t *testing.T) {
	google := newFakeProvider(domain.ProviderGoogle)
	svc, tasks, _ := newTaskServiceFixture(staticPushTarget{domain.ProviderGoogle, google}, nil)

	item, err := svc.Create(context.Background(), TaskInput{
		Name:      "No end",
		StartTime: fixedNow.Add(time.Hour),
	})
	require.NoError(t, err)

	require.Len(t, tasks.creates, 1)
	assert.Nil(t, tasks.creates[0].EndTime)
	assert.Nil(t, tasks.creates[0].DueDate)
	assert.Nil(t, item.EndTime)
	assert.Equal(t, []pushCall{{id: "42", asEvent: false}}, google.pushes)
}

func TestTaskService_CreateWithoutProviderDoesNotPush(t *testing.T) {
	svc, tasks, _ := newTaskServiceFixture(staticPushTarget{}, nil)
	_, err := svc.Create(context.Background(), TaskInput{Name: "Local only", EndTime: fixedNow.Add(time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, 1, tasks.callCount())
}

func TestTaskService_PushAndNotifyFailuresAreLoggedOnly(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	google := newFakeProvider(domain.ProviderGoogle)
	google.failOn["push_item"] = errBackend
	svc, _, notifier := newTaskServiceFixture(staticPushTarget{domain.ProviderGoogle, google}, logger)
	notifier.err = errBackend

	item, err := svc.Create(context.Background(), TaskInput{Name: "Resilient", EndTime: fixedNow.Add(time.Hour)})
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Contains(t, buf.String(), "push to provider failed")
	assert.Contains(t, buf.String(), "task notification failed")
}

func TestTaskService_CreateFailureHidesCause(t *testing.T) {
	svc, tasks, notifier := newTaskServiceFixture(nil, nil)
	tasks.err = errBackend

	_, err := svc.Create(context.Background(), TaskInput{Name: "x", EndTime: fixedNow.Add(time.Hour)})
	require.Error(t, err)
	assert.Equal(t, MsgTaskCreateFailed, err.Error())
	assert.ErrorIs(t, err, errBackend)
	assert.False(t, IsValidationError(err))
	assert.Equal(t, MsgTaskCreateFailed, ErrorText(err, "fallback"))
	assert.Empty(t, notifier.tasks)
}

func TestTaskService_UpdateValidatesAndReplaces(t *testing.T) {
	svc, tasks, _ := newTaskServiceFixture(nil, nil)

	_, err := svc.Update(context.Background(), "5", TaskInput{Name: "", EndTime: fixedNow.Add(time.Hour)})
	require.Error(t, err)
	assert.Zero(t, tasks.callCount())

	item, err := svc.Update(context.Background(), "5", TaskInput{Name: "Renamed", EndTime: fixedNow.Add(time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, "local_task_5", item.ID)
	assert.Equal(t, "Renamed", tasks.updates["5"].TaskName)
}

func TestTaskService_StatusTransitionsAndLists(t *testing.T) {
	svc, tasks, _ := newTaskServiceFixture(nil, nil)
	tasks.records = []LocalTaskRecord{{ID: "1", TaskName: "a"}, {ID: "2", TaskName: "b", Status: "completed"}}
	ctx := context.Background()

	done, err := svc.Complete(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, done.Status)

	cancelled, err := svc.Cancel(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.StatusPending, list[0].Status)

	got, err := svc.Get(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "b", got.Name)

	require.NoError(t, svc.Delete(ctx, "2"))

	tasks.err = errBackend
	_, err = svc.Upcoming(ctx)
	assert.True(t, errors.Is(err, errBackend))
}
