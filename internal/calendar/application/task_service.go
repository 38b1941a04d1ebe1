package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/huynnh/calsync/internal/calendar/domain"
)

// User-facing failure messages.
const (
	MsgTaskCreateFailed = "Không thể tạo công việc mới."
	MsgEventSaveFailed  = "Không thể lưu sự kiện."
)

// OperationError hides a transport or backend failure behind a fixed
// user-facing message. The cause stays reachable through errors.Is/As.
type OperationError struct {
	Message string
	Err     error
}

func (e *OperationError) Error() string {
	return e.Message
}

// UserMessage returns the fixed message.
func (e *OperationError) UserMessage() string {
	return e.Message
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// PushTarget exposes the provider a new local item should be pushed to.
type PushTarget interface {
	ConnectedProvider() (domain.Provider, bool)
	Client(provider domain.Provider) ProviderAPI
}

// TaskInput is a task as entered by the user.
type TaskInput struct {
	Name        string
	Description string
	Priority    domain.Priority
	StartTime   time.Time
	EndTime     time.Time
	Status      domain.Status
}

func (in TaskInput) payload() TaskPayload {
	p := TaskPayload{
		TaskName:    in.Name,
		Description: in.Description,
		Priority:    string(domain.ParsePriority(string(in.Priority))),
		Status:      string(in.Status),
	}
	if !in.StartTime.IsZero() {
		start := in.StartTime
		p.StartTime = &start
	}
	if !in.EndTime.IsZero() {
		end := in.EndTime
		p.EndTime = &end
		// The due date always follows the end time.
		due := in.EndTime
		p.DueDate = &due
	}
	return p
}

// TaskService manages local tasks.
type TaskService struct {
	tasks      TaskAPI
	notifier   CreationNotifier
	push       PushTarget
	normalizer *Normalizer
	logger     *slog.Logger
	now        func() time.Time
}

// NewTaskService creates a task service. notifier and push may be nil.
func NewTaskService(tasks TaskAPI, notifier CreationNotifier, push PushTarget, normalizer *Normalizer, logger *slog.Logger) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	if normalizer == nil {
		normalizer = NewNormalizer(nil)
	}
	return &TaskService{
		tasks:      tasks,
		notifier:   notifier,
		push:       push,
		normalizer: normalizer,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *TaskService) validate(in *TaskInput) error {
	if in.Status == "" {
		in.Status = domain.StatusPending
	}
	return domain.ValidateTaskSchedule(in.Name, in.StartTime, in.EndTime, in.Status, s.now())
}

// Create validates and creates a task, schedules its reminder and pushes it
// to the connected provider. Reminder and push failures are logged only.
func (s *TaskService) Create(ctx context.Context, in TaskInput) (*domain.CalendarItem, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}

	created, err := s.tasks.Create(ctx, in.payload())
	if err != nil {
		s.logger.Warn("task create failed", "error", err)
		return nil, &OperationError{Message: MsgTaskCreateFailed, Err: err}
	}
	item, _ := s.normalizer.Normalize(*created)

	if s.notifier != nil {
		if err := s.notifier.TaskCreated(ctx, item.NativeID); err != nil {
			s.logger.Warn("task notification failed", "task_id", item.NativeID, "error", err)
		}
	}
	s.pushToProvider(ctx, item)
	return &item, nil
}

func (s *TaskService) pushToProvider(ctx context.Context, item domain.CalendarItem) {
	if s.push == nil {
		return
	}
	provider, ok := s.push.ConnectedProvider()
	if !ok || !item.CanPushTo(provider) {
		return
	}
	client := s.push.Client(provider)
	if client == nil {
		return
	}
	if err := client.PushItem(ctx, item.NativeID, item.PushesAsEvent()); err != nil {
		s.logger.Warn("push to provider failed",
			"provider", provider,
			"task_id", item.NativeID,
			"as_event", item.PushesAsEvent(),
			"error", err,
		)
	}
}

// Update validates and replaces a task.
func (s *TaskService) Update(ctx context.Context, id string, in TaskInput) (*domain.CalendarItem, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}
	rec, err := s.tasks.Update(ctx, id, in.payload())
	if err != nil {
		return nil, err
	}
	return s.one(rec), nil
}

// Get returns one task.
func (s *TaskService) Get(ctx context.Context, id string) (*domain.CalendarItem, error) {
	rec, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.one(rec), nil
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	return s.tasks.Delete(ctx, id)
}

// Complete marks a task completed.
func (s *TaskService) Complete(ctx context.Context, id string) (*domain.CalendarItem, error) {
	rec, err := s.tasks.Complete(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.one(rec), nil
}

// Cancel marks a task cancelled.
func (s *TaskService) Cancel(ctx context.Context, id string) (*domain.CalendarItem, error) {
	rec, err := s.tasks.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.one(rec), nil
}

// List returns every task.
func (s *TaskService) List(ctx context.Context) ([]domain.CalendarItem, error) {
	return s.many(s.tasks.List(ctx))
}

// Upcoming returns tasks that have not started.
func (s *TaskService) Upcoming(ctx context.Context) ([]domain.CalendarItem, error) {
	return s.many(s.tasks.Upcoming(ctx))
}

// CompletedList returns completed tasks.
func (s *TaskService) CompletedList(ctx context.Context) ([]domain.CalendarItem, error) {
	return s.many(s.tasks.Completed(ctx))
}

// CancelledList returns cancelled tasks.
func (s *TaskService) CancelledList(ctx context.Context) ([]domain.CalendarItem, error) {
	return s.many(s.tasks.Cancelled(ctx))
}

func (s *TaskService) one(rec *LocalTaskRecord) *domain.CalendarItem {
	if rec == nil {
		return nil
	}
	item, _ := s.normalizer.Normalize(*rec)
	return &item
}

func (s *TaskService) many(recs []LocalTaskRecord, err error) ([]domain.CalendarItem, error) {
	if err != nil {
		return nil, err
	}
	items := make([]domain.CalendarItem, 0, len(recs))
	for _, rec := range recs {
		item, _ := s.normalizer.Normalize(rec)
		items = append(items, item)
	}
	return items, nil
}

// IsValidationError reports whether err was raised before any request.
func IsValidationError(err error) bool {
	var v *domain.ValidationError
	return errors.As(err, &v)
}
