package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/huynnh/calsync/internal/notification/domain"
	sharedApplication "github.com/huynnh/calsync/internal/shared/application"
	sharedDomain "github.com/huynnh/calsync/internal/shared/domain"
	"github.com/huynnh/calsync/pkg/observability"
)

// DefaultPollInterval is how often Watch polls the backend.
const DefaultPollInterval = 60 * time.Second

// API is the backend notifications endpoints.
type API interface {
	List(ctx context.Context) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id int64) error
	Dismiss(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context) error
}

// EventPublisher publishes notification events.
type EventPublisher interface {
	PublishDomainEvent(ctx context.Context, event sharedDomain.DomainEvent) error
}

// Service keeps the notification list and its unread count.
type Service struct {
	api       API
	publisher EventPublisher
	metrics   observability.Metrics
	logger    *slog.Logger

	mu    sync.Mutex
	items []domain.Notification
	seen  map[int64]struct{}
}

// NewService creates a notification service.
func NewService(api API, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		api:     api,
		metrics: observability.NoopMetrics{},
		logger:  logger,
		seen:    make(map[int64]struct{}),
	}
}

// WithPublisher sets the event publisher.
func (s *Service) WithPublisher(publisher EventPublisher) *Service {
	s.publisher = publisher
	return s
}

// WithMetrics sets the metrics sink.
func (s *Service) WithMetrics(metrics observability.Metrics) *Service {
	if metrics != nil {
		s.metrics = metrics
	}
	return s
}

// List fetches the notifications and replaces the cached list.
func (s *Service) List(ctx context.Context) ([]domain.Notification, error) {
	items, err := s.api.List(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return append([]domain.Notification(nil), items...), nil
}

// Cached returns the last fetched list.
func (s *Service) Cached() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Notification(nil), s.items...)
}

// UnreadCount counts unread entries of the cached list.
func (s *Service) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, item := range s.items {
		if item.Unread() {
			n++
		}
	}
	return n
}

// MarkRead marks one notification read.
func (s *Service) MarkRead(ctx context.Context, id int64) error {
	if err := s.api.MarkRead(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Status = domain.StatusRead
		}
	}
	s.mu.Unlock()
	return nil
}

// Dismiss removes a notification.
func (s *Service) Dismiss(ctx context.Context, id int64) error {
	if err := s.api.Dismiss(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	kept := s.items[:0]
	for _, item := range s.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	s.items = kept
	s.mu.Unlock()
	return nil
}

// MarkAllRead marks every notification read.
func (s *Service) MarkAllRead(ctx context.Context) error {
	if err := s.api.MarkAllRead(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	for i := range s.items {
		s.items[i].Status = domain.StatusRead
	}
	s.mu.Unlock()
	return nil
}

// Poll fetches once and publishes a received event per unread id not seen
// before. It returns the new notifications.
func (s *Service) Poll(ctx context.Context) ([]domain.Notification, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	var fresh []domain.Notification
	s.mu.Lock()
	for _, item := range items {
		if !item.Unread() {
			continue
		}
		if _, ok := s.seen[item.ID]; ok {
			continue
		}
		s.seen[item.ID] = struct{}{}
		fresh = append(fresh, item)
	}
	s.mu.Unlock()

	if len(fresh) == 0 {
		return nil, nil
	}
	s.metrics.Counter(observability.MetricNotificationsNew, int64(len(fresh)))
	events := make([]sharedDomain.DomainEvent, 0, len(fresh))
	for _, item := range fresh {
		events = append(events, domain.NewNotificationReceived(item))
	}
	s.publish(ctx, events...)
	return fresh, nil
}

// Watch polls immediately and then every interval until ctx is done. Poll
// failures are logged and the loop continues.
func (s *Service) Watch(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	s.logger.Info("notification watcher started", "interval", interval)

	s.pollOnce(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("notification watcher stopped")
			return ctx.Err()
		case <-ticker.C:
			s.pollOnce(ctx)
		}
	}
}

func (s *Service) pollOnce(ctx context.Context) {
	fresh, err := s.Poll(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Debug("notification poll failed", "error", err)
		}
		return
	}
	for _, n := range fresh {
		s.logger.Info("notification received", "notification_id", n.ID, "title", n.Title, "priority", n.Priority)
	}
}

func (s *Service) publish(ctx context.Context, events ...sharedDomain.DomainEvent) {
	if s.publisher == nil {
		return
	}
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(ctx))
	for _, event := range events {
		if err := s.publisher.PublishDomainEvent(ctx, event); err != nil {
			s.logger.Warn("failed to publish event", "routing_key", event.RoutingKey(), "error", err)
		}
	}
}
