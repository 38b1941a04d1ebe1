package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	internalApp "github.com/huynnh/calsync/internal/app"
	calendarApp "github.com/huynnh/calsync/internal/calendar/application"
	calendarDomain "github.com/huynnh/calsync/internal/calendar/domain"
	"github.com/huynnh/calsync/internal/calendar/infrastructure/backend"
	identityApp "github.com/huynnh/calsync/internal/identity/application"
	notificationApp "github.com/huynnh/calsync/internal/notification/application"
	"github.com/huynnh/calsync/pkg/config"
	"github.com/huynnh/calsync/pkg/observability"
)

// ErrNotInitialized is returned by commands run without an App.
var ErrNotInitialized = errors.New("application not initialized")

// ErrSignInRequired is returned by commands that need a session.
var ErrSignInRequired = errors.New("not signed in, run `calsync auth login` first")

// App holds the CLI application dependencies.
type App struct {
	Config        *config.Config
	Session       *identityApp.Session
	Tasks         *calendarApp.TaskService
	Events        *calendarApp.EventService
	Aggregator    *calendarApp.Aggregator
	Projector     *calendarApp.Projector
	Orchestrator  *calendarApp.Orchestrator
	Notifications *notificationApp.Service
	SyncStates    calendarDomain.SyncStateRepository
	Health        *observability.HealthRegistry

	// Location is the zone days are computed in.
	Location *time.Location
	// OfflineFallback serves the cached snapshot when every fetch fails.
	OfflineFallback bool
}

// NewApp creates a new CLI application.
func NewApp(
	session *identityApp.Session,
	tasks *calendarApp.TaskService,
	events *calendarApp.EventService,
	aggregator *calendarApp.Aggregator,
	projector *calendarApp.Projector,
	orchestrator *calendarApp.Orchestrator,
	notifications *notificationApp.Service,
) *App {
	return &App{
		Session:       session,
		Tasks:         tasks,
		Events:        events,
		Aggregator:    aggregator,
		Projector:     projector,
		Orchestrator:  orchestrator,
		Notifications: notifications,
		Location:      time.Local,
	}
}

// NewAppFromContainer creates a CLI application backed by the container.
func NewAppFromContainer(c *internalApp.Container) *App {
	a := NewApp(
		c.Session,
		c.TaskService,
		c.EventService,
		c.Aggregator,
		c.Projector,
		c.Orchestrator,
		c.NotificationService,
	)
	a.SetSyncStates(c.SyncStateRepo)
	a.Health = c.Health
	a.Config = c.Config
	if c.Config != nil {
		if c.Config.Location != nil {
			a.Location = c.Config.Location
		}
		a.OfflineFallback = c.Config.OfflineFallback
	}
	return a
}

// SetSyncStates sets the persisted sync state repository.
func (a *App) SetSyncStates(repo calendarDomain.SyncStateRepository) {
	a.SyncStates = repo
}

// RequireSession fails unless the user is signed in.
func (a *App) RequireSession() error {
	if a.Session == nil || !a.Session.Authenticated() {
		return ErrSignInRequired
	}
	return nil
}

// Now returns the current time in the display location.
func (a *App) Now() time.Time {
	return time.Now().In(a.Location)
}

// LoadCalendar fills the store for display. With offline set it reads the
// snapshot cache only. Otherwise it fetches every source and falls back to
// the cache when every source fails and the fallback is enabled.
func (a *App) LoadCalendar(ctx context.Context, offline bool) (*calendarApp.AggregateResult, error) {
	if a.Aggregator == nil {
		return nil, ErrNotInitialized
	}
	if offline {
		result, err := a.Aggregator.LoadCached(ctx)
		if err != nil {
			if errors.Is(err, calendarApp.ErrNoSnapshot) {
				return nil, errors.New("no cached calendar yet, run once without --offline")
			}
			return nil, fmt.Errorf("failed to load cached calendar: %w", err)
		}
		return result, nil
	}

	if err := a.RequireSession(); err != nil {
		return nil, err
	}
	result, err := a.Aggregator.FetchAll(ctx)
	if err == nil {
		return result, nil
	}
	var fetchErr *calendarApp.FetchError
	if a.OfflineFallback && errors.As(err, &fetchErr) {
		if cached, cacheErr := a.Aggregator.LoadCached(ctx); cacheErr == nil {
			return cached, nil
		}
	}
	return nil, fmt.Errorf("failed to load calendar: %w", err)
}

var app *App

// SetApp sets the global app instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global app instance.
func GetApp() *App {
	return app
}

// ItemError wraps a failed task or event operation. A backend 404 becomes
// "<kind> <id> not found".
func ItemError(action, kind, id string, err error) error {
	if backend.IsNotFound(err) {
		return fmt.Errorf("%s %s not found: %w", kind, id, err)
	}
	return fmt.Errorf("failed to %s %s: %w", action, kind, err)
}
