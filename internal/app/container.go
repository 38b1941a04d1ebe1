package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	calendarApp "github.com/huynnh/calsync/internal/calendar/application"
	calendarSubs "github.com/huynnh/calsync/internal/calendar/application/subscribers"
	calendarWorkers "github.com/huynnh/calsync/internal/calendar/application/workers"
	calendarDomain "github.com/huynnh/calsync/internal/calendar/domain"
	"github.com/huynnh/calsync/internal/calendar/infrastructure/backend"
	"github.com/huynnh/calsync/internal/calendar/infrastructure/cache"
	"github.com/huynnh/calsync/internal/calendar/infrastructure/eventmodel"
	"github.com/huynnh/calsync/internal/calendar/infrastructure/google"
	"github.com/huynnh/calsync/internal/calendar/infrastructure/local"
	"github.com/huynnh/calsync/internal/calendar/infrastructure/outlook"
	calendarPersistence "github.com/huynnh/calsync/internal/calendar/infrastructure/persistence"
	identityApp "github.com/huynnh/calsync/internal/identity/application"
	"github.com/huynnh/calsync/internal/identity/infrastructure/authclient"
	identityPersistence "github.com/huynnh/calsync/internal/identity/infrastructure/persistence"
	notificationApp "github.com/huynnh/calsync/internal/notification/application"
	notificationClient "github.com/huynnh/calsync/internal/notification/infrastructure/client"
	"github.com/huynnh/calsync/internal/shared/infrastructure/crypto"
	"github.com/huynnh/calsync/internal/shared/infrastructure/database"
	"github.com/huynnh/calsync/internal/shared/infrastructure/eventbus"
	"github.com/huynnh/calsync/internal/shared/infrastructure/migrations"
	"github.com/huynnh/calsync/pkg/config"
	"github.com/huynnh/calsync/pkg/observability"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.InMemoryMetrics
	Health  *observability.HealthRegistry

	// Storage
	DB          *sql.DB
	RedisClient *redis.Client

	// Session
	Session *identityApp.Session
	Backend *backend.Client

	// Backend clients
	TaskClient         *local.Client
	EventClient        *eventmodel.Client
	GoogleClient       *google.Client
	OutlookClient      *outlook.Client
	NotificationClient *notificationClient.Client

	// Calendar
	Normalizer    *calendarApp.Normalizer
	Store         *calendarApp.Store
	SnapshotCache calendarApp.SnapshotCache
	Aggregator    *calendarApp.Aggregator
	Orchestrator  *calendarApp.Orchestrator
	Projector     *calendarApp.Projector
	TaskService   *calendarApp.TaskService
	EventService  *calendarApp.EventService
	SyncStateRepo calendarDomain.SyncStateRepository

	// Notifications
	NotificationService *notificationApp.Service

	// Events
	EventBus           *eventbus.InProcessBus
	EventPublisher     eventbus.Publisher
	DomainPublisher    *eventbus.DomainEventPublisher
	RefreshSubscriber  *calendarSubs.RefreshSubscriber
	ActivitySubscriber *calendarSubs.ActivitySubscriber
	SyncStateSub       *calendarSubs.SyncStateSubscriber

	schedMu   sync.Mutex
	Scheduler *calendarWorkers.Scheduler
}

// NewContainer creates and wires all dependencies. Redis and RabbitMQ are
// optional: outside production an unreachable one is logged and skipped.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewInMemoryMetrics(),
		Health:  observability.NewHealthRegistry(),
	}

	// Open the session database
	db, err := database.OpenSQLite(ctx, cfg.SessionDBPath)
	if err != nil {
		return nil, err
	}
	applied, err := migrations.RunSQLite(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if len(applied) > 0 {
		logger.Info("SQLite migrations applied", "migrations", applied)
	}
	c.DB = db
	c.Health.Register("sqlite", observability.PingChecker("sqlite", observability.HealthStatusUnhealthy, db.PingContext))

	var sealer crypto.Sealer
	if cfg.EncryptionKey != "" {
		aead, err := crypto.NewAESGCMFromBase64Key(cfg.EncryptionKey)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("invalid CALSYNC_ENCRYPTION_KEY: %w", err)
		}
		sealer = aead
	}

	// Event publishing
	if err := c.initEvents(cfg, logger); err != nil {
		c.Close()
		return nil, err
	}

	// Session and backend
	c.Session = identityApp.NewSession(identityPersistence.NewSQLiteTokenStore(db, sealer), logger).
		WithPublisher(c.DomainPublisher)
	c.Backend = backend.NewClient(backend.Config{
		BaseURL:         cfg.APIBaseURL,
		Timeout:         cfg.HTTPTimeout,
		RateLimit:       cfg.HTTPRateLimit,
		Burst:           cfg.HTTPBurst,
		MaxRetries:      cfg.HTTPMaxRetries,
		BreakerFailures: cfg.BreakerFailures,
		BreakerTimeout:  cfg.BreakerTimeout,
	}, c.Session, logger).WithMetrics(c.Metrics)
	c.Session.SetAuth(authclient.NewClient(c.Backend))

	c.TaskClient = local.NewClient(c.Backend)
	c.EventClient = eventmodel.NewClient(c.Backend)
	c.GoogleClient = google.NewClient(c.Backend)
	c.OutlookClient = outlook.NewClient(c.Backend)
	c.NotificationClient = notificationClient.NewClient(c.Backend)

	// Snapshot cache
	c.SnapshotCache, err = c.initCache(ctx, cfg, logger)
	if err != nil {
		c.Close()
		return nil, err
	}

	// Calendar
	c.Normalizer = calendarApp.NewNormalizer(cfg.Location)
	c.Store = calendarApp.NewStore()
	c.Orchestrator = calendarApp.NewOrchestrator(c.GoogleClient, c.OutlookClient).
		WithPublisher(c.DomainPublisher).
		WithMetrics(c.Metrics).
		WithLogger(logger)
	c.Aggregator = calendarApp.NewAggregator(
		c.TaskClient,
		c.EventClient,
		c.GoogleClient,
		c.OutlookClient,
		c.Orchestrator,
		c.Store,
		c.Normalizer,
	).
		WithCache(c.SnapshotCache).
		WithPublisher(c.DomainPublisher).
		WithMetrics(c.Metrics).
		WithLogger(logger)
	c.Projector = calendarApp.NewProjector(c.Store, cfg.WeekStart, cfg.Location)
	c.TaskService = calendarApp.NewTaskService(c.TaskClient, c.NotificationClient, c.Orchestrator, c.Normalizer, logger)
	c.EventService = calendarApp.NewEventService(c.EventClient, c.NotificationClient, c.Normalizer, cfg.Location, logger)
	c.SyncStateRepo = calendarPersistence.NewSQLiteSyncStateRepository(db)

	// Notifications
	c.NotificationService = notificationApp.NewService(c.NotificationClient, logger).
		WithPublisher(c.DomainPublisher).
		WithMetrics(c.Metrics)

	// Event subscribers
	c.RefreshSubscriber = calendarSubs.NewRefreshSubscriber(c.Aggregator, logger)
	c.RefreshSubscriber.SetEnabled(!cfg.DisableAutoRefresh)
	c.ActivitySubscriber = calendarSubs.NewActivitySubscriber(logger)
	c.SyncStateSub = calendarSubs.NewSyncStateSubscriber(c.SyncStateRepo, logger)
	c.EventBus.RegisterConsumer(c.RefreshSubscriber)
	c.EventBus.RegisterConsumer(c.ActivitySubscriber)
	c.EventBus.RegisterConsumer(c.SyncStateSub)

	logger.Debug("container initialized",
		"api_base_url", cfg.APIBaseURL,
		"session_db", cfg.SessionDBPath,
		"redis", c.RedisClient != nil,
	)
	return c, nil
}

func (c *Container) initEvents(cfg *config.Config, logger *slog.Logger) error {
	c.EventBus = eventbus.NewInProcessBus(logger)
	publishers := []eventbus.Publisher{c.EventBus}

	if cfg.RabbitMQURL != "" {
		rabbit, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
		if err != nil {
			if cfg.IsProduction() {
				return err
			}
			logger.Warn("RabbitMQ not available, publishing in process only", "error", err)
		} else {
			publishers = append(publishers, rabbit)
		}
	}

	c.EventPublisher = eventbus.NewFanoutPublisher(logger, publishers...)
	c.DomainPublisher = eventbus.NewDomainEventPublisher(c.EventPublisher)
	return nil
}

func (c *Container) initCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (calendarApp.SnapshotCache, error) {
	if cfg.RedisURL == "" {
		return cache.NewMemoryCache(cfg.SnapshotTTL), nil
	}

	client, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		if cfg.IsProduction() {
			return nil, err
		}
		logger.Warn("Redis not available, snapshot cache will use in-memory fallback", "error", err)
		return cache.NewMemoryCache(cfg.SnapshotTTL), nil
	}

	c.RedisClient = client
	c.Health.Register("redis", observability.PingChecker("redis", observability.HealthStatusDegraded, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}))
	logger.Info("connected to Redis")
	return cache.NewRedisCache(client, cfg.AppEnv, cfg.SnapshotTTL), nil
}

// Bootstrap restores the stored session and, when signed in, the provider
// connection states.
func (c *Container) Bootstrap(ctx context.Context) error {
	if _, err := c.Session.Hydrate(ctx); err != nil {
		return err
	}
	if err := c.Orchestrator.Hydrate(ctx); err != nil {
		c.Logger.Debug("provider hydrate incomplete", "error", err)
	}
	return nil
}

// StartBackgroundSync attaches a scheduler that syncs every connected
// provider each CALSYNC_SYNC_INTERVAL until ctx is cancelled.
func (c *Container) StartBackgroundSync(ctx context.Context) *calendarWorkers.Scheduler {
	c.schedMu.Lock()
	defer c.schedMu.Unlock()
	if c.Scheduler != nil {
		return c.Scheduler
	}
	interval := c.Config.SyncInterval
	if interval <= 0 {
		interval = calendarWorkers.DefaultSyncInterval
	}
	c.Scheduler = calendarWorkers.NewScheduler(ctx, c.Orchestrator, interval, c.Logger)
	c.Orchestrator.SetScheduler(c.Scheduler)
	return c.Scheduler
}

// StartNotificationWatcher polls notifications in the background until ctx
// is cancelled.
func (c *Container) StartNotificationWatcher(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- c.NotificationService.Watch(ctx, c.Config.NotificationPollInterval)
	}()
	return done
}

// Close releases every resource.
func (c *Container) Close() {
	c.schedMu.Lock()
	if c.Scheduler != nil {
		c.Orchestrator.SetScheduler(nil)
		c.Scheduler.Shutdown()
		c.Scheduler = nil
	}
	c.schedMu.Unlock()

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Logger.Warn("error closing SQLite connection", "error", err)
		}
	}
}
