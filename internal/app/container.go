// Package app wires the bounded contexts into a running application.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	resourceCommands "github.com/lenslate/darkroom/internal/resources/application/commands"
	resourceQueries "github.com/lenslate/darkroom/internal/resources/application/queries"
	resourceSubs "github.com/lenslate/darkroom/internal/resources/application/subscribers"
	resourcesDomain "github.com/lenslate/darkroom/internal/resources/domain"
	resourcesPersistence "github.com/lenslate/darkroom/internal/resources/infrastructure/persistence"
	sharedApplication "github.com/lenslate/darkroom/internal/shared/application"
	"github.com/lenslate/darkroom/internal/shared/infrastructure/database"
	_ "github.com/lenslate/darkroom/internal/shared/infrastructure/database/postgres" // Register Postgres driver
	_ "github.com/lenslate/darkroom/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/lenslate/darkroom/internal/shared/infrastructure/eventbus"
	"github.com/lenslate/darkroom/internal/shared/infrastructure/migrations"
	"github.com/lenslate/darkroom/internal/shared/infrastructure/outbox"
	sharedPersistence "github.com/lenslate/darkroom/internal/shared/infrastructure/persistence"
	timelineApp "github.com/lenslate/darkroom/internal/timeline/application"
	timelineQueries "github.com/lenslate/darkroom/internal/timeline/application/queries"
	timelineDomain "github.com/lenslate/darkroom/internal/timeline/domain"
	timelinePersistence "github.com/lenslate/darkroom/internal/timeline/infrastructure/persistence"
	workflowCommands "github.com/lenslate/darkroom/internal/workflow/application/commands"
	workflowQueries "github.com/lenslate/darkroom/internal/workflow/application/queries"
	workflowDomain "github.com/lenslate/darkroom/internal/workflow/domain"
	"github.com/lenslate/darkroom/internal/workflow/infrastructure/cache"
	workflowPersistence "github.com/lenslate/darkroom/internal/workflow/infrastructure/persistence"
	"github.com/lenslate/darkroom/internal/workflow/infrastructure/templates"
	"github.com/lenslate/darkroom/pkg/config"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Database
	DB       *pgxpool.Pool
	DBConn   database.Connection
	DBDriver database.Driver

	// Redis
	RedisClient *redis.Client

	// Repositories
	ProjectRepo   workflowDomain.ProjectRepository
	MilestoneRepo timelineDomain.MilestoneRepository
	LedgerRepo    resourcesDomain.LedgerRepository
	OutboxRepo    outbox.Repository

	// Publishers
	EventPublisher eventbus.Publisher

	// Shared services
	UnitOfWork    sharedApplication.UnitOfWork
	ProjectLocks  *sharedApplication.ProjectLocks
	Templates     *templates.Loader
	SnapshotCache *cache.RedisSnapshotCache

	// Timeline projection
	TimelineProjector *timelineApp.Projector

	// Workflow command handlers
	CreateProjectHandler       *workflowCommands.CreateProjectHandler
	AdvanceStageHandler        *workflowCommands.AdvanceStageHandler
	UpdateStageProgressHandler *workflowCommands.UpdateStageProgressHandler
	ArchiveProjectHandler      *workflowCommands.ArchiveProjectHandler

	// Workflow query handlers
	GetProjectSnapshotHandler *workflowQueries.GetProjectSnapshotHandler
	ListProjectsHandler       *workflowQueries.ListProjectsHandler

	// Timeline query handlers
	GetTimelineHandler          *timelineQueries.GetTimelineHandler
	GetEstimatedDeliveryHandler *timelineQueries.GetEstimatedDeliveryHandler

	// Resource handlers
	CreateLedgerHandler   *resourceCommands.CreateLedgerHandler
	EquipmentHandler      *resourceCommands.EquipmentHandler
	ConsumeStorageHandler *resourceCommands.ConsumeStorageHandler
	GetLedgerHandler      *resourceQueries.GetLedgerHandler

	// Event subscribers
	LedgerSubscriber  *resourceSubs.LedgerSubscriber
	InProcessEventBus *eventbus.InProcessEventBus

	// Outbox processor
	OutboxProcessor *outbox.Processor
}

// NewContainer creates and wires all dependencies against PostgreSQL,
// Redis, and RabbitMQ.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	c.DB = pool
	c.DBDriver = database.DriverPostgres
	logger.Info("connected to database")

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Connect to Redis (optional in development)
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			if !cfg.IsDevelopment() {
				pool.Close()
				return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
			}
			logger.Warn("invalid Redis URL, snapshot caching disabled", "error", err)
		} else {
			redisClient := redis.NewClient(opt)
			if err := redisClient.Ping(ctx).Err(); err != nil {
				if !cfg.IsDevelopment() {
					pool.Close()
					return nil, fmt.Errorf("failed to connect to Redis: %w", err)
				}
				logger.Warn("Redis not available, snapshot caching disabled", "error", err)
			} else {
				c.RedisClient = redisClient
				c.SnapshotCache = cache.NewRedisSnapshotCache(redisClient, cache.DefaultSnapshotTTL)
				logger.Info("connected to Redis")
			}
		}
	}

	c.ProjectRepo = workflowPersistence.NewPostgresProjectRepository(pool)
	c.MilestoneRepo = timelinePersistence.NewPostgresMilestoneRepository(pool)
	c.LedgerRepo = resourcesPersistence.NewPostgresLedgerRepository(pool)
	c.OutboxRepo = outbox.NewPostgresRepository(pool)
	c.UnitOfWork = sharedPersistence.NewPostgresUnitOfWork(pool)

	// Create event publisher with circuit breaker protection
	publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
	if err != nil {
		// Fall back to noop publisher in development
		if cfg.IsDevelopment() {
			logger.Warn("RabbitMQ not available, using noop publisher")
			c.EventPublisher = eventbus.NewNoopPublisher(logger)
		} else {
			pool.Close()
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
	} else {
		c.EventPublisher = eventbus.NewBreakerPublisher(publisher, eventbus.DefaultBreakerConfig(), logger)
	}

	if err := c.wireHandlers(); err != nil {
		c.Close()
		return nil, err
	}

	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, outbox.ProcessorConfig{
		PollInterval: cfg.OutboxPollInterval,
		BatchSize:    cfg.OutboxBatchSize,
		MaxRetries:   cfg.OutboxMaxRetries,
	}, logger)

	return c, nil
}

// NewLocalContainer creates a container for local mode with SQLite.
// This provides zero-config operation without PostgreSQL, Redis, or RabbitMQ.
func NewLocalContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	conn, err := initSQLiteConnection(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite: %w", err)
	}
	c.DBConn = conn
	c.DBDriver = database.DriverSQLite

	factory := NewRepositoryFactory(conn)

	projectRepo, err := factory.ProjectRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to create project repository: %w", err)
	}
	c.ProjectRepo = projectRepo

	milestoneRepo, err := factory.MilestoneRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to create milestone repository: %w", err)
	}
	c.MilestoneRepo = milestoneRepo

	ledgerRepo, err := factory.LedgerRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger repository: %w", err)
	}
	c.LedgerRepo = ledgerRepo

	outboxRepo, err := factory.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to create outbox repository: %w", err)
	}
	c.OutboxRepo = outboxRepo

	c.UnitOfWork = sharedPersistence.NewSQLiteUnitOfWork(conn.DB())

	// Local mode has no broker. Outbox messages are dispatched to the
	// in-process bus so cross-context subscribers still fire.
	c.InProcessEventBus = eventbus.NewInProcessEventBus(logger)
	c.EventPublisher = eventbus.NewInProcessPublisher(c.InProcessEventBus, logger)

	if err := c.wireHandlers(); err != nil {
		c.Close()
		return nil, err
	}

	c.InProcessEventBus.RegisterConsumer(c.LedgerSubscriber)

	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, outbox.ProcessorConfig{
		PollInterval: cfg.OutboxPollInterval,
		BatchSize:    cfg.OutboxBatchSize,
		MaxRetries:   cfg.OutboxMaxRetries,
	}, logger)

	logger.Info("local mode container initialized",
		"database", cfg.SQLitePath,
		"driver", "sqlite",
	)

	return c, nil
}

// wireHandlers builds the application layer on top of the repositories,
// unit of work, and publisher already placed in the container.
func (c *Container) wireHandlers() error {
	loader, err := templates.NewLoader(c.Config.TemplateDir)
	if err != nil {
		return fmt.Errorf("failed to load pipeline templates: %w", err)
	}
	c.Templates = loader

	c.ProjectLocks = sharedApplication.NewProjectLocks()
	c.TimelineProjector = timelineApp.NewProjector(c.ProjectRepo, c.MilestoneRepo)

	// A typed nil pointer must not reach the interface fields, so the
	// cache is threaded through untyped.
	var snapshotCache workflowQueries.SnapshotCache
	var invalidator workflowCommands.SnapshotInvalidator
	if c.SnapshotCache != nil {
		snapshotCache = c.SnapshotCache
		invalidator = c.SnapshotCache
	}

	c.CreateProjectHandler = workflowCommands.NewCreateProjectHandler(
		c.ProjectRepo, c.OutboxRepo, c.UnitOfWork, c.Templates, c.TimelineProjector)
	c.AdvanceStageHandler = workflowCommands.NewAdvanceStageHandler(
		c.ProjectRepo, c.OutboxRepo, c.UnitOfWork, c.ProjectLocks, c.TimelineProjector, invalidator)
	c.UpdateStageProgressHandler = workflowCommands.NewUpdateStageProgressHandler(
		c.ProjectRepo, c.OutboxRepo, c.UnitOfWork, c.ProjectLocks, invalidator)
	c.ArchiveProjectHandler = workflowCommands.NewArchiveProjectHandler(
		c.ProjectRepo, c.OutboxRepo, c.UnitOfWork, c.ProjectLocks, invalidator)

	c.GetProjectSnapshotHandler = workflowQueries.NewGetProjectSnapshotHandler(c.ProjectRepo, snapshotCache)
	c.ListProjectsHandler = workflowQueries.NewListProjectsHandler(c.ProjectRepo)

	c.GetTimelineHandler = timelineQueries.NewGetTimelineHandler(c.MilestoneRepo)
	c.GetEstimatedDeliveryHandler = timelineQueries.NewGetEstimatedDeliveryHandler(c.MilestoneRepo)

	c.CreateLedgerHandler = resourceCommands.NewCreateLedgerHandler(c.LedgerRepo, c.OutboxRepo, c.UnitOfWork)
	c.EquipmentHandler = resourceCommands.NewEquipmentHandler(c.LedgerRepo, c.OutboxRepo, c.UnitOfWork, c.ProjectLocks)
	c.ConsumeStorageHandler = resourceCommands.NewConsumeStorageHandler(c.LedgerRepo, c.OutboxRepo, c.UnitOfWork, c.ProjectLocks)
	c.GetLedgerHandler = resourceQueries.NewGetLedgerHandler(c.LedgerRepo)

	c.LedgerSubscriber = resourceSubs.NewLedgerSubscriber(c.CreateLedgerHandler, c.Config.StorageDefaultGB, c.Logger)

	return nil
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.OutboxProcessor != nil {
		c.OutboxProcessor.Stop()
	}

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
		c.DB.Close()
		c.Logger.Info("PostgreSQL connection closed")
	}

	if c.DBConn != nil && c.DBDriver == database.DriverSQLite {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("error closing SQLite connection", "error", err)
		}
	}
}

// sqliteConnection is a database.Connection that exposes its *sql.DB.
type sqliteConnection interface {
	database.Connection
	DB() *sql.DB
}

// initSQLiteConnection opens the SQLite database and applies migrations.
func initSQLiteConnection(ctx context.Context, cfg *config.Config, logger *slog.Logger) (sqliteConnection, error) {
	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create SQLite connection: %w", err)
	}

	sqliteConn, ok := conn.(sqliteConnection)
	if !ok {
		conn.Close()
		return nil, fmt.Errorf("expected SQLite connection with DB() method, got %T", conn)
	}

	logger.Info("running SQLite migrations")
	if err := migrations.RunSQLiteMigrations(ctx, sqliteConn.DB()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return sqliteConn, nil
}
