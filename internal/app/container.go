package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/felixgeelhaar/planline/internal/planning/application/commands"
	"github.com/felixgeelhaar/planline/internal/planning/application/queries"
	"github.com/felixgeelhaar/planline/internal/planning/application/subscribers"
	planningDomain "github.com/felixgeelhaar/planline/internal/planning/domain"
	"github.com/felixgeelhaar/planline/internal/planning/infrastructure/cache"
	"github.com/felixgeelhaar/planline/internal/planning/infrastructure/caldav"
	sharedApplication "github.com/felixgeelhaar/planline/internal/shared/application"
	"github.com/felixgeelhaar/planline/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/planline/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/felixgeelhaar/planline/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/planline/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/planline/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/planline/pkg/config"
	"github.com/felixgeelhaar/planline/pkg/observability"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Database
	DBConn   database.Connection
	DBDriver database.Driver

	// Redis
	RedisClient *redis.Client

	// Repositories
	ScheduleRepo planningDomain.ScheduleRepository
	OutboxRepo   outbox.Repository

	// Unit of Work
	UnitOfWork sharedApplication.UnitOfWork

	// Publishers
	EventPublisher    eventbus.Publisher
	InProcessEventBus *eventbus.InProcessEventBus

	// Read-side cache (nil without Redis)
	ScheduleCache queries.ScheduleCache

	// Command Handlers
	CreateScheduleHandler *commands.CreateScheduleHandler
	AddTaskHandler        *commands.AddTaskHandler
	ChangeTaskDateHandler *commands.ChangeTaskDateHandler
	MoveTaskHandler       *commands.MoveTaskHandler
	LinkTasksHandler      *commands.LinkTasksHandler
	UnlinkTaskHandler     *commands.UnlinkTaskHandler
	RemoveTaskHandler     *commands.RemoveTaskHandler

	// Query Handlers
	GetScheduleHandler *queries.GetScheduleHandler

	// Event Subscribers
	CacheInvalidator *subscribers.CacheInvalidator
	MetricsRecorder  *subscribers.MetricsRecorder

	// Metrics
	Metrics observability.Metrics

	// Outbox Processor
	OutboxProcessor *outbox.Processor

	// CalDAV export (nil when not configured)
	Exporter *caldav.Exporter
}

// NewContainer creates and wires all dependencies.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	// Connect to the database. An empty DATABASE_URL means local SQLite.
	conn, err := database.NewConnection(ctx, databaseConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DBConn = conn
	c.DBDriver = conn.Driver()
	logger.Info("connected to database", "driver", c.DBDriver)

	factory := NewRepositoryFactory(conn)
	if err := factory.RunMigrations(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if c.ScheduleRepo, err = factory.ScheduleRepository(); err != nil {
		conn.Close()
		return nil, err
	}
	if c.OutboxRepo, err = factory.OutboxRepository(); err != nil {
		conn.Close()
		return nil, err
	}
	if c.UnitOfWork, err = factory.UnitOfWork(); err != nil {
		conn.Close()
		return nil, err
	}

	// Connect to Redis (optional)
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			if !cfg.IsDevelopment() {
				conn.Close()
				return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
			}
			logger.Warn("invalid Redis URL, schedule reads will skip the cache", "error", err)
		} else {
			redisClient := redis.NewClient(opt)
			if err := redisClient.Ping(ctx).Err(); err != nil {
				if !cfg.IsDevelopment() {
					conn.Close()
					return nil, fmt.Errorf("failed to connect to Redis: %w", err)
				}
				logger.Warn("Redis not available, schedule reads will skip the cache", "error", err)
			} else {
				c.RedisClient = redisClient
				c.ScheduleCache = cache.NewRedisScheduleCache(redisClient, cfg.CacheTTL, logger)
				logger.Info("connected to Redis")
			}
		}
	}

	// Create event publisher. Without RabbitMQ events are dispatched
	// synchronously in process.
	c.InProcessEventBus = eventbus.NewInProcessEventBus(logger)
	if cfg.RabbitMQURL != "" {
		publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
		if err != nil {
			if cfg.IsDevelopment() {
				logger.Warn("RabbitMQ not available, dispatching events in process", "error", err)
				c.EventPublisher = c.InProcessEventBus
			} else {
				conn.Close()
				return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
			}
		} else {
			c.EventPublisher = publisher
		}
	} else {
		c.EventPublisher = c.InProcessEventBus
	}

	// Create command handlers
	c.CreateScheduleHandler = commands.NewCreateScheduleHandler(c.ScheduleRepo, c.OutboxRepo, c.UnitOfWork)
	c.AddTaskHandler = commands.NewAddTaskHandler(c.ScheduleRepo, c.OutboxRepo, c.UnitOfWork)
	c.ChangeTaskDateHandler = commands.NewChangeTaskDateHandler(c.ScheduleRepo, c.OutboxRepo, c.UnitOfWork)
	c.MoveTaskHandler = commands.NewMoveTaskHandler(c.ScheduleRepo, c.OutboxRepo, c.UnitOfWork)
	c.LinkTasksHandler = commands.NewLinkTasksHandler(c.ScheduleRepo, c.OutboxRepo, c.UnitOfWork)
	c.UnlinkTaskHandler = commands.NewUnlinkTaskHandler(c.ScheduleRepo, c.OutboxRepo, c.UnitOfWork)
	c.RemoveTaskHandler = commands.NewRemoveTaskHandler(c.ScheduleRepo, c.OutboxRepo, c.UnitOfWork)

	// Create query handlers
	c.GetScheduleHandler = queries.NewGetScheduleHandler(c.ScheduleRepo, c.ScheduleCache)

	// Register event subscribers on the in-process bus
	c.Metrics = observability.NewInMemoryMetrics()
	c.MetricsRecorder = subscribers.NewMetricsRecorder(c.Metrics)
	c.InProcessEventBus.RegisterConsumer(c.MetricsRecorder)
	if c.ScheduleCache != nil {
		c.CacheInvalidator = subscribers.NewCacheInvalidator(c.ScheduleCache, logger)
		c.InProcessEventBus.RegisterConsumer(c.CacheInvalidator)
	}

	// Create outbox processor
	processorConfig := outbox.ProcessorConfig{
		PollInterval: cfg.OutboxPollInterval,
		BatchSize:    cfg.OutboxBatchSize,
		MaxRetries:   cfg.OutboxMaxRetries,
	}
	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, processorConfig, logger)

	// Create CalDAV exporter when configured
	if cfg.CalDAVURL != "" {
		c.Exporter = caldav.NewExporter(cfg.CalDAVURL, cfg.CalDAVUsername, cfg.CalDAVPassword, logger).
			WithDeleteMissing(cfg.CalDAVDeleteMissing).
			WithCalendarPath(cfg.CalDAVCalendarPath)
	}

	return c, nil
}

// databaseConfig maps application configuration onto a database config.
func databaseConfig(cfg *config.Config) database.Config {
	if cfg.DatabaseURL == "" {
		return database.DefaultLocalConfig()
	}

	driver := database.DetectDriver(cfg.DatabaseURL)
	if driver == database.DriverSQLite {
		path := strings.TrimPrefix(cfg.DatabaseURL, "sqlite://")
		path = strings.TrimPrefix(path, "file:")
		return database.Config{Driver: database.DriverSQLite, SQLitePath: path}
	}
	return database.Config{Driver: driver, URL: cfg.DatabaseURL}
}

// Close releases all container resources.
func (c *Container) Close() {
	if c.OutboxProcessor != nil && c.OutboxProcessor.IsRunning() {
		c.OutboxProcessor.Stop()
	}
	if c.EventPublisher != nil {
		_ = c.EventPublisher.Close()
	}
	if c.RedisClient != nil {
		_ = c.RedisClient.Close()
	}
	if c.DBConn != nil {
		_ = c.DBConn.Close()
	}
}
