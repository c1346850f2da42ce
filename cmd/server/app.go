package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskmaster/internal/api"
	"github.com/phrazzld/taskmaster/internal/api/middleware"
	"github.com/phrazzld/taskmaster/internal/config"
	"github.com/phrazzld/taskmaster/internal/events"
	"github.com/phrazzld/taskmaster/internal/jobs"
	"github.com/phrazzld/taskmaster/internal/platform/postgres"
	"github.com/phrazzld/taskmaster/internal/relay"
	"github.com/phrazzld/taskmaster/internal/service"
	"github.com/phrazzld/taskmaster/internal/service/auth"
	"github.com/phrazzld/taskmaster/internal/storage"
	"github.com/phrazzld/taskmaster/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	jwtService auth.JWTService
	blobs      storage.Blob
	emitter    *events.InMemoryEventEmitter

	// Background cleanup of deleted tasks' files
	queue   *jobs.Queue
	workers *jobs.WorkerPool

	// Real-time relay; backplane is nil on a single instance
	hub       *relay.Hub
	backplane relay.Backplane

	handlers     api.Handlers
	loginLimiter *middleware.RateLimiter
}

// newApplication creates a new application instance with all dependencies
// initialized. Nothing is started until Run.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	app.blobs, err = storage.New(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize attachment storage: %w", err)
	}

	if cfg.Relay.RedisURL != "" {
		backplane, err := relay.NewRedisBackplane(ctx, cfg.Relay.RedisURL, cfg.Relay.Channel, logger)
		if err != nil {
			_ = app.blobs.Close()
			return nil, fmt.Errorf("failed to initialize relay backplane: %w", err)
		}
		app.backplane = backplane
	}

	app.hub = relay.NewHub(relay.HubConfig{
		SendBuffer:      cfg.Relay.SendBuffer,
		PingInterval:    time.Duration(cfg.Relay.PingIntervalSeconds) * time.Second,
		MaxMessageBytes: cfg.Relay.MaxMessageBytes,
	}, app.backplane, logger)

	app.queue = jobs.NewQueue(cfg.Jobs.QueueSize, logger)
	app.workers = jobs.NewWorkerPool(app.queue, jobs.WorkerPoolConfig{WorkerCount: cfg.Jobs.WorkerCount}, logger)

	// Handlers run in registration order: clients hear about a change
	// before its files are queued for removal.
	app.emitter = events.NewInMemoryEventEmitter(logger)
	app.emitter.RegisterHandler(relay.NewEventBridge(app.hub, logger))
	app.emitter.RegisterHandler(jobs.NewCleanupEventHandler(app.queue, app.blobs, logger))

	if err := app.initServices(); err != nil {
		app.closeResources()
		return nil, err
	}

	app.loginLimiter = middleware.NewRateLimiter(
		cfg.Auth.LoginRateLimit,
		time.Duration(cfg.Auth.LoginRateWindowMinutes)*time.Minute,
	)

	logger.Info("application initialized successfully")
	return app, nil
}

// initServices builds the stores, services and HTTP handlers.
func (app *application) initServices() error {
	cfg, logger := app.config, app.logger

	users := postgres.NewPostgresUserStore(app.db, cfg.Auth.BcryptCost, logger)
	tasks := postgres.NewPostgresTaskStore(app.db, logger)
	comments := postgres.NewPostgresCommentStore(app.db, logger)
	attachments := postgres.NewPostgresAttachmentStore(app.db, logger)
	activities := postgres.NewPostgresActivityStore(app.db, logger)
	tx := store.NewTransactor(app.db)

	userService, err := service.NewUserService(users, tx, auth.NewBcryptVerifier(), logger)
	if err != nil {
		return fmt.Errorf("failed to create user service: %w", err)
	}
	taskService, err := service.NewTaskService(tasks, attachments, activities, tx, app.emitter, logger)
	if err != nil {
		return fmt.Errorf("failed to create task service: %w", err)
	}
	commentService, err := service.NewCommentService(tasks, comments, activities, tx, app.emitter, logger)
	if err != nil {
		return fmt.Errorf("failed to create comment service: %w", err)
	}
	attachmentService, err := service.NewAttachmentService(
		tasks, attachments, activities, tx, app.blobs, app.emitter, logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create attachment service: %w", err)
	}
	activityService, err := service.NewActivityService(activities, logger)
	if err != nil {
		return fmt.Errorf("failed to create activity service: %w", err)
	}

	app.handlers = api.Handlers{
		Auth:        api.NewAuthHandler(userService, app.jwtService, logger),
		Tasks:       api.NewTaskHandler(taskService, logger),
		Comments:    api.NewCommentHandler(commentService, logger),
		Attachments: api.NewAttachmentHandler(attachmentService, cfg.Storage.MaxUploadBytes, logger),
		Activity:    api.NewActivityHandler(activityService, logger),
	}
	return nil
}

// Run starts the background workers, the relay hub and the HTTP server,
// and blocks until ctx is cancelled or the server fails. Resources are
// released before it returns.
func (app *application) Run(ctx context.Context) error {
	app.workers.Start()

	hubCtx, stopHub := context.WithCancel(context.WithoutCancel(ctx))
	hubErr := make(chan error, 1)
	go func() { hubErr <- app.hub.Run(hubCtx) }()

	serveErr := app.startHTTPServer(ctx, app.setupRouter())

	// The HTTP server has drained; stop the relay, then finish queued jobs.
	stopHub()
	if err := <-hubErr; err != nil {
		app.logger.Error("relay hub stopped with error", slog.String("error", err.Error()))
	}

	app.queue.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.shutdownTimeout())
	defer cancel()
	if err := app.workers.Stop(shutdownCtx); err != nil {
		app.logger.Warn("background jobs abandoned at shutdown", slog.String("error", err.Error()))
	}

	app.closeResources()

	if serveErr != nil {
		return fmt.Errorf("server error: %w", serveErr)
	}
	return nil
}

func (app *application) shutdownTimeout() time.Duration {
	return time.Duration(app.config.Server.ShutdownTimeoutSeconds) * time.Second
}

// closeResources releases storage, the backplane and the database.
func (app *application) closeResources() {
	var errs []error
	if app.blobs != nil {
		errs = append(errs, app.blobs.Close())
	}
	if app.backplane != nil {
		errs = append(errs, app.backplane.Close())
	}
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}

	if err := errors.Join(errs...); err != nil {
		app.logger.Error("error releasing resources", slog.String("error", err.Error()))
		return
	}
	app.logger.Info("application shutdown completed")
}
