// Package app wires configuration, storage, services and the HTTP server together.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"bookstore/internal/config"
	"bookstore/internal/database"
	"bookstore/internal/errs"
	"bookstore/internal/handlers"
	"bookstore/internal/middleware"
	"bookstore/internal/outbox"
	"bookstore/internal/repositories"
	"bookstore/internal/services"
	"bookstore/pkg/kafka"
	"bookstore/pkg/metrics"
	"bookstore/pkg/rabbitmq"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App is the assembled bookstore service.
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *gorm.DB
	fiber   *fiber.App
	relay   *outbox.Relay
	mq      *rabbitmq.Client
	closers []io.Closer
}

// New opens the database and builds every component described by cfg. Brokers are
// connected here as well, so a bad broker address fails startup.
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			_ = database.Close(db)
			return nil, err
		}
	}

	a := &App{cfg: cfg, logger: log, db: db}
	if err := a.build(); err != nil {
		_ = a.close()
		return nil, err
	}
	return a, nil
}

func (a *App) build() error {
	cfg, log := a.cfg, a.logger

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(a.db)
	bookRepo := repositories.NewGORMBookRepository(a.db)
	categoryRepo := repositories.NewGORMCategoryRepository(a.db)
	reviewRepo := repositories.NewGORMReviewRepository(a.db)
	cartRepo := repositories.NewGORMCartRepository(a.db)
	orderRepo := repositories.NewGORMOrderRepository(a.db)
	outboxRepo := repositories.NewGORMOutboxRepository(a.db)
	txManager := repositories.NewGORMTxManager(a.db)

	// --- Metrics ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	serverMetrics := metrics.NewServerMetrics(reg)
	orderMetrics := metrics.NewOrderMetrics(reg)

	// --- Services ---
	authService := services.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log.Named("auth"))
	userService := services.NewUserService(userRepo)
	bookService := services.NewBookService(bookRepo, categoryRepo)
	categoryService := services.NewCategoryService(categoryRepo)
	reviewService := services.NewReviewService(txManager, userRepo, bookRepo, reviewRepo)
	cartService := services.NewCartService(userRepo, bookRepo, cartRepo)
	orderService := services.NewOrderService(txManager, userRepo, bookRepo, cartRepo, orderRepo, outboxRepo,
		services.WithOrderLogger(log.Named("orders")),
		services.WithOrderMetrics(orderMetrics))

	if cfg.Auth.AdminEmail != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
			return fmt.Errorf("failed to seed admin account: %w", err)
		}
	}

	// --- Outbox relay ---
	publisher, err := a.publisher()
	if err != nil {
		return err
	}
	a.relay, err = outbox.NewRelay(outboxRepo, publisher, cfg.Events.PollInterval, cfg.Events.BatchSize, cfg.Events.MaxAttempts, log.Named("outbox"))
	if err != nil {
		return err
	}

	// --- Handlers ---
	validate := validator.New()
	var placeLimit *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		placeLimit = middleware.NewRateLimiter(cfg.RateLimit.Rate, cfg.RateLimit.Burst)
	}
	authHandler := handlers.NewAuthHandler(authService, validate, log.Named("http"))
	userHandler := handlers.NewUserHandler(userService)
	bookHandler := handlers.NewBookHandler(bookService, validate)
	categoryHandler := handlers.NewCategoryHandler(categoryService, validate)
	reviewHandler := handlers.NewReviewHandler(reviewService, validate)
	cartHandler := handlers.NewCartHandler(cartService, validate)
	orderHandler := handlers.NewOrderHandler(orderService, validate, placeLimit)

	// --- Fiber ---
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: !cfg.IsDevelopment(),
		ErrorHandler:          errorHandler(log),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	if cfg.IsDevelopment() {
		app.Use(fiberlogger.New())
	}
	app.Use(middleware.Metrics(serverMetrics))

	app.Get("/health", func(c *fiber.Ctx) error {
		status, code := "healthy", fiber.StatusOK
		if err := a.ping(c.UserContext()); err != nil {
			status, code = "unhealthy", fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
			"broker": cfg.Events.Broker,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler(reg)))

	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)

	protected := apiV1.Group("", middleware.AuthRequired(authService))
	admin := protected.Group("/admin", middleware.AdminOnly())
	userHandler.RegisterRoutes(protected)
	bookHandler.RegisterRoutes(protected)
	categoryHandler.RegisterRoutes(protected)
	reviewHandler.RegisterRoutes(protected)
	cartHandler.RegisterRoutes(protected)
	orderHandler.RegisterRoutes(protected)
	userHandler.RegisterAdminRoutes(admin)
	cartHandler.RegisterAdminRoutes(admin)
	orderHandler.RegisterAdminRoutes(admin)

	a.fiber = app
	return nil
}

// publisher returns the outbox publisher for the configured broker.
func (a *App) publisher() (outbox.Publisher, error) {
	events := a.cfg.Events
	switch events.Broker {
	case "rabbitmq":
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: events.RabbitMQURL, Queue: events.Queue}, a.logger.Named("rabbitmq"))
		if err != nil {
			return nil, err
		}
		a.mq = client
		a.closers = append(a.closers, client)
		return client, nil
	case "kafka":
		producer, err := kafka.NewProducer(kafka.SplitBrokers(events.KafkaBrokers), events.KafkaTopic)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, producer)
		return producer, nil
	default:
		return &outbox.LogPublisher{Logger: a.logger.Named("outbox")}, nil
	}
}

func (a *App) ping(ctx context.Context) error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Fiber returns the HTTP application, mainly for tests.
func (a *App) Fiber() *fiber.App {
	return a.fiber
}

// Run serves HTTP and relays outbox events until ctx is cancelled or the listener
// fails, then shuts down.
func (a *App) Run(ctx context.Context) error {
	relayCtx, stopRelay := context.WithCancel(ctx)
	defer stopRelay()
	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		if err := a.relay.Run(relayCtx); err != nil {
			a.logger.Error("outbox relay stopped", zap.Error(err))
		}
	}()

	if a.mq != nil && a.cfg.Events.Consume {
		if err := a.mq.ConsumeOrderEvents(rabbitmq.LoggingHandler(a.logger.Named("consumer"))); err != nil {
			a.logger.Warn("failed to start order event consumer", zap.Error(err))
		}
	}

	listenErr := make(chan error, 1)
	go func() {
		a.logger.Info("starting server", zap.String("port", a.cfg.App.Port))
		listenErr <- a.fiber.Listen(a.cfg.App.Port)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-listenErr:
		runErr = fmt.Errorf("server failed: %w", err)
	}

	stopRelay()
	<-relayDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.App.ShutdownTimeout)
	defer cancel()
	return errors.Join(runErr, a.Shutdown(shutdownCtx))
}

// Shutdown stops the HTTP server and releases brokers and the database.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")
	var err error
	if a.fiber != nil {
		err = a.fiber.ShutdownWithContext(ctx)
	}
	return errors.Join(err, a.close())
}

func (a *App) close() error {
	var errList []error
	for _, c := range a.closers {
		errList = append(errList, c.Close())
	}
	a.closers = nil
	if a.db != nil {
		errList = append(errList, database.Close(a.db))
		a.db = nil
	}
	return errors.Join(errList...)
}

// errorHandler answers errors that escaped the handlers, such as unknown routes, with
// the same body shape the handlers use.
func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message, "error": fe.Message})
		}
		log.Error("unhandled request error", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
			"code":    errs.CodeInternal,
			"error":   err.Error(),
		})
	}
}
