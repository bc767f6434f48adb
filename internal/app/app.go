package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"orderhub/internal/config"
	"orderhub/internal/events"
	"orderhub/internal/handlers"
	"orderhub/internal/middleware"
	"orderhub/internal/realtime"
	"orderhub/internal/repositories"
	"orderhub/internal/services"
	"orderhub/pkg/kafka"
	"orderhub/pkg/rabbitmq"
)

const (
	presenceInterval    = 15 * time.Second
	eventQueueSize      = 1024
	eventPublishTimeout = 10 * time.Second
)

// repositorySet groups the storage backends of the service.
type repositorySet struct {
	products      repositories.ProductRepository
	orders        repositories.OrderRepository
	notifications repositories.NotificationRepository
}

// Application holds all the components and manages their lifecycle.
type Application struct {
	cfg    *config.Config
	logger *zap.Logger

	db       *gorm.DB
	repos    repositorySet
	closers  []io.Closer
	amqp     *rabbitmq.Client
	registry *realtime.Registry
	gateway  *realtime.Gateway

	Orders        *services.OrderService
	Notifications *services.NotificationService
	Broadcaster   *realtime.Broadcaster
	HTTP          *fiber.App
}

// New wires every component from cfg. Background workers start with Run.
func New(cfg *config.Config, logger *zap.Logger) (*Application, error) {
	a := &Application{cfg: cfg, logger: logger}

	if err := a.openStorage(); err != nil {
		return nil, err
	}

	publisher, err := a.openEvents()
	if err != nil {
		_ = a.Shutdown()
		return nil, err
	}

	a.registry = realtime.NewRegistry()
	a.Broadcaster = realtime.NewBroadcaster(a.registry, logger.Named("broadcaster"))
	a.gateway = realtime.NewGateway(a.registry, realtime.GatewayConfig{
		SendBuffer:   cfg.WSSendBuffer,
		PingInterval: cfg.WSPingInterval,
		WriteTimeout: cfg.WSWriteTimeout,
	}, logger.Named("gateway"))

	a.Notifications = services.NewNotificationService(
		a.repos.notifications, a.repos.orders, a.repos.products, a.Broadcaster, logger.Named("notifications"))
	a.Orders = services.NewOrderService(services.OrderServiceDeps{
		Orders:        a.repos.orders,
		Products:      a.repos.products,
		Ledger:        services.NewStockLedger(a.repos.products, logger.Named("ledger")),
		Notifications: a.Notifications,
		Notifier:      a.Broadcaster,
		Events:        publisher,
		Logger:        logger.Named("orders"),
		Concurrency:   cfg.TransitionConcurrency,
	})

	a.HTTP = a.buildHTTP()
	return a, nil
}

func (a *Application) openStorage() error {
	if a.cfg.DatabaseDriver == "memory" {
		a.repos = repositorySet{
			products:      repositories.NewMockProductRepository(),
			orders:        repositories.NewMockOrderRepository(),
			notifications: repositories.NewMockNotificationRepository(),
		}
		return nil
	}

	db, err := repositories.OpenDatabase(a.cfg.DatabaseDriver, a.cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	a.db = db
	a.repos = repositorySet{
		products:      repositories.NewGORMProductRepository(db),
		orders:        repositories.NewGORMOrderRepository(db),
		notifications: repositories.NewGORMNotificationRepository(db),
	}
	return nil
}

func (a *Application) openEvents() (services.EventPublisher, error) {
	log := a.logger.Named("events")
	switch a.cfg.EventsDriver {
	case "amqp":
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: a.cfg.RabbitMQURL}, log)
		if err != nil {
			return nil, err
		}
		a.amqp = client
		a.closers = append(a.closers, client)
		return a.queueEvents(events.NewPublisher(client, events.ByEventName, log), log), nil
	case "kafka":
		producer, err := kafka.NewProducer(kafka.Config{
			Brokers: kafka.ParseBrokers(a.cfg.KafkaBrokers),
			Topic:   a.cfg.KafkaTopic,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, producer)
		return a.queueEvents(events.NewPublisher(producer, events.ByOrderID, log), log), nil
	default:
		return events.Nop{}, nil
	}
}

// queueEvents moves broker publishes off the order path. The queue is closed
// before the broker so pending events are flushed.
func (a *Application) queueEvents(next events.StatusPublisher, log *zap.Logger) *events.Async {
	async := events.NewAsync(next, eventQueueSize, eventPublishTimeout, log)
	a.closers = append(a.closers, async)
	return async
}

func (a *Application) buildHTTP() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "orderhub",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		conns, rooms := a.registry.Stats()
		return c.JSON(fiber.Map{
			"status":      "healthy",
			"time":        time.Now().Format(time.RFC3339),
			"connections": conns,
			"rooms":       rooms,
			"events":      a.cfg.EventsDriver,
			"database":    a.cfg.DatabaseDriver,
		})
	})

	a.gateway.RegisterRoutes(app)

	auth := middleware.AuthRequired(services.NewAuthService(a.cfg.JWTSecret), a.logger.Named("auth"))
	apiV1 := app.Group("/api/v1")
	handlers.NewOrderHandler(a.Orders, a.cfg.RequestTimeout, a.logger.Named("http")).RegisterRoutes(apiV1, auth)
	handlers.NewNotificationHandler(a.Notifications, a.logger.Named("http")).RegisterRoutes(apiV1, auth)
	return app
}

// Run starts background workers bound to ctx and serves HTTP on the configured
// port until the server stops.
func (a *Application) Run(ctx context.Context) error {
	if a.cfg.SeedData {
		if err := Seed(ctx, a.repos.products, a.repos.orders, a.cfg.TaxRate); err != nil {
			a.logger.Warn("seeding failed", zap.Error(err))
		}
	}

	go a.gateway.ReportPresence(ctx, presenceInterval)

	if a.amqp != nil {
		if err := a.amqp.ConsumeOrderEvents(ctx, events.AuditLogger(a.logger.Named("audit"))); err != nil {
			a.logger.Warn("order event consumer not started", zap.Error(err))
		}
	}

	a.logger.Info("starting server", zap.String("addr", a.cfg.AppPort))
	if err := a.HTTP.Listen(a.cfg.AppPort); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

// Shutdown stops the HTTP server and releases brokers and the database.
func (a *Application) Shutdown() error {
	var errs []error
	if a.HTTP != nil {
		if err := a.HTTP.ShutdownWithTimeout(10 * time.Second); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("database close: %w", err))
			}
		}
	}
	a.logger.Info("application stopped")
	return errors.Join(errs...)
}
