package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/wichananm65/storefront/internal/cache"
	"github.com/wichananm65/storefront/internal/cart"
	"github.com/wichananm65/storefront/internal/category"
	"github.com/wichananm65/storefront/internal/config"
	"github.com/wichananm65/storefront/internal/events"
	"github.com/wichananm65/storefront/internal/infrastructure/database/mongodb"
	"github.com/wichananm65/storefront/internal/infrastructure/database/postgres"
	"github.com/wichananm65/storefront/internal/interface/http/router"
	"github.com/wichananm65/storefront/internal/metrics"
	"github.com/wichananm65/storefront/internal/order"
	"github.com/wichananm65/storefront/internal/product"
	"github.com/wichananm65/storefront/internal/user"
	"github.com/wichananm65/storefront/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{Service: "storefront", Env: cfg.AppEnv, Level: cfg.LogLevel})

	if err := run(cfg, log); err != nil {
		log.Error("storefront stopped", slog.Any("err", err))
		os.Exit(1)
	}
}

// stores groups the repositories of one store driver.
type stores struct {
	carts  cart.Repository
	orders order.Repository
	users  user.Repository
	close  func(context.Context) error
}

func run(cfg config.Config, log *slog.Logger) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := product.NewClient(cfg.ProductSourceURL, cfg.ProductSourceTimeout)
	if err != nil {
		return err
	}

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(context.Background()); err != nil {
			log.Warn("closing store failed", slog.Any("err", err))
		}
	}()

	var cartCache cart.Cache = cart.NopCache{}
	if cfg.RedisAddr != "" {
		client, err := cache.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return err
		}
		defer client.Close()
		cartCache = cache.NewRedisCache(client)
		log.Info("cart cache enabled", slog.String("addr", cfg.RedisAddr))
	}

	publisher, err := openPublisher(cfg)
	if err != nil {
		return err
	}
	defer publisher.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	userService := user.NewService(st.users)
	cartService := cart.NewService(st.carts, source, cart.Options{
		Cache:             cartCache,
		HydrationLimit:    cfg.HydrationConcurrency,
		HydrationFailures: m.HydrationFailures,
		Logger:            log,
	})
	orderService := order.NewService(st.orders, cartService, userService, order.Options{
		Publisher:     countingPublisher{next: publisher, failures: m.EventFailures},
		OrdersCreated: m.OrdersCreated,
		Logger:        log,
	})
	productService := product.NewService(source)

	app := router.New(router.Deps{
		Logger:           log,
		Metrics:          m,
		JWTSecret:        cfg.JWTSecret,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
		Products:         product.NewHandler(productService),
		Categories:       category.NewHandler(category.NewService(source)),
		Cart:             cart.NewHandler(cartService),
		Orders:           order.NewHandler(orderService),
		Users:            user.NewHandler(userService),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("storefront listening", slog.String("addr", cfg.Addr), slog.String("store", cfg.StoreDriver))
		errCh <- app.Listen(cfg.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	return app.ShutdownWithTimeout(cfg.ShutdownTimeout)
}

func openStores(ctx context.Context, cfg config.Config, log *slog.Logger) (stores, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		db, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return stores{}, err
		}
		carts := cart.NewMongoRepository(db)
		orders := order.NewMongoRepository(db)
		if err := carts.CreateIndexes(ctx); err != nil {
			return stores{}, err
		}
		if err := orders.CreateIndexes(ctx); err != nil {
			return stores{}, err
		}
		return stores{
			carts:  carts,
			orders: orders,
			users:  user.NewMongoRepository(db),
			close:  func(ctx context.Context) error { return mongodb.Disconnect(ctx, db) },
		}, nil

	case config.StorePostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return stores{}, err
		}
		if err := postgres.Migrate(db, log); err != nil {
			db.Close()
			return stores{}, err
		}
		return stores{
			carts:  cart.NewPostgresRepository(db),
			orders: order.NewPostgresRepository(db),
			users:  user.NewPostgresRepository(db),
			close:  closeDB(db),
		}, nil

	case config.StoreMemory:
		log.Warn("using in-memory store; data is lost on restart")
		return stores{
			carts:  cart.NewInMemoryRepository(nil),
			orders: order.NewInMemoryRepository(nil),
			users:  user.NewInMemoryRepository(nil),
			close:  func(context.Context) error { return nil },
		}, nil
	}
	return stores{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}

func closeDB(db *sql.DB) func(context.Context) error {
	return func(context.Context) error { return db.Close() }
}

type eventPublisher interface {
	order.Publisher
	io.Closer
}

func openPublisher(cfg config.Config) (eventPublisher, error) {
	switch cfg.EventsDriver {
	case config.EventsKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required for the kafka events driver")
		}
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	case config.EventsRabbitMQ:
		p, err := events.DialRabbit(cfg.RabbitMQURL)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.EventsNone, "":
		return events.Nop{}, nil
	}
	return nil, fmt.Errorf("unknown EVENTS_DRIVER %q", cfg.EventsDriver)
}

// countingPublisher counts failed publishes per event type.
type countingPublisher struct {
	next     order.Publisher
	failures *prometheus.CounterVec
}

func (p countingPublisher) Publish(ctx context.Context, ev order.Event) error {
	err := p.next.Publish(ctx, ev)
	if err != nil {
		p.failures.WithLabelValues(ev.Type).Inc()
	}
	return err
}

