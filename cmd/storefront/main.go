package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"storefront/pkg/storefront/app/config"
	"storefront/pkg/storefront/domain/model"
	"storefront/pkg/storefront/domain/service"
	"storefront/pkg/storefront/infrastructure/auth"
	"storefront/pkg/storefront/infrastructure/dispatch"
	"storefront/pkg/storefront/infrastructure/handoff"
	"storefront/pkg/storefront/infrastructure/metrics"
	"storefront/pkg/storefront/infrastructure/storage"
	"storefront/pkg/storefront/infrastructure/transport"
)

const appID = "storefront"

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	cfg, err := config.ParseEnv()
	if err != nil {
		log.WithError(err).Fatal("failed to parse config")
	}

	app := &cli.App{
		Name:  appID,
		Usage: "bakery storefront backend",
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "run the HTTP API server",
				Action: func(_ *cli.Context) error {
					return runServer(cfg)
				},
			},
			{
				Name:  "migrate",
				Usage: "apply database migrations",
				Action: func(_ *cli.Context) error {
					return runMigrations(cfg)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("application failed")
	}
}

type repositories struct {
	products model.ProductRepository
	orders   model.OrderRepository
	users    model.UserRepository
	placer   model.OrderPlacer
	cart     model.CartStore
}

func buildRepositories(cfg *config.Config) (*repositories, error) {
	memory := storage.NewMemoryStore()
	repos := &repositories{
		products: memory.Products(),
		orders:   memory.Orders(),
		users:    memory.Users(),
		placer:   memory,
		cart:     memory.Cart(),
	}

	if cfg.DatabaseDSN != "" {
		db, err := sqlx.Connect("mysql", cfg.DatabaseDSN)
		if err != nil {
			return nil, errors.Wrap(err, "connect to mysql")
		}
		store := storage.NewMySQLStore(db)
		repos.products = store.Products()
		repos.orders = store.Orders()
		repos.users = store.Users()
		repos.placer = store
	} else {
		if err := seedCatalog(cfg, repos.products); err != nil {
			return nil, err
		}
	}

	if cfg.RedisAddress != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})
		repos.cart = storage.NewRedisCartStore(client, cfg.RedisSession)
	}

	return repos, nil
}

func seedCatalog(cfg *config.Config, products model.ProductRepository) error {
	seed := storage.SeedCatalog()
	if cfg.CatalogSnapshotPath != "" {
		snapshot, err := storage.LoadCatalog(cfg.CatalogSnapshotPath)
		if err == nil {
			seed = snapshot
		} else if !os.IsNotExist(err) {
			return errors.Wrap(err, "load catalog snapshot")
		}
	}
	log.WithField("products", len(seed)).Info("seeding in-memory catalog")
	return products.ReplaceAll(seed)
}

func buildDispatcher(cfg *config.Config) (service.EventDispatcher, func(), error) {
	if cfg.AMQPURL == "" {
		return dispatch.NewLogDispatcher(), func() {}, nil
	}
	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "connect to amqp")
	}
	dispatcher, err := dispatch.NewAMQPDispatcher(conn, cfg.AMQPExchange)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	closer := func() {
		dispatcher.Close()
		conn.Close()
	}
	return dispatcher, closer, nil
}

func runServer(cfg *config.Config) error {
	repos, err := buildRepositories(cfg)
	if err != nil {
		return err
	}

	dispatcher, closeDispatcher, err := buildDispatcher(cfg)
	if err != nil {
		return err
	}
	defer closeDispatcher()

	var verifier service.TokenVerifier
	if cfg.GoogleClientID != "" {
		verifier = auth.NewGoogleVerifier(cfg.GoogleClientID)
	} else {
		log.Warn("no google client id configured, using insecure token verifier")
		verifier = auth.NewInsecureVerifier()
	}

	session := service.NewSessionCache()
	cart := service.NewCartService(repos.cart)
	if err := cart.Restore(); err != nil {
		return errors.Wrap(err, "restore cart snapshot")
	}

	catalog := service.NewCatalogService(repos.products, dispatcher)
	ledger := service.NewLedgerService(repos.orders, session, dispatcher)
	checkout := service.NewCheckoutService(cart, repos.orders, repos.placer, session, dispatcher)

	router := transport.Router(transport.Deps{
		Catalog:    catalog,
		Ledger:     ledger,
		Checkout:   checkout,
		Verifier:   verifier,
		Handoff:    handoff.NewWhatsApp(cfg.WhatsAppPhone, cfg.BusinessName),
		AdminEmail: cfg.AdminEmail,
		Metrics:    metrics.NewServerMetrics(),
	})

	srv := &http.Server{Addr: cfg.ServeHTTPAddress, Handler: router}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.WithField("url", cfg.ServeHTTPAddress).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, "serve http")
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		return srv.Shutdown(context.Background())
	})

	return group.Wait()
}

func runMigrations(cfg *config.Config) error {
	if cfg.DatabaseDSN == "" {
		return errors.New("database dsn is not configured")
	}

	m, err := migrate.New("file://"+cfg.MigrationsDir, "mysql://"+cfg.DatabaseDSN)
	if err != nil {
		return errors.Wrap(err, "init migrations")
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, "apply migrations")
	}
	log.Info("migrations applied")
	return nil
}
