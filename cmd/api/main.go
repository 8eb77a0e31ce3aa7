package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-freshbite.git/internal/auth"
	"github.com/ariefcatur/go-freshbite.git/internal/catalog"
	"github.com/ariefcatur/go-freshbite.git/internal/config"
	"github.com/ariefcatur/go-freshbite.git/internal/discount"
	"github.com/ariefcatur/go-freshbite.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-freshbite.git/internal/kafka"
	"github.com/ariefcatur/go-freshbite.git/internal/kv"
	"github.com/ariefcatur/go-freshbite.git/internal/logx"
	"github.com/ariefcatur/go-freshbite.git/internal/orders"
	"github.com/ariefcatur/go-freshbite.git/internal/postgres"
	"github.com/ariefcatur/go-freshbite.git/internal/ratelimit"
	"github.com/ariefcatur/go-freshbite.git/internal/redisx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()
	// money goes over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	cfg, warnings := config.Load()
	log, err := logx.New(cfg.ServiceName, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	for _, w := range warnings {
		log.Warn("config", zap.String("detail", w))
	}

	if err := run(cfg, log); err != nil {
		log.Fatal("api exited", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis backs whichever of storage, rate limiting and order status
	// needs sharing between processes. Order status is shared with the
	// notifier whenever events are published.
	var rdb *redis.Client
	if cfg.StorageDriver == "redis" || cfg.RateLimitDriver == "redis" || len(cfg.KafkaBrokers) > 0 {
		rdb = redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
	}

	var db *pgxpool.Pool
	if cfg.StorageDriver == "postgres" {
		var err error
		db, err = postgres.Connect(ctx, cfg.PostgresDSN, cfg.ServiceName)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
	}

	storage, menu, err := openStorage(ctx, cfg, db, rdb, log)
	if err != nil {
		return err
	}

	var limiter ratelimit.Limiter = ratelimit.NewMemory(cfg.LoginMaxAttempts, cfg.LoginWindow)
	if cfg.RateLimitDriver == "redis" {
		limiter = ratelimit.NewRedis(rdb, "login", cfg.LoginMaxAttempts, cfg.LoginWindow)
	}

	g, gctx := errgroup.WithContext(ctx)

	opts := orders.Options{
		Discounts: discount.Default(),
		TaxRate:   decimal.NewFromFloat(cfg.TaxRate),
		Delay:     cfg.CheckoutDelay,
		Producer:  cfg.ServiceName,
		Logger:    log,
	}
	if rdb != nil {
		opts.Statuses = &orders.RedisStatuses{RDB: rdb}
	}
	var prod *kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod = kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024, log)
		prod.Start(gctx)
		opts.Publisher = prod
	} else {
		log.Info("KAFKA_BROKERS empty, order events disabled")
	}

	api := &httpx.API{
		Menu: menu,
		Workspaces: httpx.NewWorkspaces(storage, auth.Options{
			Hasher:   auth.HasherFor(cfg.PasswordHashing),
			Delay:    cfg.AuthDelay,
			TokenTTL: cfg.TokenTTL,
		}, log),
		Limiter:   limiter,
		Orders:    orders.NewService(opts),
		Discounts: opts.Discounts,
		Log:       log,
	}
	router := httpx.NewRouter(log)
	api.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	g.Go(func() error {
		log.Info("http listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("storage", cfg.StorageDriver),
			zap.String("rate_limit", cfg.RateLimitDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(sctx)
		if prod != nil {
			prod.Close()
			prod.WaitClosed()
		}
		return err
	})
	return g.Wait()
}

// openStorage picks the client storage backend and the menu source that
// goes with it. With postgres the menu lives in menu_items, seeded on first
// start.
func openStorage(ctx context.Context, cfg config.Config, db *pgxpool.Pool, rdb *redis.Client, log *zap.Logger) (kv.Store, catalog.Source, error) {
	switch cfg.StorageDriver {
	case "redis":
		return kv.NewRedis(rdb, redisx.KeyStoragePrefix), catalog.Seed(), nil
	case "postgres":
		src := &catalog.PGSource{DB: db}
		seeded, err := src.SeedIfEmpty(ctx, catalog.Seed())
		if err != nil {
			return nil, nil, err
		}
		if seeded {
			log.Info("menu seeded")
		}
		return &kv.Postgres{DB: db}, src, nil
	default:
		log.Warn("memory storage: carts and accounts are lost on restart")
		return kv.NewMemory(), catalog.Seed(), nil
	}
}
