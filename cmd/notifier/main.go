package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/go-freshbite.git/internal/config"
	kafkax "github.com/ariefcatur/go-freshbite.git/internal/kafka"
	"github.com/ariefcatur/go-freshbite.git/internal/logx"
	"github.com/ariefcatur/go-freshbite.git/internal/notify"
	"github.com/ariefcatur/go-freshbite.git/internal/orders"
	"github.com/ariefcatur/go-freshbite.git/internal/redisx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()

	cfg, warnings := config.Load()
	name := cfg.ServiceName + "-notifier"
	log, err := logx.New(name, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	for _, w := range warnings {
		log.Warn("config", zap.String("detail", w))
	}
	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("KAFKA_BROKERS is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("redis", zap.Error(err))
	}

	svc := &notify.Service{
		Dedup:    notify.RedisDeduper{RDB: rdb, Service: name},
		Statuses: &orders.RedisStatuses{RDB: rdb},
		Log:      log,
	}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.NotifierGroup, orders.TopicOrderPlaced, cfg.NotifierWorkers, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("notifier consuming",
			zap.String("group", cfg.NotifierGroup),
			zap.String("topic", orders.TopicOrderPlaced),
			zap.Int("workers", cfg.NotifierWorkers))
		return cons.Start(gctx, svc.HandleOrderPlaced)
	})
	if err := g.Wait(); err != nil {
		log.Error("consumer exited", zap.Error(err))
		return
	}
	log.Info("notifier stopped")
}
