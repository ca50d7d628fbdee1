package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/htx-sale/internal/config"
	kafkax "github.com/ariefcatur/htx-sale/internal/kafka"
	"github.com/ariefcatur/htx-sale/internal/logger"
	"github.com/ariefcatur/htx-sale/internal/notify"
	"github.com/ariefcatur/htx-sale/internal/postgres"
	"github.com/ariefcatur/htx-sale/internal/redisx"
	"github.com/ariefcatur/htx-sale/internal/sales"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger.Init(cfg.Env)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Producer: stock alerts
	low := kafkax.NewProducer(cfg.KafkaBrokers, sales.TopicStockLow, 256)
	low.Start(ctx)

	svc := &notify.Service{
		Inventory:   &sales.Repo{DB: db},
		Dedup:       redisx.NewCache(rdb),
		StockLow:    low,
		ServiceName: cfg.NotifierName,
		Threshold:   cfg.LowStockThreshold,
	}

	// Consumer
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.NotifierGroup, sales.TopicBillCreated, cfg.NotifierWorkers)
	done := make(chan struct{})
	go func() {
		defer close(done)
		logger.Info("notifier consumer started",
			"group", cfg.NotifierGroup, "topic", sales.TopicBillCreated, "workers", cfg.NotifierWorkers)
		if err := cons.Start(ctx, svc.HandleBillCreated); err != nil {
			logger.Error("consumer exit", "err", err)
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	logger.Info("shutting down consumer")
	cancel()
	<-done
	low.Close()
	low.WaitClosed()
}
