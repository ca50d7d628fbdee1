package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/ariefcatur/htx-sale/internal/auth"
	"github.com/ariefcatur/htx-sale/internal/config"
	"github.com/ariefcatur/htx-sale/internal/httpx"
	kafkax "github.com/ariefcatur/htx-sale/internal/kafka"
	"github.com/ariefcatur/htx-sale/internal/logger"
	"github.com/ariefcatur/htx-sale/internal/migrate"
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
		fatal("db connect", err)
	}
	defer db.Close()
	if err := migrate.Up(cfg.PostgresDSN); err != nil {
		fatal("migrate", err)
	}
	repo := &sales.Repo{DB: db}

	if err := ensureAdmin(ctx, repo, cfg.AdminPassword, cfg.AdminQRToken); err != nil {
		fatal("seed admin", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	cache := redisx.NewCache(rdb)
	if err := cache.Ping(ctx); err != nil {
		logger.Warn("redis unavailable; running without cache", "addr", cfg.RedisAddr, "err", err)
	}

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, sales.TopicBillCreated, 1024)
	prod.Start(ctx)

	authSvc := auth.NewService(repo, auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL))
	router := httpx.NewRouter()
	httpx.Mount(router, httpx.Deps{
		Store:     repo,
		Cache:     cache,
		Publisher: prod,
		Auth:      authSvc,
		Service:   cfg.ServiceName,
	})

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("listen", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // close inbox -> flush & close writer
	prod.WaitClosed() // drain
	cancel()
}

type userStore interface {
	FindUserByUsername(ctx context.Context, username string) (*sales.User, error)
	UpsertUser(ctx context.Context, u sales.User) error
}

// ensureAdmin creates the default admin login on first boot only. Without a
// configured QR token a random one is generated and logged once.
func ensureAdmin(ctx context.Context, repo userStore, password, qrToken string) error {
	u, err := repo.FindUserByUsername(ctx, "admin")
	if err != nil || u != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if qrToken == "" {
		qrToken = uuid.NewString()
		logger.Warn("ADMIN_QR_TOKEN not set; generated admin qr token", "qr_token", qrToken)
	}
	logger.Info("creating default admin user")
	return repo.UpsertUser(ctx, sales.User{Username: "admin", PasswordHash: hash, QRToken: qrToken, Role: sales.RoleAdmin})
}

func fatal(msg string, err error) {
	logger.Error(msg, "err", err)
	logger.Sync()
	os.Exit(1)
}
