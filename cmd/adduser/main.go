// Command adduser creates a login or resets an existing one.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/htx-sale/internal/auth"
	"github.com/ariefcatur/htx-sale/internal/config"
	"github.com/ariefcatur/htx-sale/internal/logger"
	"github.com/ariefcatur/htx-sale/internal/migrate"
	"github.com/ariefcatur/htx-sale/internal/postgres"
	"github.com/ariefcatur/htx-sale/internal/sales"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger.Init(cfg.Env)
	defer logger.Sync()

	username := flag.String("username", "", "login name (required)")
	password := flag.String("password", "", "password (required)")
	role := flag.String("role", string(sales.RoleUser), "admin or user")
	qr := flag.String("qr", "", "optional QR login token")
	flag.Parse()

	if *username == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}
	r := sales.Role(*role)
	if r != sales.RoleAdmin && r != sales.RoleUser {
		fmt.Fprintf(os.Stderr, "invalid role %q\n", *role)
		os.Exit(2)
	}

	if err := run(cfg, sales.User{Username: *username, QRToken: *qr, Role: r}, *password); err != nil {
		logger.Error("adduser failed", "username", *username, "err", err)
		logger.Sync()
		os.Exit(1)
	}
	fmt.Printf("user %s saved (role %s)\n", *username, r)
}

func run(cfg config.Config, u sales.User, password string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := migrate.Up(cfg.PostgresDSN); err != nil {
		return err
	}

	if u.PasswordHash, err = auth.HashPassword(password); err != nil {
		return err
	}
	return (&sales.Repo{DB: db}).UpsertUser(ctx, u)
}
