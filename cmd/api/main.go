package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chatwire/chatwire/internal/broadcast"
	"github.com/chatwire/chatwire/internal/config"
	"github.com/chatwire/chatwire/internal/data"
	"github.com/chatwire/chatwire/internal/db"
	"github.com/chatwire/chatwire/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// Exit codes to provide meaningful status to the operating system or
// service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// main is a thin wrapper so every defer in run executes before exit.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "chatwire terminated with error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// 1. Configuration & logger
	cfg, err := config.Load()
	if err != nil {
		return exitConfig, err
	}
	log, err := cfg.Logger()
	if err != nil {
		return exitConfig, err
	}

	ctx := context.Background()

	// 2. Database
	dbClient, err := db.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to connect to DB: %w", err)
	}
	defer func() {
		_ = dbClient.Close(ctx)
	}()

	// Ensure indexes exist; duplicate-username detection depends on the
	// unique index being in place.
	if err := dbClient.CreateIndexes(ctx); err != nil {
		return exitRuntime, fmt.Errorf("failed to create indexes: %w", err)
	}

	// 3. Stores & services
	usersStore := data.NewUsersStore(dbClient.UsersCollection())
	msgsStore := data.NewMessagesStore(dbClient.MessagesCollection())

	usersSvc := service.NewUsers(usersStore, log)
	msgsSvc := service.NewMessages(msgsStore, log)

	// 4. Broadcast channel + listener fan-out
	events, err := broadcast.Connect(cfg.NATSURL)
	if err != nil {
		return exitRuntime, err
	}
	defer events.Close()

	hub := NewHub()
	sub, err := bridgeEvents(events, hub, log)
	if err != nil {
		return exitRuntime, err
	}
	defer func() {
		_ = sub.Unsubscribe()
	}()

	// 5. HTTP server
	srv := newServer(usersSvc, msgsSvc, events, log)
	app := fiber.New()
	app.Use(logger.New())
	registerRoutes(app, srv)
	registerListenerRoute(app, hub, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", cfg.Addr())
		errCh <- app.Listen(cfg.Addr())
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return exitRuntime, fmt.Errorf("http server exit: %w", err)
		}
	case <-stop:
		log.Info("shutting down http server")
		if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
			return exitRuntime, fmt.Errorf("shutdown failed: %w", err)
		}
	}

	return exitOK, nil
}
