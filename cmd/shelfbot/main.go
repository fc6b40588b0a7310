package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/m3rciful/shelfbot/bot"
	"github.com/m3rciful/shelfbot/collection"
	coreconfig "github.com/m3rciful/shelfbot/core/config"
	coredatabase "github.com/m3rciful/shelfbot/core/database"
	"github.com/m3rciful/shelfbot/core/logger"
	tg "github.com/m3rciful/shelfbot/core/telegram"
	"github.com/m3rciful/shelfbot/session"
	"github.com/m3rciful/shelfbot/worker"
)

const maxConcurrentDialogs = 32

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "shelfbot: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := coreconfig.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(cfg); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store collection.Store = collection.NewMemoryStore()
	if cfg.Database.Enabled() {
		if err := coredatabase.RunMigrations(cfg.Database, "migrations"); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		db, err := coredatabase.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		store = collection.NewPostgresStore(db)
	} else {
		logger.Info(ctx, "app", "collections.memory_only")
	}

	lanes := session.NewLanes(maxConcurrentDialogs)
	lanes.Start(ctx)
	defer lanes.Stop()

	workers := worker.NewClient(cfg.Runtime, cfg.RuntimeTimeout())
	router := bot.NewRouter(cfg, session.NewStore(), lanes, workers, collection.NewCollector(store))
	handlers := bot.NewCommands(router, store)
	reg := bot.BuildRegistry(handlers)

	err = tg.RunTelegram(ctx, tg.RunOptions{
		Config:      cfg,
		Registry:    reg,
		Middlewares: tg.DefaultMiddlewares(cfg, nil),
		Routes:      bot.Routes(router, reg),
	})
	if err != nil {
		logger.Error(ctx, "app", "shutdown",
			slog.String("err", err.Error()),
		)
		return err
	}

	logger.Info(ctx, "app", "shutdown", slog.String("status", "ok"))
	return nil
}
