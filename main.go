package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"burger-forge/bot"
	"burger-forge/config"
	"burger-forge/db"
	"burger-forge/events"
	"burger-forge/httpapi"
	"burger-forge/services"
	"burger-forge/storage"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Check for migrate subcommand
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		runMigrate(ctx, cfg, logger)
		return
	}

	kv, closeKV, err := openStorage(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "storage:", err)
		os.Exit(1)
	}
	defer closeKV()

	var listeners []services.OrderListener

	if cfg.RabbitMQ.URL != "" {
		conn, err := events.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			fmt.Fprintln(os.Stderr, "rabbitmq:", err)
			os.Exit(1)
		}
		defer conn.Close()
		pub, err := events.NewPublisher(conn, logger)
		if err != nil {
			fmt.Fprintln(os.Stderr, "rabbitmq:", err)
			os.Exit(1)
		}
		defer pub.Close()
		listeners = append(listeners, pub)
	}

	kitchen, err := bot.NewKitchen(cfg.Telegram, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "kitchen bot:", err)
		os.Exit(1)
	}
	if kitchen != nil {
		listeners = append(listeners, kitchen)
	}

	toasts := bot.NewToasts()
	logToasts := services.LogNotifier{Logger: logger}
	notifier := services.NotifierFunc(func(owner string, n services.Notification) {
		logToasts.Notify(owner, n)
		toasts.Notify(owner, n)
	})

	defaults := services.EmptyForm
	if cfg.Checkout.DemoDefaults {
		defaults = services.DemoForm
	}

	sessions := services.NewSessions(services.SessionsConfig{
		Menu:       services.DefaultMenu(cfg.Menu.MealUpcharge),
		KV:         kv,
		Settler:    services.NewSimulatedSettler(cfg.Checkout.SettlementDelay),
		NewOrderID: services.NewOrderIDGenerator(cfg.Checkout.OrderIDPrefix),
		Defaults:   defaults,
		Notifier:   notifier,
		Listeners:  listeners,
		Logger:     logger,
	})

	if idle := cfg.Session.IdleTimeout; idle > 0 {
		go sessions.RunSweeper(ctx, max(idle/2, time.Second), idle)
	}

	if cfg.Telegram.Token != "" {
		b, err := bot.New(cfg.Telegram, sessions, toasts, logger)
		if err != nil {
			fmt.Fprintln(os.Stderr, "bot:", err)
			os.Exit(1)
		}
		go b.Start(ctx)
		logger.Info("telegram bot started")
	} else {
		logger.Info("TOKEN not set, telegram bot disabled")
	}

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      httpapi.NewRouter(httpapi.NewHandler(sessions, logger)),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.Checkout.SettlementDelay + 10*time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	if strings.EqualFold(cfg.Env, "development") {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// openStorage returns the configured KV store and a func that releases it.
func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.KV, func(), error) {
	if cfg.Storage.Driver != config.StoragePostgres {
		return storage.NewMemory(), func() {}, nil
	}
	pool, err := db.Open(ctx, cfg.DB)
	if err != nil {
		return nil, nil, err
	}

	// Optional auto-migration (useful in production and for fresh DBs).
	// Set AUTO_MIGRATE=1 (or "true") to enable.
	if v := strings.TrimSpace(os.Getenv("AUTO_MIGRATE")); v == "1" || strings.EqualFold(v, "true") {
		if err := applyMigrations(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return storage.NewPostgres(pool), pool.Close, nil
}

func runMigrate(ctx context.Context, cfg *config.Config, logger *zap.Logger) {
	pool, err := db.Open(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintln(os.Stderr, "db:", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := applyMigrations(ctx, pool, logger); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}
