package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/watchdeck/watchdeck/internal/api"
	"github.com/watchdeck/watchdeck/internal/config"
	"github.com/watchdeck/watchdeck/internal/finnhub"
	"github.com/watchdeck/watchdeck/internal/kafka"
	"github.com/watchdeck/watchdeck/internal/logging"
	"github.com/watchdeck/watchdeck/internal/names"
	"github.com/watchdeck/watchdeck/internal/quote"
	"github.com/watchdeck/watchdeck/internal/ratelimit"
	"github.com/watchdeck/watchdeck/internal/search"
	"github.com/watchdeck/watchdeck/internal/store"
	"github.com/watchdeck/watchdeck/internal/watchlist"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	logger := logging.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := buildStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	client := finnhub.NewClient(cfg.Finnhub.APIKey, cfg.Finnhub.BaseURL, cfg.Finnhub.Timeout)
	searchSvc := search.NewService(client, logger)
	resolver := names.NewResolver(ctx, st, client, logger)
	quoteSvc := quote.NewService(client, resolver, quote.NewCache(quote.DefaultCacheTTL))
	limiter := ratelimit.NewLimiter(st, logger)

	var events watchlist.EventPublisher
	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		events = producer
	}

	coreCfg := watchlist.DefaultConfig()
	coreCfg.Capacity = cfg.Watchlist.Capacity
	coreCfg.RefreshInterval = cfg.Watchlist.RefreshInterval
	core := watchlist.New(coreCfg, quoteSvc, searchSvc, st, limiter, events, nil, logger)

	if err := core.Restore(ctx); err != nil {
		logger.Warn("failed to restore previous session", "error", err)
	}

	go core.Run(ctx)

	if cfg.Kafka.Enabled() {
		consumer := kafka.NewRefreshConsumer(
			cfg.Kafka.Brokers, cfg.Kafka.RefreshTopic, cfg.Kafka.GroupID, core, logger)
		go func() {
			if err := consumer.Start(ctx); err != nil {
				logger.Error("refresh consumer stopped", "error", err)
			}
		}()
	}

	router := api.SetupRoutes(api.NewHandler(core))
	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("watchdeck listening", "addr", srv.Addr, "store", cfg.Store.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildStore constructs the snapshot store selected by configuration
func buildStore(cfg *config.Config) (store.Store, func(), error) {
	switch cfg.Store.Backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		})
		return store.NewRedisStore(rdb), func() { rdb.Close() }, nil
	case "postgres":
		pg, err := store.NewPostgresStore(cfg.Store.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := pg.RunMigrations(); err != nil {
			pg.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return pg, func() { pg.Close() }, nil
	case "memory":
		return store.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
