// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shivanand-hulikatti/campus-event-booking/internal/config"
	"github.com/Shivanand-hulikatti/campus-event-booking/internal/database"
	"github.com/Shivanand-hulikatti/campus-event-booking/internal/handler"
	"github.com/Shivanand-hulikatti/campus-event-booking/internal/notify"
	"github.com/Shivanand-hulikatti/campus-event-booking/internal/repository"
	"github.com/Shivanand-hulikatti/campus-event-booking/internal/repository/postgres"
	"github.com/Shivanand-hulikatti/campus-event-booking/internal/repository/sqlite"
	"github.com/Shivanand-hulikatti/campus-event-booking/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := cfg.NewLogger()
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 1. Open the store ─────────────────────────────────────────────────
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	// ── 2. Notification sinks ────────────────────────────────────────────
	hub := notify.NewHub(log)
	go hub.Run(ctx)

	sinks := notify.Multi{notify.NewLogger(log)}
	if cfg.RedisAddr != "" {
		rp, err := notify.NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisChannel)
		if err != nil {
			return err
		}
		defer rp.Close()
		// Every instance publishes to Redis and feeds its own websocket
		// clients from the channel.
		sinks = append(sinks, rp)
		go func() {
			if err := rp.Relay(ctx, hub, log); err != nil {
				log.Error("redis relay stopped", "err", err)
			}
		}()
		log.Info("redis notifications enabled", "addr", cfg.RedisAddr, "channel", cfg.RedisChannel)
	} else {
		sinks = append(sinks, hub)
	}

	// ── 3. Wire up layers ────────────────────────────────────────────────
	booking := service.New(store, service.Options{
		Notifier: sinks,
		Logger:   log,
		Location: cfg.Location,
	})
	router := handler.NewRouter(handler.New(booking, hub, log), handler.RouterConfig{
		CORSOrigins:   cfg.CORSOrigins,
		RatePerSecond: cfg.RateLimit,
		RateBurst:     cfg.RateBurst,
	}, log)

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr, "store", cfg.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Block until SIGINT/SIGTERM or a listener failure.
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("server stopped")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (repository.Store, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info("using sqlite store", "path", cfg.SQLitePath)
		return sqlite.NewStore(db), nil
	default:
		pool, err := database.NewPool(ctx, cfg.Postgres, log)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info("connected to postgres", "host", cfg.Postgres.Host, "db", cfg.Postgres.DBName)
		return postgres.NewStore(pool), nil
	}
}
