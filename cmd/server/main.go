package main

import (
	"context"
	"errors"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vncsmyrnk/votersync/internal/adapters/handler/http"
	"github.com/vncsmyrnk/votersync/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/votersync/internal/config"
	"github.com/vncsmyrnk/votersync/internal/core/services"
	"github.com/vncsmyrnk/votersync/internal/telemetry"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found")
	}

	cfg, err := config.Load("server", os.Args[1:])
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		return 1
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.Database.ConnString())
	if err != nil {
		slog.Error("Database connection failed", "error", err)
		return 1
	}
	defer db.Close()

	meterProvider, shutdownMetrics, err := telemetry.NewPrometheusMeterProvider()
	if err != nil {
		slog.Error("Metrics setup failed", "error", err)
		return 1
	}
	syncMetrics, err := telemetry.NewSyncMetrics(meterProvider)
	if err != nil {
		slog.Error("Metrics setup failed", "error", err)
		return 1
	}

	// Initialize Repositories
	electionRepo := postgres.NewElectionRepository(db)
	centerRepo := postgres.NewCenterRepository(db)

	// Initialize Services
	tally := services.NewTallyService(electionRepo, centerRepo)

	opts := []services.SchedulerOption{
		services.WithInterval(cfg.Sync.Interval),
		services.WithPassTimeout(cfg.Sync.PassTimeout),
		services.WithSyncMetrics(syncMetrics),
	}
	if cfg.Sync.ReconcileCenters {
		opts = append(opts, services.WithCenterReconciliation(centerRepo))
	}
	scheduler := services.NewSyncScheduler(tally, electionRepo, opts...)

	handler := http.NewHandler(
		http.NewSyncHandler(scheduler),
		http.NewVotersHandler(tally),
		promhttp.Handler(),
	)
	server := &stdhttp.Server{Addr: cfg.HTTPAddr, Handler: handler}

	go func() {
		slog.Info("Listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			stop()
		}
	}()

	go scheduler.Start(ctx)

	<-ctx.Done()
	slog.Info("Gracefully shutting down...")

	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	if err := shutdownMetrics(shutdownCtx); err != nil {
		slog.Error("Metrics shutdown failed", "error", err)
	}

	return 0
}
