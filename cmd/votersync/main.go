package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/vncsmyrnk/votersync/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/votersync/internal/config"
	"github.com/vncsmyrnk/votersync/internal/core/services"
)

// votersync runs a single reconciliation pass and exits, for use from cron.
func main() {
	os.Exit(run())
}

func run() int {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found")
	}

	cfg, err := config.Load("votersync", os.Args[1:])
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		return 1
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	// Use a timeout for the job execution to prevent it from hanging indefinitely
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := postgres.Open(ctx, cfg.Database.ConnString())
	if err != nil {
		slog.Error("Database connection failed", "error", err)
		return 1
	}
	defer db.Close()

	electionRepo := postgres.NewElectionRepository(db)
	centerRepo := postgres.NewCenterRepository(db)

	tally := services.NewTallyService(electionRepo, centerRepo)

	opts := []services.SchedulerOption{services.WithPassTimeout(cfg.Sync.PassTimeout)}
	if cfg.Sync.ReconcileCenters {
		opts = append(opts, services.WithCenterReconciliation(centerRepo))
	}
	scheduler := services.NewSyncScheduler(tally, electionRepo, opts...)

	slog.Info("Starting voter sync job")

	report := scheduler.SyncAllElections(ctx)
	if report.Error != "" || report.Failed > 0 || report.CentersFailed > 0 {
		slog.Error("Voter sync finished with errors",
			"error", report.Error,
			"failed", report.Failed,
			"centers_failed", report.CentersFailed)
		return 1
	}

	slog.Info("Voter sync completed successfully", "updated", report.Updated, "centers_updated", report.CentersUpdated)
	return 0
}
