package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/joho/godotenv"

	"github.com/vncsmyrnk/votersync/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/votersync/internal/config"
)

// migrations executes a single SQL migration file, e.g.
//
//	go run ./cmd/migrations voter_hierarchy.up
func main() {
	os.Exit(run())
}

func run() int {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found")
	}

	cfg, err := config.Load("migrations", os.Args[1:])
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		return 1
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	if len(cfg.Args) < 1 {
		slog.Error("A migration name is required")
		return 1
	}
	migrationName := cfg.Args[0]

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := postgres.Open(ctx, cfg.Database.ConnString())
	if err != nil {
		slog.Error("Database connection failed", "error", err)
		return 1
	}
	defer db.Close()

	basePath := filepath.Join(".", "internal", "adapters", "repository", "postgres", "migrations")
	fileContent, err := migrationFileContent(basePath, migrationName)
	if err != nil {
		slog.Error("Failed to read migration", "migration", migrationName, "error", err)
		return 1
	}

	if _, err := db.ExecContext(ctx, string(fileContent)); err != nil {
		slog.Error("Failed to execute SQL file", "migration", migrationName, "error", err)
		return 1
	}

	slog.Info("Migration file executed successfully", "migration", migrationName)

	return 0
}

func migrationFileContent(basePath string, migrationName string) ([]byte, error) {
	fileName, err := migrationFileName(basePath, migrationName)
	if err != nil {
		return nil, err
	}

	return os.ReadFile(filepath.Join(basePath, fileName))
}

func migrationFileName(basePath string, migrationName string) (string, error) {
	regex, err := regexp.Compile(fmt.Sprintf(`^.*%s\.sql$`, regexp.QuoteMeta(migrationName)))
	if err != nil {
		return "", fmt.Errorf("invalid migration name: %w", err)
	}

	files, err := os.ReadDir(basePath)
	if err != nil {
		return "", fmt.Errorf("failed to list migrations: %w", err)
	}

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		if regex.MatchString(f.Name()) {
			return f.Name(), nil
		}
	}

	return "", fmt.Errorf("migration file not found")
}
