package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	pgContainer, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("user"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func applyMigrations(db *sql.DB) error {
	dirPath := "migrations"

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "up.sql") {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dirPath, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

// setupTestDB starts a disposable postgres with the schema applied.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	container, connStr, err := setupPostgresContainer(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	db, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, applyMigrations(db))
	return db
}

func insertElection(t *testing.T, db *sql.DB, title string, voters *int64) string {
	t.Helper()
	var id string
	err := db.QueryRow(
		`INSERT INTO elections (title, date, status, nb_electeurs) VALUES ($1, CURRENT_DATE, 'planned', $2) RETURNING id`,
		title, voters,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func insertCenter(t *testing.T, db *sql.DB, name string, voters *int64) string {
	t.Helper()
	var id string
	err := db.QueryRow(
		`INSERT INTO voting_centers (name, total_voters) VALUES ($1, $2) RETURNING id`,
		name, voters,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func insertBureau(t *testing.T, db *sql.DB, centerID, name string, voters *int64) {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO voting_bureaux (center_id, name, registered_voters) VALUES ($1, $2, $3)`,
		centerID, name, voters,
	)
	require.NoError(t, err)
}

func linkCenter(t *testing.T, db *sql.DB, electionID, centerID string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO election_centers (election_id, center_id) VALUES ($1, $2)`, electionID, centerID)
	require.NoError(t, err)
}

func int64Ptr(v int64) *int64 {
	return &v
}
