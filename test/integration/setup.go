package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	dbName := "testdb"
	user := "user"
	password := "password"

	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(user),
		postgres.WithPassword(password),
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
	dirPath := "../../internal/adapters/repository/postgres/migrations"

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if !strings.HasSuffix(entry.Name(), "up.sql") {
			continue
		}

		fullPath := filepath.Join(dirPath, entry.Name())
		content, err := os.ReadFile(fullPath)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		_, err = db.Exec(string(content))
		if err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

// seedCenter creates a voting center with one bureau per entry of voters.
func seedCenter(t *testing.T, db *sql.DB, name string, voters ...*int64) string {
	t.Helper()

	var centerID string
	err := db.QueryRow(`INSERT INTO voting_centers (name) VALUES ($1) RETURNING id`, name).Scan(&centerID)
	require.NoError(t, err)

	for i, v := range voters {
		_, err := db.Exec(
			`INSERT INTO voting_bureaux (center_id, name, registered_voters) VALUES ($1, $2, $3)`,
			centerID, fmt.Sprintf("%s - Bureau %d", name, i+1), v,
		)
		require.NoError(t, err)
	}

	return centerID
}

func seedElection(t *testing.T, db *sql.DB, title string, centerIDs ...string) string {
	t.Helper()

	var electionID string
	err := db.QueryRow(
		`INSERT INTO elections (title, date, status) VALUES ($1, CURRENT_DATE, 'planned') RETURNING id`,
		title,
	).Scan(&electionID)
	require.NoError(t, err)

	for _, centerID := range centerIDs {
		_, err := db.Exec(`INSERT INTO election_centers (election_id, center_id) VALUES ($1, $2)`, electionID, centerID)
		require.NoError(t, err)
	}

	return electionID
}

func cachedElectionVoters(t *testing.T, db *sql.DB, electionID string) sql.NullInt64 {
	t.Helper()

	var voters sql.NullInt64
	err := db.QueryRow(`SELECT nb_electeurs FROM elections WHERE id = $1`, electionID).Scan(&voters)
	require.NoError(t, err)
	return voters
}

func int64Ptr(v int64) *int64 {
	return &v
}
