package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/votersync/internal/core/domain"
	"github.com/vncsmyrnk/votersync/internal/core/ports"
)

type electionRepository struct {
	db *sql.DB
}

func NewElectionRepository(db *sql.DB) ports.ElectionRepository {
	return &electionRepository{
		db: db,
	}
}

func (r *electionRepository) ListVoterCounts(ctx context.Context) ([]domain.ElectionVoterCount, error) {
	query := `
		SELECT id, title, status, nb_electeurs
		FROM elections
		ORDER BY date DESC NULLS LAST, id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list elections: %w", err)
	}
	defer rows.Close()

	var elections []domain.ElectionVoterCount
	for rows.Next() {
		e, err := scanElectionVoterCount(rows)
		if err != nil {
			return nil, err
		}
		elections = append(elections, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating elections: %w", err)
	}
	return elections, nil
}

func (r *electionRepository) GetVoterCount(ctx context.Context, id uuid.UUID) (*domain.ElectionVoterCount, error) {
	query := `
		SELECT id, title, status, nb_electeurs
		FROM elections
		WHERE id = $1
	`
	e, err := scanElectionVoterCount(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrElectionNotFound
		}
		return nil, err
	}
	return e, nil
}

// LinkedCenters walks election_centers -> voting_centers -> voting_bureaux in
// a single query. Rows come back ordered by center so they can be grouped
// without a map.
func (r *electionRepository) LinkedCenters(ctx context.Context, id uuid.UUID) ([]domain.CenterBureaux, error) {
	query := `
		SELECT ec.center_id, b.id, b.registered_voters
		FROM election_centers ec
		LEFT JOIN voting_bureaux b ON b.center_id = ec.center_id
		WHERE ec.election_id = $1
		ORDER BY ec.center_id, b.id
	`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch centers of election %s: %w", id, err)
	}
	defer rows.Close()

	var centers []domain.CenterBureaux
	for rows.Next() {
		var (
			centerID uuid.UUID
			bureauID uuid.NullUUID
			voters   sql.NullInt64
		)
		if err := rows.Scan(&centerID, &bureauID, &voters); err != nil {
			return nil, fmt.Errorf("failed to scan center bureau: %w", err)
		}

		if len(centers) == 0 || centers[len(centers)-1].CenterID != centerID {
			centers = append(centers, domain.CenterBureaux{CenterID: centerID, Bureaux: []domain.BureauCount{}})
		}
		// LEFT JOIN yields one all-null bureau row for centers without bureaux
		if !bureauID.Valid {
			continue
		}

		last := &centers[len(centers)-1]
		last.Bureaux = append(last.Bureaux, domain.BureauCount{
			ID:               bureauID.UUID,
			RegisteredVoters: nullInt64Ptr(voters),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating center bureaux: %w", err)
	}
	return centers, nil
}

func (r *electionRepository) UpdateVoterCount(ctx context.Context, id uuid.UUID, count int64, updatedAt time.Time) error {
	query := `UPDATE elections SET nb_electeurs = $1, updated_at = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, count, updatedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update voters of election %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrElectionNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanElectionVoterCount(row rowScanner) (*domain.ElectionVoterCount, error) {
	var (
		e      domain.ElectionVoterCount
		status string
		count  sql.NullInt64
	)
	if err := row.Scan(&e.ID, &e.Title, &status, &count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan election: %w", err)
	}
	e.Status = domain.ElectionStatus(status)
	e.VoterCount = nullInt64Ptr(count)
	return &e, nil
}

func nullInt64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
