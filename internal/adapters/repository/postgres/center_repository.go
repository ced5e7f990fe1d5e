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

type centerRepository struct {
	db *sql.DB
}

func NewCenterRepository(db *sql.DB) ports.CenterRepository {
	return &centerRepository{
		db: db,
	}
}

func (r *centerRepository) ListVoterCounts(ctx context.Context) ([]domain.CenterVoterCount, error) {
	query := `
		SELECT id, name, total_voters
		FROM voting_centers
		ORDER BY name, id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list voting centers: %w", err)
	}
	defer rows.Close()

	var centers []domain.CenterVoterCount
	for rows.Next() {
		var (
			c     domain.CenterVoterCount
			total sql.NullInt64
		)
		if err := rows.Scan(&c.ID, &c.Name, &total); err != nil {
			return nil, fmt.Errorf("failed to scan voting center: %w", err)
		}
		c.TotalVoters = nullInt64Ptr(total)
		centers = append(centers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating voting centers: %w", err)
	}
	return centers, nil
}

func (r *centerRepository) GetVoterCount(ctx context.Context, id uuid.UUID) (*domain.CenterVoterCount, error) {
	query := `SELECT id, name, total_voters FROM voting_centers WHERE id = $1`

	var (
		c     domain.CenterVoterCount
		total sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCenterNotFound
		}
		return nil, fmt.Errorf("failed to get voting center: %w", err)
	}
	c.TotalVoters = nullInt64Ptr(total)
	return &c, nil
}

func (r *centerRepository) Bureaux(ctx context.Context, id uuid.UUID) ([]domain.BureauCount, error) {
	query := `
		SELECT id, registered_voters
		FROM voting_bureaux
		WHERE center_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bureaux of center %s: %w", id, err)
	}
	defer rows.Close()

	bureaux := []domain.BureauCount{}
	for rows.Next() {
		var (
			b      domain.BureauCount
			voters sql.NullInt64
		)
		if err := rows.Scan(&b.ID, &voters); err != nil {
			return nil, fmt.Errorf("failed to scan bureau: %w", err)
		}
		b.RegisteredVoters = nullInt64Ptr(voters)
		bureaux = append(bureaux, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bureaux: %w", err)
	}
	return bureaux, nil
}

func (r *centerRepository) UpdateTotalVoters(ctx context.Context, id uuid.UUID, count int64, updatedAt time.Time) error {
	query := `UPDATE voting_centers SET total_voters = $1, updated_at = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, count, updatedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update voters of center %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrCenterNotFound
	}
	return nil
}
