package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/votersync/internal/core/domain"
)

type ElectionRepository interface {
	ListVoterCounts(ctx context.Context) ([]domain.ElectionVoterCount, error)
	GetVoterCount(ctx context.Context, id uuid.UUID) (*domain.ElectionVoterCount, error)
	// LinkedCenters returns every center joined to the election through
	// election_centers, each with its bureaux. A center without bureaux is
	// returned with an empty slice.
	LinkedCenters(ctx context.Context, id uuid.UUID) ([]domain.CenterBureaux, error)
	UpdateVoterCount(ctx context.Context, id uuid.UUID, count int64, updatedAt time.Time) error
}
