package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/votersync/internal/core/domain"
)

type CenterRepository interface {
	ListVoterCounts(ctx context.Context) ([]domain.CenterVoterCount, error)
	GetVoterCount(ctx context.Context, id uuid.UUID) (*domain.CenterVoterCount, error)
	Bureaux(ctx context.Context, id uuid.UUID) ([]domain.BureauCount, error)
	UpdateTotalVoters(ctx context.Context, id uuid.UUID, count int64, updatedAt time.Time) error
}
