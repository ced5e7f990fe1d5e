package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/votersync/internal/core/domain"
)

type SyncService interface {
	SyncAllElections(ctx context.Context) domain.PassReport
	SyncElection(ctx context.Context, electionID uuid.UUID)
	SyncCenter(ctx context.Context, centerID uuid.UUID)
	Status() domain.SyncStatus
}
