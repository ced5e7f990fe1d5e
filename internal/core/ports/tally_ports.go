package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/votersync/internal/core/domain"
)

type TallyService interface {
	// ComputeElectionTotalVoters and ComputeCenterTotalVoters never fail:
	// anything that prevents a tally is logged and reported as 0.
	ComputeElectionTotalVoters(ctx context.Context, electionID uuid.UUID) int64
	ComputeCenterTotalVoters(ctx context.Context, centerID uuid.UUID) int64

	// TallyElection and TallyCenter distinguish a real zero from a failed
	// read. Errors wrap domain.ErrTallyUnavailable.
	TallyElection(ctx context.Context, electionID uuid.UUID) (domain.Tally, error)
	TallyCenter(ctx context.Context, centerID uuid.UUID) (domain.Tally, error)

	ApplyElectionTotalVoters(ctx context.Context, electionID uuid.UUID)
	ApplyCenterTotalVoters(ctx context.Context, centerID uuid.UUID)

	StoreElectionTotal(ctx context.Context, electionID uuid.UUID, total int64) error
	StoreCenterTotal(ctx context.Context, centerID uuid.UUID, total int64) error
}
