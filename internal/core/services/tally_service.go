package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/votersync/internal/core/domain"
	"github.com/vncsmyrnk/votersync/internal/core/ports"
)

type tallyService struct {
	electionRepo ports.ElectionRepository
	centerRepo   ports.CenterRepository
	now          func() time.Time
}

func NewTallyService(electionRepo ports.ElectionRepository, centerRepo ports.CenterRepository) ports.TallyService {
	return &tallyService{
		electionRepo: electionRepo,
		centerRepo:   centerRepo,
		now:          time.Now,
	}
}

func (s *tallyService) TallyElection(ctx context.Context, electionID uuid.UUID) (domain.Tally, error) {
	centers, err := s.electionRepo.LinkedCenters(ctx, electionID)
	if err != nil {
		return domain.Tally{}, fmt.Errorf("%w: failed to fetch centers of election %s: %w", domain.ErrTallyUnavailable, electionID, err)
	}

	var tally domain.Tally
	for _, c := range centers {
		tally.Centers++
		tally.Bureaux += len(c.Bureaux)
		tally.TotalVoters += c.TotalVoters()
	}

	return tally, nil
}

func (s *tallyService) TallyCenter(ctx context.Context, centerID uuid.UUID) (domain.Tally, error) {
	bureaux, err := s.centerRepo.Bureaux(ctx, centerID)
	if err != nil {
		return domain.Tally{}, fmt.Errorf("%w: failed to fetch bureaux of center %s: %w", domain.ErrTallyUnavailable, centerID, err)
	}

	return domain.Tally{
		TotalVoters: domain.SumRegisteredVoters(bureaux),
		Centers:     1,
		Bureaux:     len(bureaux),
	}, nil
}

func (s *tallyService) ComputeElectionTotalVoters(ctx context.Context, electionID uuid.UUID) int64 {
	tally, err := s.TallyElection(ctx, electionID)
	if err != nil {
		slog.Error("Failed to compute election voters, reporting 0", "election_id", electionID, "error", err)
		return 0
	}
	if tally.Centers == 0 {
		slog.Debug("Election has no linked centers", "election_id", electionID)
	}
	return tally.TotalVoters
}

func (s *tallyService) ComputeCenterTotalVoters(ctx context.Context, centerID uuid.UUID) int64 {
	tally, err := s.TallyCenter(ctx, centerID)
	if err != nil {
		slog.Error("Failed to compute center voters, reporting 0", "center_id", centerID, "error", err)
		return 0
	}
	return tally.TotalVoters
}

func (s *tallyService) StoreElectionTotal(ctx context.Context, electionID uuid.UUID, total int64) error {
	if err := s.electionRepo.UpdateVoterCount(ctx, electionID, total, s.now().UTC()); err != nil {
		return fmt.Errorf("failed to store voters of election %s: %w", electionID, err)
	}
	return nil
}

func (s *tallyService) StoreCenterTotal(ctx context.Context, centerID uuid.UUID, total int64) error {
	if err := s.centerRepo.UpdateTotalVoters(ctx, centerID, total, s.now().UTC()); err != nil {
		return fmt.Errorf("failed to store voters of center %s: %w", centerID, err)
	}
	return nil
}

// ApplyElectionTotalVoters recomputes the election total and writes it back
// when it differs from the cached nb_electeurs. A tally that could not be
// determined leaves the cache untouched.
func (s *tallyService) ApplyElectionTotalVoters(ctx context.Context, electionID uuid.UUID) {
	current, err := s.electionRepo.GetVoterCount(ctx, electionID)
	if err != nil {
		if errors.Is(err, domain.ErrElectionNotFound) {
			slog.Warn("Election not found, nothing to apply", "election_id", electionID)
			return
		}
		slog.Error("Failed to read election voter count", "election_id", electionID, "error", err)
		return
	}

	tally, err := s.TallyElection(ctx, electionID)
	if err != nil {
		slog.Error("Skipping election write-back", "election_id", electionID, "error", err)
		return
	}

	if current.Matches(tally.TotalVoters) {
		slog.Debug("Election voters already up to date", "election_id", electionID, "total_voters", tally.TotalVoters)
		return
	}

	if err := s.StoreElectionTotal(ctx, electionID, tally.TotalVoters); err != nil {
		slog.Error("Election write-back failed", "election_id", electionID, "error", err)
		return
	}

	slog.Info("Election voters updated", "election_id", electionID, "total_voters", tally.TotalVoters)
}

func (s *tallyService) ApplyCenterTotalVoters(ctx context.Context, centerID uuid.UUID) {
	current, err := s.centerRepo.GetVoterCount(ctx, centerID)
	if err != nil {
		if errors.Is(err, domain.ErrCenterNotFound) {
			slog.Warn("Center not found, nothing to apply", "center_id", centerID)
			return
		}
		slog.Error("Failed to read center voter count", "center_id", centerID, "error", err)
		return
	}

	tally, err := s.TallyCenter(ctx, centerID)
	if err != nil {
		slog.Error("Skipping center write-back", "center_id", centerID, "error", err)
		return
	}

	if current.Matches(tally.TotalVoters) {
		return
	}

	if err := s.StoreCenterTotal(ctx, centerID, tally.TotalVoters); err != nil {
		slog.Error("Center write-back failed", "center_id", centerID, "error", err)
		return
	}

	slog.Info("Center voters updated", "center_id", centerID, "total_voters", tally.TotalVoters)
}
