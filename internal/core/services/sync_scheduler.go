package services

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/vncsmyrnk/votersync/internal/core/domain"
	"github.com/vncsmyrnk/votersync/internal/core/ports"
	"github.com/vncsmyrnk/votersync/internal/telemetry"
)

const (
	DefaultSyncInterval = 30 * time.Second

	passKey = "sync-all"
)

var _ ports.SyncService = (*SyncScheduler)(nil)

// SyncScheduler periodically reconciles the cached voter totals of every
// election (and optionally every voting center) with bureau-level counts.
// Overlapping passes, scheduled or manual, are merged into one.
type SyncScheduler struct {
	tally        ports.TallyService
	electionRepo ports.ElectionRepository
	centerRepo   ports.CenterRepository

	interval         time.Duration
	passTimeout      time.Duration
	reconcileCenters bool
	metrics          *telemetry.SyncMetrics
	now              func() time.Time

	passes  singleflight.Group
	syncing atomic.Bool

	mu         sync.Mutex
	running    bool
	cancel     context.CancelFunc
	done       chan struct{}
	lastPassAt *time.Time
	lastReport *domain.PassReport
}

type SchedulerOption func(*SyncScheduler)

// WithInterval sets the delay between scheduled passes. Non-positive values are ignored.
func WithInterval(d time.Duration) SchedulerOption {
	return func(s *SyncScheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithPassTimeout bounds each pass. Zero means no timeout.
func WithPassTimeout(d time.Duration) SchedulerOption {
	return func(s *SyncScheduler) {
		s.passTimeout = d
	}
}

// WithCenterReconciliation makes every pass also reconcile center totals.
// It requires a center repository.
func WithCenterReconciliation(centerRepo ports.CenterRepository) SchedulerOption {
	return func(s *SyncScheduler) {
		s.centerRepo = centerRepo
		s.reconcileCenters = centerRepo != nil
	}
}

func WithSyncMetrics(metrics *telemetry.SyncMetrics) SchedulerOption {
	return func(s *SyncScheduler) {
		s.metrics = metrics
	}
}

func NewSyncScheduler(tally ports.TallyService, electionRepo ports.ElectionRepository, opts ...SchedulerOption) *SyncScheduler {
	s := &SyncScheduler{
		tally:        tally,
		electionRepo: electionRepo,
		interval:     DefaultSyncInterval,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start runs one pass immediately and then one every interval until Stop
// is called or ctx is cancelled. Calling Start on a running scheduler does nothing.
// Start returns once the initial pass has completed.
func (s *SyncScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		slog.Debug("Sync scheduler already running")
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.running = true
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	slog.Info("Starting voter sync scheduler",
		"interval", s.interval,
		"reconcile_centers", s.reconcileCenters)

	s.SyncAllElections(context.WithoutCancel(loopCtx))

	go s.loop(loopCtx, done)
}

func (s *SyncScheduler) loop(ctx context.Context, done chan struct{}) {
	defer func() {
		s.mu.Lock()
		if s.done == done {
			s.running = false
			s.cancel = nil
			s.done = nil
		}
		s.mu.Unlock()
		close(done)
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// Wait for the pass even if Stop is called meanwhile, so Stop
			// returns only once no scheduled pass is running.
			s.SyncAllElections(context.WithoutCancel(ctx))
		case <-ctx.Done():
			slog.Info("Voter sync scheduler stopping")
			return
		}
	}
}

// Stop prevents further scheduled passes and waits for the loop to exit.
// A pass already in flight is not cancelled; Stop waits for it to finish.
// It is safe to call before Start and more than once.
func (s *SyncScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.running = false
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	cancel()
	<-done
}

func (s *SyncScheduler) Status() domain.SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.SyncStatus{
		IsRunning:  s.running,
		Syncing:    s.syncing.Load(),
		Interval:   s.interval,
		LastPassAt: s.lastPassAt,
		LastReport: s.lastReport,
	}
}

// SyncAllElections runs a reconciliation pass. A caller arriving while a
// pass is already in flight waits for it and receives its report.
// The pass itself is detached from the caller: cancelling ctx only stops
// this caller from waiting, and the pass runs to completion for the others.
func (s *SyncScheduler) SyncAllElections(ctx context.Context) domain.PassReport {
	passCtx := context.WithoutCancel(ctx)
	results := s.passes.DoChan(passKey, func() (interface{}, error) {
		return s.runPass(passCtx), nil
	})

	select {
	case res := <-results:
		if res.Shared {
			slog.Debug("Joined in-flight sync pass")
		}
		return res.Val.(domain.PassReport)
	case <-ctx.Done():
		slog.Debug("Stopped waiting for sync pass", "error", ctx.Err())
		return domain.PassReport{StartedAt: s.now(), Error: ctx.Err().Error()}
	}
}

func (s *SyncScheduler) SyncElection(ctx context.Context, electionID uuid.UUID) {
	s.tally.ApplyElectionTotalVoters(ctx, electionID)
}

func (s *SyncScheduler) SyncCenter(ctx context.Context, centerID uuid.UUID) {
	s.tally.ApplyCenterTotalVoters(ctx, centerID)
}

func (s *SyncScheduler) runPass(ctx context.Context) domain.PassReport {
	s.syncing.Store(true)
	defer s.syncing.Store(false)

	if s.passTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.passTimeout)
		defer cancel()
	}

	report := domain.PassReport{StartedAt: s.now()}
	s.syncElections(ctx, &report)
	if s.reconcileCenters && report.Error == "" {
		s.syncCenters(ctx, &report)
	}
	report.Duration = s.now().Sub(report.StartedAt)

	s.metrics.RecordPassDuration(ctx, report.Duration)

	s.mu.Lock()
	finishedAt := report.StartedAt.Add(report.Duration)
	s.lastPassAt = &finishedAt
	s.lastReport = &report
	s.mu.Unlock()

	slog.Info("Sync pass completed",
		"elections", report.Elections,
		"updated", report.Updated,
		"failed", report.Failed,
		"centers", report.Centers,
		"centers_updated", report.CentersUpdated,
		"duration", report.Duration)

	return report
}

func (s *SyncScheduler) syncElections(ctx context.Context, report *domain.PassReport) {
	elections, err := s.electionRepo.ListVoterCounts(ctx)
	if err != nil {
		slog.Error("Failed to list elections", "error", err)
		report.Error = err.Error()
		return
	}

	for _, e := range elections {
		report.Elections++

		tally, err := s.tally.TallyElection(ctx, e.ID)
		report.Computed++
		if err != nil {
			report.Failed++
			s.metrics.RecordFailure(ctx, telemetry.EntityElection)
			slog.Error("Failed to tally election", "election_id", e.ID, "title", e.Title, "error", err)
			continue
		}

		if e.Matches(tally.TotalVoters) {
			continue
		}

		if err := s.tally.StoreElectionTotal(ctx, e.ID, tally.TotalVoters); err != nil {
			report.Failed++
			s.metrics.RecordFailure(ctx, telemetry.EntityElection)
			slog.Error("Election write-back failed", "election_id", e.ID, "title", e.Title, "error", err)
			continue
		}

		report.Updated++
		s.metrics.RecordWriteBack(ctx, telemetry.EntityElection)
		slog.Info("Election voters synchronized",
			"election_id", e.ID,
			"title", e.Title,
			"previous", e.VoterCount,
			"total_voters", tally.TotalVoters)
	}
}

func (s *SyncScheduler) syncCenters(ctx context.Context, report *domain.PassReport) {
	centers, err := s.centerRepo.ListVoterCounts(ctx)
	if err != nil {
		slog.Error("Failed to list voting centers", "error", err)
		report.Error = err.Error()
		return
	}

	for _, c := range centers {
		report.Centers++

		tally, err := s.tally.TallyCenter(ctx, c.ID)
		if err != nil {
			report.CentersFailed++
			s.metrics.RecordFailure(ctx, telemetry.EntityCenter)
			slog.Error("Failed to tally center", "center_id", c.ID, "name", c.Name, "error", err)
			continue
		}

		if c.Matches(tally.TotalVoters) {
			continue
		}

		if err := s.tally.StoreCenterTotal(ctx, c.ID, tally.TotalVoters); err != nil {
			report.CentersFailed++
			s.metrics.RecordFailure(ctx, telemetry.EntityCenter)
			slog.Error("Center write-back failed", "center_id", c.ID, "name", c.Name, "error", err)
			continue
		}

		report.CentersUpdated++
		s.metrics.RecordWriteBack(ctx, telemetry.EntityCenter)
	}
}
