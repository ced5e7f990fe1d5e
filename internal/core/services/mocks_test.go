package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/vncsmyrnk/votersync/internal/core/domain"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func bureaux(counts ...*int64) []domain.BureauCount {
	out := make([]domain.BureauCount, 0, len(counts))
	for _, c := range counts {
		out = append(out, domain.BureauCount{ID: uuid.New(), RegisteredVoters: c})
	}
	return out
}

type mockElectionRepository struct {
	mock.Mock
}

func (m *mockElectionRepository) ListVoterCounts(ctx context.Context) ([]domain.ElectionVoterCount, error) {
	args := m.Called(ctx)
	elections, _ := args.Get(0).([]domain.ElectionVoterCount)
	return elections, args.Error(1)
}

func (m *mockElectionRepository) GetVoterCount(ctx context.Context, id uuid.UUID) (*domain.ElectionVoterCount, error) {
	args := m.Called(ctx, id)
	election, _ := args.Get(0).(*domain.ElectionVoterCount)
	return election, args.Error(1)
}

func (m *mockElectionRepository) LinkedCenters(ctx context.Context, id uuid.UUID) ([]domain.CenterBureaux, error) {
	args := m.Called(ctx, id)
	centers, _ := args.Get(0).([]domain.CenterBureaux)
	return centers, args.Error(1)
}

func (m *mockElectionRepository) UpdateVoterCount(ctx context.Context, id uuid.UUID, count int64, updatedAt time.Time) error {
	return m.Called(ctx, id, count, updatedAt).Error(0)
}

type mockCenterRepository struct {
	mock.Mock
}

func (m *mockCenterRepository) ListVoterCounts(ctx context.Context) ([]domain.CenterVoterCount, error) {
	args := m.Called(ctx)
	centers, _ := args.Get(0).([]domain.CenterVoterCount)
	return centers, args.Error(1)
}

func (m *mockCenterRepository) GetVoterCount(ctx context.Context, id uuid.UUID) (*domain.CenterVoterCount, error) {
	args := m.Called(ctx, id)
	center, _ := args.Get(0).(*domain.CenterVoterCount)
	return center, args.Error(1)
}

func (m *mockCenterRepository) Bureaux(ctx context.Context, id uuid.UUID) ([]domain.BureauCount, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).([]domain.BureauCount)
	return b, args.Error(1)
}

func (m *mockCenterRepository) UpdateTotalVoters(ctx context.Context, id uuid.UUID, count int64, updatedAt time.Time) error {
	return m.Called(ctx, id, count, updatedAt).Error(0)
}

// fakeElectionStore is a concurrency-safe election repository for the
// scheduler tests, which need call counts while the loop is running.
type fakeElectionStore struct {
	mu        sync.Mutex
	elections []domain.ElectionVoterCount
	listErr   error
	listCalls atomic.Int32
}

func (f *fakeElectionStore) ListVoterCounts(_ context.Context) ([]domain.ElectionVoterCount, error) {
	f.listCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.ElectionVoterCount, len(f.elections))
	copy(out, f.elections)
	return out, nil
}

func (f *fakeElectionStore) GetVoterCount(_ context.Context, id uuid.UUID) (*domain.ElectionVoterCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.elections {
		if e.ID == id {
			e := e
			return &e, nil
		}
	}
	return nil, domain.ErrElectionNotFound
}

func (f *fakeElectionStore) LinkedCenters(_ context.Context, _ uuid.UUID) ([]domain.CenterBureaux, error) {
	return nil, nil
}

func (f *fakeElectionStore) UpdateVoterCount(_ context.Context, _ uuid.UUID, _ int64, _ time.Time) error {
	return nil
}

type fakeCenterStore struct {
	centers []domain.CenterVoterCount
}

func (f *fakeCenterStore) ListVoterCounts(_ context.Context) ([]domain.CenterVoterCount, error) {
	return f.centers, nil
}

func (f *fakeCenterStore) GetVoterCount(_ context.Context, _ uuid.UUID) (*domain.CenterVoterCount, error) {
	return nil, domain.ErrCenterNotFound
}

func (f *fakeCenterStore) Bureaux(_ context.Context, _ uuid.UUID) ([]domain.BureauCount, error) {
	return nil, nil
}

func (f *fakeCenterStore) UpdateTotalVoters(_ context.Context, _ uuid.UUID, _ int64, _ time.Time) error {
	return nil
}

// fakeTally computes totals from fixed maps and records every call.
// When block is set, TallyElection waits on it (or on ctx).
type fakeTally struct {
	mu           sync.Mutex
	totals       map[uuid.UUID]int64
	failing      map[uuid.UUID]error
	storeErr     map[uuid.UUID]error
	stored       map[uuid.UUID]int64
	tallyCalls   int
	storeCalls   int
	applyCalls   []uuid.UUID
	centerApply  []uuid.UUID
	centerStored map[uuid.UUID]int64

	block       chan struct{}
	entered     chan struct{}
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func newFakeTally() *fakeTally {
	return &fakeTally{
		totals:       make(map[uuid.UUID]int64),
		failing:      make(map[uuid.UUID]error),
		storeErr:     make(map[uuid.UUID]error),
		stored:       make(map[uuid.UUID]int64),
		centerStored: make(map[uuid.UUID]int64),
	}
}

func (f *fakeTally) TallyElection(ctx context.Context, id uuid.UUID) (domain.Tally, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		cur := f.maxInFlight.Load()
		if n <= cur || f.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}

	if f.entered != nil {
		select {
		case f.entered <- struct{}{}:
		default:
		}
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			f.mu.Lock()
			f.tallyCalls++
			f.mu.Unlock()
			return domain.Tally{}, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.tallyCalls++
	if err := f.failing[id]; err != nil {
		return domain.Tally{}, err
	}
	return domain.Tally{TotalVoters: f.totals[id]}, nil
}

func (f *fakeTally) TallyCenter(_ context.Context, id uuid.UUID) (domain.Tally, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failing[id]; err != nil {
		return domain.Tally{}, err
	}
	return domain.Tally{TotalVoters: f.totals[id], Centers: 1}, nil
}

func (f *fakeTally) ComputeElectionTotalVoters(ctx context.Context, id uuid.UUID) int64 {
	t, _ := f.TallyElection(ctx, id)
	return t.TotalVoters
}

func (f *fakeTally) ComputeCenterTotalVoters(ctx context.Context, id uuid.UUID) int64 {
	t, _ := f.TallyCenter(ctx, id)
	return t.TotalVoters
}

func (f *fakeTally) ApplyElectionTotalVoters(_ context.Context, id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applyCalls = append(f.applyCalls, id)
}

func (f *fakeTally) ApplyCenterTotalVoters(_ context.Context, id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.centerApply = append(f.centerApply, id)
}

func (f *fakeTally) StoreElectionTotal(_ context.Context, id uuid.UUID, total int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.storeCalls++
	if err := f.storeErr[id]; err != nil {
		return err
	}
	f.stored[id] = total
	return nil
}

func (f *fakeTally) StoreCenterTotal(_ context.Context, id uuid.UUID, total int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.centerStored[id] = total
	return nil
}

func (f *fakeTally) storedTotal(id uuid.UUID) (int64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	total, ok := f.stored[id]
	return total, ok
}

func (f *fakeTally) counts() (tallies, stores int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tallyCalls, f.storeCalls
}
