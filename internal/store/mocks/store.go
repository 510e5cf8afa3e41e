// Package mocks provides a testify mock of the store.Store interface.
// Maintained by hand; keep method signatures in sync with store.Store.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/rgclark/putterbase/internal/store"
	domain "github.com/rgclark/putterbase/pkg/types"
)

// MockStore is a mock implementation of store.Store.
type MockStore struct {
	mock.Mock
}

// NewMockStore creates a MockStore that asserts its expectations during
// test cleanup.
func NewMockStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockStore {
	m := &MockStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// MockStoreExpecter provides the fluent expectation API.
type MockStoreExpecter struct {
	m *mock.Mock
}

// EXPECT returns the expecter for setting up calls.
func (m *MockStore) EXPECT() *MockStoreExpecter {
	return &MockStoreExpecter{m: &m.Mock}
}

func (m *MockStore) InsertObservations(
	ctx context.Context,
	obs []domain.ListingObservation,
) (int, error) {
	args := m.Called(ctx, obs)
	return args.Int(0), args.Error(1)
}

func (e *MockStoreExpecter) InsertObservations(ctx, obs any) *mock.Call {
	return e.m.On("InsertObservations", ctx, obs)
}

func (m *MockStore) ListObservationsSince(
	ctx context.Context,
	since time.Time,
) ([]domain.ListingObservation, error) {
	args := m.Called(ctx, since)
	var r0 []domain.ListingObservation
	if args.Get(0) != nil {
		r0 = args.Get(0).([]domain.ListingObservation)
	}
	return r0, args.Error(1)
}

func (e *MockStoreExpecter) ListObservationsSince(ctx, since any) *mock.Call {
	return e.m.On("ListObservationsSince", ctx, since)
}

func (m *MockStore) CountObservations(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (e *MockStoreExpecter) CountObservations(ctx any) *mock.Call {
	return e.m.On("CountObservations", ctx)
}

func (m *MockStore) ReplaceWindowStats(
	ctx context.Context,
	windowDays int,
	stats []domain.AggregatedStat,
) error {
	args := m.Called(ctx, windowDays, stats)
	return args.Error(0)
}

func (e *MockStoreExpecter) ReplaceWindowStats(ctx, windowDays, stats any) *mock.Call {
	return e.m.On("ReplaceWindowStats", ctx, windowDays, stats)
}

func (m *MockStore) GetStat(
	ctx context.Context,
	key domain.StatKey,
) (*domain.AggregatedStat, error) {
	args := m.Called(ctx, key)
	var r0 *domain.AggregatedStat
	if args.Get(0) != nil {
		r0 = args.Get(0).(*domain.AggregatedStat)
	}
	return r0, args.Error(1)
}

func (e *MockStoreExpecter) GetStat(ctx, key any) *mock.Call {
	return e.m.On("GetStat", ctx, key)
}

func (m *MockStore) GetBaselineStat(
	ctx context.Context,
	modelKey string,
	windowDays int,
) (*domain.AggregatedStat, error) {
	args := m.Called(ctx, modelKey, windowDays)
	var r0 *domain.AggregatedStat
	if args.Get(0) != nil {
		r0 = args.Get(0).(*domain.AggregatedStat)
	}
	return r0, args.Error(1)
}

func (e *MockStoreExpecter) GetBaselineStat(ctx, modelKey, windowDays any) *mock.Call {
	return e.m.On("GetBaselineStat", ctx, modelKey, windowDays)
}

func (m *MockStore) ListStats(
	ctx context.Context,
	opts *store.StatsQuery,
) ([]domain.AggregatedStat, int, error) {
	args := m.Called(ctx, opts)
	var r0 []domain.AggregatedStat
	if args.Get(0) != nil {
		r0 = args.Get(0).([]domain.AggregatedStat)
	}
	return r0, args.Int(1), args.Error(2)
}

func (e *MockStoreExpecter) ListStats(ctx, opts any) *mock.Call {
	return e.m.On("ListStats", ctx, opts)
}

func (m *MockStore) ListVariantStats(
	ctx context.Context,
	modelKey string,
	windowDays int,
) ([]domain.AggregatedStat, error) {
	args := m.Called(ctx, modelKey, windowDays)
	var r0 []domain.AggregatedStat
	if args.Get(0) != nil {
		r0 = args.Get(0).([]domain.AggregatedStat)
	}
	return r0, args.Error(1)
}

func (e *MockStoreExpecter) ListVariantStats(ctx, modelKey, windowDays any) *mock.Call {
	return e.m.On("ListVariantStats", ctx, modelKey, windowDays)
}

func (m *MockStore) FuzzyFindModelKey(
	ctx context.Context,
	needle string,
	windowDays int,
) (string, bool, error) {
	args := m.Called(ctx, needle, windowDays)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (e *MockStoreExpecter) FuzzyFindModelKey(ctx, needle, windowDays any) *mock.Call {
	return e.m.On("FuzzyFindModelKey", ctx, needle, windowDays)
}

func (m *MockStore) GetSystemState(ctx context.Context) (*domain.SystemState, error) {
	args := m.Called(ctx)
	var r0 *domain.SystemState
	if args.Get(0) != nil {
		r0 = args.Get(0).(*domain.SystemState)
	}
	return r0, args.Error(1)
}

func (e *MockStoreExpecter) GetSystemState(ctx any) *mock.Call {
	return e.m.On("GetSystemState", ctx)
}

func (m *MockStore) InsertJobRun(ctx context.Context, jobName string) (string, error) {
	args := m.Called(ctx, jobName)
	return args.String(0), args.Error(1)
}

func (e *MockStoreExpecter) InsertJobRun(ctx, jobName any) *mock.Call {
	return e.m.On("InsertJobRun", ctx, jobName)
}

func (m *MockStore) CompleteJobRun(
	ctx context.Context,
	id string,
	status string,
	errText string,
	rowsAffected int,
) error {
	args := m.Called(ctx, id, status, errText, rowsAffected)
	return args.Error(0)
}

func (e *MockStoreExpecter) CompleteJobRun(ctx, id, status, errText, rowsAffected any) *mock.Call {
	return e.m.On("CompleteJobRun", ctx, id, status, errText, rowsAffected)
}

func (m *MockStore) ListJobRuns(
	ctx context.Context,
	jobName string,
	limit int,
) ([]domain.JobRun, error) {
	args := m.Called(ctx, jobName, limit)
	var r0 []domain.JobRun
	if args.Get(0) != nil {
		r0 = args.Get(0).([]domain.JobRun)
	}
	return r0, args.Error(1)
}

func (e *MockStoreExpecter) ListJobRuns(ctx, jobName, limit any) *mock.Call {
	return e.m.On("ListJobRuns", ctx, jobName, limit)
}

func (m *MockStore) ListLatestJobRuns(ctx context.Context) ([]domain.JobRun, error) {
	args := m.Called(ctx)
	var r0 []domain.JobRun
	if args.Get(0) != nil {
		r0 = args.Get(0).([]domain.JobRun)
	}
	return r0, args.Error(1)
}

func (e *MockStoreExpecter) ListLatestJobRuns(ctx any) *mock.Call {
	return e.m.On("ListLatestJobRuns", ctx)
}

func (m *MockStore) RecoverStaleJobRuns(
	ctx context.Context,
	olderThan time.Duration,
) (int, error) {
	args := m.Called(ctx, olderThan)
	return args.Int(0), args.Error(1)
}

func (e *MockStoreExpecter) RecoverStaleJobRuns(ctx, olderThan any) *mock.Call {
	return e.m.On("RecoverStaleJobRuns", ctx, olderThan)
}

func (m *MockStore) AcquireSchedulerLock(
	ctx context.Context,
	jobName string,
	holder string,
	ttl time.Duration,
) (bool, error) {
	args := m.Called(ctx, jobName, holder, ttl)
	return args.Bool(0), args.Error(1)
}

func (e *MockStoreExpecter) AcquireSchedulerLock(ctx, jobName, holder, ttl any) *mock.Call {
	return e.m.On("AcquireSchedulerLock", ctx, jobName, holder, ttl)
}

func (m *MockStore) ReleaseSchedulerLock(
	ctx context.Context,
	jobName string,
	holder string,
) error {
	args := m.Called(ctx, jobName, holder)
	return args.Error(0)
}

func (e *MockStoreExpecter) ReleaseSchedulerLock(ctx, jobName, holder any) *mock.Call {
	return e.m.On("ReleaseSchedulerLock", ctx, jobName, holder)
}

func (m *MockStore) Migrate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (e *MockStoreExpecter) Migrate(ctx any) *mock.Call {
	return e.m.On("Migrate", ctx)
}

func (m *MockStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (e *MockStoreExpecter) Ping(ctx any) *mock.Call {
	return e.m.On("Ping", ctx)
}
