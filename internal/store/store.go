// Package store defines the datastore abstraction for putterbase.
// All business logic depends on the Store interface, never on concrete
// implementations. This enables mock-based testing without a running
// database.
package store

import (
	"context"
	"time"

	domain "github.com/rgclark/putterbase/pkg/types"
)

// StatsQuery defines optional filters for stat row queries.
type StatsQuery struct {
	ModelKey      *string
	VariantKey    *string
	Category      *string
	RarityTier    *string
	ConditionBand *string
	WindowDays    *int
	MinN          *int
	Limit         int // default 50
	Offset        int
	OrderBy       string // "n", "p50", "updated_at"
}

// Store defines all data access operations for putterbase.
type Store interface {
	// Observations
	InsertObservations(ctx context.Context, obs []domain.ListingObservation) (int, error)
	ListObservationsSince(ctx context.Context, since time.Time) ([]domain.ListingObservation, error)
	CountObservations(ctx context.Context) (int, error)

	// Stats
	ReplaceWindowStats(ctx context.Context, windowDays int, stats []domain.AggregatedStat) error
	GetStat(ctx context.Context, key domain.StatKey) (*domain.AggregatedStat, error)
	GetBaselineStat(ctx context.Context, modelKey string, windowDays int) (*domain.AggregatedStat, error)
	ListStats(ctx context.Context, opts *StatsQuery) ([]domain.AggregatedStat, int, error)
	ListVariantStats(ctx context.Context, modelKey string, windowDays int) ([]domain.AggregatedStat, error)
	FuzzyFindModelKey(ctx context.Context, needle string, windowDays int) (string, bool, error)
	GetSystemState(ctx context.Context) (*domain.SystemState, error)

	// Scheduler
	InsertJobRun(ctx context.Context, jobName string) (id string, err error)
	CompleteJobRun(ctx context.Context, id string, status string, errText string, rowsAffected int) error
	ListJobRuns(ctx context.Context, jobName string, limit int) ([]domain.JobRun, error)
	ListLatestJobRuns(ctx context.Context) ([]domain.JobRun, error)
	RecoverStaleJobRuns(ctx context.Context, olderThan time.Duration) (int, error)
	AcquireSchedulerLock(ctx context.Context, jobName string, holder string, ttl time.Duration) (bool, error)
	ReleaseSchedulerLock(ctx context.Context, jobName string, holder string) error

	// Migrations
	Migrate(ctx context.Context) error

	// Health
	Ping(ctx context.Context) error
}
