//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/rgclark/putterbase/internal/store"
	domain "github.com/rgclark/putterbase/pkg/types"
)

func setupPostgres(t *testing.T) *store.PostgresStore {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("putterbase_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := store.NewPostgresStore(ctx, connStr)
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
	})

	require.NoError(t, s.Migrate(ctx))

	return s
}

func testObservation(listingID string, priceCents int64) domain.ListingObservation {
	return domain.ListingObservation{
		ListingID:     listingID,
		RawTitle:      "Scotty Cameron Newport 2 34in",
		ModelKey:      "newport 2",
		VariantKey:    "",
		Category:      "putter",
		RarityTier:    "retail",
		ConditionBand: domain.ConditionUsed,
		PriceCents:    priceCents,
		ObservedAt:    time.Now().Truncate(time.Microsecond),
	}
}

func TestPostgresStore_Ping(t *testing.T) {
	s := setupPostgres(t)
	require.NoError(t, s.Ping(context.Background()))
}

func TestPostgresStore_InsertObservations(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	t.Run("insert batch", func(t *testing.T) {
		obs := []domain.ListingObservation{
			testObservation("lst-1", 40000),
			testObservation("lst-2", 42000),
		}
		n, err := s.InsertObservations(ctx, obs)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("duplicate sighting is skipped", func(t *testing.T) {
		o := testObservation("lst-dup", 40000)
		n, err := s.InsertObservations(ctx, []domain.ListingObservation{o})
		require.NoError(t, err)
		require.Equal(t, 1, n)

		n, err = s.InsertObservations(ctx, []domain.ListingObservation{o})
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("list since returns oldest first", func(t *testing.T) {
		obs, err := s.ListObservationsSince(ctx, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		require.NotEmpty(t, obs)
		for i := 1; i < len(obs); i++ {
			assert.False(t, obs[i].ObservedAt.Before(obs[i-1].ObservedAt))
		}
	})
}

func TestPostgresStore_ReplaceWindowStats(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	p10, p50, p90 := int64(38000), int64(42000), int64(50000)
	disp := float64(p90) / float64(p10)

	stat := func(modelKey, variantKey string, band domain.ConditionBand, n int) domain.AggregatedStat {
		return domain.AggregatedStat{
			StatKey: domain.StatKey{
				ModelKey: modelKey, VariantKey: variantKey,
				Category: "putter", RarityTier: "retail",
				ConditionBand: band, WindowDays: 90,
			},
			N: n, P10Cents: &p10, P50Cents: &p50, P90Cents: &p90,
			DispersionRatio: &disp,
		}
	}

	t.Run("write and read back", func(t *testing.T) {
		err := s.ReplaceWindowStats(ctx, 90, []domain.AggregatedStat{
			stat("newport 2", domain.AnyVariant, domain.ConditionAny, 40),
			stat("newport 2", "newport 2|circle_t", domain.ConditionUsed, 6),
		})
		require.NoError(t, err)

		got, err := s.GetBaselineStat(ctx, "newport 2", 90)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 40, got.N)
		require.NotNil(t, got.P50Cents)
		assert.Equal(t, p50, *got.P50Cents)
		assert.False(t, got.UpdatedAt.IsZero())
	})

	t.Run("replace wipes the previous window", func(t *testing.T) {
		err := s.ReplaceWindowStats(ctx, 90, []domain.AggregatedStat{
			stat("anser 2", domain.AnyVariant, domain.ConditionAny, 12),
		})
		require.NoError(t, err)

		gone, err := s.GetBaselineStat(ctx, "newport 2", 90)
		require.NoError(t, err)
		assert.Nil(t, gone)
	})

	t.Run("insufficient rows carry nil prices", func(t *testing.T) {
		thin := domain.AggregatedStat{
			StatKey: domain.StatKey{
				ModelKey: "tyne4", VariantKey: domain.AnyVariant,
				Category: "putter", RarityTier: "retail",
				ConditionBand: domain.ConditionAny, WindowDays: 60,
			},
			N: 2,
		}
		require.NoError(t, s.ReplaceWindowStats(ctx, 60, []domain.AggregatedStat{thin}))

		got, err := s.GetBaselineStat(ctx, "tyne4", 60)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 2, got.N)
		assert.Nil(t, got.P50Cents)
		assert.False(t, got.HasPrices())
	})
}

func TestPostgresStore_BaselinePrefersTieredRows(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	p50Retail, p50Tour, p50Blend := int64(40000), int64(150000), int64(76000)
	baseline := func(rarity string, n int, p50 *int64) domain.AggregatedStat {
		return domain.AggregatedStat{
			StatKey: domain.StatKey{
				ModelKey: "newport 2", VariantKey: domain.AnyVariant,
				Category: "putter", RarityTier: rarity,
				ConditionBand: domain.ConditionAny, WindowDays: 90,
			},
			N: n, P50Cents: p50,
		}
	}

	t.Run("largest concrete tier beats the blended rollup", func(t *testing.T) {
		err := s.ReplaceWindowStats(ctx, 90, []domain.AggregatedStat{
			baseline("retail", 20, &p50Retail),
			baseline("tour", 10, &p50Tour),
			baseline(domain.AnyRarity, 30, &p50Blend),
		})
		require.NoError(t, err)

		got, err := s.GetBaselineStat(ctx, "newport 2", 90)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "retail", got.RarityTier)
		assert.Equal(t, 20, got.N)
		require.NotNil(t, got.P50Cents)
		assert.Equal(t, p50Retail, *got.P50Cents)
	})

	t.Run("rollup row is the fallback when no tiered row exists", func(t *testing.T) {
		err := s.ReplaceWindowStats(ctx, 90, []domain.AggregatedStat{
			baseline(domain.AnyRarity, 30, &p50Blend),
		})
		require.NoError(t, err)

		got, err := s.GetBaselineStat(ctx, "newport 2", 90)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, domain.AnyRarity, got.RarityTier)
		assert.Equal(t, 30, got.N)
	})
}

func TestPostgresStore_VariantAndFuzzyLookups(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	p50Base, p50CT := int64(40000), int64(120000)
	seed := []domain.AggregatedStat{
		{
			StatKey: domain.StatKey{
				ModelKey: "newport 2", VariantKey: domain.AnyVariant,
				Category: "putter", RarityTier: "retail",
				ConditionBand: domain.ConditionAny, WindowDays: 90,
			},
			N: 35, P50Cents: &p50Base,
		},
		{
			StatKey: domain.StatKey{
				ModelKey: "newport 2", VariantKey: "newport 2|circle_t",
				Category: "putter", RarityTier: "tour",
				ConditionBand: domain.ConditionUsed, WindowDays: 90,
			},
			N: 8, P50Cents: &p50CT,
		},
		{
			StatKey: domain.StatKey{
				ModelKey: "newport 2", VariantKey: "newport 2|circle_t",
				Category: "putter", RarityTier: "tour",
				ConditionBand: domain.ConditionLikeNew, WindowDays: 90,
			},
			N: 3, P50Cents: &p50CT,
		},
		// Base-model row, no variant. Must not show up as a "variant".
		{
			StatKey: domain.StatKey{
				ModelKey: "newport 2", VariantKey: "",
				Category: "putter", RarityTier: "retail",
				ConditionBand: domain.ConditionUsed, WindowDays: 90,
			},
			N: 27, P50Cents: &p50Base,
		},
	}
	require.NoError(t, s.ReplaceWindowStats(ctx, 90, seed))

	t.Run("variant listing keeps best condition band per variant", func(t *testing.T) {
		variants, err := s.ListVariantStats(ctx, "newport 2", 90)
		require.NoError(t, err)
		require.Len(t, variants, 1)
		assert.Equal(t, "newport 2|circle_t", variants[0].VariantKey)
		assert.Equal(t, 8, variants[0].N)
	})

	t.Run("fuzzy finds by substring", func(t *testing.T) {
		key, found, err := s.FuzzyFindModelKey(ctx, "newport", 90)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "newport 2", key)
	})

	t.Run("fuzzy miss", func(t *testing.T) {
		_, found, err := s.FuzzyFindModelKey(ctx, "zebra", 90)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestPostgresStore_SchedulerLocks(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	t.Run("acquire and contend", func(t *testing.T) {
		got, err := s.AcquireSchedulerLock(ctx, "aggregation", "holder-a", time.Minute)
		require.NoError(t, err)
		assert.True(t, got)

		got, err = s.AcquireSchedulerLock(ctx, "aggregation", "holder-b", time.Minute)
		require.NoError(t, err)
		assert.False(t, got)
	})

	t.Run("expired lock is stolen", func(t *testing.T) {
		got, err := s.AcquireSchedulerLock(ctx, "expiring", "holder-a", -time.Second)
		require.NoError(t, err)
		require.True(t, got)

		got, err = s.AcquireSchedulerLock(ctx, "expiring", "holder-b", time.Minute)
		require.NoError(t, err)
		assert.True(t, got)
	})

	t.Run("release frees the lock", func(t *testing.T) {
		got, err := s.AcquireSchedulerLock(ctx, "releasing", "holder-a", time.Minute)
		require.NoError(t, err)
		require.True(t, got)

		require.NoError(t, s.ReleaseSchedulerLock(ctx, "releasing", "holder-a"))

		got, err = s.AcquireSchedulerLock(ctx, "releasing", "holder-b", time.Minute)
		require.NoError(t, err)
		assert.True(t, got)
	})
}

func TestPostgresStore_JobRuns(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	id, err := s.InsertJobRun(ctx, "aggregation")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, s.CompleteJobRun(ctx, id, "success", "", 123))

	runs, err := s.ListJobRuns(ctx, "aggregation", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "success", runs[0].Status)
	require.NotNil(t, runs[0].RowsAffected)
	assert.Equal(t, 123, *runs[0].RowsAffected)
	assert.NotNil(t, runs[0].CompletedAt)

	latest, err := s.ListLatestJobRuns(ctx)
	require.NoError(t, err)
	assert.Len(t, latest, 1)
}

func TestPostgresStore_SystemState(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	_, err := s.InsertObservations(ctx, []domain.ListingObservation{
		testObservation("state-1", 40000),
		testObservation("state-2", 41000),
	})
	require.NoError(t, err)

	state, err := s.GetSystemState(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, state.ObservationsTotal)
	assert.Equal(t, 1, state.DistinctModelKeys)
}
