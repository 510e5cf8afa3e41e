package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/rgclark/putterbase/pkg/types"
)

func obs(modelKey, variantKey, rarity string, band domain.ConditionBand, priceCents int64) domain.ListingObservation {
	return domain.ListingObservation{
		ListingID:     "lst",
		ModelKey:      modelKey,
		VariantKey:    variantKey,
		Category:      "putter",
		RarityTier:    rarity,
		ConditionBand: band,
		PriceCents:    priceCents,
		ObservedAt:    time.Now(),
	}
}

func findRow(t *testing.T, rows []domain.AggregatedStat, key domain.StatKey) *domain.AggregatedStat {
	t.Helper()
	for i := range rows {
		if rows[i].StatKey == key {
			return &rows[i]
		}
	}
	t.Fatalf("no row for key %+v", key)
	return nil
}

func TestRun_RollupLevels(t *testing.T) {
	t.Parallel()

	input := []domain.ListingObservation{
		obs("newport 2", "", "retail", domain.ConditionUsed, 40000),
		obs("newport 2", "", "retail", domain.ConditionUsed, 42000),
		obs("newport 2", "", "retail", domain.ConditionLikeNew, 48000),
		obs("newport 2", "newport 2|circle_t", "tour", domain.ConditionUsed, 120000),
	}

	rows := New(0.05, 1).Run(90, input)

	// Level 1: base-model used, two samples.
	l1 := findRow(t, rows, domain.StatKey{
		ModelKey: "newport 2", VariantKey: "", Category: "putter",
		RarityTier: "retail", ConditionBand: domain.ConditionUsed, WindowDays: 90,
	})
	assert.Equal(t, 2, l1.N)

	// Level 2 collapses variants within (rarity, condition).
	l2 := findRow(t, rows, domain.StatKey{
		ModelKey: "newport 2", VariantKey: domain.AnyVariant, Category: "putter",
		RarityTier: "retail", ConditionBand: domain.ConditionUsed, WindowDays: 90,
	})
	assert.Equal(t, 2, l2.N)

	// Level 3 additionally collapses condition.
	l3 := findRow(t, rows, domain.StatKey{
		ModelKey: "newport 2", VariantKey: domain.AnyVariant, Category: "putter",
		RarityTier: "retail", ConditionBand: domain.ConditionAny, WindowDays: 90,
	})
	assert.Equal(t, 3, l3.N)

	// Level 4 additionally collapses rarity and so sees everything.
	l4 := findRow(t, rows, domain.StatKey{
		ModelKey: "newport 2", VariantKey: domain.AnyVariant, Category: "putter",
		RarityTier: domain.AnyRarity, ConditionBand: domain.ConditionAny, WindowDays: 90,
	})
	assert.Equal(t, 4, l4.N)
	require.NotNil(t, l4.P50Cents)
}

func TestRun_Level2SumsItsConstituents(t *testing.T) {
	t.Parallel()

	input := []domain.ListingObservation{
		obs("anser 2", "", "retail", domain.ConditionUsed, 20000),
		obs("anser 2", "", "retail", domain.ConditionUsed, 21000),
		obs("anser 2", "anser 2|pld", "retail", domain.ConditionUsed, 60000),
	}

	rows := New(0.05, 1).Run(60, input)

	var level1N int
	for i := range rows {
		r := &rows[i]
		if r.VariantKey != domain.AnyVariant &&
			r.ConditionBand == domain.ConditionUsed && r.RarityTier == "retail" {
			level1N += r.N
		}
	}

	l2 := findRow(t, rows, domain.StatKey{
		ModelKey: "anser 2", VariantKey: domain.AnyVariant, Category: "putter",
		RarityTier: "retail", ConditionBand: domain.ConditionUsed, WindowDays: 60,
	})
	assert.Equal(t, level1N, l2.N)
}

func TestRun_BelowMinSamplesKeepsRowWithoutPrices(t *testing.T) {
	t.Parallel()

	input := []domain.ListingObservation{
		obs("tyne4", "", "retail", domain.ConditionUsed, 30000),
		obs("tyne4", "", "retail", domain.ConditionUsed, 31000),
	}

	rows := New(0.05, 5).Run(90, input)

	l4 := findRow(t, rows, domain.StatKey{
		ModelKey: "tyne4", VariantKey: domain.AnyVariant, Category: "putter",
		RarityTier: domain.AnyRarity, ConditionBand: domain.ConditionAny, WindowDays: 90,
	})
	assert.Equal(t, 2, l4.N)
	assert.Nil(t, l4.P50Cents)
	assert.False(t, l4.HasPrices())
}

func TestRun_VariantPremiumVisibleInRows(t *testing.T) {
	t.Parallel()

	input := []domain.ListingObservation{
		obs("newport 2", "", "retail", domain.ConditionUsed, 40000),
		obs("newport 2", "newport 2|circle_t", "tour", domain.ConditionUsed, 120000),
	}

	rows := New(0.05, 1).Run(90, input)

	baseline := findRow(t, rows, domain.StatKey{
		ModelKey: "newport 2", VariantKey: domain.AnyVariant, Category: "putter",
		RarityTier: domain.AnyRarity, ConditionBand: domain.ConditionAny, WindowDays: 90,
	})
	variantRow := findRow(t, rows, domain.StatKey{
		ModelKey: "newport 2", VariantKey: "newport 2|circle_t", Category: "putter",
		RarityTier: "tour", ConditionBand: domain.ConditionUsed, WindowDays: 90,
	})

	require.NotNil(t, variantRow.P50Cents)
	require.NotNil(t, baseline.P50Cents)
	assert.Equal(t, int64(120000), *variantRow.P50Cents)
	assert.Greater(t, *variantRow.P50Cents, *baseline.P50Cents)
}

func TestRun_DistinctKeysAcrossLevels(t *testing.T) {
	t.Parallel()

	input := []domain.ListingObservation{
		obs("newport 2", "", "retail", domain.ConditionUsed, 40000),
	}

	rows := New(0.05, 1).Run(90, input)

	keys := make(map[domain.StatKey]struct{}, len(rows))
	for i := range rows {
		_, dup := keys[rows[i].StatKey]
		require.False(t, dup, "duplicate key %+v", rows[i].StatKey)
		keys[rows[i].StatKey] = struct{}{}
	}
	// One observation still produces all four rollup rows.
	assert.Len(t, rows, 4)
}

func TestRun_EmptyInput(t *testing.T) {
	t.Parallel()

	assert.Empty(t, New(0.05, 5).Run(90, nil))
}
