package dealcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// solidBaseline is large and tight enough for high confidence:
// spread = ((60000-40000)/2)/50000 = 0.20.
var solidBaseline = Baseline{N: 40, P10Cents: 40000, P50Cents: 50000, P90Cents: 60000}

func TestClassify_Tiers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		priceCents int64
		want       Tier
	}{
		{"exactly 20 percent under", 40000, TierGreatDeal},
		{"just inside good price", 40001, TierGoodPrice},
		{"exactly 10 percent under", 45000, TierGoodPrice},
		{"just under 10 percent discount", 45001, TierFair},
		{"at median", 50000, TierFair},
		{"just under 10 percent over", 54999, TierFair},
		{"exactly 10 percent over", 55000, TierAboveMarket},
		{"exactly 25 percent over", 62500, TierAboveMarket},
		{"past 25 percent over", 62501, TierOverpriced},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			badge, ok := Classify(tt.priceCents, solidBaseline)
			require.True(t, ok)
			assert.Equal(t, tt.want, badge.Tier)
		})
	}
}

func TestClassify_Confidence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		base Baseline
		want Confidence
	}{
		{"seven samples is insufficient", Baseline{N: 7, P10Cents: 40000, P50Cents: 50000, P90Cents: 60000}, ConfidenceInsufficient},
		{"eight samples clears the floor", Baseline{N: 8, P10Cents: 40000, P50Cents: 50000, P90Cents: 60000}, ConfidenceLow},
		{"large tight sample", Baseline{N: 30, P10Cents: 40000, P50Cents: 50000, P90Cents: 60000}, ConfidenceHigh},
		{"large but wide sample", Baseline{N: 30, P10Cents: 20000, P50Cents: 50000, P90Cents: 90000}, ConfidenceLow},
		{"medium sample moderate spread", Baseline{N: 12, P10Cents: 30000, P50Cents: 50000, P90Cents: 70000}, ConfidenceMedium},
		{"medium sample too wide", Baseline{N: 12, P10Cents: 20000, P50Cents: 50000, P90Cents: 90000}, ConfidenceLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			badge, ok := Classify(50000, tt.base)
			require.True(t, ok)
			assert.Equal(t, tt.want, badge.Confidence)
		})
	}
}

func TestClassify_DeepDiscountHighConfidence(t *testing.T) {
	t.Parallel()

	// $300 against a $500 median: delta = -0.40, the score cap.
	badge, ok := Classify(30000, solidBaseline)
	require.True(t, ok)

	assert.Equal(t, TierGreatDeal, badge.Tier)
	assert.Equal(t, ConfidenceHigh, badge.Confidence)
	assert.Equal(t, 100, badge.Score)
	assert.InDelta(t, -0.40, badge.DeltaPct, 1e-9)
}

func TestClassify_DiscountBeyondCapStopsEarning(t *testing.T) {
	t.Parallel()

	// 60% under median scores the same as 40% under.
	at40, ok := Classify(30000, solidBaseline)
	require.True(t, ok)
	at60, ok := Classify(20000, solidBaseline)
	require.True(t, ok)

	assert.Equal(t, at40.Score, at60.Score)
}

func TestClassify_OverpricedPenalty(t *testing.T) {
	t.Parallel()

	// 30% over median, high confidence: 0 discount + 60 bonus - 20 penalty.
	badge, ok := Classify(65000, solidBaseline)
	require.True(t, ok)

	assert.Equal(t, TierOverpriced, badge.Tier)
	assert.Equal(t, 40, badge.Score)
}

func TestClassify_OverpricedScoreFloor(t *testing.T) {
	t.Parallel()

	// Insufficient baseline earns no bonus; the penalty bottoms out at 5.
	base := Baseline{N: 3, P10Cents: 40000, P50Cents: 50000, P90Cents: 60000}
	badge, ok := Classify(70000, base)
	require.True(t, ok)

	assert.Equal(t, ConfidenceInsufficient, badge.Confidence)
	assert.Equal(t, 5, badge.Score)
}

func TestClassify_NoMedian(t *testing.T) {
	t.Parallel()

	_, ok := Classify(50000, Baseline{N: 40})
	assert.False(t, ok)
}
