// Package aggregate computes windowed price statistics over observations
// at every rollup level.
package aggregate

import (
	"sort"

	"github.com/rgclark/putterbase/pkg/pricestat"
	domain "github.com/rgclark/putterbase/pkg/types"
)

// rollup names which dimensions are collapsed to their sentinel for one
// level. Levels run from fully specific to the broad baseline the deal
// classifier reads.
type rollup struct {
	variant   bool
	condition bool
	rarity    bool
}

// rollupLevels, most specific first: the full key, then variant
// collapsed, then condition, then rarity.
var rollupLevels = []rollup{
	{},
	{variant: true},
	{variant: true, condition: true},
	{variant: true, condition: true, rarity: true},
}

// Aggregator computes stat rows under fixed trim and minimum-sample
// settings.
type Aggregator struct {
	calc *pricestat.Calculator
}

// New creates an Aggregator.
func New(trimFraction float64, minSamples int) *Aggregator {
	return &Aggregator{calc: pricestat.New(trimFraction, minSamples)}
}

// Run computes every stat row for one window from its observations. The
// caller filters observations to the window beforehand. Output is sorted
// by composite key, one row per distinct key; a key produced by more
// than one level (a feed already carrying a sentinel value) keeps the
// most specific level's row.
func (a *Aggregator) Run(
	windowDays int,
	obs []domain.ListingObservation,
) []domain.AggregatedStat {
	seen := make(map[domain.StatKey]struct{})
	var out []domain.AggregatedStat

	for _, level := range rollupLevels {
		groups := make(map[domain.StatKey][]int64)
		for i := range obs {
			o := &obs[i]
			key := domain.StatKey{
				ModelKey:      o.ModelKey,
				VariantKey:    o.VariantKey,
				Category:      o.Category,
				RarityTier:    o.RarityTier,
				ConditionBand: o.ConditionBand,
				WindowDays:    windowDays,
			}
			if level.variant {
				key.VariantKey = domain.AnyVariant
			}
			if level.condition {
				key.ConditionBand = domain.ConditionAny
			}
			if level.rarity {
				key.RarityTier = domain.AnyRarity
			}
			groups[key] = append(groups[key], o.PriceCents)
		}

		for key, prices := range groups {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			s := a.calc.Summarize(prices)
			out = append(out, domain.AggregatedStat{
				StatKey:         key,
				N:               s.N,
				P10Cents:        s.P10Cents,
				P50Cents:        s.P50Cents,
				P90Cents:        s.P90Cents,
				DispersionRatio: s.DispersionRatio,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return lessKey(&out[i].StatKey, &out[j].StatKey)
	})
	return out
}

func lessKey(a, b *domain.StatKey) bool {
	if a.ModelKey != b.ModelKey {
		return a.ModelKey < b.ModelKey
	}
	if a.VariantKey != b.VariantKey {
		return a.VariantKey < b.VariantKey
	}
	if a.Category != b.Category {
		return a.Category < b.Category
	}
	if a.RarityTier != b.RarityTier {
		return a.RarityTier < b.RarityTier
	}
	return a.ConditionBand < b.ConditionBand
}
