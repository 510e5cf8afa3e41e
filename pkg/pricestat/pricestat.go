// Package pricestat computes robust summary statistics over observed
// sale prices. Listing prices are heavy-tailed in both directions
// (parts-only lots, delusional asks), so every percentile is taken over
// a symmetrically trimmed sample.
package pricestat

import (
	"math"
	"sort"
)

// DefaultTrimFraction is the share of samples removed from each tail
// before percentiles are computed.
const DefaultTrimFraction = 0.05

// DefaultMinSamples is the smallest sample size that yields price
// figures. Below it only the count is reported.
const DefaultMinSamples = 5

// Summary holds trimmed percentiles for one price sample. The price
// pointers are nil when N is below the configured minimum.
type Summary struct {
	N               int
	P10Cents        *int64
	P50Cents        *int64
	P90Cents        *int64
	DispersionRatio *float64
}

// Calculator computes summaries under a fixed trim fraction and minimum
// sample size. The zero value is not usable; use New.
type Calculator struct {
	trimFraction float64
	minSamples   int
}

// New returns a Calculator. Out-of-range arguments fall back to the
// defaults: trim must be in [0, 0.5), minSamples must be at least 1.
func New(trimFraction float64, minSamples int) *Calculator {
	if trimFraction < 0 || trimFraction >= 0.5 {
		trimFraction = DefaultTrimFraction
	}
	if minSamples < 1 {
		minSamples = DefaultMinSamples
	}
	return &Calculator{trimFraction: trimFraction, minSamples: minSamples}
}

// Summarize computes trimmed p10/p50/p90 over the given prices. The
// input slice is not modified. Samples smaller than the minimum produce
// a Summary carrying only N, so callers can distinguish "no data yet"
// from "not tracked".
func (c *Calculator) Summarize(priceCents []int64) Summary {
	s := Summary{N: len(priceCents)}
	if len(priceCents) < c.minSamples {
		return s
	}

	sorted := make([]int64, len(priceCents))
	copy(sorted, priceCents)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	trim := int(math.Floor(float64(len(sorted)) * c.trimFraction))
	trimmed := sorted[trim : len(sorted)-trim]

	p10 := percentile(trimmed, 0.10)
	p50 := percentile(trimmed, 0.50)
	p90 := percentile(trimmed, 0.90)
	s.P10Cents = &p10
	s.P50Cents = &p50
	s.P90Cents = &p90

	if p10 > 0 {
		ratio := float64(p90) / float64(p10)
		s.DispersionRatio = &ratio
	}
	return s
}

// percentile interpolates linearly between the two nearest ranks of an
// ascending-sorted sample. q is in [0, 1]; the sample must be non-empty.
func percentile(sorted []int64, q float64) int64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := q * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	v := float64(sorted[lo]) + frac*(float64(sorted[hi])-float64(sorted[lo]))
	return int64(math.Round(v))
}
