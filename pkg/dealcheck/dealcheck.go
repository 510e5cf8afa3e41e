// Package dealcheck classifies an asking price against an aggregated
// market baseline. The output is a badge: a price tier, a confidence
// grade for the baseline behind it, and a 0-100 deal score.
package dealcheck

import "math"

// Tier buckets an asking price relative to the baseline median.
type Tier string

const (
	TierGreatDeal   Tier = "great_deal"
	TierGoodPrice   Tier = "good_price"
	TierFair        Tier = "fair"
	TierAboveMarket Tier = "above_market"
	TierOverpriced  Tier = "overpriced"
)

// Confidence grades how much the baseline behind a badge can be trusted.
type Confidence string

const (
	ConfidenceHigh         Confidence = "high"
	ConfidenceMedium       Confidence = "medium"
	ConfidenceLow          Confidence = "low"
	ConfidenceInsufficient Confidence = "insufficient"
)

// Tier boundaries on delta = (price - p50) / p50.
const (
	greatDealMax   = -0.20
	goodPriceMax   = -0.10
	fairMax        = 0.10 // exclusive
	aboveMarketMax = 0.25
)

// Confidence gates on sample size and relative spread.
const (
	insufficientBelowN = 8
	highMinN           = 30
	highMaxSpread      = 0.25
	mediumMinN         = 12
	mediumMaxSpread    = 0.50
)

// Baseline is the market reference a price is judged against. P50Cents
// must be positive; N is the sample size behind the percentiles.
type Baseline struct {
	N        int
	P10Cents int64
	P50Cents int64
	P90Cents int64
}

// Badge is the verdict for one asking price.
type Badge struct {
	Tier       Tier       `json:"tier"`
	Confidence Confidence `json:"confidence"`
	Score      int        `json:"score"`
	DeltaPct   float64    `json:"delta_pct"`
}

// Classify judges priceCents against the baseline. Returns ok=false when
// the baseline median is missing or non-positive, in which case no badge
// can be produced.
func Classify(priceCents int64, b Baseline) (Badge, bool) {
	if b.P50Cents <= 0 {
		return Badge{}, false
	}

	delta := float64(priceCents-b.P50Cents) / float64(b.P50Cents)

	badge := Badge{
		Tier:       tierFor(delta),
		Confidence: confidenceFor(b),
		DeltaPct:   delta,
	}
	badge.Score = scoreFor(delta, badge.Confidence)
	return badge, true
}

func tierFor(delta float64) Tier {
	switch {
	case delta <= greatDealMax:
		return TierGreatDeal
	case delta <= goodPriceMax:
		return TierGoodPrice
	case delta < fairMax:
		return TierFair
	case delta <= aboveMarketMax:
		return TierAboveMarket
	default:
		return TierOverpriced
	}
}

// confidenceFor grades the baseline on sample size and relative spread,
// where spread is the half-range between p10 and p90 over the median.
func confidenceFor(b Baseline) Confidence {
	if b.N < insufficientBelowN {
		return ConfidenceInsufficient
	}
	spread := (float64(b.P90Cents-b.P10Cents) / 2) / float64(b.P50Cents)
	switch {
	case b.N >= highMinN && spread < highMaxSpread:
		return ConfidenceHigh
	case b.N >= mediumMinN && spread < mediumMaxSpread:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// scoreFor maps the discount depth and baseline confidence to 0-100.
// Discounts beyond 40% stop earning points; prices more than 10% over
// median take a flat penalty with a floor, so an overpriced listing on
// a high-confidence baseline still shows a nonzero score.
func scoreFor(delta float64, c Confidence) int {
	discount := math.Min(math.Max(-delta, 0), 0.40)
	score := int(math.Round(discount * 100))

	switch c {
	case ConfidenceHigh:
		score += 60
	case ConfidenceMedium:
		score += 40
	case ConfidenceLow:
		score += 20
	}

	if delta > 0.10 {
		score -= 20
		if score < 5 {
			score = 5
		}
	}

	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}
	return score
}
