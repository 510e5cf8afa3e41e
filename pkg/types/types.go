// Package domain defines the core business types for putterbase.
package domain

import (
	"time"
)

// ConditionBand represents the normalized listing condition bucket.
type ConditionBand string

// Condition band constants. ConditionAny is a synthetic rollup band
// meaning "ignore condition"; it never appears on an observation.
const (
	ConditionNew     ConditionBand = "new"
	ConditionLikeNew ConditionBand = "like_new"
	ConditionGood    ConditionBand = "good"
	ConditionFair    ConditionBand = "fair"
	ConditionUsed    ConditionBand = "used"
	ConditionAny     ConditionBand = "any"
)

// Rollup sentinels for collapsed aggregation dimensions. AnyVariant is
// distinct from the empty variant key: "" means "base model, no special
// variant" on a concrete observation, while AnyVariant marks a stat row
// where the variant dimension was collapsed away.
const (
	AnyVariant = "*"
	AnyRarity  = "any"
)

// ListingObservation is a single priced sighting of a listing, produced by
// the external collector and normalized at ingest. Immutable once recorded.
type ListingObservation struct {
	ID            string        `json:"id"             db:"id"`
	ListingID     string        `json:"listing_id"     db:"listing_id"`
	RawTitle      string        `json:"raw_title"      db:"raw_title"`
	ModelKey      string        `json:"model_key"      db:"model_key"`
	VariantKey    string        `json:"variant_key"    db:"variant_key"`
	Category      string        `json:"category"       db:"category"`
	RarityTier    string        `json:"rarity_tier"    db:"rarity_tier"`
	ConditionBand ConditionBand `json:"condition_band" db:"condition_band"`
	PriceCents    int64         `json:"price_cents"    db:"price_cents"`
	ObservedAt    time.Time     `json:"observed_at"    db:"observed_at"`
	CreatedAt     time.Time     `json:"created_at"     db:"created_at"`
}

// StatKey is the composite identity of an aggregated statistics row.
type StatKey struct {
	ModelKey      string        `json:"model_key"      db:"model_key"`
	VariantKey    string        `json:"variant_key"    db:"variant_key"`
	Category      string        `json:"category"       db:"category"`
	RarityTier    string        `json:"rarity_tier"    db:"rarity_tier"`
	ConditionBand ConditionBand `json:"condition_band" db:"condition_band"`
	WindowDays    int           `json:"window_days"    db:"window_days"`
}

// AggregatedStat holds trimmed percentile price statistics for one
// composite key. Price fields are nil when the sample count is below the
// aggregation minimum, so "no data" and "not enough data" stay
// distinguishable. Written exclusively by the aggregator.
type AggregatedStat struct {
	StatKey

	N               int       `json:"n"                          db:"n"`
	P10Cents        *int64    `json:"p10_cents,omitempty"        db:"p10_cents"`
	P50Cents        *int64    `json:"p50_cents,omitempty"        db:"p50_cents"`
	P90Cents        *int64    `json:"p90_cents,omitempty"        db:"p90_cents"`
	DispersionRatio *float64  `json:"dispersion_ratio,omitempty" db:"dispersion_ratio"`
	UpdatedAt       time.Time `json:"updated_at"                 db:"updated_at"`
}

// HasPrices reports whether the row carries usable percentile prices.
func (s *AggregatedStat) HasPrices() bool {
	return s.P10Cents != nil && s.P50Cents != nil && s.P90Cents != nil
}

// MatchMethod records how a query was matched to a stored model key.
type MatchMethod string

// Match method constants, ordered from most to least trustworthy.
const (
	MatchExact    MatchMethod = "exact"
	MatchDegraded MatchMethod = "degraded"
	MatchRaw      MatchMethod = "raw"
	MatchFuzzy    MatchMethod = "fuzzy"
)

// VariantStat summarizes one variant of a resolved model for display.
// PremiumPct is the variant's p50 premium over the base-model p50, in
// percent; nil when either side lacks prices.
type VariantStat struct {
	VariantKey string   `json:"variant_key"`
	N          int      `json:"n"`
	PremiumPct *float64 `json:"premium_pct,omitempty"`
}

// ResolvedStats is the query-time view of a model's statistics after key
// resolution. Baseline is nil when the model resolved but has no stats row
// for the requested window.
type ResolvedStats struct {
	ResolvedModelKey string          `json:"resolved_model_key"`
	WindowDays       int             `json:"window_days"`
	MatchedBy        MatchMethod     `json:"matched_by"`
	Baseline         *AggregatedStat `json:"baseline,omitempty"`
	Variants         []VariantStat   `json:"variants"`
	// QueryHints are sub-model hints detected in the raw query. Display
	// metadata only; they are not part of the resolved key.
	QueryHints []string `json:"query_hints,omitempty"`
}

// JobRun records a single execution of a scheduled job.
type JobRun struct {
	ID           string     `json:"id"                      db:"id"`
	JobName      string     `json:"job_name"                db:"job_name"`
	StartedAt    time.Time  `json:"started_at"              db:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"  db:"completed_at"`
	Status       string     `json:"status"                  db:"status"`
	ErrorText    string     `json:"error_text,omitempty"    db:"error_text"`
	RowsAffected *int       `json:"rows_affected,omitempty" db:"rows_affected"`
}

// SystemState holds a precomputed snapshot of aggregate system metrics.
type SystemState struct {
	ObservationsTotal    int         `json:"observations_total"`
	DistinctModelKeys    int         `json:"distinct_model_keys"`
	StatRowsTotal        int         `json:"stat_rows_total"`
	StatRowsInsufficient int         `json:"stat_rows_insufficient"`
	StatRowsPerWindow    map[int]int `json:"stat_rows_per_window"`
}
