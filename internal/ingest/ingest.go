// Package ingest normalizes raw listing sightings into observations and
// writes them to the store in batches.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rgclark/putterbase/internal/metrics"
	"github.com/rgclark/putterbase/internal/store"
	"github.com/rgclark/putterbase/pkg/canon"
	"github.com/rgclark/putterbase/pkg/logger"
	domain "github.com/rgclark/putterbase/pkg/types"
	"github.com/rgclark/putterbase/pkg/variant"
)

// Skip reasons, used as metric labels and in logs.
const (
	reasonMissingListingID = "missing_listing_id"
	reasonBadPrice         = "bad_price"
	reasonEmptyModelKey    = "empty_model_key"
	reasonDuplicate        = "duplicate"
)

const defaultCategory = "putter"
const defaultRarityTier = "retail"

// RawObservation is one sighting as delivered by a collector, before
// normalization.
type RawObservation struct {
	ListingID  string            `json:"listing_id"`
	Title      string            `json:"title"`
	PriceCents int64             `json:"price_cents"`
	Category   string            `json:"category,omitempty"`
	RarityTier string            `json:"rarity_tier,omitempty"`
	Condition  string            `json:"condition,omitempty"`
	Aspects    map[string]string `json:"aspects,omitempty"`
	ObservedAt time.Time         `json:"observed_at"`
}

// Report summarizes one ingested batch. FirstError keeps only the first
// per-row problem; a batch with skips is still a successful ingest.
type Report struct {
	Accepted   int
	Skipped    int
	FirstError error
}

// Ingester converts raw sightings into observations and stores them.
type Ingester struct {
	store store.Store
	log   *slog.Logger
}

// NewIngester creates an Ingester. A nil logger falls back to the
// default slog logger.
func NewIngester(s store.Store, log *slog.Logger) *Ingester {
	return &Ingester{
		store: s,
		log:   logger.Component(log, "ingest"),
	}
}

// Ingest normalizes and stores a batch of raw sightings. Malformed rows
// are skipped and counted, never failing the batch; only a storage error
// fails the whole call.
func (i *Ingester) Ingest(ctx context.Context, raws []RawObservation) (Report, error) {
	var rep Report

	skip := func(reason string, raw *RawObservation) {
		rep.Skipped++
		metrics.IngestSkippedTotal.WithLabelValues(reason).Inc()
		if rep.FirstError == nil {
			rep.FirstError = fmt.Errorf("listing %q: %s", raw.ListingID, reason)
		}
	}

	obs := make([]domain.ListingObservation, 0, len(raws))
	for idx := range raws {
		raw := &raws[idx]

		if raw.ListingID == "" {
			skip(reasonMissingListingID, raw)
			continue
		}
		if raw.PriceCents <= 0 {
			skip(reasonBadPrice, raw)
			continue
		}

		modelKey := canon.Canonicalize(raw.Title)
		if modelKey == "" {
			skip(reasonEmptyModelKey, raw)
			continue
		}

		tags := variant.DetectTags(raw.Title, raw.Aspects)

		observedAt := raw.ObservedAt
		if observedAt.IsZero() {
			observedAt = time.Now()
		}
		category := raw.Category
		if category == "" {
			category = defaultCategory
		}
		rarity := raw.RarityTier
		if rarity == "" {
			rarity = defaultRarityTier
		}

		obs = append(obs, domain.ListingObservation{
			ListingID:     raw.ListingID,
			RawTitle:      raw.Title,
			ModelKey:      modelKey,
			VariantKey:    variant.BuildVariantKey(modelKey, tags),
			Category:      category,
			RarityTier:    rarity,
			ConditionBand: NormalizeCondition(raw.Condition),
			PriceCents:    raw.PriceCents,
			ObservedAt:    observedAt,
		})
	}

	inserted, err := i.store.InsertObservations(ctx, obs)
	if err != nil {
		return rep, fmt.Errorf("storing observations: %w", err)
	}

	// Rows the store silently dropped are repeat sightings.
	dupes := len(obs) - inserted
	rep.Accepted = inserted
	rep.Skipped += dupes
	for range dupes {
		metrics.IngestSkippedTotal.WithLabelValues(reasonDuplicate).Inc()
	}
	metrics.IngestAcceptedTotal.Add(float64(inserted))

	i.log.Info("batch ingested",
		"received", len(raws),
		"accepted", rep.Accepted,
		"skipped", rep.Skipped,
	)
	return rep, nil
}
