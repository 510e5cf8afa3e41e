package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/rgclark/putterbase/internal/metrics"
	"github.com/rgclark/putterbase/internal/store"
	"github.com/rgclark/putterbase/pkg/resolve"
	domain "github.com/rgclark/putterbase/pkg/types"
	"github.com/rgclark/putterbase/pkg/variant"
)

const defaultWindowDays = 90

// ResolveHandler handles model key resolution and stats lookup.
type ResolveHandler struct {
	store store.Store
}

// NewResolveHandler creates a new ResolveHandler.
func NewResolveHandler(s store.Store) *ResolveHandler {
	return &ResolveHandler{store: s}
}

// --- Input/Output types ---

// ResolveStatsInput is the input for resolving a raw query to model stats.
type ResolveStatsInput struct {
	Query  string `query:"q"      doc:"Raw model query (listing title or model name)" minLength:"1" example:"Scotty Cameron Newport 2 34in"`
	Window int    `query:"window" doc:"Aggregation window in days (default 90)"       minimum:"1"`
}

// ResolveStatsOutput is the response for a resolved stats query.
type ResolveStatsOutput struct {
	Body domain.ResolvedStats
}

// --- Handlers ---

// ResolveStats resolves a raw query to a stored model key and returns the
// base-model statistics plus per-variant premiums for the requested window.
func (h *ResolveHandler) ResolveStats(
	ctx context.Context,
	input *ResolveStatsInput,
) (*ResolveStatsOutput, error) {
	window := input.Window
	if window <= 0 {
		window = defaultWindowDays
	}

	var baseline *domain.AggregatedStat

	lookup := func(ctx context.Context, key string) (bool, error) {
		st, err := h.store.GetBaselineStat(ctx, key, window)
		if err != nil {
			return false, err
		}
		if st == nil {
			return false, nil
		}
		baseline = st
		return true, nil
	}

	fuzzy := func(ctx context.Context, needle string) (string, bool, error) {
		return h.store.FuzzyFindModelKey(ctx, needle, window)
	}

	match, err := resolve.ResolveWithFallback(ctx, input.Query, lookup, fuzzy)
	if err != nil {
		var nf *resolve.NotFoundError
		if errors.As(err, &nf) {
			metrics.ResolveOutcomesTotal.WithLabelValues("not_found").Inc()
			return nil, huma.Error404NotFound(
				"no price data for " + "\"" + nf.NormalizedKey + "\"")
		}
		return nil, huma.Error500InternalServerError("resolving query failed: " + err.Error())
	}

	metrics.ResolveOutcomesTotal.WithLabelValues(string(match.MatchedBy)).Inc()

	// A fuzzy match skips the lookup closure, so the baseline may still
	// be unset here.
	if baseline == nil {
		baseline, err = h.store.GetBaselineStat(ctx, match.Key, window)
		if err != nil {
			return nil, huma.Error500InternalServerError("fetching baseline failed: " + err.Error())
		}
	}

	variants, err := h.store.ListVariantStats(ctx, match.Key, window)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing variants failed: " + err.Error())
	}

	return &ResolveStatsOutput{Body: domain.ResolvedStats{
		ResolvedModelKey: match.Key,
		WindowDays:       window,
		MatchedBy:        match.MatchedBy,
		Baseline:         baseline,
		Variants:         variantPremiums(baseline, variants),
		QueryHints:       queryHints(input.Query),
	}}, nil
}

// queryHints surfaces sub-model hints from the raw query. Hints never
// participate in resolution; they only annotate the response.
func queryHints(query string) []string {
	tags := variant.DetectHints(query)
	if len(tags) == 0 {
		return nil
	}
	hints := make([]string, len(tags))
	for i, tag := range tags {
		hints[i] = string(tag)
	}
	return hints
}

// variantPremiums converts raw variant stat rows into display rows with the
// p50 premium over the base model. The premium is nil when either side has
// too few samples to carry prices.
func variantPremiums(base *domain.AggregatedStat, variants []domain.AggregatedStat) []domain.VariantStat {
	out := make([]domain.VariantStat, 0, len(variants))

	for _, v := range variants {
		vs := domain.VariantStat{
			VariantKey: v.VariantKey,
			N:          v.N,
		}

		if base != nil && base.HasPrices() && v.HasPrices() && *base.P50Cents > 0 {
			premium := (float64(*v.P50Cents) - float64(*base.P50Cents)) /
				float64(*base.P50Cents) * 100
			vs.PremiumPct = &premium
		}

		out = append(out, vs)
	}

	return out
}

// RegisterResolveRoutes registers resolution endpoints with the Huma API.
func RegisterResolveRoutes(api huma.API, h *ResolveHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "resolve-stats",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats/resolve",
		Summary:     "Resolve a query to model statistics",
		Description: "Canonicalizes a raw model query, resolves it to a stored model key " +
			"(with degraded and fuzzy fallbacks), and returns base-model percentile " +
			"stats plus per-variant premiums.",
		Tags:   []string{"stats"},
		Errors: []int{http.StatusNotFound},
	}, h.ResolveStats)
}
