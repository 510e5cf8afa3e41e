package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/rgclark/putterbase/internal/metrics"
	"github.com/rgclark/putterbase/internal/store"
	"github.com/rgclark/putterbase/pkg/dealcheck"
	"github.com/rgclark/putterbase/pkg/resolve"
	domain "github.com/rgclark/putterbase/pkg/types"
)

// DealsHandler handles deal classification requests.
type DealsHandler struct {
	store store.Store
}

// NewDealsHandler creates a new DealsHandler.
func NewDealsHandler(s store.Store) *DealsHandler {
	return &DealsHandler{store: s}
}

// --- Input/Output types ---

// CheckDealInput is the input for classifying an asking price.
type CheckDealInput struct {
	Query      string `query:"q"           doc:"Raw model query (listing title or model name)" minLength:"1" example:"Scotty Cameron Newport 2"`
	PriceCents int64  `query:"price_cents" doc:"Asking price in cents"                         minimum:"1"   example:"42500"`
	Window     int    `query:"window"      doc:"Aggregation window in days (default 90)"       minimum:"1"`
}

// CheckDealOutput is the response for a deal classification.
type CheckDealOutput struct {
	Body struct {
		ResolvedModelKey string             `json:"resolved_model_key"`
		MatchedBy        domain.MatchMethod `json:"matched_by"`
		WindowDays       int                `json:"window_days"`
		PriceCents       int64              `json:"price_cents"`
		Badge            dealcheck.Badge    `json:"badge"`
		BaselineN        int                `json:"baseline_n"`
		BaselineP50Cents int64              `json:"baseline_p50_cents"`
	}
}

// --- Handlers ---

// CheckDeal resolves a query to a model key and classifies an asking price
// against that model's baseline percentiles.
func (h *DealsHandler) CheckDeal(
	ctx context.Context,
	input *CheckDealInput,
) (*CheckDealOutput, error) {
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
			return nil, huma.Error404NotFound(
				"no price data for " + "\"" + nf.NormalizedKey + "\"")
		}
		return nil, huma.Error500InternalServerError("resolving query failed: " + err.Error())
	}

	if baseline == nil {
		baseline, err = h.store.GetBaselineStat(ctx, match.Key, window)
		if err != nil {
			return nil, huma.Error500InternalServerError("fetching baseline failed: " + err.Error())
		}
	}

	if baseline == nil || !baseline.HasPrices() {
		return nil, huma.Error422UnprocessableEntity(
			"not enough price data to classify " + "\"" + match.Key + "\"")
	}

	badge, ok := dealcheck.Classify(input.PriceCents, dealcheck.Baseline{
		N:        baseline.N,
		P10Cents: *baseline.P10Cents,
		P50Cents: *baseline.P50Cents,
		P90Cents: *baseline.P90Cents,
	})
	if !ok {
		return nil, huma.Error422UnprocessableEntity(
			"not enough price data to classify " + "\"" + match.Key + "\"")
	}

	metrics.DealBadgesTotal.WithLabelValues(string(badge.Tier)).Inc()
	metrics.DealScoreDistribution.Observe(float64(badge.Score))

	out := &CheckDealOutput{}
	out.Body.ResolvedModelKey = match.Key
	out.Body.MatchedBy = match.MatchedBy
	out.Body.WindowDays = window
	out.Body.PriceCents = input.PriceCents
	out.Body.Badge = badge
	out.Body.BaselineN = baseline.N
	out.Body.BaselineP50Cents = *baseline.P50Cents
	return out, nil
}

// RegisterDealRoutes registers deal classification endpoints with the Huma API.
func RegisterDealRoutes(api huma.API, h *DealsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "check-deal",
		Method:      http.MethodGet,
		Path:        "/api/v1/deals/check",
		Summary:     "Classify an asking price",
		Description: "Resolves a raw model query and classifies the asking price against " +
			"the model's trimmed percentile baseline, returning a deal tier, " +
			"confidence, and a 0-100 score.",
		Tags:   []string{"deals"},
		Errors: []int{http.StatusNotFound, http.StatusUnprocessableEntity},
	}, h.CheckDeal)
}
