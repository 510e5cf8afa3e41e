package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/rgclark/putterbase/internal/store"
	domain "github.com/rgclark/putterbase/pkg/types"
)

// StatsHandler handles aggregated stat query endpoints.
type StatsHandler struct {
	store store.Store
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(s store.Store) *StatsHandler {
	return &StatsHandler{store: s}
}

// --- Input/Output types ---

// ListStatsInput is the input for listing stat rows with optional filters.
type ListStatsInput struct {
	ModelKey      string `query:"model_key"      doc:"Filter by canonical model key"`
	VariantKey    string `query:"variant_key"    doc:"Filter by variant key (\"*\" matches the collapsed rollup)"`
	Category      string `query:"category"       doc:"Filter by category"`
	RarityTier    string `query:"rarity_tier"    doc:"Filter by rarity tier"`
	ConditionBand string `query:"condition_band" doc:"Filter by condition band"       enum:"new,like_new,good,fair,used,any,"`
	Window        int    `query:"window"         doc:"Filter by window in days"       minimum:"0"`
	MinN          int    `query:"min_n"          doc:"Minimum sample count"           minimum:"0"`
	Limit         int    `query:"limit"          doc:"Number of results (default 50)" minimum:"1" maximum:"500"`
	Offset        int    `query:"offset"         doc:"Pagination offset"              minimum:"0"`
	OrderBy       string `query:"order_by"       doc:"Sort field"                     enum:"n,p50,updated_at,"`
}

// ListStatsOutput is the response for listing stat rows.
type ListStatsOutput struct {
	Body struct {
		Stats  []domain.AggregatedStat `json:"stats"`
		Total  int                     `json:"total"`
		Limit  int                     `json:"limit"`
		Offset int                     `json:"offset"`
	}
}

// --- Handlers ---

// ListStats returns aggregated stat rows with optional key filters and
// pagination.
func (h *StatsHandler) ListStats(
	ctx context.Context,
	input *ListStatsInput,
) (*ListStatsOutput, error) {
	q := &store.StatsQuery{
		Limit:   input.Limit,
		Offset:  input.Offset,
		OrderBy: input.OrderBy,
	}

	if input.ModelKey != "" {
		q.ModelKey = &input.ModelKey
	}

	if input.VariantKey != "" {
		q.VariantKey = &input.VariantKey
	}

	if input.Category != "" {
		q.Category = &input.Category
	}

	if input.RarityTier != "" {
		q.RarityTier = &input.RarityTier
	}

	if input.ConditionBand != "" {
		q.ConditionBand = &input.ConditionBand
	}

	if input.Window > 0 {
		q.WindowDays = &input.Window
	}

	if input.MinN > 0 {
		q.MinN = &input.MinN
	}

	stats, total, err := h.store.ListStats(ctx, q)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing stats failed: " + err.Error())
	}

	if stats == nil {
		stats = []domain.AggregatedStat{}
	}

	out := &ListStatsOutput{}
	out.Body.Stats = stats
	out.Body.Total = total
	out.Body.Limit = q.Limit
	out.Body.Offset = q.Offset
	return out, nil
}

// RegisterStatRoutes registers stat query endpoints with the Huma API.
func RegisterStatRoutes(api huma.API, h *StatsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-stats",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats",
		Summary:     "List aggregated stats",
		Description: "Returns trimmed percentile stat rows with optional filters on the " +
			"composite key dimensions, plus pagination.",
		Tags:   []string{"stats"},
		Errors: []int{http.StatusInternalServerError},
	}, h.ListStats)
}
