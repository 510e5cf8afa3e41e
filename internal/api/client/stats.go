package client

import (
	"context"
	"net/url"
	"strconv"

	domain "github.com/rgclark/putterbase/pkg/types"
)

// StatsResponse wraps a paginated stats response.
type StatsResponse struct {
	Stats []domain.AggregatedStat `json:"stats"`
	Total int                     `json:"total"`
}

// ListStatsParams defines query parameters for stat row queries.
type ListStatsParams struct {
	ModelKey      string
	VariantKey    string
	Category      string
	RarityTier    string
	ConditionBand string
	Window        int
	MinN          int
	Limit         int
	Offset        int
	OrderBy       string
}

// ListStats returns stat rows matching the given parameters.
func (c *Client) ListStats(
	ctx context.Context,
	params *ListStatsParams,
) (*StatsResponse, error) {
	q := url.Values{}
	if params.ModelKey != "" {
		q.Set("model_key", params.ModelKey)
	}
	if params.VariantKey != "" {
		q.Set("variant_key", params.VariantKey)
	}
	if params.Category != "" {
		q.Set("category", params.Category)
	}
	if params.RarityTier != "" {
		q.Set("rarity_tier", params.RarityTier)
	}
	if params.ConditionBand != "" {
		q.Set("condition_band", params.ConditionBand)
	}
	if params.Window > 0 {
		q.Set("window", strconv.Itoa(params.Window))
	}
	if params.MinN > 0 {
		q.Set("min_n", strconv.Itoa(params.MinN))
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Offset > 0 {
		q.Set("offset", strconv.Itoa(params.Offset))
	}
	if params.OrderBy != "" {
		q.Set("order_by", params.OrderBy)
	}

	path := "/api/v1/stats"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp StatsResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResolveStats resolves a raw model query and returns its statistics for
// the given window. A window of 0 uses the server default.
func (c *Client) ResolveStats(
	ctx context.Context,
	query string,
	window int,
) (*domain.ResolvedStats, error) {
	q := url.Values{}
	q.Set("q", query)
	if window > 0 {
		q.Set("window", strconv.Itoa(window))
	}

	var resolved domain.ResolvedStats
	if err := c.get(ctx, "/api/v1/stats/resolve?"+q.Encode(), &resolved); err != nil {
		return nil, err
	}
	return &resolved, nil
}
