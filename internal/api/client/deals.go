package client

import (
	"context"
	"net/url"
	"strconv"

	"github.com/rgclark/putterbase/pkg/dealcheck"
	domain "github.com/rgclark/putterbase/pkg/types"
)

// DealResult is the server's classification of an asking price.
type DealResult struct {
	ResolvedModelKey string             `json:"resolved_model_key"`
	MatchedBy        domain.MatchMethod `json:"matched_by"`
	WindowDays       int                `json:"window_days"`
	PriceCents       int64              `json:"price_cents"`
	Badge            dealcheck.Badge    `json:"badge"`
	BaselineN        int                `json:"baseline_n"`
	BaselineP50Cents int64              `json:"baseline_p50_cents"`
}

// CheckDeal classifies an asking price against a resolved model's baseline.
// A window of 0 uses the server default.
func (c *Client) CheckDeal(
	ctx context.Context,
	query string,
	priceCents int64,
	window int,
) (*DealResult, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("price_cents", strconv.FormatInt(priceCents, 10))
	if window > 0 {
		q.Set("window", strconv.Itoa(window))
	}

	var result DealResult
	if err := c.get(ctx, "/api/v1/deals/check?"+q.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
