package handlers

import (
	"context"
	"net/http"
	"slices"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
)

// AggregationRunner defines the interface for triggering aggregation runs.
type AggregationRunner interface {
	RunAggregation(ctx context.Context, windowDays int) (int, error)
	RunAllAggregations(ctx context.Context) (int, error)
	Windows() []int
}

// AggregateHandler handles manual aggregation trigger requests.
type AggregateHandler struct {
	runner AggregationRunner
}

// NewAggregateHandler creates a new AggregateHandler.
func NewAggregateHandler(r AggregationRunner) *AggregateHandler {
	return &AggregateHandler{runner: r}
}

// AggregateInput is the input for the aggregation trigger endpoint.
type AggregateInput struct {
	Window int `query:"window" doc:"Run a single window (days); omit to run all configured windows" minimum:"0"`
}

// AggregateOutput is the response body for the aggregation trigger endpoint.
type AggregateOutput struct {
	Body struct {
		Status      string `json:"status" example:"aggregation completed" doc:"Aggregation status"`
		RowsWritten int    `json:"rows_written" doc:"Stat rows written across the windows run"`
	}
}

// Aggregate recomputes percentile stats, either for one configured window or
// for all of them.
func (h *AggregateHandler) Aggregate(ctx context.Context, input *AggregateInput) (*AggregateOutput, error) {
	var (
		rows int
		err  error
	)

	if input.Window > 0 {
		if !slices.Contains(h.runner.Windows(), input.Window) {
			return nil, huma.Error422UnprocessableEntity(
				"window " + strconv.Itoa(input.Window) + " is not configured")
		}
		rows, err = h.runner.RunAggregation(ctx, input.Window)
	} else {
		rows, err = h.runner.RunAllAggregations(ctx)
	}

	if err != nil {
		return nil, huma.Error500InternalServerError("aggregation failed: " + err.Error())
	}

	resp := &AggregateOutput{}
	resp.Body.Status = "aggregation completed"
	resp.Body.RowsWritten = rows
	return resp, nil
}

// RegisterTriggerRoutes registers trigger endpoints with the Huma API.
func RegisterTriggerRoutes(api huma.API, h *AggregateHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "trigger-aggregate",
		Method:      http.MethodPost,
		Path:        "/api/v1/aggregate",
		Summary:     "Trigger aggregation",
		Description: "Recomputes trimmed percentile stats from stored observations, for one " +
			"window or all configured windows.",
		Tags:   []string{"scheduler"},
		Errors: []int{http.StatusUnprocessableEntity, http.StatusInternalServerError},
	}, h.Aggregate)
}
