package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/rgclark/putterbase/internal/ingest"
)

// ObservationIngester defines the interface for ingesting observation batches.
type ObservationIngester interface {
	Ingest(ctx context.Context, raws []ingest.RawObservation) (ingest.Report, error)
}

// ObservationsHandler handles observation ingest requests.
type ObservationsHandler struct {
	ingester ObservationIngester
}

// NewObservationsHandler creates a new ObservationsHandler.
func NewObservationsHandler(ing ObservationIngester) *ObservationsHandler {
	return &ObservationsHandler{ingester: ing}
}

// --- Input/Output types ---

// IngestObservationsInput is the request body for batch observation ingest.
type IngestObservationsInput struct {
	Body struct {
		Observations []ingest.RawObservation `json:"observations" minItems:"1" doc:"Raw listing sightings to normalize and store"`
	}
}

// IngestObservationsOutput is the response body for batch observation ingest.
type IngestObservationsOutput struct {
	Body struct {
		Accepted int    `json:"accepted" doc:"Observations written to storage"`
		Skipped  int    `json:"skipped"  doc:"Observations dropped (malformed or duplicate)"`
		Error    string `json:"error,omitempty" doc:"First per-row problem encountered, if any"`
	}
}

// --- Handlers ---

// IngestObservations normalizes and stores a batch of raw sightings.
// Malformed rows are skipped and counted; only a storage failure fails
// the request.
func (h *ObservationsHandler) IngestObservations(
	ctx context.Context,
	input *IngestObservationsInput,
) (*IngestObservationsOutput, error) {
	rep, err := h.ingester.Ingest(ctx, input.Body.Observations)
	if err != nil {
		return nil, huma.Error500InternalServerError("ingest failed: " + err.Error())
	}

	out := &IngestObservationsOutput{}
	out.Body.Accepted = rep.Accepted
	out.Body.Skipped = rep.Skipped
	if rep.FirstError != nil {
		out.Body.Error = rep.FirstError.Error()
	}
	return out, nil
}

// RegisterObservationRoutes registers observation ingest endpoints with the Huma API.
func RegisterObservationRoutes(api huma.API, h *ObservationsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "ingest-observations",
		Method:      http.MethodPost,
		Path:        "/api/v1/observations",
		Summary:     "Ingest listing observations",
		Description: "Normalizes a batch of raw listing sightings (canonical model key, " +
			"variant tags, condition band) and stores them. Malformed rows are " +
			"skipped, not fatal.",
		Tags:          []string{"ingest"},
		DefaultStatus: http.StatusAccepted,
		Errors:        []int{http.StatusInternalServerError},
	}, h.IngestObservations)
}
