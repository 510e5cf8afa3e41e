package client

import (
	"context"

	"github.com/rgclark/putterbase/internal/ingest"
)

// IngestResult summarizes one ingested batch as reported by the server.
type IngestResult struct {
	Accepted int    `json:"accepted"`
	Skipped  int    `json:"skipped"`
	Error    string `json:"error,omitempty"`
}

// IngestObservations submits a batch of raw listing sightings for
// normalization and storage.
func (c *Client) IngestObservations(
	ctx context.Context,
	observations []ingest.RawObservation,
) (*IngestResult, error) {
	body := map[string]any{"observations": observations}

	var result IngestResult
	if err := c.post(ctx, "/api/v1/observations", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
