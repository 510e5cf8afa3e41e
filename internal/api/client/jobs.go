package client

import (
	"context"
	"fmt"
	"strconv"

	domain "github.com/rgclark/putterbase/pkg/types"
)

// ListJobs returns the most recent run for each distinct scheduled job.
func (c *Client) ListJobs(ctx context.Context) ([]domain.JobRun, error) {
	var runs []domain.JobRun
	if err := c.get(ctx, "/api/v1/jobs", &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

// GetJobHistory returns the run history for a specific scheduled job.
func (c *Client) GetJobHistory(ctx context.Context, jobName string) ([]domain.JobRun, error) {
	var runs []domain.JobRun
	if err := c.get(ctx, fmt.Sprintf("/api/v1/jobs/%s", jobName), &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

// Aggregate triggers an aggregation run. A window of 0 runs all configured
// windows. Returns the number of stat rows written.
func (c *Client) Aggregate(ctx context.Context, window int) (int, error) {
	path := "/api/v1/aggregate"
	if window > 0 {
		path += "?window=" + strconv.Itoa(window)
	}

	var resp struct {
		RowsWritten int `json:"rows_written"`
	}
	if err := c.post(ctx, path, nil, &resp); err != nil {
		return 0, err
	}
	return resp.RowsWritten, nil
}

// GetSystemState returns aggregate observation and stat row counts.
func (c *Client) GetSystemState(ctx context.Context) (*domain.SystemState, error) {
	var state domain.SystemState
	if err := c.get(ctx, "/api/v1/system/state", &state); err != nil {
		return nil, err
	}
	return &state, nil
}
