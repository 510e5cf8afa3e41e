package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/rgclark/putterbase/pkg/types"
)

func TestClient_ConnectionRefused(t *testing.T) {
	t.Parallel()

	c := New("http://127.0.0.1:1") // nothing listening
	_, err := c.ListJobs(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API server not running")
}

func TestClient_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.ListJobs(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error (HTTP 500)")
}

func TestClient_ResolveStats(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/stats/resolve", r.URL.Path)
		assert.Equal(t, "Newport 2", r.URL.Query().Get("q"))
		assert.Equal(t, "180", r.URL.Query().Get("window"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(domain.ResolvedStats{
			ResolvedModelKey: "newport 2",
			WindowDays:       180,
			MatchedBy:        domain.MatchExact,
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	resolved, err := c.ResolveStats(context.Background(), "Newport 2", 180)
	require.NoError(t, err)
	assert.Equal(t, "newport 2", resolved.ResolvedModelKey)
	assert.Equal(t, domain.MatchExact, resolved.MatchedBy)
}

func TestClient_ListStats(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/stats", r.URL.Path)
		assert.Equal(t, "newport 2", r.URL.Query().Get("model_key"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(StatsResponse{
			Stats: []domain.AggregatedStat{
				{StatKey: domain.StatKey{ModelKey: "newport 2"}, N: 40},
			},
			Total: 1,
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	resp, err := c.ListStats(context.Background(), &ListStatsParams{
		ModelKey: "newport 2",
		Limit:    10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Stats, 1)
	assert.Equal(t, 40, resp.Stats[0].N)
}

func TestClient_CheckDeal(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/deals/check", r.URL.Path)
		assert.Equal(t, "42500", r.URL.Query().Get("price_cents"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(DealResult{
			ResolvedModelKey: "newport 2",
			PriceCents:       42500,
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	result, err := c.CheckDeal(context.Background(), "Newport 2", 42500, 0)
	require.NoError(t, err)
	assert.Equal(t, "newport 2", result.ResolvedModelKey)
}

func TestClient_Aggregate(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/aggregate", r.URL.Path)
		assert.Equal(t, "90", r.URL.Query().Get("window"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"aggregation completed","rows_written":33}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	rows, err := c.Aggregate(context.Background(), 90)
	require.NoError(t, err)
	assert.Equal(t, 33, rows)
}
