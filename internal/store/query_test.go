package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestStatsQuery_ToSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		query         *StatsQuery
		wantContains  []string
		wantNotHave   []string
		wantArgs      []any
		wantCountSame bool
	}{
		{
			name:  "empty query uses defaults",
			query: &StatsQuery{},
			wantContains: []string{
				"ORDER BY n DESC",
				"LIMIT 50 OFFSET 0",
			},
			wantNotHave: []string{"WHERE"},
			wantArgs:    nil,
		},
		{
			name: "model key filter",
			query: &StatsQuery{
				ModelKey: strPtr("newport 2"),
			},
			wantContains: []string{"WHERE model_key = $1"},
			wantArgs:     []any{"newport 2"},
		},
		{
			name: "all filters numbered in order",
			query: &StatsQuery{
				ModelKey:      strPtr("newport 2"),
				VariantKey:    strPtr("*"),
				Category:      strPtr("putter"),
				RarityTier:    strPtr("tour"),
				ConditionBand: strPtr("any"),
				WindowDays:    intPtr(90),
				MinN:          intPtr(5),
			},
			wantContains: []string{
				"model_key = $1",
				"variant_key = $2",
				"category = $3",
				"rarity_tier = $4",
				"condition_band = $5",
				"window_days = $6",
				"n >= $7",
			},
			wantArgs: []any{"newport 2", "*", "putter", "tour", "any", 90, 5},
		},
		{
			name:         "order by p50",
			query:        &StatsQuery{OrderBy: "p50"},
			wantContains: []string{"ORDER BY p50_cents ASC NULLS LAST"},
		},
		{
			name:         "unknown order by falls back",
			query:        &StatsQuery{OrderBy: "sneaky; DROP TABLE"},
			wantContains: []string{"ORDER BY n DESC"},
		},
		{
			name:         "limit capped at max",
			query:        &StatsQuery{Limit: 10000},
			wantContains: []string{"LIMIT 500"},
		},
		{
			name:         "negative offset clamped",
			query:        &StatsQuery{Offset: -3},
			wantContains: []string{"OFFSET 0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dataSQL, countSQL, args := tt.query.ToSQL()

			for _, want := range tt.wantContains {
				assert.Contains(t, dataSQL, want)
			}
			for _, notWant := range tt.wantNotHave {
				assert.NotContains(t, dataSQL, notWant)
			}
			assert.Equal(t, tt.wantArgs, args)

			// The count query shares the WHERE clause but never pages.
			assert.NotContains(t, countSQL, "LIMIT")
			assert.NotContains(t, countSQL, "ORDER BY")
		})
	}
}
