package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	apiclient "github.com/rgclark/putterbase/internal/api/client"
	domain "github.com/rgclark/putterbase/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func dollars(cents *int64) string {
	if cents == nil {
		return "-"
	}
	return fmt.Sprintf("$%.2f", float64(*cents)/100)
}

func printResolvedStats(r *domain.ResolvedStats) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("Model:\t%s\n", r.ResolvedModelKey)
	tw.writef("Matched By:\t%s\n", r.MatchedBy)
	tw.writef("Window:\t%dd\n", r.WindowDays)
	if len(r.QueryHints) > 0 {
		tw.writef("Hints:\t%s\n", strings.Join(r.QueryHints, ", "))
	}

	if r.Baseline == nil {
		tw.writef("Baseline:\tno data\n")
	} else {
		tw.writef("Samples:\t%d\n", r.Baseline.N)
		tw.writef("P10:\t%s\n", dollars(r.Baseline.P10Cents))
		tw.writef("P50:\t%s\n", dollars(r.Baseline.P50Cents))
		tw.writef("P90:\t%s\n", dollars(r.Baseline.P90Cents))
		if r.Baseline.DispersionRatio != nil {
			tw.writef("Dispersion:\t%.2f\n", *r.Baseline.DispersionRatio)
		}
	}

	if len(r.Variants) > 0 {
		tw.writef("\nVARIANT\tSAMPLES\tPREMIUM\n")
		for i := range r.Variants {
			v := &r.Variants[i]
			premium := "-"
			if v.PremiumPct != nil {
				premium = fmt.Sprintf("%+.1f%%", *v.PremiumPct)
			}
			tw.writef("%s\t%d\t%s\n", v.VariantKey, v.N, premium)
		}
	}

	return tw.finish()
}

func printStatsTable(stats []domain.AggregatedStat) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("MODEL\tVARIANT\tCONDITION\tRARITY\tWINDOW\tN\tP10\tP50\tP90\n")
	for i := range stats {
		s := &stats[i]
		tw.writef("%s\t%s\t%s\t%s\t%dd\t%d\t%s\t%s\t%s\n",
			s.ModelKey,
			s.VariantKey,
			s.ConditionBand,
			s.RarityTier,
			s.WindowDays,
			s.N,
			dollars(s.P10Cents),
			dollars(s.P50Cents),
			dollars(s.P90Cents),
		)
	}
	return tw.finish()
}

func printDealResult(d *apiclient.DealResult) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("Model:\t%s\n", d.ResolvedModelKey)
	tw.writef("Matched By:\t%s\n", d.MatchedBy)
	tw.writef("Asking:\t$%.2f\n", float64(d.PriceCents)/100)
	tw.writef("Market P50:\t$%.2f (n=%d, %dd window)\n",
		float64(d.BaselineP50Cents)/100, d.BaselineN, d.WindowDays)
	tw.writef("Delta:\t%+.1f%%\n", d.Badge.DeltaPct*100)
	tw.writef("Tier:\t%s\n", d.Badge.Tier)
	tw.writef("Confidence:\t%s\n", d.Badge.Confidence)
	tw.writef("Score:\t%d/100\n", d.Badge.Score)
	return tw.finish()
}

func printJobRunsTable(runs []domain.JobRun) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("JOB\tSTATUS\tSTARTED\tCOMPLETED\tROWS\tERROR\n")
	for i := range runs {
		r := &runs[i]
		completed := "-"
		if r.CompletedAt != nil {
			completed = r.CompletedAt.Format("2006-01-02 15:04:05")
		}
		rows := "-"
		if r.RowsAffected != nil {
			rows = fmt.Sprintf("%d", *r.RowsAffected)
		}
		tw.writef("%s\t%s\t%s\t%s\t%s\t%s\n",
			r.JobName,
			r.Status,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			completed,
			rows,
			truncate(r.ErrorText, 40),
		)
	}
	return tw.finish()
}

func printSystemState(s *domain.SystemState) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("Observations:\t%d\n", s.ObservationsTotal)
	tw.writef("Distinct Models:\t%d\n", s.DistinctModelKeys)
	tw.writef("Stat Rows:\t%d\n", s.StatRowsTotal)
	tw.writef("Insufficient Rows:\t%d\n", s.StatRowsInsufficient)

	windows := make([]int, 0, len(s.StatRowsPerWindow))
	for w := range s.StatRowsPerWindow {
		windows = append(windows, w)
	}
	sort.Ints(windows)
	for _, w := range windows {
		tw.writef("Rows (%dd):\t%d\n", w, s.StatRowsPerWindow[w])
	}
	return tw.finish()
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
