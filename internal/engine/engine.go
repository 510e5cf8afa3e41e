// Package engine orchestrates the aggregation cycle: read a window of
// observations, recompute its stat rows, and swap them into the store.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/rgclark/putterbase/internal/aggregate"
	"github.com/rgclark/putterbase/internal/metrics"
	"github.com/rgclark/putterbase/internal/store"
)

// Default aggregation parameters, overridable via options.
var defaultWindowsDays = []int{60, 90, 180}

const (
	defaultTrimFraction = 0.05
	defaultMinSamples   = 5
)

// Engine recomputes windowed statistics.
type Engine struct {
	store      store.Store
	aggregator *aggregate.Aggregator
	windows    []int
	log        *slog.Logger
}

// NewEngine creates a new Engine with injected dependencies.
func NewEngine(s store.Store, opts ...EngineOption) *Engine {
	eng := &Engine{
		store:      s,
		aggregator: aggregate.New(defaultTrimFraction, defaultMinSamples),
		windows:    defaultWindowsDays,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(eng)
	}
	return eng
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithWindows sets the aggregation windows in days.
func WithWindows(days []int) EngineOption {
	return func(e *Engine) {
		if len(days) > 0 {
			e.windows = days
		}
	}
}

// WithAggregator replaces the default aggregator, carrying custom trim
// and minimum-sample settings.
func WithAggregator(a *aggregate.Aggregator) EngineOption {
	return func(e *Engine) {
		e.aggregator = a
	}
}

// Windows returns the configured aggregation windows.
func (eng *Engine) Windows() []int {
	return eng.windows
}

// RunAggregation recomputes all stat rows for one window and returns the
// number of rows written.
func (eng *Engine) RunAggregation(ctx context.Context, windowDays int) (int, error) {
	start := time.Now()
	windowLabel := strconv.Itoa(windowDays)
	defer func() {
		metrics.AggregationDuration.WithLabelValues(windowLabel).
			Observe(time.Since(start).Seconds())
	}()

	since := time.Now().AddDate(0, 0, -windowDays)
	obs, err := eng.store.ListObservationsSince(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("listing window %d observations: %w", windowDays, err)
	}

	rows := eng.aggregator.Run(windowDays, obs)

	if err := eng.store.ReplaceWindowStats(ctx, windowDays, rows); err != nil {
		return 0, fmt.Errorf("replacing window %d stats: %w", windowDays, err)
	}

	metrics.AggregationRowsWritten.WithLabelValues(windowLabel).Set(float64(len(rows)))
	eng.log.Info("window aggregated",
		"window_days", windowDays,
		"observations", len(obs),
		"rows", len(rows),
		"elapsed", time.Since(start),
	)
	return len(rows), nil
}

// RunAllAggregations recomputes every configured window. A failing
// window is logged and counted but does not stop the others; its
// previous stats stay in place untouched. Returns total rows written
// and the joined failures, if any.
func (eng *Engine) RunAllAggregations(ctx context.Context) (int, error) {
	var (
		total int
		errs  []error
	)

	for _, window := range eng.windows {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}

		rows, err := eng.RunAggregation(ctx, window)
		if err != nil {
			eng.log.Error("window aggregation failed",
				"window_days", window,
				"error", err,
			)
			metrics.AggregationFailuresTotal.Inc()
			errs = append(errs, err)
			continue
		}
		total += rows
	}

	return total, errors.Join(errs...)
}
