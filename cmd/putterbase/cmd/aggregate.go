package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rgclark/putterbase/internal/aggregate"
	"github.com/rgclark/putterbase/internal/config"
	"github.com/rgclark/putterbase/internal/engine"
	"github.com/rgclark/putterbase/internal/store"
	"github.com/rgclark/putterbase/pkg/logger"
)

var aggregateWindow int

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Run a one-shot aggregation and exit",
	Long: "Recomputes trimmed percentile stats from stored observations. " +
		"Runs all configured windows unless --window selects one.",
	RunE: runAggregate,
}

func init() {
	aggregateCmd.Flags().IntVar(&aggregateWindow, "window", 0, "single window in days (0 = all configured windows)")
	rootCmd.AddCommand(aggregateCmd)
}

func runAggregate(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	st, err := store.NewPostgresStore(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer st.Close()

	eng := engine.NewEngine(st,
		engine.WithLogger(log),
		engine.WithWindows(cfg.Aggregate.WindowsDays),
		engine.WithAggregator(aggregate.New(cfg.Aggregate.TrimFraction, cfg.Aggregate.MinSamples)),
	)

	var rows int
	if aggregateWindow > 0 {
		rows, err = eng.RunAggregation(ctx, aggregateWindow)
	} else {
		rows, err = eng.RunAllAggregations(ctx)
	}
	if err != nil {
		return fmt.Errorf("running aggregation: %w", err)
	}

	log.Info("aggregation complete", "rows_written", rows)
	return nil
}
