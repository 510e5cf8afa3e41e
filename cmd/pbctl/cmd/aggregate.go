package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func aggregateCmd() *cobra.Command {
	var window int

	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Trigger an aggregation run",
		Long: "Triggers recomputation of trimmed percentile stats on the server,\n" +
			"for one window or all configured windows.",
		Example: `  pbctl aggregate
  pbctl aggregate --window 90`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			rows, err := c.Aggregate(context.Background(), window)
			if err != nil {
				return err
			}

			fmt.Printf("Aggregation completed, %d stat rows written.\n", rows)
			return nil
		},
	}

	cmd.Flags().IntVar(&window, "window", 0, "single window in days (0 = all configured windows)")

	return cmd
}
