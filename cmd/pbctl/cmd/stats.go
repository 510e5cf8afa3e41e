package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	apiclient "github.com/rgclark/putterbase/internal/api/client"
)

func statsCmd() *cobra.Command {
	statsRoot := &cobra.Command{
		Use:   "stats",
		Short: "Query aggregated price stats",
	}

	statsRoot.AddCommand(statsListCmd())

	return statsRoot
}

func statsListCmd() *cobra.Command {
	params := &apiclient.ListStatsParams{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stat rows",
		Example: `  pbctl stats list --model-key "newport 2" --window 90
  pbctl stats list --condition any --order-by n --limit 20`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			resp, err := c.ListStats(context.Background(), params)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(resp)
			}

			if len(resp.Stats) == 0 {
				fmt.Println("No stat rows found.")
				return nil
			}

			if err := printStatsTable(resp.Stats); err != nil {
				return err
			}
			fmt.Printf("\n%d of %d rows\n", len(resp.Stats), resp.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&params.ModelKey, "model-key", "", "filter by canonical model key")
	cmd.Flags().StringVar(&params.VariantKey, "variant-key", "", "filter by variant key")
	cmd.Flags().StringVar(&params.Category, "category", "", "filter by category")
	cmd.Flags().StringVar(&params.RarityTier, "rarity", "", "filter by rarity tier")
	cmd.Flags().StringVar(&params.ConditionBand, "condition", "", "filter by condition band")
	cmd.Flags().IntVar(&params.Window, "window", 0, "filter by window in days")
	cmd.Flags().IntVar(&params.MinN, "min-n", 0, "minimum sample count")
	cmd.Flags().IntVar(&params.Limit, "limit", 0, "number of results")
	cmd.Flags().IntVar(&params.Offset, "offset", 0, "pagination offset")
	cmd.Flags().StringVar(&params.OrderBy, "order-by", "", "sort field (n, p50, updated_at)")

	return cmd
}
