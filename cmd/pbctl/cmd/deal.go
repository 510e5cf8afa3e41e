package cmd

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cobra"
)

func dealCmd() *cobra.Command {
	var window int

	cmd := &cobra.Command{
		Use:   "deal <query> <price>",
		Short: "Classify an asking price",
		Long: "Resolves a putter model and classifies the asking price (in dollars)\n" +
			"against the model's market percentiles, returning a deal tier,\n" +
			"confidence, and score.",
		Args: cobra.ExactArgs(2),
		Example: `  pbctl deal "Scotty Cameron Newport 2" 425.00
  pbctl deal "newport 2 circle t" 2950 --window 60`,
		RunE: func(_ *cobra.Command, args []string) error {
			price, err := strconv.ParseFloat(args[1], 64)
			if err != nil || price <= 0 {
				return fmt.Errorf("invalid price %q: expected a positive dollar amount", args[1])
			}
			priceCents := int64(math.Round(price * 100))

			c := newClient()
			result, err := c.CheckDeal(context.Background(), args[0], priceCents, window)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(result)
			}

			return printDealResult(result)
		},
	}

	cmd.Flags().IntVar(&window, "window", 0, "aggregation window in days (0 = server default)")

	return cmd
}
