package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func resolveCmd() *cobra.Command {
	var window int

	cmd := &cobra.Command{
		Use:   "resolve <query>",
		Short: "Resolve a putter model to price stats",
		Long: "Canonicalizes a raw model query (listing title or model name), resolves\n" +
			"it to a stored model key, and shows baseline percentiles plus variant\n" +
			"premiums for the selected window.",
		Args: cobra.ExactArgs(1),
		Example: `  pbctl resolve "Scotty Cameron Newport 2"
  pbctl resolve "newport 2 circle t" --window 180 --output json`,
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			resolved, err := c.ResolveStats(context.Background(), args[0], window)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(resolved)
			}

			return printResolvedStats(resolved)
		},
	}

	cmd.Flags().IntVar(&window, "window", 0, "aggregation window in days (0 = server default)")

	return cmd
}
