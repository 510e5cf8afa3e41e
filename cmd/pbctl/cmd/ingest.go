package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rgclark/putterbase/internal/ingest"
)

func ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file>",
		Short: "Submit a batch of observations",
		Long: "Reads a JSON array of raw listing observations from a file (or stdin\n" +
			"with \"-\") and submits it for normalization and storage.",
		Args: cobra.ExactArgs(1),
		Example: `  pbctl ingest observations.json
  cat observations.json | pbctl ingest -`,
		RunE: func(_ *cobra.Command, args []string) error {
			data, err := readInput(args[0])
			if err != nil {
				return err
			}

			var observations []ingest.RawObservation
			if err := json.Unmarshal(data, &observations); err != nil {
				return fmt.Errorf("parsing observations: %w", err)
			}

			c := newClient()
			result, err := c.IngestObservations(context.Background(), observations)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(result)
			}

			fmt.Printf("Accepted %d, skipped %d.\n", result.Accepted, result.Skipped)
			if result.Error != "" {
				fmt.Printf("First problem: %s\n", result.Error)
			}
			return nil
		},
	}
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
