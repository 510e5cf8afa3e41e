// Package cmd implements the CLI commands for the putterbase server.
package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "putterbase",
	Short: "Putter price intelligence service",
	Long: "An API-first service that ingests putter listing observations, " +
		"canonicalizes model names and variant tags, aggregates trimmed " +
		"percentile price stats over rolling windows, and classifies asking " +
		"prices into deal tiers.",
}

func init() {
	cobra.OnInitialize(loadDotEnv)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.AddCommand(versionCommand())
}

// loadDotEnv loads a local .env file when present. Missing files are fine;
// real deployments set environment variables directly.
func loadDotEnv() {
	_ = godotenv.Load()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
