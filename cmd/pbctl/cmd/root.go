// Package cmd implements the pbctl CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/rgclark/putterbase/internal/api/client"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "pbctl",
		Short: "CLI client for the putterbase API",
		Long: "pbctl is a command-line client for the putterbase API.\n" +
			"It lets you resolve putter models to price stats, classify asking\n" +
			"prices, submit observations, and inspect scheduler jobs.",
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "", "config file (default $HOME/.pbctl.yaml)")
	rootCmd.PersistentFlags().
		String("server", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().
		String("output", "table", "output format (table, json)")

	cobra.CheckErr(viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server")))
	cobra.CheckErr(viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output")))

	rootCmd.AddCommand(resolveCmd())
	rootCmd.AddCommand(dealCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(ingestCmd())
	rootCmd.AddCommand(aggregateCmd())
	rootCmd.AddCommand(jobsCmd())
	rootCmd.AddCommand(stateCmd())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".pbctl")
	}

	viper.SetEnvPrefix("PBCTL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func newClient() *apiclient.Client {
	return apiclient.New(viper.GetString("server"))
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
