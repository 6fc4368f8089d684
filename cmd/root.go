package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/brokerage-metrics/internal/config"
)

var cfg *config.Config

var (
	sourcePath   string
	sourceDriver string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "brokerage-metrics",
	Short: "Commission and performance metrics for real-estate brokerages",
	Long:  "Loads operations, expenses and rosters from a snapshot, computes fee splits, dashboards, team standings and projections, and prints them as tables, JSON or YAML.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		applySourceFlags(cmd, c)
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

// applySourceFlags lets --source and --driver override the configured source.
func applySourceFlags(cmd *cobra.Command, c *config.Config) {
	if cmd.Flags().Changed("source") {
		c.Source.Path = sourcePath
	}
	if cmd.Flags().Changed("driver") {
		c.Source.Driver = sourceDriver
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&sourcePath, "source", "", "snapshot file, directory or database DSN (overrides source.path)")
	rootCmd.PersistentFlags().StringVar(&sourceDriver, "driver", "", "source driver: file, csv, xlsx, sqlite or postgres (overrides source.driver)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "o", "table", "output format: table, json or yaml")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		zap.L().Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}
