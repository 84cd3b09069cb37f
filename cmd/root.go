package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/campus-tools/results-viewer/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "results-viewer",
	Short: "Student results lookup service",
	Long:  "Reads semester result sheets from an XLSX workbook, aggregates them per registration number, and serves them over HTTP or the command line.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if workbookPath != "" {
			cfg.Workbook.Path = workbookPath
		}
		if presetName != "" {
			cfg.Results.Preset = presetName
		}

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

var (
	workbookPath string
	presetName   string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&workbookPath, "workbook", "", "results workbook path (default from config)")
	rootCmd.PersistentFlags().StringVar(&presetName, "preset", "", "aggregation preset: default, legacy, strict (default from config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
