package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pankajverma010101-svg/predict-cpi/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "predict-cpi",
	Short: "Survey bid extraction and price resolution",
	Long:  "Reads procurement emails from a mailbox, extracts canonical bid fields from text and HTML tables, and resolves CPI quotes against tiered rate cards.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
