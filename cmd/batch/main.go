package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"housecast/internal/config"
	"housecast/internal/container"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	var holdoutPath, outputDir, predictorMode string

	rootCmd := &cobra.Command{
		Use:   "batch",
		Short: "Run monthly batch inference over the holdout split",
		Long: `Load the cleaned holdout data, group it by calendar month and write one
predictions file per month to the predictions directory.

Paths and the predictor come from the environment (see .env.example):
- HOLDOUT_PATH (default: data/processed/cleaning_holdout.csv)
- PREDICTIONS_DIR (default: data/predictions)
- PREDICTOR_MODE=baseline|remote (default: baseline)
- LEDGER_DSN (optional; records every written partition)

Example: batch --holdout data/processed/cleaning_holdout.csv --out data/predictions`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("holdout") {
				cfg.Batch.HoldoutPath = holdoutPath
			}
			if cmd.Flags().Changed("out") {
				cfg.Batch.OutputDir = outputDir
			}
			if cmd.Flags().Changed("predictor") {
				cfg.Predictor.Mode = predictorMode
			}
			return runBatch(cmd.Context(), cfg)
		},
	}

	rootCmd.Flags().StringVar(&holdoutPath, "holdout", "", "Cleaned holdout file (overrides HOLDOUT_PATH)")
	rootCmd.Flags().StringVar(&outputDir, "out", "", "Predictions directory (overrides PREDICTIONS_DIR)")
	rootCmd.Flags().StringVar(&predictorMode, "predictor", "", "baseline or remote (overrides PREDICTOR_MODE)")

	// Load environment variables from .env file; system environment is used otherwise
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func runBatch(ctx context.Context, cfg *config.Config) error {
	c, err := container.New(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.InitLedger(ctx); err != nil {
		return err
	}
	if err := c.InitPredictor(ctx); err != nil {
		return err
	}

	result, err := c.BatchService().Run(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Batch inference complete.")
	w := csv.NewWriter(os.Stdout)
	if err := w.WriteAll(result.Combined.Head(5).Records()); err != nil {
		return err
	}
	c.Logger.Info("run %s wrote %d monthly files", result.RunID, len(result.Partitions))
	return nil
}
