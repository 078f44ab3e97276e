package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"housecast/app"
	"housecast/internal/config"
	"housecast/internal/container"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// errChecksFailed is returned after the per-split reports have been printed
var errChecksFailed = errors.New("data quality checks failed")

func main() {
	rootCmd := &cobra.Command{
		Use:   "dataquality [split-paths...]",
		Short: "Validate raw housing splits against the expectation battery",
		Long: `Run the housing expectation battery over each raw split and print a report per split.
Every split is checked even when an earlier one fails; the exit status is 1 if any failed.

Without arguments the splits come from TRAIN_SPLIT_PATH, EVAL_SPLIT_PATH and HOLDOUT_SPLIT_PATH
(defaults: data/raw/train.csv, data/raw/eval.csv, data/raw/holdout.csv).

Example: dataquality data/raw/train.csv data/raw/eval.csv`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			paths := cfg.Validation.Splits()
			if len(args) > 0 {
				paths = args
			}
			return runValidation(cmd.Context(), cfg, paths)
		},
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errChecksFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(1)
	}
}

func runValidation(ctx context.Context, cfg *config.Config, paths []string) error {
	c, err := container.New(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.InitLedger(ctx); err != nil {
		return err
	}

	outcomes := c.DataQualityService().ValidateSplits(ctx, paths)
	for _, o := range outcomes {
		if o.Failed() {
			c.Logger.Debug("%s failed: %v", o.Path, o.Err)
		}
	}
	if app.AnyFailed(outcomes) {
		return errChecksFailed
	}
	return nil
}
