package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/marketlens/internal/pipeline"
	"github.com/ppiankov/marketlens/internal/worker"
)

var (
	concurrency  int
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze many queries from a file in parallel",
	Long: `Batch runs one analysis per query:
- Read queries from the input file (one per line, # starts a comment)
- Drop duplicate queries (case-insensitive)
- Run queries in parallel with a configurable worker count
- Write one report per query

Example:
  marketlens batch queries.txt
  marketlens batch queries.txt --concurrency 8 --output-dir ./reports
  marketlens batch queries.txt --live --batch-timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	addRunFlags(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().DurationVar(&batchTimeout, "batch-timeout", 30*time.Minute, "total timeout for the batch")
}

func runBatch(cmd *cobra.Command, args []string) error {
	if err := bindRunFlags(cmd); err != nil {
		return err
	}
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	workers := cfg.Concurrency.Workers
	if concurrency > 0 {
		workers = concurrency
	}

	sigCtx, stop := signalContext()
	defer stop()
	ctx, cancel := context.WithTimeout(sigCtx, batchTimeout)
	defer cancel()

	orch := pipeline.NewFromConfig(cfg, logger)
	processor := worker.NewBatchProcessor(orch, workers, cfg.RunConfig())

	logger.Info("batch %s: %d workers, output %s", args[0], workers, cfg.Output.Dir)
	results, err := processor.ProcessFile(ctx, args[0])
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	out := cmd.OutOrStdout()
	failures := 0
	for _, res := range results {
		if res.Error != nil {
			failures++
		}
		fmt.Fprintln(out, renderBatchLine(res))
	}

	fmt.Fprintf(out, "\n%d queries, %d succeeded, %d failed. Reports in %s\n",
		len(results), len(results)-failures, failures, cfg.Output.Dir)

	if failures > 0 {
		return fmt.Errorf("%d of %d queries failed", failures, len(results))
	}
	return nil
}
