package cli

import (
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/marketlens/internal/pipeline"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <query>",
	Short: "Analyze the market for a product query and write an HTML report",
	Long: `Analyze collects listings for a query and writes a report with:
- Price statistics (count, mean, median, min, max, standard deviation)
- A simulated price index trend
- A rating-based sentiment signal
- Price/quality insights and an executive summary

Example:
  marketlens analyze "wireless headphones"
  marketlens analyze "standing desk" --output-dir ./reports --json
  marketlens analyze "espresso machine" --live --timeout 10s
  marketlens analyze "gaming mouse" --llm openai`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	addRunFlags(analyzeCmd)
}

// addRunFlags registers the flags shared by analyze and batch
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().String("output-dir", "reports", "directory for report artifacts")
	cmd.Flags().Bool("live", false, "try the configured live source before falling back to simulated data")
	cmd.Flags().Duration("timeout", 0, "live fetch timeout per attempt (default from config)")
	cmd.Flags().Bool("json", false, "also write the result as JSON")
	cmd.Flags().String("llm", "", "write the executive summary with an LLM provider (openai)")
	cmd.Flags().Lookup("llm").NoOptDefVal = "openai"
}

// bindRunFlags binds the shared flags of cmd to their config keys. Called at
// run time so each command binds its own flag set.
func bindRunFlags(cmd *cobra.Command) error {
	bindings := map[string]string{
		"output.dir":         "output-dir",
		"collect.allow_live": "live",
		"collect.timeout":    "timeout",
		"output.json":        "json",
		"llm.provider":       "llm",
	}
	for key, name := range bindings {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if err := bindRunFlags(cmd); err != nil {
		return err
	}
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	orch := pipeline.NewFromConfig(cfg, logger)
	result, err := orch.Run(ctx, args[0], cfg.RunConfig())
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderSummary(result))
	fmt.Fprintf(out, "Report: %s\n", result.ReportPath)
	fmt.Fprintf(out, "Open:   %s\n", fileURL(result.ReportPath))
	if result.JSONPath != "" {
		fmt.Fprintf(out, "JSON:   %s\n", result.JSONPath)
	}
	return nil
}

// fileURL turns an absolute path into a file:// URL
func fileURL(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}
