package cli

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/marketlens/internal/pipeline"
	"github.com/ppiankov/marketlens/internal/server"
)

const shutdownGrace = 10 * time.Second

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis API over HTTP",
	Long: `Serve exposes:
  GET  /api/health        liveness check
  POST /api/v1/analyze    {"query": "...", "allow_live": false, "output_json": false}
  GET  /reports/{name}    generated report artifacts

Example:
  marketlens serve --port 8080 --output-dir ./reports`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "127.0.0.1", "listen host")
	serveCmd.Flags().Int("port", 8080, "listen port")
	serveCmd.Flags().String("output-dir", "reports", "directory for report artifacts")
}

func runServe(cmd *cobra.Command, args []string) error {
	for key, name := range map[string]string{"server.host": "host", "server.port": "port", "output.dir": "output-dir"} {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind --%s: %w", name, err)
			}
		}
	}

	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	orch := pipeline.NewFromConfig(cfg, logger)
	srv := server.NewServer(cfg.Server, orch, cfg.RunConfig(), Version, logger)

	logger.Info("listening on http://%s (reports in %s)", srv.Addr(), cfg.Output.Dir)
	if err := srv.Run(ctx, shutdownGrace); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
