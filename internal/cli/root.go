package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/marketlens/internal/model"
	"github.com/ppiankov/marketlens/internal/util"
)

// Version is overridden at build time with -ldflags "-X ...cli.Version=..."
var Version = "0.1.0"

var (
	cfgFile string
	verbose bool

	// v holds flag, env and file settings for the current invocation
	v = viper.New()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "marketlens",
	Short: "marketlens - market snapshot reports for a product query",
	Long: `marketlens answers "what does the market for this product look like right now?"

It collects listings for a query (from a configured live source, or from
deterministic simulated data), computes price statistics, a simulated price
trend and a rating-based sentiment signal, and writes a self-contained HTML
report.

Without a configured live endpoint every run uses simulated data; the report
says so.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is normal
		_ = godotenv.Load()
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "marketlens v%s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: "+DefaultConfigPath()+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = v.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// setup loads the configuration and builds the logger for a command
func setup() (*model.Config, *util.Logger, error) {
	cfg, err := loadConfig(v, cfgFile)
	if err != nil {
		return nil, nil, err
	}
	logger := util.NewLogger(cfg.Output.Verbose)
	if used := v.ConfigFileUsed(); used != "" {
		logger.Debug("using config file %s", used)
	}
	return cfg, logger, nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
