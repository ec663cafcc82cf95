package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/marketlens/internal/model"
)

const envPrefix = "MARKETLENS"

// DefaultConfigPath is where config init writes and where the config is looked up
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "marketlens", "config.yaml")
}

// DefaultCacheDir holds the disk layer of the live-source cache
func DefaultCacheDir() string {
	return filepath.Join(xdg.CacheHome, "marketlens")
}

// loadConfig resolves the configuration with precedence
// flags > env (MARKETLENS_*) > config file > defaults.
// An explicit path must exist; the default path is optional.
func loadConfig(v *viper.Viper, path string) (*model.Config, error) {
	defaults, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("encode defaults: %w", err)
	}
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		if _, err := os.Stat(DefaultConfigPath()); err == nil {
			path = DefaultConfigPath()
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("llm.api_key", envPrefix+"_LLM_API_KEY", "OPENAI_API_KEY")
	// Keys omitted from the encoded defaults are unknown to AutomaticEnv
	for _, key := range []string{"live.http_proxy", "live.https_proxy", "live.no_proxy", "live.chrome_bin"} {
		_ = v.BindEnv(key)
	}

	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = DefaultCacheDir()
	}
	return cfg, nil
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage marketlens configuration",
	Long: `Manage marketlens configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (MARKETLENS_*, e.g. MARKETLENS_COLLECT_ALLOW_LIVE=true)
3. Config file (` + DefaultConfigPath() + `)
4. Defaults

A .env file in the working directory is loaded into the environment first.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(v, cfgFile)
		if err != nil {
			return err
		}

		if used := v.ConfigFileUsed(); used != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", used)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = DefaultConfigPath()
		}
		if err := writeDefaultConfig(path); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created default configuration: %s\n", path)
		fmt.Fprintf(cmd.OutOrStdout(), "View the effective configuration with: marketlens config show\n")
		return nil
	},
}

// writeDefaultConfig writes the commented defaults to path, refusing to
// overwrite an existing file
func writeDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("check config file: %w", err)
	}

	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# marketlens configuration\n")
	buf.WriteString("#\n")
	buf.WriteString("# Precedence (highest first): CLI flags, MARKETLENS_* environment\n")
	buf.WriteString("# variables, this file, built-in defaults.\n")
	buf.WriteString("#\n")
	buf.WriteString("# Live collection needs live.endpoint, a URL containing {query}.\n")
	buf.WriteString("# Without it every run uses simulated data.\n\n")
	buf.Write(data)
	buf.WriteString("\n# API keys are read from the environment only:\n")
	buf.WriteString("#   export OPENAI_API_KEY=sk-...\n")
	buf.WriteString("# For an OpenAI-compatible local server set llm.base_url, e.g.\n")
	buf.WriteString("#   http://localhost:11434/v1\n")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
