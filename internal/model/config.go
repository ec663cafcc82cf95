package model

import "time"

// Config is the complete marketlens configuration
type Config struct {
	Collect     CollectConfig     `yaml:"collect" mapstructure:"collect"`
	Live        LiveConfig        `yaml:"live" mapstructure:"live"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
}

// CollectConfig controls the live/mock collection policy
type CollectConfig struct {
	AllowLive   bool          `yaml:"allow_live" mapstructure:"allow_live"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`           // Per-attempt live fetch timeout
	MaxAttempts int           `yaml:"max_attempts" mapstructure:"max_attempts"` // Live fetch attempts before fallback
	Backoff     time.Duration `yaml:"backoff" mapstructure:"backoff"`           // Delay before the next attempt
}

// LiveConfig configures the live-source collaborator
type LiveConfig struct {
	Driver            string  `yaml:"driver" mapstructure:"driver"`     // "http" or "browser"
	Endpoint          string  `yaml:"endpoint" mapstructure:"endpoint"` // URL template, {query} is replaced
	UserAgent         string  `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes      int64   `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RespectRobots     bool    `yaml:"respect_robots" mapstructure:"respect_robots"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
	HTTPProxy         string  `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy        string  `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy           string  `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"` // Comma-separated hosts fetched directly
	ChromeBin         string  `yaml:"chrome_bin,omitempty" mapstructure:"chrome_bin"`
}

// CacheConfig configures the live payload cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
}

// OutputConfig configures report artifacts
type OutputConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	JSON    bool   `yaml:"json" mapstructure:"json"` // Also write the result as JSON
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// LLMConfig configures the optional narrative provider
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // "" (disabled) or "openai"
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"api_key"` // Never written to disk
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	CorsOrigins  []string      `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// ConcurrencyConfig configures batch processing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// DefaultConfig returns the built-in defaults.
// Live collection is off by default; every run then uses mock data.
func DefaultConfig() *Config {
	return &Config{
		Collect: CollectConfig{
			AllowLive:   false,
			Timeout:     5 * time.Second,
			MaxAttempts: 2,
			Backoff:     500 * time.Millisecond,
		},
		Live: LiveConfig{
			Driver:            "http",
			Endpoint:          "",
			UserAgent:         "marketlens/0.1 (+https://github.com/ppiankov/marketlens)",
			MaxBodyBytes:      2_000_000,
			RespectRobots:     true,
			RequestsPerSecond: 1,
			BurstSize:         2,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 10 * time.Minute,
			DiskTTL:   6 * time.Hour,
			Dir:       "",
		},
		Output: OutputConfig{
			Dir:     "reports",
			JSON:    false,
			Verbose: false,
		},
		LLM: LLMConfig{
			Provider:  "",
			Model:     "gpt-4o-mini",
			Timeout:   30,
			MaxTokens: 600,
		},
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			CorsOrigins:  []string{"*"},
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
	}
}

// RunConfig derives the per-run configuration from the loaded config
func (c *Config) RunConfig() RunConfig {
	return RunConfig{
		AllowLive:   c.Collect.AllowLive,
		LiveTimeout: c.Collect.Timeout,
		OutputDir:   c.Output.Dir,
		WriteJSON:   c.Output.JSON,
	}
}
