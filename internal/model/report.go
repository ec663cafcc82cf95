package model

import "time"

// AnalysisResult is the single object returned to every caller of a run.
// It is assembled once by the orchestrator and never mutated afterwards.
type AnalysisResult struct {
	Query        Query              `json:"query"`
	DataSource   DataSource         `json:"data_source"`
	ProductCount int                `json:"product_count"`
	SkippedCount int                `json:"skipped_count"` // Raw records dropped during normalization
	Stats        MarketStats        `json:"stats"`
	Sentiment    SentimentSummary   `json:"sentiment"`
	Insights     Insights           `json:"insights"`
	Products     []CanonicalProduct `json:"products"`
	GeneratedAt  time.Time          `json:"generated_at"`
	ReportPath   string             `json:"report_path,omitempty"` // Set after rendering
	JSONPath     string             `json:"json_path,omitempty"`   // Set when JSON output is enabled
}

// RunConfig is the per-run configuration accepted by the pipeline entry point
type RunConfig struct {
	AllowLive   bool          `json:"allow_live"`
	LiveTimeout time.Duration `json:"live_timeout"`
	OutputDir   string        `json:"output_dir"`
	WriteJSON   bool          `json:"write_json"`
}
