// Package llm provides the optional narrative provider that writes the
// report's executive summary. The report falls back to deterministic text
// whenever no provider is configured or the provider fails.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/marketlens/internal/model"
)

// Provider generates narrative text for an analysis result
type Provider interface {
	// Name returns the provider name
	Name() string

	// Narrate writes an executive summary and recommendations
	Narrate(ctx context.Context, req NarrativeRequest) (*NarrativeResponse, error)
}

// NarrativeRequest is the input for a narrative
type NarrativeRequest struct {
	Result *model.AnalysisResult

	// AllowedURLs is the only set of URLs the narrative may mention
	AllowedURLs []string

	// Prompt overrides BuildPrompt when set
	Prompt string

	Model     string
	MaxTokens int
}

// NarrativeResponse is the provider output
type NarrativeResponse struct {
	Summary         string
	Recommendations []string
	Model           string
	TokensUsed      int
}

// Config holds provider configuration
type Config struct {
	Provider  string // "openai" or "" (disabled)
	Model     string
	APIKey    string
	BaseURL   string // OpenAI-compatible endpoint (e.g., a local Ollama server)
	Timeout   int    // seconds
	MaxTokens int
}

// DefaultConfig returns the disabled configuration
func DefaultConfig() Config {
	return Config{
		Timeout:   30,
		MaxTokens: 600,
	}
}

// ConfigFromModel converts model.LLMConfig to Config
func ConfigFromModel(c model.LLMConfig) Config {
	return Config{
		Provider:  c.Provider,
		Model:     c.Model,
		APIKey:    c.APIKey,
		BaseURL:   c.BaseURL,
		Timeout:   c.Timeout,
		MaxTokens: c.MaxTokens,
	}
}

// AllowedURLs collects the product URLs of a result
func AllowedURLs(result *model.AnalysisResult) []string {
	var urls []string
	seen := make(map[string]bool)
	for _, p := range result.Products {
		if p.URL != "" && !seen[p.URL] {
			seen[p.URL] = true
			urls = append(urls, p.URL)
		}
	}
	return urls
}

// BuildPrompt renders the computed figures into the narrative prompt.
// The model may only restate these figures.
func BuildPrompt(r *model.AnalysisResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are writing the executive summary of a market analysis report.

RULES:
1. Use ONLY the figures below. Do not invent prices, ratings, brands or trends.
2. Do not mention any URL.
3. If data is missing, say so plainly.

Market: %s
Data source: %s
Products analysed: %d (skipped %d)
`, r.Query, r.DataSource, r.ProductCount, r.SkippedCount)

	s := r.Stats
	if s.PricedCount > 0 {
		fmt.Fprintf(&b, "Prices: mean %.2f, median %.2f, min %.2f, max %.2f, std dev %.2f\n",
			s.PriceMean.Float(), s.PriceMedian.Float(), s.PriceMin.Float(), s.PriceMax.Float(), s.PriceStdDev.Float())
	} else {
		b.WriteString("Prices: none available\n")
	}
	fmt.Fprintf(&b, "Trend: %s (%+.2f%% over %d periods)\n", s.TrendSummary.Direction, s.TrendSummary.ChangePct, len(s.Trend))
	fmt.Fprintf(&b, "Sentiment: %s (score %.2f, %d rated products)\n", r.Sentiment.Label, r.Sentiment.Score, r.Sentiment.SampleSize)
	fmt.Fprintf(&b, "Price/quality: %s\n", r.Insights.CorrelationInsight)
	fmt.Fprintf(&b, "Segment: %s\n", r.Insights.Segment)
	if bv := r.Insights.BestValue; bv != nil && bv.IsRated() {
		fmt.Fprintf(&b, "Best value: %s at %s (rating %.1f)\n", bv.Title, bv.Price.Decimal.StringFixed(2), *bv.Rating)
	}

	b.WriteString(`
Write 3-4 sentences of summary. Then list 2-4 recommendations, one per line, each starting with "- ".`)
	return b.String()
}

// ParseNarrative splits model output into summary text and "- " bullet lines
func ParseNarrative(text string) (string, []string) {
	var summary []string
	var recs []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
			recs = append(recs, strings.TrimSpace(line[2:]))
		default:
			summary = append(summary, line)
		}
	}
	return strings.Join(summary, " "), recs
}
