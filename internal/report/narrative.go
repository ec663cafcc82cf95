package report

import (
	"context"
	"fmt"

	"github.com/ppiankov/marketlens/internal/llm"
	"github.com/ppiankov/marketlens/internal/model"
	"github.com/ppiankov/marketlens/internal/util"
)

// Narrative is the prose part of a report
type Narrative struct {
	ExecutiveSummary string   `json:"executive_summary"`
	Recommendations  []string `json:"recommendations"`
	LLMUsed          bool     `json:"llm_used"`
	LLMError         string   `json:"llm_error,omitempty"`
}

// Narrator writes the narrative, preferring the LLM provider when one is set
type Narrator struct {
	provider llm.Provider
	logger   *util.Logger
}

// NewNarrator creates a narrator. A nil provider gives deterministic text only.
func NewNarrator(provider llm.Provider, logger *util.Logger) *Narrator {
	if logger == nil {
		logger = util.NopLogger()
	}
	return &Narrator{provider: provider, logger: logger}
}

// Narrate never fails: provider errors fall back to the deterministic text
// and are recorded in LLMError.
func (n *Narrator) Narrate(ctx context.Context, r *model.AnalysisResult) Narrative {
	fallback := DeterministicNarrative(r)
	if n == nil || n.provider == nil {
		return fallback
	}

	resp, err := n.provider.Narrate(ctx, llm.NarrativeRequest{
		Result:      r,
		AllowedURLs: llm.AllowedURLs(r),
	})
	if err != nil {
		n.logger.Warn("narrative provider %s failed, using built-in summary: %v", n.provider.Name(), err)
		fallback.LLMError = err.Error()
		return fallback
	}

	out := Narrative{
		ExecutiveSummary: resp.Summary,
		Recommendations:  resp.Recommendations,
		LLMUsed:          true,
	}
	if len(out.Recommendations) == 0 {
		out.Recommendations = fallback.Recommendations
	}
	return out
}

// DeterministicNarrative builds the summary from the computed figures alone
func DeterministicNarrative(r *model.AnalysisResult) Narrative {
	s := r.Stats
	if s.Count == 0 {
		return Narrative{
			ExecutiveSummary: fmt.Sprintf("No listings were found for %q, so no market statistics could be computed.", r.Query),
			Recommendations: []string{
				"Try a broader or differently worded query.",
				"Enable live collection if a listing endpoint is available.",
			},
		}
	}

	summary := fmt.Sprintf("For %q, %d products were analysed", r.Query, r.ProductCount)
	if r.DataSource == model.SourceMock {
		summary += " (simulated data)"
	}
	summary += ". "

	if s.PricedCount > 0 {
		summary += fmt.Sprintf("Prices range from %s to %s with an average of %s and a median of %s, a %s market. ",
			money(s.PriceMin), money(s.PriceMax), money(s.PriceMean), money(s.PriceMedian), r.Insights.Segment)
	} else {
		summary += "No usable prices were listed. "
	}

	switch r.Sentiment.Label {
	case model.SentimentInsufficient:
		summary += "There are not enough ratings to judge buyer sentiment. "
	default:
		summary += fmt.Sprintf("Buyer sentiment is %s (score %.2f across %d rated products). ",
			r.Sentiment.Label, r.Sentiment.Score, r.Sentiment.SampleSize)
	}

	summary += fmt.Sprintf("The simulated price index is %s (%+.2f%%).", s.TrendSummary.Direction, s.TrendSummary.ChangePct)

	recs := []string{}
	if bv := r.Insights.BestValue; bv != nil && bv.IsRated() {
		recs = append(recs, fmt.Sprintf("Best value: %s at %s, rated %.1f.", bv.Title, "$"+bv.Price.Decimal.StringFixed(2), *bv.Rating))
	}
	if s.PricedCount > 0 {
		recs = append(recs, fmt.Sprintf("Target the median price (%s) unless a premium is justified by ratings.", money(s.PriceMedian)))
	}
	switch r.Sentiment.Label {
	case model.SentimentNegative:
		recs = append(recs, "Ratings skew negative: check return policies and recurring complaints before buying.")
	case model.SentimentPositive:
		recs = append(recs, "Ratings are strong overall: prioritise sellers with many consistent reviews.")
	default:
		recs = append(recs, "Compare several sellers; ratings alone do not separate the offers.")
	}
	switch s.TrendSummary.Direction {
	case model.TrendRising:
		recs = append(recs, "Prices are trending up: buying sooner may pay off.")
	case model.TrendFalling:
		recs = append(recs, "Prices are trending down: waiting may lower the cost.")
	}

	return Narrative{ExecutiveSummary: summary, Recommendations: recs}
}
