package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ppiankov/marketlens/internal/model"
	"github.com/ppiankov/marketlens/internal/worker"
)

var (
	colorAccent = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorDim    = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorLive   = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#10B981"}
	colorMock   = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"}
	colorFail   = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#EF4444"}

	titleStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(colorDim).Width(12)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
)

func sourceBadge(src model.DataSource) string {
	color := colorLive
	if src == model.SourceMock {
		color = colorMock
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(string(src) + " data")
}

func money(m model.Metric) string {
	if !m.Defined() {
		return "n/a"
	}
	return fmt.Sprintf("$%.2f", m.Float())
}

// renderSummary is the terminal summary printed after a run
func renderSummary(r *model.AnalysisResult) string {
	s := r.Stats
	row := func(label, value string) string {
		return labelStyle.Render(label) + value
	}

	lines := []string{
		titleStyle.Render(string(r.Query)) + "  " + sourceBadge(r.DataSource),
		"",
		row("Products", fmt.Sprintf("%d (%d skipped)", r.ProductCount, r.SkippedCount)),
	}
	if s.PricedCount > 0 {
		lines = append(lines,
			row("Average", money(s.PriceMean)),
			row("Median", money(s.PriceMedian)),
			row("Range", money(s.PriceMin)+" - "+money(s.PriceMax)),
			row("Segment", string(r.Insights.Segment)),
		)
	}
	lines = append(lines,
		row("Sentiment", fmt.Sprintf("%s (%.2f)", r.Sentiment.Label, r.Sentiment.Score)),
		row("Trend", fmt.Sprintf("%s (%+.2f%%)", s.TrendSummary.Direction, s.TrendSummary.ChangePct)),
	)
	if bv := r.Insights.BestValue; bv != nil {
		lines = append(lines, row("Best value", bv.Title))
	}

	return boxStyle.Render(strings.Join(lines, "\n"))
}

// renderBatchLine is one line of batch progress output
func renderBatchLine(res *worker.QueryResult) string {
	if res.Error != nil {
		return lipgloss.NewStyle().Foreground(colorFail).Render("✗ ") + fmt.Sprintf("%s: %v", res.Query, res.Error)
	}
	r := res.Result
	return lipgloss.NewStyle().Foreground(colorLive).Render("✓ ") +
		fmt.Sprintf("%s  %s  %d products, median %s, %s",
			res.Query, sourceBadge(r.DataSource), r.ProductCount, money(r.Stats.PriceMedian), r.Sentiment.Label)
}
