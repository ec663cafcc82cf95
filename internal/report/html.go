package report

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/ppiankov/marketlens/internal/model"
)

// TimestampLayout is how the generation time appears in the report
const TimestampLayout = "2006-01-02 15:04:05 UTC"

type kpi struct {
	Label string
	Value string
}

type productRow struct {
	Title       string
	Seller      string
	Price       string
	Rating      string
	RatingCount int
	URL         string
}

type reportView struct {
	Query        string
	DataSource   model.DataSource
	IsMock       bool
	GeneratedAt  string
	HasData      bool
	ProductCount int
	SkippedCount int

	KPIs           []kpi
	TrendLabels    []string
	TrendValues    []float64
	TrendDirection model.TrendDirection
	TrendChange    string

	SentimentLabel  model.SentimentLabel
	SentimentScore  string
	SentimentSample int
	AverageRating   string
	SentimentCounts []int
	SentimentShares []string
	HasSentiment    bool

	Correlation        string
	CorrelationInsight string
	Segment            model.PriceSegment
	BestValue          *productRow

	Products  []productRow
	Narrative Narrative
}

// HTMLRenderer renders the HTML report
type HTMLRenderer struct {
	tmpl *template.Template
}

// NewHTMLRenderer parses the report template
func NewHTMLRenderer() *HTMLRenderer {
	t := template.Must(template.New("report").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).Parse(reportHTMLTemplate))
	return &HTMLRenderer{tmpl: t}
}

// Render produces the report. Apart from the generation timestamp, the output
// depends only on r and n.
func (h *HTMLRenderer) Render(r *model.AnalysisResult, n Narrative) ([]byte, error) {
	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, buildView(r, n)); err != nil {
		return nil, fmt.Errorf("render HTML report: %w", err)
	}
	return buf.Bytes(), nil
}

func buildView(r *model.AnalysisResult, n Narrative) reportView {
	s := r.Stats
	v := reportView{
		Query:        string(r.Query),
		DataSource:   r.DataSource,
		IsMock:       r.DataSource == model.SourceMock,
		GeneratedAt:  formatTimestamp(r.GeneratedAt),
		HasData:      s.Count > 0,
		ProductCount: r.ProductCount,
		SkippedCount: r.SkippedCount,

		TrendDirection: s.TrendSummary.Direction,
		TrendChange:    fmt.Sprintf("%+.2f%%", s.TrendSummary.ChangePct),

		SentimentLabel:  r.Sentiment.Label,
		SentimentScore:  fmt.Sprintf("%.2f", r.Sentiment.Score),
		SentimentSample: r.Sentiment.SampleSize,
		AverageRating:   fixed2(r.Sentiment.AverageRating),
		SentimentCounts: []int{r.Sentiment.Breakdown.Positive, r.Sentiment.Breakdown.Neutral, r.Sentiment.Breakdown.Negative},
		SentimentShares: []string{
			share(r.Sentiment.Distribution.Positive),
			share(r.Sentiment.Distribution.Neutral),
			share(r.Sentiment.Distribution.Negative),
		},
		HasSentiment:    r.Sentiment.SampleSize > 0,

		Correlation:        fixed2(r.Insights.Correlation),
		CorrelationInsight: r.Insights.CorrelationInsight,
		Segment:            r.Insights.Segment,

		Narrative: n,
	}

	v.KPIs = []kpi{
		{"Products", fmt.Sprintf("%d", s.Count)},
		{"Average price", money(s.PriceMean)},
		{"Median price", money(s.PriceMedian)},
		{"Min price", money(s.PriceMin)},
		{"Max price", money(s.PriceMax)},
		{"Std deviation", money(s.PriceStdDev)},
		{"Missing prices", percent(s.MissingPriceRatio)},
	}

	v.TrendLabels = make([]string, len(s.Trend))
	v.TrendValues = make([]float64, len(s.Trend))
	for i, p := range s.Trend {
		v.TrendLabels[i] = p.Period
		v.TrendValues[i] = p.Index
	}

	v.Products = make([]productRow, len(r.Products))
	for i, p := range r.Products {
		v.Products[i] = toRow(p)
	}
	if bv := r.Insights.BestValue; bv != nil {
		row := toRow(*bv)
		v.BestValue = &row
	}
	return v
}

func toRow(p model.CanonicalProduct) productRow {
	row := productRow{
		Title:       p.Title,
		Seller:      p.Seller,
		Price:       "n/a",
		Rating:      "n/a",
		RatingCount: p.RatingCount,
		URL:         p.URL,
	}
	if p.HasPrice() {
		row.Price = "$" + p.Price.Decimal.StringFixed(2)
	}
	if p.IsRated() {
		row.Rating = fmt.Sprintf("%.1f", *p.Rating)
	}
	return row
}

// formatTimestamp is the exact text Render writes for t
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
