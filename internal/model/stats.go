package model

// MarketStats aggregates a canonical product sequence.
// Consumers must check Count (and PricedCount) before reading price fields.
type MarketStats struct {
	Count             int          `json:"count"`               // Number of canonical products
	PricedCount       int          `json:"priced_count"`        // Products carrying a price
	PriceMin          Metric       `json:"price_min"`
	PriceMax          Metric       `json:"price_max"`
	PriceMean         Metric       `json:"price_mean"`
	PriceMedian       Metric       `json:"price_median"`
	PriceStdDev       Metric       `json:"price_std_dev"`       // Sample standard deviation
	MissingPriceRatio Metric       `json:"missing_price_ratio"` // Share of products without a price
	Trend             []TrendPoint `json:"trend"`               // Synthetic, deterministic series
	TrendSummary      TrendSummary `json:"trend_summary"`
}

// TrendPoint is one period of the synthetic trend series
type TrendPoint struct {
	Period string  `json:"period"` // Relative label, oldest first (e.g., "M-5")
	Index  float64 `json:"index"`
}

// TrendSummary describes the movement between the first and last period
type TrendSummary struct {
	Direction TrendDirection `json:"direction"`
	ChangePct float64        `json:"change_pct"`
}

// TrendDirection classifies the synthetic trend
type TrendDirection string

const (
	TrendRising  TrendDirection = "rising"
	TrendStable  TrendDirection = "stable"
	TrendFalling TrendDirection = "falling"
)

// SentimentLabel is the coarse sentiment category
type SentimentLabel string

const (
	SentimentPositive     SentimentLabel = "positive"
	SentimentNeutral      SentimentLabel = "neutral"
	SentimentNegative     SentimentLabel = "negative"
	SentimentInsufficient SentimentLabel = "insufficient_data"
)

// Valid reports whether the label is one of the defined values
func (l SentimentLabel) Valid() bool {
	switch l {
	case SentimentPositive, SentimentNeutral, SentimentNegative, SentimentInsufficient:
		return true
	default:
		return false
	}
}

// SentimentSummary is the rating-derived sentiment signal
type SentimentSummary struct {
	Label         SentimentLabel     `json:"label"`
	Score         float64            `json:"score"`          // In [-1, 1]
	SampleSize    int                `json:"sample_size"`    // Products with a rating
	AverageRating Metric             `json:"average_rating"` // Weighted by rating count
	Breakdown     SentimentBreakdown `json:"breakdown"`
	Distribution  SentimentShare     `json:"distribution"` // Breakdown as percentages of SampleSize
}

// SentimentBreakdown counts rated products per label
type SentimentBreakdown struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// SentimentShare is the percentage of rated products per label, rounded to
// one decimal. All zero when nothing is rated.
type SentimentShare struct {
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

// Insights holds price/quality observations derived from the canonical set
type Insights struct {
	Correlation        Metric            `json:"price_rating_correlation"`
	CorrelationInsight string            `json:"correlation_insight"`
	BestValue          *CanonicalProduct `json:"best_value,omitempty"` // Cheapest product rated 4.0+
	Segment            PriceSegment      `json:"segment"`
}

// PriceSegment positions the market by mean price
type PriceSegment string

const (
	SegmentUnknown PriceSegment = "unknown"
	SegmentBudget  PriceSegment = "budget"
	SegmentMid     PriceSegment = "mid-market"
	SegmentPremium PriceSegment = "premium"
)
