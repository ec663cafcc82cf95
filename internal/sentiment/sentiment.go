// Package sentiment derives a coarse sentiment signal from product ratings.
//
// Each rating r maps to a polarity (r - Pivot) / Pivot in [-1, 1]. The market
// score is the mean polarity weighted by rating count, clamped to [-1, 1],
// and labelled with the Positive/Negative thresholds.
package sentiment

import (
	"math"

	"github.com/ppiankov/marketlens/internal/model"
)

// Thresholds parameterizes the heuristic
type Thresholds struct {
	Pivot    float64 // Rating that maps to polarity 0
	Positive float64 // Score at or above is positive
	Negative float64 // Score at or below is negative
}

// DefaultThresholds are used by Score
var DefaultThresholds = Thresholds{
	Pivot:    2.5,
	Positive: 0.2,
	Negative: -0.2,
}

// Score computes the summary with DefaultThresholds
func Score(products []model.CanonicalProduct) model.SentimentSummary {
	return DefaultThresholds.Score(products)
}

// Score computes the summary. Products without a rating are ignored; none
// rated gives insufficient_data with score 0.
func (t Thresholds) Score(products []model.CanonicalProduct) model.SentimentSummary {
	summary := model.SentimentSummary{
		Label:         model.SentimentInsufficient,
		AverageRating: model.Undefined,
	}

	var weighted, ratingSum, weights float64
	for _, p := range products {
		if !p.IsRated() {
			continue
		}
		summary.SampleSize++

		w := float64(max(p.RatingCount, 1))
		polarity := t.Polarity(*p.Rating)
		weighted += polarity * w
		ratingSum += *p.Rating * w
		weights += w

		switch t.Label(polarity) {
		case model.SentimentPositive:
			summary.Breakdown.Positive++
		case model.SentimentNegative:
			summary.Breakdown.Negative++
		default:
			summary.Breakdown.Neutral++
		}
	}

	if summary.SampleSize == 0 {
		return summary
	}

	summary.Distribution = model.SentimentShare{
		Positive: share(summary.Breakdown.Positive, summary.SampleSize),
		Neutral:  share(summary.Breakdown.Neutral, summary.SampleSize),
		Negative: share(summary.Breakdown.Negative, summary.SampleSize),
	}
	summary.Score = clamp(weighted / weights)
	summary.Label = t.Label(summary.Score)
	summary.AverageRating = model.Metric(ratingSum / weights)
	return summary
}

// Polarity maps a 0-5 rating onto [-1, 1]
func (t Thresholds) Polarity(rating float64) float64 {
	return clamp((rating - t.Pivot) / t.Pivot)
}

// Label classifies a score
func (t Thresholds) Label(score float64) model.SentimentLabel {
	switch {
	case score >= t.Positive:
		return model.SentimentPositive
	case score <= t.Negative:
		return model.SentimentNegative
	default:
		return model.SentimentNeutral
	}
}

func share(n, total int) float64 {
	return math.Round(float64(n)*1000/float64(total)) / 10
}

func clamp(f float64) float64 {
	return math.Max(-1, math.Min(1, f))
}
