package sentiment

import (
	"math"
	"testing"

	"github.com/ppiankov/marketlens/internal/model"
)

func rated(rating float64, count int) model.CanonicalProduct {
	r := rating
	return model.CanonicalProduct{Title: "p", Rating: &r, RatingCount: count}
}

func TestScore_AllFiveStars(t *testing.T) {
	products := []model.CanonicalProduct{rated(5, 10), rated(5, 3), rated(5, 1)}
	s := Score(products)

	if s.Label != model.SentimentPositive {
		t.Errorf("expected positive, got %s", s.Label)
	}
	if s.Score > 1.0 || s.Score != 1.0 {
		t.Errorf("expected score 1.0, got %v", s.Score)
	}
	if s.SampleSize != 3 || s.Breakdown.Positive != 3 {
		t.Errorf("unexpected sample/breakdown %d %+v", s.SampleSize, s.Breakdown)
	}
	if s.AverageRating != 5 {
		t.Errorf("expected average 5, got %v", s.AverageRating)
	}
}

func TestScore_AllOneStar(t *testing.T) {
	s := Score([]model.CanonicalProduct{rated(1, 4), rated(1, 2)})
	if s.Label != model.SentimentNegative {
		t.Errorf("expected negative, got %s", s.Label)
	}
	if math.Abs(s.Score+0.6) > 1e-9 {
		t.Errorf("expected -0.6, got %v", s.Score)
	}
}

func TestScore_Insufficient(t *testing.T) {
	unrated := model.CanonicalProduct{Title: "u", RatingCount: 5}

	for _, products := range [][]model.CanonicalProduct{nil, {unrated}} {
		s := Score(products)
		if s.Label != model.SentimentInsufficient || s.Score != 0 || s.SampleSize != 0 {
			t.Errorf("expected insufficient_data, got %+v", s)
		}
		if s.AverageRating.Defined() {
			t.Error("average rating should be undefined")
		}
		if s.Distribution != (model.SentimentShare{}) {
			t.Errorf("expected empty distribution, got %+v", s.Distribution)
		}
	}
}

func TestScore_Distribution(t *testing.T) {
	s := Score([]model.CanonicalProduct{rated(5, 1), rated(4.5, 1), rated(1, 1)})

	want := model.SentimentShare{Positive: 66.7, Neutral: 0, Negative: 33.3}
	if s.Distribution != want {
		t.Errorf("distribution = %+v; want %+v", s.Distribution, want)
	}
	if s.Breakdown.Positive != 2 || s.Breakdown.Negative != 1 {
		t.Errorf("unexpected breakdown %+v", s.Breakdown)
	}
}

func TestScore_WeightedByCount(t *testing.T) {
	// One heavily reviewed 4.5 outweighs a barely reviewed 1.0
	s := Score([]model.CanonicalProduct{rated(4.5, 99), rated(1.0, 1)})
	if s.Label != model.SentimentPositive {
		t.Errorf("expected positive, got %s (%v)", s.Label, s.Score)
	}
	if s.Breakdown.Positive != 1 || s.Breakdown.Negative != 1 {
		t.Errorf("unexpected breakdown %+v", s.Breakdown)
	}
	if s.SampleSize != 2 {
		t.Errorf("expected sample size 2, got %d", s.SampleSize)
	}
}

func TestThresholds_Label(t *testing.T) {
	tests := []struct {
		score float64
		want  model.SentimentLabel
	}{
		{0.2, model.SentimentPositive},
		{0.19, model.SentimentNeutral},
		{0, model.SentimentNeutral},
		{-0.19, model.SentimentNeutral},
		{-0.2, model.SentimentNegative},
	}
	for _, tt := range tests {
		if got := DefaultThresholds.Label(tt.score); got != tt.want {
			t.Errorf("Label(%v) = %s; want %s", tt.score, got, tt.want)
		}
	}

	strict := Thresholds{Pivot: 2.5, Positive: 0.5, Negative: -0.5}
	if got := strict.Score([]model.CanonicalProduct{rated(3.5, 1)}).Label; got != model.SentimentNeutral {
		t.Errorf("custom thresholds ignored: %s", got)
	}
}

func TestScore_Bounds(t *testing.T) {
	for r := 0.0; r <= 5.0; r += 0.5 {
		s := Score([]model.CanonicalProduct{rated(r, 1)})
		if s.Score < -1 || s.Score > 1 {
			t.Errorf("rating %v: score %v out of range", r, s.Score)
		}
		if !s.Label.Valid() {
			t.Errorf("rating %v: invalid label %s", r, s.Label)
		}
	}
}
