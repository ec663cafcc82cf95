package analyze

import (
	"fmt"
	"math"

	"github.com/ppiankov/marketlens/internal/model"
	"github.com/ppiankov/marketlens/internal/util"
)

// Trend series shape
const (
	TrendPeriods   = 6
	TrendMaxDrift  = 0.12 // Largest total move across the series, as a fraction of base
	TrendMaxWobble = 0.02 // Per-point noise, as a fraction of base
	TrendBaseline  = 100  // Base index when no price is known

	// ChangePct beyond these bounds is rising/falling; in between is stable
	TrendRisingPct  = 5.0
	TrendFallingPct = -5.0
)

// Trend builds the synthetic price-index series for a query. The same
// (query, count, mean) always produces the same series.
func Trend(query model.Query, count int, priceMean model.Metric) []model.TrendPoint {
	base := float64(TrendBaseline)
	if priceMean.Defined() && priceMean.Float() > 0 {
		base = priceMean.Float()
	}

	rng := util.SeededRand(util.QuerySeed(string(query)) ^ uint64(count))
	drift := (rng.Float64()*2 - 1) * TrendMaxDrift

	points := make([]model.TrendPoint, TrendPeriods)
	for i := range points {
		frac := float64(i) / float64(TrendPeriods-1)
		wobble := (rng.Float64()*2 - 1) * TrendMaxWobble
		points[i] = model.TrendPoint{
			Period: periodLabel(i),
			Index:  round2(base * (1 + drift*frac + wobble)),
		}
	}
	return points
}

// Summarize classifies the move between the first and last point
func Summarize(points []model.TrendPoint) model.TrendSummary {
	summary := model.TrendSummary{Direction: model.TrendStable}
	if len(points) < 2 || points[0].Index == 0 {
		return summary
	}

	first, last := points[0].Index, points[len(points)-1].Index
	summary.ChangePct = round2((last - first) / first * 100)

	switch {
	case summary.ChangePct > TrendRisingPct:
		summary.Direction = model.TrendRising
	case summary.ChangePct < TrendFallingPct:
		summary.Direction = model.TrendFalling
	}
	return summary
}

// periodLabel names period i counted from the oldest: M-5 ... M0
func periodLabel(i int) string {
	offset := TrendPeriods - 1 - i
	if offset == 0 {
		return "M0"
	}
	return fmt.Sprintf("M-%d", offset)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
