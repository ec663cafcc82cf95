package analyze

import (
	"math"

	"github.com/ppiankov/marketlens/internal/model"
)

// Correlation interpretation bounds and segment cut-offs
const (
	StrongCorrelation   = 0.6
	NegativeCorrelation = -0.2
	BestValueMinRating  = 4.0
	PremiumMeanPrice    = 500.0
	MidMarketMeanPrice  = 100.0
)

// Insights derives price/quality observations from the canonical set
func Insights(products []model.CanonicalProduct) model.Insights {
	ins := model.Insights{
		Correlation: PriceRatingCorrelation(products),
		BestValue:   BestValue(products),
		Segment:     model.SegmentUnknown,
	}
	ins.CorrelationInsight = InterpretCorrelation(ins.Correlation)

	if prices := pricesOf(products); len(prices) > 0 {
		ins.Segment = Segment(mean(prices).InexactFloat64())
	}
	return ins
}

// PriceRatingCorrelation is Pearson's r over products carrying both a price
// and a rating. Fewer than two pairs, or zero variance, is undefined.
func PriceRatingCorrelation(products []model.CanonicalProduct) model.Metric {
	var xs, ys []float64
	for _, p := range products {
		if p.HasPrice() && p.IsRated() {
			xs = append(xs, p.PriceFloat())
			ys = append(ys, *p.Rating)
		}
	}
	if len(xs) < 2 {
		return model.Undefined
	}

	n := float64(len(xs))
	var mx, my float64
	for i := range xs {
		mx += xs[i]
		my += ys[i]
	}
	mx /= n
	my /= n

	var cov, vx, vy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return model.Undefined
	}

	r := cov / math.Sqrt(vx*vy)
	return model.Metric(math.Max(-1, math.Min(1, r)))
}

// InterpretCorrelation turns r into a one-line observation
func InterpretCorrelation(r model.Metric) string {
	switch {
	case !r.Defined():
		return "Not enough rated, priced products to relate price and quality."
	case r.Float() > StrongCorrelation:
		return "Strong link: higher price tends to mean better ratings."
	case r.Float() < NegativeCorrelation:
		return "Negative link: expensive items are not necessarily better rated."
	default:
		return "No clear link between price and quality."
	}
}

// BestValue picks the cheapest priced product rated at least 4.0.
// Ties keep the earlier product.
func BestValue(products []model.CanonicalProduct) *model.CanonicalProduct {
	var best *model.CanonicalProduct
	for i := range products {
		p := &products[i]
		if !p.HasPrice() || !p.IsRated() || *p.Rating < BestValueMinRating {
			continue
		}
		if best == nil || p.Price.Decimal.LessThan(best.Price.Decimal) {
			best = p
		}
	}
	if best == nil {
		return nil
	}
	pick := *best
	return &pick
}

// Segment positions a market by its mean price
func Segment(meanPrice float64) model.PriceSegment {
	switch {
	case meanPrice > PremiumMeanPrice:
		return model.SegmentPremium
	case meanPrice > MidMarketMeanPrice:
		return model.SegmentMid
	default:
		return model.SegmentBudget
	}
}
