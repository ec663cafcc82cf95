// Package analyze computes descriptive market statistics, a synthetic trend
// series and price/quality insights. Everything here is pure.
package analyze

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ppiankov/marketlens/internal/model"
)

// Analyze computes MarketStats over products. Empty input yields Count 0 with
// every numeric field undefined.
func Analyze(products []model.CanonicalProduct, query model.Query) model.MarketStats {
	stats := model.MarketStats{
		Count:             len(products),
		PriceMin:          model.Undefined,
		PriceMax:          model.Undefined,
		PriceMean:         model.Undefined,
		PriceMedian:       model.Undefined,
		PriceStdDev:       model.Undefined,
		MissingPriceRatio: model.Undefined,
		Trend:             []model.TrendPoint{},
		TrendSummary:      model.TrendSummary{Direction: model.TrendStable},
	}
	if len(products) == 0 {
		return stats
	}

	prices := pricesOf(products)
	stats.PricedCount = len(prices)
	stats.MissingPriceRatio = model.Metric(float64(len(products)-len(prices)) / float64(len(products)))

	if len(prices) > 0 {
		stats.PriceMin = model.Metric(prices[0].InexactFloat64())
		stats.PriceMax = model.Metric(prices[len(prices)-1].InexactFloat64())
		stats.PriceMean = model.Metric(mean(prices).InexactFloat64())
		stats.PriceMedian = model.Metric(median(prices).InexactFloat64())
		stats.PriceStdDev = model.Metric(stdDev(prices))
	}

	stats.Trend = Trend(query, stats.Count, stats.PriceMean)
	stats.TrendSummary = Summarize(stats.Trend)
	return stats
}

// pricesOf returns the valid prices sorted ascending
func pricesOf(products []model.CanonicalProduct) []decimal.Decimal {
	prices := make([]decimal.Decimal, 0, len(products))
	for _, p := range products {
		if p.HasPrice() {
			prices = append(prices, p.Price.Decimal)
		}
	}
	sort.Slice(prices, func(i, j int) bool { return prices[i].LessThan(prices[j]) })
	return prices
}

// mean is computed in decimal so it never falls outside [min, max]
func mean(sorted []decimal.Decimal) decimal.Decimal {
	return decimal.Sum(decimal.Zero, sorted...).Div(decimal.NewFromInt(int64(len(sorted))))
}

// median takes the middle value, or the mean of the two central values
func median(sorted []decimal.Decimal) decimal.Decimal {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return sorted[n/2-1].Add(sorted[n/2]).Div(decimal.NewFromInt(2))
}

// stdDev is the sample standard deviation; a single price gives 0
func stdDev(sorted []decimal.Decimal) float64 {
	n := len(sorted)
	if n < 2 {
		return 0
	}
	m := mean(sorted).InexactFloat64()
	var ss float64
	for _, p := range sorted {
		d := p.InexactFloat64() - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}
