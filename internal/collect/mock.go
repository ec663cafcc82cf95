package collect

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ppiankov/marketlens/internal/model"
	"github.com/ppiankov/marketlens/internal/util"
)

// Mock record count range (inclusive)
const (
	MinMockRecords = 8
	MaxMockRecords = 20
)

type edition struct {
	name       string
	multiplier float64
}

var mockEditions = []edition{
	{"Lite", 0.70},
	{"Mini", 0.75},
	{"SE", 0.82},
	{"Standard", 1.00},
	{"Plus", 1.15},
	{"Pro", 1.30},
	{"Max", 1.45},
	{"Ultra", 1.60},
}

var mockSellers = []string{"Amazon", "eBay", "Walmart", "Best Buy", "Target"}

// MockCollector generates plausible listings from a PRNG seeded by the query.
// The same query always yields the same records.
type MockCollector struct {
	fixedCount int
	hasFixed   bool
}

// MockOption configures a MockCollector
type MockOption func(*MockCollector)

// WithRecordCount overrides the seed-derived record count (including zero)
func WithRecordCount(n int) MockOption {
	return func(m *MockCollector) {
		if n < 0 {
			n = 0
		}
		m.fixedCount = n
		m.hasFixed = true
	}
}

// NewMockCollector creates a mock collector
func NewMockCollector(opts ...MockOption) *MockCollector {
	m := &MockCollector{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Collect generates the mock records for query
func (m *MockCollector) Collect(_ context.Context, query model.Query) ([]model.RawRecord, model.DataSource, error) {
	q, err := model.ParseQuery(string(query))
	if err != nil {
		return nil, "", err
	}
	return m.Generate(q), model.SourceMock, nil
}

// MockCount returns the number of records generated for a query
func MockCount(query model.Query) int {
	seed := util.QuerySeed(string(query))
	return MinMockRecords + int(seed%uint64(MaxMockRecords-MinMockRecords+1))
}

// Generate builds the records without any error path
func (m *MockCollector) Generate(query model.Query) []model.RawRecord {
	seed := util.QuerySeed(string(query))
	rng := util.SeededRand(seed)

	n := MockCount(query)
	if m.hasFixed {
		n = m.fixedCount
	}

	// Per-query market shape: base price 20-1500, typical rating 3.2-4.8
	basePrice := 20 + float64((seed>>16)%1481)
	ratingMean := 3.2 + float64((seed>>32)%17)/10

	title := cases.Title(language.English).String(string(query))
	records := make([]model.RawRecord, 0, n)

	for i := 0; i < n; i++ {
		ed := mockEditions[rng.IntN(len(mockEditions))]
		seller := mockSellers[rng.IntN(len(mockSellers))]

		noise := 1 + (rng.Float64()*0.16 - 0.08)
		price := basePrice * ed.multiplier * noise

		priceText := "$" + decimal.NewFromFloat(price).StringFixed(2)
		switch roll := rng.Float64(); {
		case roll < 0.05:
			priceText = ""
		case roll < 0.08:
			priceText = "Price unavailable"
		}

		rec := model.RawRecord{
			Title:  fmt.Sprintf("%s %s (%s)", title, ed.name, seller),
			Price:  priceText,
			Seller: seller,
			Source: model.SourceMock,
		}

		rating := ratingMean + rng.NormFloat64()*0.45
		rating = math.Round(math.Max(1, math.Min(5, rating))*10) / 10
		count := 100 + rng.IntN(4900)
		if rng.Float64() >= 0.10 {
			rec.Rating = &rating
			if rng.Float64() >= 0.05 {
				rec.RatingCount = &count
			}
		}

		records = append(records, rec)
	}

	return records
}
