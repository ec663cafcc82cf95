package model

import "github.com/shopspring/decimal"

// RawRecord is one unprocessed listing as produced by a collector.
// Only the normalizer reads it.
type RawRecord struct {
	Title       string     `json:"title"`
	Price       string     `json:"price,omitempty"`        // Raw price text, empty when absent
	Rating      *float64   `json:"rating,omitempty"`       // 0.0-5.0 when present
	RatingCount *int       `json:"rating_count,omitempty"` // Number of ratings when present
	Seller      string     `json:"seller,omitempty"`
	URL         string     `json:"url,omitempty"`
	Source      DataSource `json:"source"`
}

// CanonicalProduct is a listing normalized to the internal schema.
// If Rating is set, RatingCount is at least 1.
type CanonicalProduct struct {
	Title       string              `json:"title"`
	Price       decimal.NullDecimal `json:"price"`
	Rating      *float64            `json:"rating"`
	RatingCount int                 `json:"rating_count"`
	Seller      string              `json:"seller,omitempty"`
	URL         string              `json:"url,omitempty"`
}

// HasPrice reports whether the product carries a usable price
func (p CanonicalProduct) HasPrice() bool {
	return p.Price.Valid
}

// PriceFloat returns the price as float64 for statistics
func (p CanonicalProduct) PriceFloat() float64 {
	return p.Price.Decimal.InexactFloat64()
}

// IsRated reports whether the product carries a rating
func (p CanonicalProduct) IsRated() bool {
	return p.Rating != nil
}
