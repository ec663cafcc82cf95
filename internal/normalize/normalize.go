// Package normalize turns raw listings into canonical products.
package normalize

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/ppiankov/marketlens/internal/model"
	"github.com/ppiankov/marketlens/internal/util"
)

// priceRegexp captures a sign directly attached to the amount, an optional
// currency marker and the first run of digits with separators
var priceRegexp = regexp.MustCompile(`(-?)(?:[A-Za-z]{3}\s*|[$€£¥]\s*)?(-?)(\d[\d.,]*)`)

// Normalizer converts RawRecords to CanonicalProducts
type Normalizer struct {
	logger *util.Logger
}

// New creates a Normalizer that logs dropped records
func New(logger *util.Logger) *Normalizer {
	if logger == nil {
		logger = util.NopLogger()
	}
	return &Normalizer{logger: logger}
}

// Normalize is a convenience wrapper with a silent logger
func Normalize(records []model.RawRecord) ([]model.CanonicalProduct, int) {
	return New(nil).Normalize(records)
}

// Normalize converts records in order. Records without a title are dropped
// and counted in skipped; everything else is repaired, never rejected.
func (n *Normalizer) Normalize(records []model.RawRecord) (products []model.CanonicalProduct, skipped int) {
	products = make([]model.CanonicalProduct, 0, len(records))

	for i, r := range records {
		title := normaliseText(r.Title)
		if title == "" {
			n.logger.Debug("normalize: dropping record %d with blank title", i)
			skipped++
			continue
		}

		p := model.CanonicalProduct{
			Title:  title,
			Price:  ParsePrice(r.Price),
			Seller: normaliseText(r.Seller),
			URL:    strings.TrimSpace(r.URL),
		}

		if r.RatingCount != nil && *r.RatingCount > 0 {
			p.RatingCount = *r.RatingCount
		}

		if r.Rating != nil && !math.IsNaN(*r.Rating) {
			rating := math.Max(0, math.Min(5, *r.Rating))
			p.Rating = &rating
			if p.RatingCount < 1 {
				p.RatingCount = 1
			}
		}

		products = append(products, p)
	}

	if skipped > 0 {
		n.logger.Info("normalize: %d -> %d products (skipped %d)", len(records), len(products), skipped)
	}
	return products, skipped
}

// ParsePrice extracts a non-negative price from text such as "$1,299.99",
// "1.299,99 €" or "USD 45". Negative, non-numeric or malformed text yields an
// invalid (missing) price.
func ParsePrice(raw string) decimal.NullDecimal {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return decimal.NullDecimal{}
	}

	match := priceRegexp.FindStringSubmatch(cleaned)
	if match == nil || match[1] == "-" || match[2] == "-" {
		return decimal.NullDecimal{}
	}

	d, ok := parseAmount(match[3])
	if !ok || d.IsNegative() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d.Round(2))
}

// parseAmount reads digits with "." or "," separators. With both present the
// last one is the decimal mark. A lone comma followed by exactly three digits
// groups thousands, any other lone comma is a decimal comma. A lone dot is
// always a decimal point. Thousands groups must have three digits.
func parseAmount(token string) (decimal.Decimal, bool) {
	token = strings.TrimRight(token, ".,")

	var decimalMark, groupMark string
	dot, comma := strings.LastIndex(token, "."), strings.LastIndex(token, ",")
	switch {
	case dot >= 0 && comma >= 0:
		if dot > comma {
			decimalMark, groupMark = ".", ","
		} else {
			decimalMark, groupMark = ",", "."
		}
	case comma >= 0:
		if strings.Count(token, ",") == 1 && len(token)-comma-1 != 3 {
			decimalMark = ","
		} else {
			groupMark = ","
		}
	case dot >= 0:
		if strings.Count(token, ".") == 1 {
			decimalMark = "."
		} else {
			groupMark = "."
		}
	}

	intPart, frac := token, ""
	if decimalMark != "" {
		i := strings.LastIndex(token, decimalMark)
		intPart, frac = token[:i], token[i+1:]
		if !allDigits(frac) {
			return decimal.Decimal{}, false
		}
	}

	groups := []string{intPart}
	if groupMark != "" {
		groups = strings.Split(intPart, groupMark)
	}
	for i, g := range groups {
		if !allDigits(g) || (len(groups) > 1 && (len(g) > 3 || (i > 0 && len(g) != 3))) {
			return decimal.Decimal{}, false
		}
	}

	number := strings.Join(groups, "")
	if frac != "" {
		number += "." + frac
	}
	d, err := decimal.NewFromString(number)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// normaliseText trims and collapses internal whitespace
func normaliseText(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}
