package model

import (
	"errors"
	"strings"
)

// ErrInvalidQuery is returned when a query is empty after trimming
var ErrInvalidQuery = errors.New("invalid query: must not be empty")

// Query names the product or category to analyze. Never empty once parsed.
type Query string

// ParseQuery trims the input and rejects empty queries
func ParseQuery(s string) (Query, error) {
	q := strings.TrimSpace(s)
	if q == "" {
		return "", ErrInvalidQuery
	}
	return Query(q), nil
}

// String returns the query text
func (q Query) String() string {
	return string(q)
}

// DataSource tags where raw records came from
type DataSource string

const (
	SourceLive DataSource = "live" // Collected from the live source
	SourceMock DataSource = "mock" // Generated by the deterministic mock collector
)
