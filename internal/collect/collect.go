// Package collect obtains raw listings for a query, either from a live
// source or from a deterministic mock generator.
package collect

import (
	"context"
	"errors"
	"time"

	"github.com/ppiankov/marketlens/internal/model"
)

// Live-source outcome classes. The fallback policy treats all three alike.
var (
	ErrTimeout     = errors.New("live source: timeout")
	ErrTransport   = errors.New("live source: transport error")
	ErrEmptyResult = errors.New("live source: empty or garbled result")
)

// ErrCollectionExhausted means neither live nor mock collection produced data.
// Mock generation is pure computation, so this signals an internal fault.
var ErrCollectionExhausted = errors.New("collection exhausted: live and mock both failed")

// ErrInvalidQuery is re-exported for callers that only import collect
var ErrInvalidQuery = model.ErrInvalidQuery

// Collector obtains raw records for a query
type Collector interface {
	Collect(ctx context.Context, query model.Query) ([]model.RawRecord, model.DataSource, error)
}

// Source is the live-source collaborator. Implementations must map their
// failures onto ErrTimeout, ErrTransport or ErrEmptyResult.
type Source interface {
	Name() string
	Fetch(ctx context.Context, query string, timeout time.Duration) ([]model.RawRecord, error)
}

// IsLiveFailure reports whether err belongs to one of the live outcome classes
func IsLiveFailure(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrTransport) || errors.Is(err, ErrEmptyResult)
}
