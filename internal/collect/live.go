package collect

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/marketlens/internal/model"
	"github.com/ppiankov/marketlens/internal/util"
)

// collectSleepFunc is the sleep used between attempts (injectable for tests)
var collectSleepFunc = time.Sleep

// LiveCollector fetches from a Source with a bounded timeout and retry count
type LiveCollector struct {
	source      Source
	timeout     time.Duration
	maxAttempts int
	backoff     time.Duration
	logger      *util.Logger
}

// NewLiveCollector creates a live collector. maxAttempts is clamped to [1, 3].
func NewLiveCollector(source Source, timeout time.Duration, maxAttempts int, backoff time.Duration, logger *util.Logger) *LiveCollector {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if maxAttempts > 3 {
		maxAttempts = 3
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = util.NopLogger()
	}
	return &LiveCollector{
		source:      source,
		timeout:     timeout,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		logger:      logger,
	}
}

// Collect tries the live source up to maxAttempts times
func (c *LiveCollector) Collect(ctx context.Context, query model.Query) ([]model.RawRecord, model.DataSource, error) {
	if _, err := model.ParseQuery(string(query)); err != nil {
		return nil, "", err
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}

		records, err := c.source.Fetch(ctx, string(query), c.timeout)
		if err == nil && !hasListing(records) {
			err = fmt.Errorf("%w: %d records without a title", ErrEmptyResult, len(records))
		}
		if err == nil {
			for i := range records {
				records[i].Source = model.SourceLive
			}
			return records, model.SourceLive, nil
		}

		// Caller went away: not a source failure, do not retry
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}

		lastErr = classify(err)
		if attempt < c.maxAttempts {
			delay := c.backoff * time.Duration(attempt)
			c.logger.Warn("live fetch %q via %s failed (attempt %d/%d): %v, retrying in %v",
				query, c.source.Name(), attempt, c.maxAttempts, err, delay)
			collectSleepFunc(delay)
		}
	}

	return nil, "", fmt.Errorf("live fetch failed after %d attempts: %w", c.maxAttempts, lastErr)
}

// hasListing reports whether any record carries a usable title
func hasListing(records []model.RawRecord) bool {
	for _, r := range records {
		if strings.TrimSpace(r.Title) != "" {
			return true
		}
	}
	return false
}

// classify maps an unexpected source error onto a live outcome class
func classify(err error) error {
	switch {
	case IsLiveFailure(err):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	default:
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
}
