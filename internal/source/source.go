// Package source implements the live listing sources behind collect.Source:
// a plain HTTP source and a headless-browser source for script-rendered pages.
package source

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/ppiankov/marketlens/internal/cache"
	"github.com/ppiankov/marketlens/internal/collect"
	"github.com/ppiankov/marketlens/internal/model"
	"github.com/ppiankov/marketlens/internal/util"
)

// QueryPlaceholder is replaced by the escaped query in endpoint templates
const QueryPlaceholder = "{query}"

// ErrNoEndpoint means live collection was requested without an endpoint
var ErrNoEndpoint = errors.New("live source: no endpoint configured")

// New builds the source selected by cfg.Driver
func New(cfg model.LiveConfig, c cache.Cache, logger *util.Logger) (collect.Source, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "http":
		return NewHTTPSource(cfg, c, logger)
	case "browser":
		return NewBrowserSource(cfg, c, logger)
	default:
		return nil, fmt.Errorf("unsupported live driver: %s (supported: http, browser)", cfg.Driver)
	}
}

// validateEndpoint checks the endpoint template is an absolute http(s) URL
func validateEndpoint(endpoint string) error {
	if strings.TrimSpace(endpoint) == "" {
		return ErrNoEndpoint
	}
	if !strings.Contains(endpoint, QueryPlaceholder) {
		return fmt.Errorf("live endpoint %q must contain %s", endpoint, QueryPlaceholder)
	}
	parsed, err := url.Parse(strings.ReplaceAll(endpoint, QueryPlaceholder, "q"))
	if err != nil {
		return fmt.Errorf("parse live endpoint: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("live endpoint scheme must be http or https, got %q", parsed.Scheme)
	}
	return nil
}

// searchURL expands the endpoint template for query
func searchURL(endpoint, query string) string {
	return strings.ReplaceAll(endpoint, QueryPlaceholder, url.QueryEscape(query))
}

// mapError folds transport errors onto the live outcome classes. A cancelled
// parent context is passed through untouched.
func mapError(parent context.Context, err error) error {
	if err == nil || collect.IsLiveFailure(err) {
		return err
	}
	if parent.Err() != nil {
		return parent.Err()
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", collect.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", collect.ErrTransport, err)
}
