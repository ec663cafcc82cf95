package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/marketlens/internal/cache"
	"github.com/ppiankov/marketlens/internal/collect"
	"github.com/ppiankov/marketlens/internal/model"
	"github.com/ppiankov/marketlens/internal/util"
	"github.com/ppiankov/marketlens/internal/worker"
)

// HTTPSource fetches a listing page (HTML microdata or JSON) over plain HTTP
type HTTPSource struct {
	endpoint  string
	client    *http.Client
	userAgent string
	maxBytes  int64
	robots    *util.RobotsChecker
	limiter   *worker.HostLimiter
	cache     cache.Cache
	cacheTTL  time.Duration
	logger    *util.Logger
}

// NewHTTPSource creates an HTTP source from the live config
func NewHTTPSource(cfg model.LiveConfig, c cache.Cache, logger *util.Logger) (*HTTPSource, error) {
	if err := validateEndpoint(cfg.Endpoint); err != nil {
		return nil, err
	}
	if c == nil {
		c = cache.Nop{}
	}
	if logger == nil {
		logger = util.NopLogger()
	}
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 2_000_000
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy)

	client := &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return fmt.Errorf("stopped after 3 redirects")
			}
			return nil
		},
	}

	s := &HTTPSource{
		endpoint:  cfg.Endpoint,
		client:    client,
		userAgent: cfg.UserAgent,
		maxBytes:  maxBytes,
		limiter:   worker.NewHostLimiter(cfg.RequestsPerSecond, cfg.BurstSize),
		cache:     c,
		logger:    logger,
	}
	if cfg.RespectRobots {
		s.robots = util.NewRobotsChecker(client, cfg.UserAgent)
	}
	return s, nil
}

// Name identifies the source in logs
func (s *HTTPSource) Name() string {
	return "http"
}

// Fetch retrieves and parses the listing page for query within timeout
func (s *HTTPSource) Fetch(ctx context.Context, query string, timeout time.Duration) ([]model.RawRecord, error) {
	target := searchURL(s.endpoint, query)
	key := cache.Key(s.Name(), target)

	if records, ok := cachedRecords(s.cache, key); ok {
		s.logger.Debug("live cache hit for %s", target)
		return records, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if s.robots != nil {
		allowed, delay, err := s.robots.Allowed(fetchCtx, target)
		if err != nil {
			return nil, mapError(ctx, err)
		}
		if !allowed {
			return nil, fmt.Errorf("%w: disallowed by robots.txt: %s", collect.ErrTransport, target)
		}
		s.limiter.ApplyCrawlDelay(target, delay)
	}

	if err := s.limiter.Wait(fetchCtx, target); err != nil {
		return nil, mapError(ctx, err)
	}

	body, contentType, err := s.get(fetchCtx, target)
	if err != nil {
		return nil, mapError(ctx, err)
	}

	records, err := parseBody(body, contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", collect.ErrEmptyResult, err)
	}
	if !hasTitle(records) {
		return nil, fmt.Errorf("%w: no titled listings at %s", collect.ErrEmptyResult, target)
	}

	storeRecords(s.cache, key, records, s.logger)
	return records, nil
}

func (s *HTTPSource) get(ctx context.Context, target string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("unexpected status: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func hasTitle(records []model.RawRecord) bool {
	for _, r := range records {
		if strings.TrimSpace(r.Title) != "" {
			return true
		}
	}
	return false
}

func parseBody(body []byte, contentType string) ([]model.RawRecord, error) {
	if strings.Contains(contentType, "json") {
		return ParseJSON(body)
	}
	return ParseHTML(body)
}

func cachedRecords(c cache.Cache, key string) ([]model.RawRecord, bool) {
	data, ok := c.Get(key)
	if !ok {
		return nil, false
	}
	var records []model.RawRecord
	if err := json.Unmarshal(data, &records); err != nil || len(records) == 0 {
		return nil, false
	}
	return records, true
}

func storeRecords(c cache.Cache, key string, records []model.RawRecord, logger *util.Logger) {
	data, err := json.Marshal(records)
	if err != nil {
		return
	}
	if err := c.Set(key, data, 0); err != nil {
		logger.Warn("cache write failed: %v", err)
	}
}
