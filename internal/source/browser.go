package source

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/ppiankov/marketlens/internal/cache"
	"github.com/ppiankov/marketlens/internal/collect"
	"github.com/ppiankov/marketlens/internal/model"
	"github.com/ppiankov/marketlens/internal/util"
	"github.com/ppiankov/marketlens/internal/worker"
)

// BrowserSource renders the listing page in headless Chrome before parsing
// its microdata. Use it for storefronts that build results with JavaScript.
type BrowserSource struct {
	endpoint  string
	userAgent string
	chromeBin string
	proxy     string
	noProxy   string
	limiter   *worker.HostLimiter
	cache     cache.Cache
	logger    *util.Logger
}

// NewBrowserSource creates a browser-driven source
func NewBrowserSource(cfg model.LiveConfig, c cache.Cache, logger *util.Logger) (*BrowserSource, error) {
	if err := validateEndpoint(cfg.Endpoint); err != nil {
		return nil, err
	}
	if c == nil {
		c = cache.Nop{}
	}
	if logger == nil {
		logger = util.NopLogger()
	}

	bin := cfg.ChromeBin
	if bin == "" {
		bin = findChromeBinary()
	}

	return &BrowserSource{
		endpoint:  cfg.Endpoint,
		userAgent: cfg.UserAgent,
		chromeBin: bin,
		proxy:     firstNonEmpty(cfg.HTTPSProxy, cfg.HTTPProxy),
		noProxy:   cfg.NoProxy,
		limiter:   worker.NewHostLimiter(cfg.RequestsPerSecond, cfg.BurstSize),
		cache:     c,
		logger:    logger,
	}, nil
}

// Name identifies the source in logs
func (s *BrowserSource) Name() string {
	return "browser"
}

// Fetch loads the page in a fresh browser and parses the rendered DOM
func (s *BrowserSource) Fetch(ctx context.Context, query string, timeout time.Duration) ([]model.RawRecord, error) {
	target := searchURL(s.endpoint, query)
	key := cache.Key(s.Name(), target)

	if records, ok := cachedRecords(s.cache, key); ok {
		s.logger.Debug("live cache hit for %s", target)
		return records, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.limiter.Wait(fetchCtx, target); err != nil {
		return nil, mapError(ctx, err)
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(fetchCtx, s.allocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...any) {}))
	defer cancelBrowser()

	var page string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &page, chromedp.ByQuery),
	)
	if err != nil {
		return nil, mapError(ctx, fmt.Errorf("render %s: %w", target, err))
	}

	records, err := ParseHTML([]byte(page))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", collect.ErrEmptyResult, err)
	}
	if !hasTitle(records) {
		return nil, fmt.Errorf("%w: no titled listings at %s", collect.ErrEmptyResult, target)
	}

	storeRecords(s.cache, key, records, s.logger)
	return records, nil
}

func (s *BrowserSource) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if s.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(s.userAgent))
	}
	if s.chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(s.chromeBin))
	}
	if s.proxy != "" {
		opts = append(opts, chromedp.ProxyServer(s.proxy))
		if s.noProxy != "" {
			// Chrome separates bypass rules with semicolons
			opts = append(opts, chromedp.Flag("proxy-bypass-list", strings.ReplaceAll(s.noProxy, ",", ";")))
		}
	}
	return opts
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// findChromeBinary looks for a Chrome or Chromium install
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	for _, name := range []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}
