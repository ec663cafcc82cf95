package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/marketlens/internal/cache"
	"github.com/ppiankov/marketlens/internal/collect"
	"github.com/ppiankov/marketlens/internal/model"
)

const listingHTML = `<html><body>
<div itemscope itemtype="https://schema.org/Product">
  <h2 itemprop="name">Acme Headphones  Pro</h2>
  <div itemprop="brand" itemscope itemtype="https://schema.org/Brand"><span itemprop="name">Acme</span></div>
  <div itemprop="offers" itemscope itemtype="https://schema.org/Offer">
    <span itemprop="price" content="129.99">$129.99</span>
  </div>
  <div itemprop="aggregateRating" itemscope itemtype="https://schema.org/AggregateRating">
    <span itemprop="ratingValue">4.4</span> from <span itemprop="reviewCount">1,204</span>
  </div>
  <a itemprop="url" href="https://shop.example/p/1">view</a>
</div>
<div itemscope itemtype="https://schema.org/Product">
  <h2 itemprop="name">Budget Buds</h2>
  <span itemprop="price">$19.50</span>
</div>
</body></html>`

func liveConfig(endpoint string) model.LiveConfig {
	cfg := model.DefaultConfig().Live
	cfg.Endpoint = endpoint
	cfg.RespectRobots = false
	cfg.RequestsPerSecond = 0
	return cfg
}

func TestParseHTML_Microdata(t *testing.T) {
	records, err := ParseHTML([]byte(listingHTML))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.Title != "Acme Headphones Pro" {
		t.Errorf("unexpected title %q", first.Title)
	}
	if first.Price != "129.99" {
		t.Errorf("expected price from content attr, got %q", first.Price)
	}
	if first.Seller != "Acme" {
		t.Errorf("unexpected seller %q", first.Seller)
	}
	if first.Rating == nil || *first.Rating != 4.4 {
		t.Errorf("unexpected rating %v", first.Rating)
	}
	if first.RatingCount == nil || *first.RatingCount != 1204 {
		t.Errorf("unexpected rating count %v", first.RatingCount)
	}
	if first.URL != "https://shop.example/p/1" {
		t.Errorf("unexpected url %q", first.URL)
	}

	if records[1].Rating != nil || records[1].Price != "$19.50" {
		t.Errorf("unexpected second record %+v", records[1])
	}
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"array", `[{"title":"A","price":"$10"},{"name":"B","price":12.5,"rating":4}]`, 2},
		{"wrapped", `{"products":[{"title":"A","rating":"4.5","reviews":10}]}`, 1},
		{"empty", `[]`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := ParseJSON([]byte(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			if len(records) != tt.want {
				t.Errorf("expected %d records, got %d", tt.want, len(records))
			}
		})
	}

	records, _ := ParseJSON([]byte(`[{"name":"B","price":12.5,"rating":4,"review_count":3}]`))
	if records[0].Price != "12.5" || *records[0].Rating != 4 || *records[0].RatingCount != 3 {
		t.Errorf("unexpected record %+v", records[0])
	}

	if _, err := ParseJSON([]byte(`not json`)); err == nil {
		t.Error("expected error for garbled body")
	}
}

func TestHTTPSource_FetchHTML(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, listingHTML)
	}))
	defer server.Close()

	src, err := NewHTTPSource(liveConfig(server.URL+"/search?q={query}"), nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	records, err := src.Fetch(context.Background(), "wireless headphones", time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("expected 2 records, got %d", len(records))
	}
	if gotQuery != "wireless headphones" {
		t.Errorf("query not escaped into endpoint: %q", gotQuery)
	}
}

func TestHTTPSource_FetchJSONCached(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `[{"title":"A","price":"$10.00"}]`)
	}))
	defer server.Close()

	c := cache.NewLayeredCache(time.Minute, "", 0)
	src, err := NewHTTPSource(liveConfig(server.URL+"/api?q={query}"), c, nil)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		records, err := src.Fetch(context.Background(), "laptop", time.Second)
		if err != nil || len(records) != 1 {
			t.Fatalf("fetch %d: %v %v", i, records, err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("expected the second fetch to hit the cache, got %d calls", calls.Load())
	}
}

func TestHTTPSource_FailureClasses(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}, collect.ErrTransport},
		{"no listings", func(w http.ResponseWriter, r *http.Request) {
			_, _ = fmt.Fprint(w, "<html><body>nothing</body></html>")
		}, collect.ErrEmptyResult},
		{"garbled json", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = fmt.Fprint(w, "{{{")
		}, collect.ErrEmptyResult},
		{"untitled json", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = fmt.Fprint(w, `[{"sku":1},{"sku":2},{"sku":3}]`)
		}, collect.ErrEmptyResult},
		{"slow", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(500 * time.Millisecond):
			case <-r.Context().Done():
			}
		}, collect.ErrTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			src, err := NewHTTPSource(liveConfig(server.URL+"/?q={query}"), nil, nil)
			if err != nil {
				t.Fatal(err)
			}
			_, err = src.Fetch(context.Background(), "laptop", 50*time.Millisecond)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestHTTPSource_RobotsDisallow(t *testing.T) {
	var searched atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /search\n")
			return
		}
		searched.Store(true)
		_, _ = fmt.Fprint(w, listingHTML)
	}))
	defer server.Close()

	cfg := liveConfig(server.URL + "/search?q={query}")
	cfg.RespectRobots = true
	src, err := NewHTTPSource(cfg, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = src.Fetch(context.Background(), "laptop", time.Second)
	if !errors.Is(err, collect.ErrTransport) {
		t.Errorf("expected transport error, got %v", err)
	}
	if searched.Load() {
		t.Error("disallowed page must not be requested")
	}
}

func TestHTTPSource_ParentCancelPassesThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	src, err := NewHTTPSource(liveConfig(server.URL+"/?q={query}"), nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err = src.Fetch(ctx, "laptop", 5*time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNew_Drivers(t *testing.T) {
	cfg := liveConfig("https://shop.example/search?q={query}")

	tests := []struct {
		driver  string
		name    string
		wantErr bool
	}{
		{"", "http", false},
		{"http", "http", false},
		{"browser", "browser", false},
		{"carrier-pigeon", "", true},
	}

	for _, tt := range tests {
		cfg.Driver = tt.driver
		src, err := New(cfg, nil, nil)
		if tt.wantErr {
			if err == nil {
				t.Errorf("driver %q: expected error", tt.driver)
			}
			continue
		}
		if err != nil {
			t.Errorf("driver %q: %v", tt.driver, err)
			continue
		}
		if src.Name() != tt.name {
			t.Errorf("driver %q: expected %s, got %s", tt.driver, tt.name, src.Name())
		}
	}
}

func TestValidateEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		wantErr  bool
	}{
		{"https://shop.example/search?q={query}", false},
		{"", true},
		{"https://shop.example/search", true},
		{"ftp://shop.example/{query}", true},
	}
	for _, tt := range tests {
		err := validateEndpoint(tt.endpoint)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateEndpoint(%q) = %v, wantErr %v", tt.endpoint, err, tt.wantErr)
		}
	}
	if !errors.Is(validateEndpoint("  "), ErrNoEndpoint) {
		t.Error("blank endpoint should be ErrNoEndpoint")
	}
}

func TestBrowserSource_AllocatorOptions(t *testing.T) {
	cfg := liveConfig("https://shop.example/search?q={query}")
	cfg.ChromeBin = "/opt/chrome/chrome"
	src, err := NewBrowserSource(cfg, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if src.chromeBin != "/opt/chrome/chrome" {
		t.Errorf("configured binary ignored: %q", src.chromeBin)
	}
	if n := len(src.allocatorOptions()); n <= 4 {
		t.Errorf("expected default options plus overrides, got %d", n)
	}
	if !strings.Contains(searchURL(src.endpoint, "a b"), "a+b") {
		t.Error("query should be URL-escaped")
	}

	cfg.HTTPProxy = "http://proxy.internal:3128"
	cfg.NoProxy = "shop.example,.cdn.example"
	proxied, err := NewBrowserSource(cfg, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if proxied.proxy != "http://proxy.internal:3128" {
		t.Errorf("expected the HTTP proxy to serve the browser, got %q", proxied.proxy)
	}
	if got, base := len(proxied.allocatorOptions()), len(src.allocatorOptions()); got != base+2 {
		t.Errorf("expected proxy server and bypass list options, got %d over %d", got, base)
	}
}
