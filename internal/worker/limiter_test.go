package worker

import (
	"context"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestHostLimiter_Defaults(t *testing.T) {
	l := NewHostLimiter(10, -1)
	if l.defaultBurst != 1 {
		t.Errorf("expected burst 1 for negative input, got %d", l.defaultBurst)
	}

	unlimited := NewHostLimiter(0, 1)
	if unlimited.defaultRate != rate.Inf {
		t.Errorf("expected unlimited rate, got %v", unlimited.defaultRate)
	}
}

func TestHostLimiter_Wait(t *testing.T) {
	l := NewHostLimiter(100, 1)
	ctx := context.Background()

	if err := l.Wait(ctx, "http://shop.example/search?q=a"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if err := l.Wait(ctx, "http://other.example/"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if err := l.Wait(ctx, "no-host"); err == nil {
		t.Error("expected error for URL without host")
	}
}

func TestHostLimiter_WaitHonorsContext(t *testing.T) {
	l := NewHostLimiter(0.1, 1)
	u := "http://slow.example/"

	if err := l.Wait(context.Background(), u); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, u); err == nil {
		t.Error("second wait should fail once the context expires")
	}
}

func TestHostLimiter_ApplyCrawlDelay(t *testing.T) {
	l := NewHostLimiter(5, 1)
	u := "http://shop.example/search"

	l.ApplyCrawlDelay(u, 2*time.Second)
	if got := l.Limit(u); got != rate.Every(2*time.Second) {
		t.Errorf("expected crawl delay rate, got %v", got)
	}

	// A shorter delay never speeds the host back up
	l.ApplyCrawlDelay(u, 10*time.Millisecond)
	if got := l.Limit(u); got != rate.Every(2*time.Second) {
		t.Errorf("rate should stay at crawl delay, got %v", got)
	}

	if got := l.Limit("http://other.example/"); got != 5 {
		t.Errorf("other host should keep default rate, got %v", got)
	}
}
