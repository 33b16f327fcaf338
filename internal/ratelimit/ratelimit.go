// Package ratelimit spaces out requests to external job sources.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jaume/remotejobs/internal/model"
)

// SourceLimiter hands out one token bucket per source so that consecutive
// acquisitions against the same external service respect its minimum delay.
type SourceLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	minDelay time.Duration
	override map[string]time.Duration // per-source overrides, keyed by source name
}

// NewSourceLimiter creates a limiter enforcing minDelay between consecutive
// requests to the same source, with optional per-source overrides.
func NewSourceLimiter(minDelay time.Duration, overrides map[string]time.Duration) *SourceLimiter {
	return &SourceLimiter{
		limiters: make(map[string]*rate.Limiter),
		minDelay: minDelay,
		override: overrides,
	}
}

func (l *SourceLimiter) limiterFor(source string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lim, ok := l.limiters[source]; ok {
		return lim
	}

	delay := l.minDelay
	if d, ok := l.override[source]; ok {
		delay = d
	}

	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	lim := rate.NewLimiter(limit, 1)
	l.limiters[source] = lim
	return lim
}

// Wait blocks until the source may issue its next request. Returns an error
// if the context is cancelled while waiting.
func (l *SourceLimiter) Wait(ctx context.Context, source string) error {
	if err := l.limiterFor(source).Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", source, err)
	}
	return nil
}

// LimitedScraper is a decorator that waits on the shared limiter before
// delegating to the wrapped Scraper.
type LimitedScraper struct {
	inner   model.Scraper
	limiter *SourceLimiter
}

// Limited wraps a Scraper with source-level rate limiting. All scrapers
// sharing an external service should share the same limiter instance.
func Limited(inner model.Scraper, limiter *SourceLimiter) *LimitedScraper {
	return &LimitedScraper{inner: inner, limiter: limiter}
}

// Name reports the wrapped source's name.
func (s *LimitedScraper) Name() string { return s.inner.Name() }

// Scrape waits for the limiter to allow a request, then delegates.
func (s *LimitedScraper) Scrape(ctx context.Context) ([]model.RawJob, error) {
	if err := s.limiter.Wait(ctx, s.inner.Name()); err != nil {
		return nil, err
	}
	return s.inner.Scrape(ctx)
}
