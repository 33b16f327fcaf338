package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jaume/remotejobs/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockScraper calls a function on each invocation, tracking call count.
type mockScraper struct {
	calls int
	fn    func(attempt int) ([]model.RawJob, error)
}

func (m *mockScraper) Name() string { return "mock" }

func (m *mockScraper) Scrape(_ context.Context) ([]model.RawJob, error) {
	m.calls++
	return m.fn(m.calls)
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	raws := []model.RawJob{{SourceID: "1", Title: "Chat Agent"}}
	mock := &mockScraper{fn: func(_ int) ([]model.RawJob, error) {
		return raws, nil
	}}

	rs := Wrap(mock, 2, 10*time.Millisecond, discardLogger())
	got, err := rs.Scrape(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].SourceID != "1" {
		t.Fatalf("unexpected records: %v", got)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call, got %d", mock.calls)
	}
}

func TestRetry_RetriesOn5xx_SucceedsOnSecondAttempt(t *testing.T) {
	raws := []model.RawJob{{SourceID: "1"}}
	mock := &mockScraper{fn: func(attempt int) ([]model.RawJob, error) {
		if attempt == 1 {
			return nil, &model.HTTPError{StatusCode: 503, Err: errors.New("service unavailable")}
		}
		return raws, nil
	}}

	rs := Wrap(mock, 2, 10*time.Millisecond, discardLogger())
	got, err := rs.Scrape(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if mock.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.calls)
	}
}

func TestRetry_DoesNotRetryOn4xx(t *testing.T) {
	mock := &mockScraper{fn: func(_ int) ([]model.RawJob, error) {
		return nil, &model.HTTPError{StatusCode: 404, Err: errors.New("not found")}
	}}

	rs := Wrap(mock, 2, 10*time.Millisecond, discardLogger())
	_, err := rs.Scrape(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 404 {
		t.Fatalf("expected HTTPError with status 404, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call (no retry), got %d", mock.calls)
	}
}

func TestRetry_GivesUpAfterMaxRetries(t *testing.T) {
	mock := &mockScraper{fn: func(_ int) ([]model.RawJob, error) {
		return nil, &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")}
	}}

	rs := Wrap(mock, 2, 10*time.Millisecond, discardLogger())
	_, err := rs.Scrape(context.Background())
	if err == nil {
		t.Fatal("expected error after max retries, got nil")
	}
	// 1 initial + 2 retries = 3
	if mock.calls != 3 {
		t.Fatalf("expected 3 calls (1 + 2 retries), got %d", mock.calls)
	}
}

func TestRetry_RespectsContextCancellation(t *testing.T) {
	mock := &mockScraper{fn: func(_ int) ([]model.RawJob, error) {
		return nil, &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")}
	}}

	ctx, cancel := context.WithCancel(context.Background())
	// Cancel immediately so the backoff sleep is interrupted.
	cancel()

	rs := Wrap(mock, 2, time.Second, discardLogger())
	_, err := rs.Scrape(ctx)
	if err == nil {
		t.Fatal("expected error from context cancellation, got nil")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	// Should have made the initial call, then been cancelled during backoff.
	if mock.calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", mock.calls)
	}
}

func TestRetry_HonorsRetryAfter(t *testing.T) {
	mock := &mockScraper{fn: func(attempt int) ([]model.RawJob, error) {
		if attempt == 1 {
			return nil, &model.HTTPError{
				StatusCode: 429,
				RetryAfter: 20 * time.Millisecond,
				Err:        errors.New("rate limited"),
			}
		}
		return nil, nil
	}}

	rs := Wrap(mock, 1, 10*time.Second, discardLogger())
	start := time.Now()
	if _, err := rs.Scrape(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	elapsed := time.Since(start)
	// Retry-After (20ms) must override the 10s base delay.
	if elapsed > time.Second {
		t.Fatalf("waited %v, want the Retry-After duration", elapsed)
	}
	if mock.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.calls)
	}
}
