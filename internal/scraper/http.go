package scraper

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jaume/remotejobs/internal/model"
)

const userAgent = "RemoteJobScraper/1.0 (+https://github.com/jaume/remotejobs)"

// get performs a GET request with the shared User-Agent and returns the
// response body. Non-2xx statuses are returned as *model.HTTPError so the
// retry layer can classify them.
func get(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	return getAs(ctx, client, url, userAgent)
}

// getAs is get with an explicit User-Agent, for sources that reject the
// default one.
func getAs(ctx context.Context, client *http.Client, url, ua string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", url, err)
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "application/json, text/html")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return body, nil
}

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

var (
	htmlBreakRegex = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</li>`)
	htmlTagRegex   = regexp.MustCompile(`<[^>]*>`)
	blankRunRegex  = regexp.MustCompile(`\n{3,}`)
)

// extractText converts an HTML description to plain text, preserving
// paragraph breaks, and caps the result at max runes.
func extractText(content string, max int) string {
	if content == "" {
		return ""
	}
	text := htmlBreakRegex.ReplaceAllString(content, "\n")
	text = htmlTagRegex.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	text = blankRunRegex.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)
	if runes := []rune(text); len(runes) > max {
		text = string(runes[:max])
	}
	return text
}
