package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/jaume/remotejobs/internal/model"
)

const redditBaseURL = "https://www.reddit.com"

const maxRedditDescriptionLen = 3000

var redditSubreddits = []string{"remotejobs", "forhire", "WorkOnline"}

// Sort orders fetched per subreddit.
var redditSorts = []string{"hot", "new"}

// Posts mentioning any of these describe a hiring opportunity.
var hiringKeywords = []string{
	"[hiring]", "[for hire]", "hiring", "looking for", "we are hiring",
	"job opening", "position available", "remote position", "work from home",
	"$", "per hour", "/hr", "salary", "compensation",
}

// Posts mentioning any of these are people seeking work, not offering it.
var seekingKeywords = []string{
	"seeking", "looking for work", "available for hire", "need a job", "hire me",
}

var (
	hiringCompanyRegex = regexp.MustCompile(`(?i)\[hiring\]\s*([^-\x{2013}|]+?)(?:\s*[-\x{2013}|]|\s+is\s+hiring)`)
	atCompanyRegex     = regexp.MustCompile(`(?:at|@|with)\s+([A-Z][A-Za-z0-9\s&.]+?)(?:\s*[-\x{2013}|]|\s*$)`)
	companyHiringRegex = regexp.MustCompile(`^([A-Z][A-Za-z0-9\s&.]+?)\s+is\s+hiring`)
	titlePrefixRegex   = regexp.MustCompile(`(?i)^\[(?:hiring|for hire|remote)\]\s*`)
	titleCompanyRegex  = regexp.MustCompile(`^[^-\x{2013}|]+[-\x{2013}|]\s*`)
	titleSalaryRegex   = regexp.MustCompile(`(?i)\$[\d,]+(?:\s*[-\x{2013}]\s*\$[\d,]+)?(?:\s*/\s*(?:hr|hour|year|yr|month|mo))?`)
	whitespaceRunRegex = regexp.MustCompile(`\s+`)
	salarySnippetRegex = regexp.MustCompile(`(?i)\$?\d[\d,]*(?:\.\d+)?k?\s*[-\x{2013}]\s*\$?\d[\d,]*(?:\.\d+)?k?\s*(?:/\s*(?:hr|hour)|per\s+hour)?|\$\d[\d,]*(?:\.\d+)?\s*(?:/\s*(?:hr|hour|yr|year)|per\s+hour)?`)
)

// redditListing is the envelope returned by the subreddit JSON endpoints.
type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	Permalink  string  `json:"permalink"`
	URL        string  `json:"url"`
	CreatedUTC float64 `json:"created_utc"`
	Flair      string  `json:"link_flair_text"`
}

// Reddit scrapes hiring posts from remote-work subreddits using the public
// JSON endpoints, no authentication required.
type Reddit struct {
	client  *http.Client
	baseURL string
	pause   time.Duration
}

// NewReddit creates a Reddit scraper using the given HTTP client.
func NewReddit(client *http.Client) *Reddit {
	return &Reddit{client: client, baseURL: redditBaseURL, pause: time.Second}
}

func (s *Reddit) Name() string { return "reddit" }

// Scrape fetches hot and new posts from each subreddit and keeps the ones
// that look like hiring posts. A subreddit failing does not lose the rest.
func (s *Reddit) Scrape(ctx context.Context) ([]model.RawJob, error) {
	var jobs []model.RawJob
	seen := make(map[string]bool)
	var lastErr error

	for i, subreddit := range redditSubreddits {
		if i > 0 && s.pause > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.pause):
			}
		}

		subJobs, err := s.scrapeSubreddit(ctx, subreddit)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			lastErr = err
			continue
		}
		for _, job := range subJobs {
			if seen[job.SourceID] {
				continue
			}
			seen[job.SourceID] = true
			jobs = append(jobs, job)
		}
	}

	if len(jobs) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return jobs, nil
}

func (s *Reddit) scrapeSubreddit(ctx context.Context, subreddit string) ([]model.RawJob, error) {
	var jobs []model.RawJob
	var lastErr error

	for _, sort := range redditSorts {
		url := fmt.Sprintf("%s/r/%s/%s.json?limit=50&t=week", s.baseURL, subreddit, sort)
		body, err := get(ctx, s.client, url)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			lastErr = err
			continue
		}

		var listing redditListing
		if err := json.Unmarshal(body, &listing); err != nil {
			lastErr = fmt.Errorf("reddit: decode r/%s/%s: %w", subreddit, sort, err)
			continue
		}

		for _, child := range listing.Data.Children {
			if job, ok := s.parsePost(child.Data, subreddit); ok {
				jobs = append(jobs, job)
			}
		}
	}

	if len(jobs) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return jobs, nil
}

func (s *Reddit) parsePost(post redditPost, subreddit string) (model.RawJob, bool) {
	if post.Title == "" || post.ID == "" {
		return model.RawJob{}, false
	}

	combined := strings.ToLower(post.Title + " " + post.Selftext)
	for _, kw := range seekingKeywords {
		if strings.Contains(combined, kw) {
			return model.RawJob{}, false
		}
	}
	hiring := false
	for _, kw := range hiringKeywords {
		if strings.Contains(combined, kw) {
			hiring = true
			break
		}
	}
	if !hiring {
		return model.RawJob{}, false
	}

	url := post.URL
	if post.Permalink != "" {
		url = s.baseURL + post.Permalink
	}

	raw := model.RawJob{
		Source:     s.Name(),
		SourceID:   post.ID,
		Title:      cleanRedditTitle(post.Title),
		Company:    extractRedditCompany(post.Title),
		Location:   "Remote",
		SalaryText: salarySnippetRegex.FindString(post.Title + " " + post.Selftext),
		URL:        url,
		Tags:       []string{"r/" + subreddit},
	}

	if post.Selftext != "" {
		text := post.Selftext
		if runes := []rune(text); len(runes) > maxRedditDescriptionLen {
			text = string(runes[:maxRedditDescriptionLen])
		}
		raw.Description = text
	}
	if post.Flair != "" {
		raw.Tags = append(raw.Tags, post.Flair)
	}
	if post.CreatedUTC > 0 {
		t := time.Unix(int64(post.CreatedUTC), 0).UTC()
		raw.PostedAt = &t
	}
	return raw, true
}

// extractRedditCompany pulls a company name out of common post title shapes
// like "[Hiring] Acme - Support Rep" or "Support Rep at Acme".
func extractRedditCompany(title string) string {
	if m := hiringCompanyRegex.FindStringSubmatch(title); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := atCompanyRegex.FindStringSubmatch(title); m != nil {
		company := strings.TrimSpace(m[1])
		if len(company) > 2 && len(company) < 50 {
			return company
		}
	}
	if m := companyHiringRegex.FindStringSubmatch(title); m != nil {
		return strings.TrimSpace(m[1])
	}
	return "Unknown (Reddit)"
}

// cleanRedditTitle strips hiring markers, leading company names, and salary
// fragments so the stored title reads like a job title. When stripping leaves
// almost nothing the raw title is kept instead.
func cleanRedditTitle(title string) string {
	cleaned := titlePrefixRegex.ReplaceAllString(title, "")
	cleaned = titleCompanyRegex.ReplaceAllString(cleaned, "")
	cleaned = titleSalaryRegex.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(whitespaceRunRegex.ReplaceAllString(cleaned, " "))

	if len([]rune(cleaned)) < 5 {
		cleaned = strings.TrimSpace(title)
	}
	if runes := []rune(cleaned); len(runes) > 200 {
		cleaned = string(runes[:200])
	}
	return cleaned
}
