package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jaume/remotejobs/internal/model"
)

const weWorkRemotelyBaseURL = "https://weworkremotely.com"

// Listing pages scraped, customer support first.
var weWorkRemotelyPaths = []string{
	"/categories/remote-customer-support-jobs",
	"/remote-jobs",
}

var salaryRangeRegex = regexp.MustCompile(`\$[\d,]+\s*[-\x{2013}]\s*\$[\d,]+`)

// WeWorkRemotely scrapes the WeWorkRemotely listing pages.
type WeWorkRemotely struct {
	client  *http.Client
	baseURL string
}

// NewWeWorkRemotely creates a WeWorkRemotely scraper using the given HTTP client.
func NewWeWorkRemotely(client *http.Client) *WeWorkRemotely {
	return &WeWorkRemotely{client: client, baseURL: weWorkRemotelyBaseURL}
}

func (s *WeWorkRemotely) Name() string { return "weworkremotely" }

// Scrape fetches each listing page and parses its job items. Listings that
// appear on more than one page are reported once, keyed by URL.
func (s *WeWorkRemotely) Scrape(ctx context.Context) ([]model.RawJob, error) {
	var jobs []model.RawJob
	seen := make(map[string]bool)
	var lastErr error

	for _, path := range weWorkRemotelyPaths {
		body, err := get(ctx, s.client, s.baseURL+path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			// One listing page failing should not lose the others.
			lastErr = err
			continue
		}

		pageJobs, err := s.parseListing(body)
		if err != nil {
			lastErr = err
			continue
		}
		for _, job := range pageJobs {
			if seen[job.URL] {
				continue
			}
			seen[job.URL] = true
			jobs = append(jobs, job)
		}
	}

	if len(jobs) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return jobs, nil
}

func (s *WeWorkRemotely) parseListing(body []byte) ([]model.RawJob, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("weworkremotely: parse listing: %w", err)
	}

	var jobs []model.RawJob
	doc.Find("li").Each(func(_ int, item *goquery.Selection) {
		if item.HasClass("ad") {
			return
		}
		if job, ok := s.parseItem(item); ok {
			jobs = append(jobs, job)
		}
	})
	return jobs, nil
}

func (s *WeWorkRemotely) parseItem(item *goquery.Selection) (model.RawJob, bool) {
	link := item.Find(`a[href*="/remote-jobs/"]`).First()
	href, _ := link.Attr("href")
	if href == "" {
		return model.RawJob{}, false
	}

	jobURL := href
	if !strings.HasPrefix(href, "http") {
		jobURL = s.baseURL + href
	}

	parts := strings.Split(strings.TrimRight(href, "/"), "/")
	sourceID := parts[len(parts)-1]
	if sourceID == "" {
		return model.RawJob{}, false
	}

	title := strings.TrimSpace(item.Find(".title").First().Text())
	if title == "" {
		title = strings.TrimSpace(link.Text())
	}
	if title == "" {
		return model.RawJob{}, false
	}

	company := strings.TrimSpace(item.Find(".company").First().Text())
	location := strings.TrimSpace(item.Find(".region").First().Text())

	logo, _ := item.Find("img.logo, div.logo img").First().Attr("src")

	var tags []string
	item.Find(".tag, .label").Each(func(_ int, tag *goquery.Selection) {
		if text := strings.TrimSpace(tag.Text()); text != "" {
			tags = append(tags, text)
		}
	})

	salaryText := strings.TrimSpace(item.Find(".salary, .compensation").First().Text())
	if salaryText == "" {
		salaryText = salaryRangeRegex.FindString(item.Text())
	}

	return model.RawJob{
		Source:      s.Name(),
		SourceID:    sourceID,
		Title:       title,
		Company:     company,
		CompanyLogo: logo,
		Location:    location,
		SalaryText:  salaryText,
		URL:         jobURL,
		Tags:        tags,
	}, true
}
