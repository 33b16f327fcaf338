package scraper

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jaume/remotejobs/internal/model"
)

const indeedBaseURL = "https://www.indeed.com"

// Indeed rejects non-browser User-Agents, so the shared one cannot be used.
const indeedUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

// Token Indeed uses to filter search results to remote-only postings.
const indeedRemoteToken = "032b3046-06a3-4876-8dfd-474eb5e7ed11"

const (
	indeedMaxPages       = 2
	indeedResultsPerPage = 10
)

var indeedSearches = []string{
	"remote customer support",
	"remote chat support",
	"remote data entry",
	"remote content moderator",
	"remote virtual assistant",
}

var indeedJobKeyRegex = regexp.MustCompile(`jk=([a-f0-9]+)`)

// Indeed scrapes Indeed's remote job search result pages.
type Indeed struct {
	client  *http.Client
	baseURL string
	pause   time.Duration
}

// NewIndeed creates an Indeed scraper using the given HTTP client.
func NewIndeed(client *http.Client) *Indeed {
	return &Indeed{client: client, baseURL: indeedBaseURL, pause: 2 * time.Second}
}

func (s *Indeed) Name() string { return "indeed" }

// Scrape runs each search query and collects job cards from the first pages
// of results. A query failing does not lose the rest.
func (s *Indeed) Scrape(ctx context.Context) ([]model.RawJob, error) {
	var jobs []model.RawJob
	seen := make(map[string]bool)
	var lastErr error

	for i, query := range indeedSearches {
		if i > 0 && s.pause > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.pause):
			}
		}

		queryJobs, err := s.searchJobs(ctx, query)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			lastErr = err
			continue
		}
		for _, job := range queryJobs {
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

// searchJobs fetches result pages for one query until a short page signals
// the end of results. A failure after the first page keeps what was parsed.
func (s *Indeed) searchJobs(ctx context.Context, query string) ([]model.RawJob, error) {
	var jobs []model.RawJob

	for page := 0; page < indeedMaxPages; page++ {
		params := url.Values{
			"q":         {query},
			"l":         {""},
			"remotejob": {indeedRemoteToken},
			"fromage":   {"14"},
			"start":     {strconv.Itoa(page * indeedResultsPerPage)},
		}

		body, err := getAs(ctx, s.client, s.baseURL+"/jobs?"+params.Encode(), indeedUserAgent)
		if err != nil {
			if page == 0 {
				return nil, err
			}
			break
		}

		pageJobs, err := s.parseSearchResults(body)
		if err != nil {
			if page == 0 {
				return nil, err
			}
			break
		}
		jobs = append(jobs, pageJobs...)

		if len(pageJobs) < indeedResultsPerPage {
			break
		}
	}

	return jobs, nil
}

// parseSearchResults extracts jobs from the result cards and from any JSON-LD
// JobPosting blocks embedded in the page.
func (s *Indeed) parseSearchResults(body []byte) ([]model.RawJob, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var jobs []model.RawJob
	doc.Find("div.job_seen_beacon").Each(func(_ int, card *goquery.Selection) {
		if job, ok := s.parseCard(card); ok {
			jobs = append(jobs, job)
		}
	})

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, script *goquery.Selection) {
		for _, posting := range decodePostings(script.Text()) {
			if job, ok := s.parsePosting(posting); ok {
				jobs = append(jobs, job)
			}
		}
	})

	return jobs, nil
}

func (s *Indeed) parseCard(card *goquery.Selection) (model.RawJob, bool) {
	link := card.Find(`a[data-jk], a.jcs-JobTitle, h2 a`).First()
	if link.Length() == 0 {
		return model.RawJob{}, false
	}

	jobID, _ := link.Attr("data-jk")
	if jobID == "" {
		href, _ := link.Attr("href")
		if match := indeedJobKeyRegex.FindStringSubmatch(href); match != nil {
			jobID = match[1]
		}
	}
	if jobID == "" {
		return model.RawJob{}, false
	}

	title := strings.TrimSpace(card.Find("h2.jobTitle span").First().Text())
	if title == "" {
		title = strings.TrimSpace(link.Text())
	}
	if title == "" {
		return model.RawJob{}, false
	}

	company := strings.TrimSpace(card.Find(`span.companyName, [data-testid="company-name"]`).First().Text())
	if company == "" {
		company = "Unknown"
	}

	location := strings.TrimSpace(card.Find(`div.companyLocation, [data-testid="text-location"]`).First().Text())
	if location == "" {
		location = "Remote"
	}

	salaryText := strings.TrimSpace(card.Find(`.salary-snippet, [data-testid="attribute_snippet_testid"]`).First().Text())
	description := strings.TrimSpace(card.Find(".job-snippet, .summary").First().Text())

	return model.RawJob{
		Source:      s.Name(),
		SourceID:    jobID,
		Title:       title,
		Company:     company,
		Description: description,
		Location:    location,
		SalaryText:  salaryText,
		URL:         s.baseURL + "/viewjob?jk=" + jobID,
		Tags:        []string{"remote"},
	}, true
}

// indeedPosting is the subset of schema.org JobPosting fields Indeed embeds
// in its result pages.
type indeedPosting struct {
	Type               string `json:"@type"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	URL                string `json:"url"`
	HiringOrganization struct {
		Name string `json:"name"`
	} `json:"hiringOrganization"`
	JobLocation struct {
		Address struct {
			AddressLocality string `json:"addressLocality"`
			AddressRegion   string `json:"addressRegion"`
		} `json:"address"`
	} `json:"jobLocation"`
	BaseSalary struct {
		Value struct {
			MinValue *float64 `json:"minValue"`
			MaxValue *float64 `json:"maxValue"`
		} `json:"value"`
	} `json:"baseSalary"`
}

// decodePostings parses a JSON-LD script body, which holds either a single
// object or an array of them, and keeps the JobPosting entries.
func decodePostings(text string) []indeedPosting {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var decoded []indeedPosting
	if strings.HasPrefix(text, "[") {
		if err := json.Unmarshal([]byte(text), &decoded); err != nil {
			return nil
		}
	} else {
		var single indeedPosting
		if err := json.Unmarshal([]byte(text), &single); err != nil {
			return nil
		}
		decoded = append(decoded, single)
	}

	postings := decoded[:0]
	for _, p := range decoded {
		if p.Type == "JobPosting" {
			postings = append(postings, p)
		}
	}
	return postings
}

func (s *Indeed) parsePosting(posting indeedPosting) (model.RawJob, bool) {
	if posting.Title == "" {
		return model.RawJob{}, false
	}

	company := posting.HiringOrganization.Name
	if company == "" {
		company = "Unknown"
	}

	location := posting.JobLocation.Address.AddressLocality
	if location == "" {
		location = posting.JobLocation.Address.AddressRegion
	}
	if location == "" {
		location = "Remote"
	}

	var salaryMin, salaryMax *int
	if v := posting.BaseSalary.Value.MinValue; v != nil {
		n := int(*v)
		salaryMin = &n
	}
	if v := posting.BaseSalary.Value.MaxValue; v != nil {
		n := int(*v)
		salaryMax = &n
	}

	sourceID := ""
	if match := indeedJobKeyRegex.FindStringSubmatch(posting.URL); match != nil {
		sourceID = match[1]
	}
	if sourceID == "" {
		sum := md5.Sum([]byte(posting.Title + company))
		sourceID = hex.EncodeToString(sum[:])[:12]
	}

	jobURL := posting.URL
	if jobURL == "" {
		jobURL = s.baseURL + "/jobs"
	}

	return model.RawJob{
		Source:      s.Name(),
		SourceID:    sourceID,
		Title:       posting.Title,
		Company:     company,
		Description: extractText(posting.Description, 2000),
		Location:    location,
		SalaryMin:   salaryMin,
		SalaryMax:   salaryMax,
		URL:         jobURL,
		Tags:        []string{"remote"},
	}, true
}
