package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jaume/remotejobs/internal/model"
)

const remoteOKBaseURL = "https://remoteok.com"

const maxDescriptionLen = 5000

// flexID accepts both the numeric and string job ids the API returns.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*f = flexID(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*f = flexID(s)
	return nil
}

// remoteOKJob represents a single entry in the RemoteOK API response.
type remoteOKJob struct {
	ID          flexID   `json:"id"`
	Slug        string   `json:"slug"`
	Position    string   `json:"position"`
	Company     string   `json:"company"`
	CompanyLogo string   `json:"company_logo"`
	Logo        string   `json:"logo"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	SalaryMin   int      `json:"salary_min"`
	SalaryMax   int      `json:"salary_max"`
	URL         string   `json:"url"`
	ApplyURL    string   `json:"apply_url"`
	Tags        []string `json:"tags"`
	Date        string   `json:"date"`
}

// RemoteOK fetches jobs from the RemoteOK public JSON API.
//
// API terms require linking back to RemoteOK as the source; the stored
// job URL always points at the original listing.
type RemoteOK struct {
	client  *http.Client
	baseURL string
}

// NewRemoteOK creates a RemoteOK scraper using the given HTTP client.
func NewRemoteOK(client *http.Client) *RemoteOK {
	return &RemoteOK{client: client, baseURL: remoteOKBaseURL}
}

func (s *RemoteOK) Name() string { return "remoteok" }

// Scrape fetches the full API feed and normalizes each listing. The first
// element of the feed is a legal notice, not a job, and is skipped along
// with any entry that fails to decode.
func (s *RemoteOK) Scrape(ctx context.Context) ([]model.RawJob, error) {
	body, err := get(ctx, s.client, s.baseURL+"/api")
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("remoteok: decode feed: %w", err)
	}
	if len(items) > 0 {
		items = items[1:]
	}

	jobs := make([]model.RawJob, 0, len(items))
	for _, item := range items {
		var entry remoteOKJob
		if err := json.Unmarshal(item, &entry); err != nil {
			continue
		}
		if raw, ok := s.parseJob(entry); ok {
			jobs = append(jobs, raw)
		}
	}
	return jobs, nil
}

func (s *RemoteOK) parseJob(entry remoteOKJob) (model.RawJob, bool) {
	if entry.ID == "" || entry.Position == "" {
		return model.RawJob{}, false
	}

	raw := model.RawJob{
		Source:      s.Name(),
		SourceID:    string(entry.ID),
		Title:       entry.Position,
		Company:     entry.Company,
		CompanyLogo: entry.CompanyLogo,
		Description: extractText(entry.Description, maxDescriptionLen),
		Location:    entry.Location,
		URL:         entry.URL,
		ApplyURL:    entry.ApplyURL,
		Tags:        entry.Tags,
	}
	if raw.CompanyLogo == "" {
		raw.CompanyLogo = entry.Logo
	}
	if raw.URL == "" && entry.Slug != "" {
		raw.URL = fmt.Sprintf("%s/remote-jobs/%s", s.baseURL, entry.Slug)
	}

	// The API sometimes reports 0 for unknown salaries.
	if entry.SalaryMin > 0 {
		v := entry.SalaryMin
		raw.SalaryMin = &v
	}
	if entry.SalaryMax > 0 {
		v := entry.SalaryMax
		raw.SalaryMax = &v
	}

	if entry.Date != "" {
		if t, err := parseRemoteOKDate(entry.Date); err == nil {
			raw.PostedAt = &t
		}
	}
	return raw, true
}

func parseRemoteOKDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", value)
}
