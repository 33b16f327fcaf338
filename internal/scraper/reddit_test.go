package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func redditListingJSON(posts ...string) string {
	var children []string
	for _, p := range posts {
		children = append(children, fmt.Sprintf(`{"kind": "t3", "data": %s}`, p))
	}
	return fmt.Sprintf(`{"kind": "Listing", "data": {"children": [%s]}}`, strings.Join(children, ","))
}

func TestReddit_Scrape(t *testing.T) {
	hiringPost := `{
		"id": "abc123",
		"title": "[Hiring] Acme - Customer Support Rep, $18-$22/hr",
		"selftext": "We are hiring a support rep. Email support only, no phone calls.",
		"permalink": "/r/remotejobs/comments/abc123/hiring/",
		"created_utc": 1756000000,
		"link_flair_text": "Hiring"
	}`
	seekingPost := `{
		"id": "def456",
		"title": "[For Hire] Developer seeking remote work",
		"selftext": "Available for hire, $30/hr."
	}`
	chatterPost := `{
		"id": "ghi789",
		"title": "How do you all stay focused working remotely?",
		"selftext": "Just curious."
	}`

	var requests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/r/remotejobs/hot.json" {
			w.Write([]byte(redditListingJSON(hiringPost, seekingPost, chatterPost)))
			return
		}
		// Duplicate of the hiring post shows up under new as well.
		if r.URL.Path == "/r/remotejobs/new.json" {
			w.Write([]byte(redditListingJSON(hiringPost)))
			return
		}
		w.Write([]byte(redditListingJSON()))
	}))
	defer srv.Close()

	s := NewReddit(srv.Client())
	s.baseURL = srv.URL
	s.pause = 0

	jobs, err := s.Scrape(context.Background())
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("got %d jobs, want 1 (seeking and chatter posts filtered, duplicate collapsed)", len(jobs))
	}

	job := jobs[0]
	if job.Source != "reddit" || job.SourceID != "abc123" {
		t.Errorf("identity = %s/%s, want reddit/abc123", job.Source, job.SourceID)
	}
	if job.Company != "Acme" {
		t.Errorf("Company = %q, want Acme", job.Company)
	}
	if strings.Contains(job.Title, "[Hiring]") || strings.Contains(job.Title, "Acme") || strings.Contains(job.Title, "$") {
		t.Errorf("Title = %q, want markers, company, and salary stripped", job.Title)
	}
	if !strings.Contains(job.SalaryText, "18") {
		t.Errorf("SalaryText = %q, want hourly range captured", job.SalaryText)
	}
	if job.URL != srv.URL+"/r/remotejobs/comments/abc123/hiring/" {
		t.Errorf("URL = %q, want permalink-based URL", job.URL)
	}
	if len(job.Tags) != 2 || job.Tags[0] != "r/remotejobs" || job.Tags[1] != "Hiring" {
		t.Errorf("Tags = %v, want subreddit and flair", job.Tags)
	}
	if job.PostedAt == nil {
		t.Error("PostedAt = nil, want created_utc timestamp")
	}

	// hot and new for each of the three subreddits
	if len(requests) != 6 {
		t.Errorf("made %d requests, want 6", len(requests))
	}
}

func TestCleanRedditTitle(t *testing.T) {
	cases := []struct {
		name  string
		title string
		want  string
	}{
		{
			name:  "strips marker company and salary",
			title: "[Hiring] Acme - Customer Support Rep, $18-$22/hr",
			want:  "Customer Support Rep,",
		},
		{
			name:  "keeps raw title when stripping leaves almost nothing",
			title: "[Hiring] Acme - VA",
			want:  "[Hiring] Acme - VA",
		},
		{
			name:  "plain title passes through",
			title: "Remote Content Writer",
			want:  "Remote Content Writer",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := cleanRedditTitle(tc.title); got != tc.want {
				t.Errorf("cleanRedditTitle(%q) = %q, want %q", tc.title, got, tc.want)
			}
		})
	}
}

func TestReddit_SubredditFailureIsIsolated(t *testing.T) {
	hiringPost := `{
		"id": "zzz111",
		"title": "[Hiring] Globex is hiring a data entry clerk",
		"selftext": "Remote position, $15 per hour.",
		"permalink": "/r/WorkOnline/comments/zzz111/hiring/"
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/r/forhire/") {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		if strings.HasPrefix(r.URL.Path, "/r/WorkOnline/") {
			w.Write([]byte(redditListingJSON(hiringPost)))
			return
		}
		w.Write([]byte(redditListingJSON()))
	}))
	defer srv.Close()

	s := NewReddit(srv.Client())
	s.baseURL = srv.URL
	s.pause = 0

	jobs, err := s.Scrape(context.Background())
	if err != nil {
		t.Fatalf("Scrape should tolerate one subreddit failing, got %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("got %d jobs, want 1 from the surviving subreddit", len(jobs))
	}
	if jobs[0].Company != "Globex" {
		t.Errorf("Company = %q, want Globex from 'is hiring' pattern", jobs[0].Company)
	}
}

func TestReddit_CancelledContextStopsScrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(redditListingJSON()))
	}))
	defer srv.Close()

	s := NewReddit(srv.Client())
	s.baseURL = srv.URL

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Scrape(ctx); err == nil {
		t.Fatal("Scrape succeeded with cancelled context")
	}
}
