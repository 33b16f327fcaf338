package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jaume/remotejobs/internal/model"
)

func TestRemoteOK_Scrape(t *testing.T) {
	payload := `[
		{"last_updated": 1700000000, "legal": "API terms: link back to RemoteOK."},
		{
			"id": 112233,
			"slug": "acme-support-rep",
			"position": "Customer Support Representative",
			"company": "Acme",
			"company_logo": "https://remoteok.com/assets/acme.png",
			"description": "<p>Help customers via <b>email</b>.</p><br>No calls.",
			"location": "Worldwide",
			"salary_min": 40000,
			"salary_max": 60000,
			"url": "https://remoteok.com/remote-jobs/112233",
			"apply_url": "https://acme.example/apply",
			"tags": ["support", "non tech"],
			"date": "2026-08-20T10:00:00+00:00"
		},
		{
			"id": "445566",
			"slug": "globex-dev",
			"position": "Backend Engineer",
			"company": "Globex",
			"logo": "https://remoteok.com/assets/globex.png",
			"salary_min": 0,
			"salary_max": 0,
			"tags": ["golang"]
		},
		{"id": 778899, "position": ""}
	]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); ua != userAgent {
			t.Errorf("User-Agent = %q, want %q", ua, userAgent)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	s := NewRemoteOK(srv.Client())
	s.baseURL = srv.URL

	jobs, err := s.Scrape(context.Background())
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("got %d jobs, want 2 (legal notice and empty position skipped)", len(jobs))
	}

	first := jobs[0]
	if first.SourceID != "112233" || first.Source != "remoteok" {
		t.Errorf("identity = %s/%s, want remoteok/112233", first.Source, first.SourceID)
	}
	if first.Description != "Help customers via email.\n\nNo calls." {
		t.Errorf("description = %q, want cleaned plain text", first.Description)
	}
	if first.SalaryMin == nil || *first.SalaryMin != 40000 || first.SalaryMax == nil || *first.SalaryMax != 60000 {
		t.Errorf("salary = %v-%v, want 40000-60000", first.SalaryMin, first.SalaryMax)
	}
	if first.PostedAt == nil {
		t.Error("PostedAt = nil, want parsed date")
	}

	second := jobs[1]
	if second.SourceID != "445566" {
		t.Errorf("string ids should decode, got %q", second.SourceID)
	}
	if second.SalaryMin != nil || second.SalaryMax != nil {
		t.Errorf("zero salaries should map to nil, got %v-%v", second.SalaryMin, second.SalaryMax)
	}
	if second.CompanyLogo != "https://remoteok.com/assets/globex.png" {
		t.Errorf("logo fallback not applied, got %q", second.CompanyLogo)
	}
	if second.URL != srv.URL+"/remote-jobs/globex-dev" {
		t.Errorf("URL = %q, want slug-derived listing URL", second.URL)
	}
}

func TestRemoteOK_HTTPErrorCarriesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewRemoteOK(srv.Client())
	s.baseURL = srv.URL

	_, err := s.Scrape(context.Background())
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error %v is not *model.HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", httpErr.StatusCode)
	}
	if httpErr.RetryAfter.Seconds() != 30 {
		t.Errorf("RetryAfter = %v, want 30s", httpErr.RetryAfter)
	}
}
