package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const indeedCardsPage = `<html><body>
<div class="job_seen_beacon">
  <h2 class="jobTitle"><a data-jk="a1b2c3d4e5f6"><span>Customer Support Representative</span></a></h2>
  <span class="companyName">Acme</span>
  <div class="companyLocation">Remote in United States</div>
  <div class="salary-snippet">$18 - $22 an hour</div>
  <div class="job-snippet">Answer customer emails and chats.</div>
</div>
<div class="job_seen_beacon">
  <h2 class="jobTitle"><a href="/rc/clk?jk=0f9e8d7c6b5a&fccid=x"><span>Data Entry Clerk</span></a></h2>
</div>
<div class="job_seen_beacon">
  <h2 class="jobTitle"><a><span>No identifier here</span></a></h2>
</div>
<script type="application/ld+json">
{"@type":"JobPosting","title":"Content Moderator","description":"<p>Review posts.</p>",
 "hiringOrganization":{"name":"Globex"},
 "jobLocation":{"address":{"addressLocality":"Austin"}},
 "baseSalary":{"value":{"minValue":40000,"maxValue":50000}},
 "url":"https://www.indeed.com/viewjob?jk=123abc456def"}
</script>
</body></html>`

func TestIndeed_Scrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jobs" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("User-Agent"); !strings.Contains(got, "Mozilla") {
			t.Errorf("User-Agent = %q, want a browser string", got)
		}
		if got := r.URL.Query().Get("remotejob"); got != indeedRemoteToken {
			t.Errorf("remotejob = %q, want the remote filter token", got)
		}
		w.Write([]byte(indeedCardsPage))
	}))
	defer srv.Close()

	s := NewIndeed(srv.Client())
	s.baseURL = srv.URL
	s.pause = 0

	jobs, err := s.Scrape(context.Background())
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	// Three parseable jobs per page, deduplicated across all five queries.
	if len(jobs) != 3 {
		t.Fatalf("got %d jobs, want 3", len(jobs))
	}

	support := jobs[0]
	if support.SourceID != "a1b2c3d4e5f6" {
		t.Errorf("SourceID = %q, want data-jk value", support.SourceID)
	}
	if support.Title != "Customer Support Representative" || support.Company != "Acme" {
		t.Errorf("title/company = %q/%q", support.Title, support.Company)
	}
	if support.Location != "Remote in United States" {
		t.Errorf("Location = %q", support.Location)
	}
	if support.SalaryText != "$18 - $22 an hour" {
		t.Errorf("SalaryText = %q", support.SalaryText)
	}
	if support.URL != srv.URL+"/viewjob?jk=a1b2c3d4e5f6" {
		t.Errorf("URL = %q, want viewjob link", support.URL)
	}
	if len(support.Tags) != 1 || support.Tags[0] != "remote" {
		t.Errorf("Tags = %v, want [remote]", support.Tags)
	}

	clerk := jobs[1]
	if clerk.SourceID != "0f9e8d7c6b5a" {
		t.Errorf("SourceID = %q, want jk extracted from href", clerk.SourceID)
	}
	if clerk.Company != "Unknown" || clerk.Location != "Remote" {
		t.Errorf("company/location defaults = %q/%q", clerk.Company, clerk.Location)
	}

	moderator := jobs[2]
	if moderator.SourceID != "123abc456def" {
		t.Errorf("SourceID = %q, want jk from JSON-LD URL", moderator.SourceID)
	}
	if moderator.Company != "Globex" || moderator.Location != "Austin" {
		t.Errorf("company/location = %q/%q", moderator.Company, moderator.Location)
	}
	if moderator.Description != "Review posts." {
		t.Errorf("Description = %q, want stripped HTML", moderator.Description)
	}
	if moderator.SalaryMin == nil || *moderator.SalaryMin != 40000 {
		t.Errorf("SalaryMin = %v, want 40000", moderator.SalaryMin)
	}
	if moderator.SalaryMax == nil || *moderator.SalaryMax != 50000 {
		t.Errorf("SalaryMax = %v, want 50000", moderator.SalaryMax)
	}
}

func TestIndeed_PostingFallbackID(t *testing.T) {
	s := NewIndeed(nil)
	job, ok := s.parsePosting(indeedPosting{Type: "JobPosting", Title: "Chat Agent"})
	if !ok {
		t.Fatal("posting without a URL should still parse")
	}
	// Without a jk in the URL the ID is derived from title and company.
	if len(job.SourceID) != 12 {
		t.Errorf("SourceID = %q, want a 12-char derived id", job.SourceID)
	}
	if job.Company != "Unknown" || job.Location != "Remote" {
		t.Errorf("company/location defaults = %q/%q", job.Company, job.Location)
	}
	if job.URL != indeedBaseURL+"/jobs" {
		t.Errorf("URL = %q, want search page fallback", job.URL)
	}
}

func TestIndeed_StopsAfterShortPage(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(indeedCardsPage))
	}))
	defer srv.Close()

	s := NewIndeed(srv.Client())
	s.baseURL = srv.URL
	s.pause = 0

	if _, err := s.Scrape(context.Background()); err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	// A page with fewer than ten results ends that query's pagination.
	if requests != len(indeedSearches) {
		t.Errorf("requests = %d, want one per query", requests)
	}
}

func TestIndeed_QueryFailureIsIsolated(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			http.Error(w, "blocked", http.StatusForbidden)
			return
		}
		w.Write([]byte(indeedCardsPage))
	}))
	defer srv.Close()

	s := NewIndeed(srv.Client())
	s.baseURL = srv.URL
	s.pause = 0

	jobs, err := s.Scrape(context.Background())
	if err != nil {
		t.Fatalf("Scrape should tolerate one query failing, got %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("got %d jobs, want 3 from the surviving queries", len(jobs))
	}
}

func TestIndeed_AllQueriesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	s := NewIndeed(srv.Client())
	s.baseURL = srv.URL
	s.pause = 0

	if _, err := s.Scrape(context.Background()); err == nil {
		t.Fatal("Scrape succeeded with every query failing")
	}
}
