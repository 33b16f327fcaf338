package model

import (
	"context"
	"time"
)

// RawJob is what a source scraper hands the pipeline: unvalidated posting
// data in a source-independent shape. Nothing in here is persisted directly.
type RawJob struct {
	Source      string     // stable source name ("remoteok", ...)
	SourceID    string     // source-local identifier, stable across observations
	Title       string     // job title
	Company     string     // company name
	CompanyLogo string     // logo URL
	Description string     // free-text description, may carry HTML remnants
	Location    string     // location string
	SalaryMin   *int       // structured salary hint, nil if the source has none
	SalaryMax   *int       // structured salary hint
	SalaryText  string     // free-text salary hint ("$20/hr", "80k-100k")
	URL         string     // posting URL
	ApplyURL    string     // separate apply link, if any
	Tags        []string   // source-reported labels, order preserved
	PostedAt    *time.Time // nullable (not all sources provide this)
}

// Category is one of the fixed job categories assigned by the classifier.
type Category string

const (
	CategorySupport    Category = "support"
	CategoryModeration Category = "moderation"
	CategoryDataEntry  Category = "data-entry"
	CategoryVA         Category = "va"
	CategoryDev        Category = "dev"
	CategoryDesign     Category = "design"
	CategoryMarketing  Category = "marketing"
	CategorySales      Category = "sales"
	CategoryWriting    Category = "writing"
	CategoryHR         Category = "hr"
	CategoryOther      Category = "other"
)

// Categories lists every valid category, in display order.
func Categories() []Category {
	return []Category{
		CategorySupport, CategoryModeration, CategoryDataEntry, CategoryVA,
		CategoryDev, CategoryDesign, CategoryMarketing, CategorySales,
		CategoryWriting, CategoryHR, CategoryOther,
	}
}

// Job is the canonical posting the pipeline produces and the store persists.
// ID is derived from (Source, SourceID) only, so re-observing a posting maps
// to the same record no matter which other fields changed.
type Job struct {
	ID             string     `json:"id"`
	Source         string     `json:"source"`
	SourceID       string     `json:"source_id"`
	Title          string     `json:"title"`
	Company        string     `json:"company"`
	CompanyLogo    string     `json:"company_logo,omitempty"`
	Description    string     `json:"description,omitempty"`
	Location       string     `json:"location,omitempty"`
	SalaryMin      *int       `json:"salary_min,omitempty"`
	SalaryMax      *int       `json:"salary_max,omitempty"`
	SalaryCurrency string     `json:"salary_currency"`
	URL            string     `json:"url"`
	ApplyURL       string     `json:"apply_url,omitempty"`
	Tags           []string   `json:"tags"`
	Category       Category   `json:"category"`
	IsNoPhone      bool       `json:"is_no_phone"`
	PostedAt       *time.Time `json:"posted_at,omitempty"`
	ScrapedAt      time.Time  `json:"scraped_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	IsActive       bool       `json:"is_active"`
}

// RunStatus is the lifecycle state of a scrape run record.
type RunStatus string

const (
	RunRunning RunStatus = "running"
	RunSuccess RunStatus = "success"
	RunError   RunStatus = "error"
)

// ScrapeRun is one orchestrator pass over a single source.
type ScrapeRun struct {
	ID         int64      `json:"id"`
	Source     string     `json:"source"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Found      int        `json:"jobs_found"`
	New        int        `json:"jobs_new"`
	Updated    int        `json:"jobs_updated"`
	Status     RunStatus  `json:"status"`
	Error      string     `json:"error,omitempty"`
}

// Scraper produces the current finite set of raw postings for one source.
// A call may fail wholesale (network or structural parse error); individually
// unparseable items are dropped by the implementation rather than reported.
type Scraper interface {
	Name() string
	Scrape(ctx context.Context) ([]RawJob, error)
}

// JobStore is the write-side contract the ingestion pipeline relies on.
type JobStore interface {
	Upsert(job Job) (isNew, isUpdated bool, err error)
	StartRun(source string) (int64, error)
	FinishRun(runID int64, found, newJobs, updated int, status RunStatus, errMsg string) error
}
