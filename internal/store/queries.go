package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jaume/remotejobs/internal/model"
)

// ErrNotFound is returned by JobByID when no posting has the given id.
var ErrNotFound = errors.New("job not found")

// JobQuery filters a listing. Zero values mean "no filter"; ActiveOnly
// defaults to true via DefaultJobQuery.
type JobQuery struct {
	Category    model.Category
	Source      string
	NoPhoneOnly bool
	HasSalary   bool
	Limit       int
	Offset      int
	ActiveOnly  bool
}

// DefaultJobQuery matches the read API defaults: active postings, newest
// first, 100 per page.
func DefaultJobQuery() JobQuery {
	return JobQuery{Limit: 100, ActiveOnly: true}
}

// Jobs returns postings matching the query, most recently scraped first.
func (s *Store) Jobs(q JobQuery) ([]model.Job, error) {
	query := "SELECT " + jobColumns + " FROM jobs WHERE 1=1"
	var args []any

	if q.ActiveOnly {
		query += " AND is_active = 1"
	}
	if q.Category != "" {
		query += " AND category = ?"
		args = append(args, string(q.Category))
	}
	if q.Source != "" {
		query += " AND source = ?"
		args = append(args, q.Source)
	}
	if q.NoPhoneOnly {
		query += " AND is_no_phone = 1"
	}
	if q.HasSalary {
		query += " AND salary_min IS NOT NULL"
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " ORDER BY scraped_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, q.Offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	return scanJobs(rows)
}

// Search returns active postings whose title, description, or company
// contains the given text, most recently scraped first.
func (s *Store) Search(text string, limit int) ([]model.Job, error) {
	if limit <= 0 {
		limit = 50
	}
	pattern := "%" + text + "%"

	rows, err := s.db.Query(`SELECT `+jobColumns+` FROM jobs
		WHERE is_active = 1
		AND (title LIKE ? OR description LIKE ? OR company LIKE ?)
		ORDER BY scraped_at DESC LIMIT ?`,
		pattern, pattern, pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching jobs for %q: %w", text, err)
	}
	defer rows.Close()

	return scanJobs(rows)
}

// JobByID returns a single posting by canonical id, active or not.
func (s *Store) JobByID(id string) (model.Job, error) {
	rows, err := s.db.Query("SELECT "+jobColumns+" FROM jobs WHERE id = ?", id)
	if err != nil {
		return model.Job{}, fmt.Errorf("loading job %s: %w", id, err)
	}
	defer rows.Close()

	jobs, err := scanJobs(rows)
	if err != nil {
		return model.Job{}, err
	}
	if len(jobs) == 0 {
		return model.Job{}, ErrNotFound
	}
	return jobs[0], nil
}

// Stats are aggregate read projections over active postings.
type Stats struct {
	TotalJobs   int                  `json:"total_jobs"`
	NoPhoneJobs int                  `json:"no_phone_jobs"`
	WithSalary  int                  `json:"with_salary"`
	BySource    map[string]int       `json:"by_source"`
	ByCategory  map[string]int       `json:"by_category"`
	LastScrape  map[string]time.Time `json:"last_scrape"`
}

// Stats computes database-wide aggregates: active totals, per-source and
// per-category counts, and the last scrape time per source.
func (s *Store) Stats() (Stats, error) {
	st := Stats{
		BySource:   make(map[string]int),
		ByCategory: make(map[string]int),
		LastScrape: make(map[string]time.Time),
	}

	counts := []struct {
		query string
		dst   *int
	}{
		{"SELECT COUNT(*) FROM jobs WHERE is_active = 1", &st.TotalJobs},
		{"SELECT COUNT(*) FROM jobs WHERE is_active = 1 AND is_no_phone = 1", &st.NoPhoneJobs},
		{"SELECT COUNT(*) FROM jobs WHERE is_active = 1 AND salary_min IS NOT NULL", &st.WithSalary},
	}
	for _, c := range counts {
		if err := s.db.QueryRow(c.query).Scan(c.dst); err != nil {
			return Stats{}, fmt.Errorf("collecting stats: %w", err)
		}
	}

	if err := s.groupCount("source", st.BySource); err != nil {
		return Stats{}, err
	}
	if err := s.groupCount("category", st.ByCategory); err != nil {
		return Stats{}, err
	}

	rows, err := s.db.Query("SELECT source, MAX(scraped_at) FROM jobs GROUP BY source")
	if err != nil {
		return Stats{}, fmt.Errorf("collecting last scrape times: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var source, last string
		if err := rows.Scan(&source, &last); err != nil {
			return Stats{}, fmt.Errorf("scanning last scrape row: %w", err)
		}
		t, err := parseTime(last)
		if err != nil {
			return Stats{}, fmt.Errorf("parsing last scrape time %q: %w", last, err)
		}
		st.LastScrape[source] = t
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("iterating last scrape rows: %w", err)
	}

	return st, nil
}

func (s *Store) groupCount(column string, dst map[string]int) error {
	// column is one of two fixed identifiers, never user input.
	rows, err := s.db.Query(
		"SELECT " + column + ", COUNT(*) FROM jobs WHERE is_active = 1 GROUP BY " + column,
	)
	if err != nil {
		return fmt.Errorf("counting jobs by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("scanning %s count: %w", column, err)
		}
		dst[key] = count
	}
	return rows.Err()
}

const jobColumns = `id, source, source_id, title, company, company_logo,
	description, location, salary_min, salary_max, salary_currency, url,
	apply_url, tags, category, is_no_phone, posted_at, scraped_at,
	updated_at, is_active`

func scanJobs(rows *sql.Rows) ([]model.Job, error) {
	var jobs []model.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating job rows: %w", err)
	}
	return jobs, nil
}

func scanJob(rows *sql.Rows) (model.Job, error) {
	var job model.Job
	var salaryMin, salaryMax sql.NullInt64
	var tags, category string
	var noPhone, active int
	var postedAt sql.NullString
	var scrapedAt, updated string

	err := rows.Scan(
		&job.ID, &job.Source, &job.SourceID, &job.Title, &job.Company,
		&job.CompanyLogo, &job.Description, &job.Location,
		&salaryMin, &salaryMax, &job.SalaryCurrency, &job.URL, &job.ApplyURL,
		&tags, &category, &noPhone, &postedAt, &scrapedAt, &updated, &active,
	)
	if err != nil {
		return model.Job{}, fmt.Errorf("scanning job row: %w", err)
	}

	if salaryMin.Valid {
		v := int(salaryMin.Int64)
		job.SalaryMin = &v
	}
	if salaryMax.Valid {
		v := int(salaryMax.Int64)
		job.SalaryMax = &v
	}
	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &job.Tags); err != nil {
			return model.Job{}, fmt.Errorf("decoding tags for %s: %w", job.ID, err)
		}
	}
	job.Category = model.Category(category)
	job.IsNoPhone = noPhone != 0
	job.IsActive = active != 0

	if postedAt.Valid && postedAt.String != "" {
		t, err := parseTime(postedAt.String)
		if err != nil {
			return model.Job{}, fmt.Errorf("parsing posted_at for %s: %w", job.ID, err)
		}
		job.PostedAt = &t
	}
	if job.ScrapedAt, err = parseTime(scrapedAt); err != nil {
		return model.Job{}, fmt.Errorf("parsing scraped_at for %s: %w", job.ID, err)
	}
	if job.UpdatedAt, err = parseTime(updated); err != nil {
		return model.Job{}, fmt.Errorf("parsing updated_at for %s: %w", job.ID, err)
	}

	return job, nil
}
