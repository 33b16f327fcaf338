// Package store persists canonical jobs and scrape-run records in SQLite and
// exposes the upsert/query contract the ingestion pipeline and read surfaces
// rely on.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jaume/remotejobs/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id              TEXT PRIMARY KEY,
	source          TEXT NOT NULL,
	source_id       TEXT NOT NULL,
	title           TEXT NOT NULL,
	company         TEXT,
	company_logo    TEXT,
	description     TEXT,
	location        TEXT,
	salary_min      INTEGER,
	salary_max      INTEGER,
	salary_currency TEXT DEFAULT 'USD',
	url             TEXT NOT NULL,
	apply_url       TEXT,
	tags            TEXT,
	category        TEXT,
	is_no_phone     INTEGER DEFAULT 0,
	posted_at       TEXT,
	scraped_at      TEXT NOT NULL,
	updated_at      TEXT NOT NULL,
	is_active       INTEGER DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_jobs_category ON jobs(category);
CREATE INDEX IF NOT EXISTS idx_jobs_source ON jobs(source);
CREATE INDEX IF NOT EXISTS idx_jobs_no_phone ON jobs(is_no_phone);
CREATE INDEX IF NOT EXISTS idx_jobs_active ON jobs(is_active);
CREATE INDEX IF NOT EXISTS idx_jobs_scraped ON jobs(scraped_at);

CREATE TABLE IF NOT EXISTS scrape_runs (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	source       TEXT NOT NULL,
	started_at   TEXT NOT NULL,
	finished_at  TEXT,
	jobs_found   INTEGER DEFAULT 0,
	jobs_new     INTEGER DEFAULT 0,
	jobs_updated INTEGER DEFAULT 0,
	status       TEXT DEFAULT 'running',
	error        TEXT
);`

// Store is the durable keyed collection of jobs plus the scrape-run log.
type Store struct {
	db  *sql.DB
	now func() time.Time // injectable clock for tests
}

// Open opens (or creates) the SQLite database at dbPath, creating parent
// directories as needed, and ensures the schema exists.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// One writer keeps upsert and run-log writes serialized.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Upsert inserts a new job or overwrites the mutable fields of an existing
// one. It reports (isNew, isUpdated); isUpdated is true only when title,
// salary_min, or salary_max differ from the stored values. Description,
// location, tag, and category changes persist but do not count as updates.
// Idempotent: upserting byte-identical input twice yields (false, false).
func (s *Store) Upsert(job model.Job) (bool, bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, false, fmt.Errorf("upsert %s: begin: %w", job.ID, err)
	}
	defer tx.Rollback()

	var (
		prevTitle string
		prevMin   sql.NullInt64
		prevMax   sql.NullInt64
	)
	err = tx.QueryRow(
		"SELECT title, salary_min, salary_max FROM jobs WHERE id = ?", job.ID,
	).Scan(&prevTitle, &prevMin, &prevMax)

	now := s.now().UTC()

	switch {
	case err == sql.ErrNoRows:
		if err := s.insertJob(tx, job, now); err != nil {
			return false, false, fmt.Errorf("upsert %s: %w", job.ID, err)
		}
		if err := tx.Commit(); err != nil {
			return false, false, fmt.Errorf("upsert %s: commit: %w", job.ID, err)
		}
		return true, false, nil

	case err != nil:
		return false, false, fmt.Errorf("upsert %s: lookup: %w", job.ID, err)
	}

	if err := s.updateJob(tx, job, now); err != nil {
		return false, false, fmt.Errorf("upsert %s: %w", job.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return false, false, fmt.Errorf("upsert %s: commit: %w", job.ID, err)
	}

	changed := prevTitle != job.Title ||
		!nullIntEqual(prevMin, job.SalaryMin) ||
		!nullIntEqual(prevMax, job.SalaryMax)
	return false, changed, nil
}

func (s *Store) insertJob(tx *sql.Tx, job model.Job, now time.Time) error {
	tags, err := marshalTags(job.Tags)
	if err != nil {
		return err
	}

	scrapedAt := job.ScrapedAt
	if scrapedAt.IsZero() {
		scrapedAt = now
	}

	_, err = tx.Exec(`INSERT INTO jobs (
		id, source, source_id, title, company, company_logo, description,
		location, salary_min, salary_max, salary_currency, url, apply_url,
		tags, category, is_no_phone, posted_at, scraped_at, updated_at, is_active
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		job.ID, job.Source, job.SourceID, job.Title, job.Company,
		job.CompanyLogo, job.Description, job.Location,
		nullInt(job.SalaryMin), nullInt(job.SalaryMax), job.SalaryCurrency,
		job.URL, job.ApplyURL, tags, string(job.Category),
		boolInt(job.IsNoPhone), nullTime(job.PostedAt),
		fmtTime(scrapedAt), fmtTime(now),
	)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}

func (s *Store) updateJob(tx *sql.Tx, job model.Job, now time.Time) error {
	tags, err := marshalTags(job.Tags)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`UPDATE jobs SET
		title = ?, company = ?, company_logo = ?, description = ?,
		location = ?, salary_min = ?, salary_max = ?, url = ?, apply_url = ?,
		tags = ?, category = ?, is_no_phone = ?, updated_at = ?, is_active = 1
	WHERE id = ?`,
		job.Title, job.Company, job.CompanyLogo, job.Description,
		job.Location, nullInt(job.SalaryMin), nullInt(job.SalaryMax),
		job.URL, job.ApplyURL, tags, string(job.Category),
		boolInt(job.IsNoPhone), fmtTime(now), job.ID,
	)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// --- column codecs ---

const timeLayout = time.RFC3339

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return fmtTime(*t)
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullIntEqual(stored sql.NullInt64, v *int) bool {
	if !stored.Valid {
		return v == nil
	}
	return v != nil && stored.Int64 == int64(*v)
}

func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("marshal tags: %w", err)
	}
	return string(b), nil
}
