package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jaume/remotejobs/internal/model"
)

// ErrRunFinished is returned when finalizing a run that is not in the
// running state. Every run is finalized exactly once.
var ErrRunFinished = errors.New("scrape run already finalized")

// StartRun creates a scrape-run record in the running state and returns its
// identifier.
func (s *Store) StartRun(source string) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO scrape_runs (source, started_at, status) VALUES (?, ?, ?)",
		source, fmtTime(s.now()), string(model.RunRunning),
	)
	if err != nil {
		return 0, fmt.Errorf("starting run for %s: %w", source, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("starting run for %s: %w", source, err)
	}
	return id, nil
}

// FinishRun finalizes a running scrape-run record with its counters and
// outcome. Finalizing a run that is not running returns ErrRunFinished.
func (s *Store) FinishRun(runID int64, found, newJobs, updated int, status model.RunStatus, errMsg string) error {
	res, err := s.db.Exec(`UPDATE scrape_runs SET
		finished_at = ?, jobs_found = ?, jobs_new = ?, jobs_updated = ?,
		status = ?, error = ?
	WHERE id = ? AND status = ?`,
		fmtTime(s.now()), found, newJobs, updated,
		string(status), errMsg, runID, string(model.RunRunning),
	)
	if err != nil {
		return fmt.Errorf("finishing run %d: %w", runID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finishing run %d: %w", runID, err)
	}
	if n == 0 {
		return fmt.Errorf("finishing run %d: %w", runID, ErrRunFinished)
	}
	return nil
}

// Runs returns the most recent scrape runs, newest first.
func (s *Store) Runs(limit int) ([]model.ScrapeRun, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`SELECT id, source, started_at, finished_at,
		jobs_found, jobs_new, jobs_updated, status, error
	FROM scrape_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []model.ScrapeRun
	for rows.Next() {
		var run model.ScrapeRun
		var startedAt string
		var finishedAt, errMsg sql.NullString
		var status string

		err := rows.Scan(&run.ID, &run.Source, &startedAt, &finishedAt,
			&run.Found, &run.New, &run.Updated, &status, &errMsg)
		if err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}

		if run.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, fmt.Errorf("parsing started_at for run %d: %w", run.ID, err)
		}
		if finishedAt.Valid && finishedAt.String != "" {
			t, err := parseTime(finishedAt.String)
			if err != nil {
				return nil, fmt.Errorf("parsing finished_at for run %d: %w", run.ID, err)
			}
			run.FinishedAt = &t
		}
		run.Status = model.RunStatus(status)
		run.Error = errMsg.String

		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run rows: %w", err)
	}
	return runs, nil
}
