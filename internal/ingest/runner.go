// Package ingest drives one aggregation run: for each configured source it
// pulls raw records, canonicalizes and classifies them, upserts the results,
// and records a scrape-run outcome. A source's total failure never aborts
// the run for the other sources.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jaume/remotejobs/internal/canonical"
	"github.com/jaume/remotejobs/internal/model"
)

// Report is the per-source outcome of a run: either counters or an error.
type Report struct {
	Source  string
	Found   int
	New     int
	Updated int
	Err     error
}

// Runner orchestrates one ingestion pass across all configured sources,
// sequentially and in registration order.
type Runner struct {
	scrapers     []model.Scraper
	store        model.JobStore
	fetchTimeout time.Duration
	pause        time.Duration // polite gap between sources
	logger       *slog.Logger
	now          func() time.Time
}

// NewRunner creates a runner wired with its sources and store. fetchTimeout
// bounds each source's acquisition call; zero disables the bound.
func NewRunner(scrapers []model.Scraper, store model.JobStore, fetchTimeout time.Duration, logger *slog.Logger) *Runner {
	return &Runner{
		scrapers:     scrapers,
		store:        store,
		fetchTimeout: fetchTimeout,
		pause:        1 * time.Second,
		logger:       logger,
		now:          time.Now,
	}
}

// Run processes every source once and returns one report per source, in
// source order. Source failures are isolated: they appear in the report and
// in the run log, and processing continues.
func (r *Runner) Run(ctx context.Context) []Report {
	reports := make([]Report, 0, len(r.scrapers))

	for i, sc := range r.scrapers {
		if ctx.Err() != nil {
			break
		}

		rep := r.runSource(ctx, sc)
		reports = append(reports, rep)

		if rep.Err != nil {
			r.logger.Error("source failed",
				"source", rep.Source,
				"error", rep.Err,
			)
		} else {
			r.logger.Info("source ingested",
				"source", rep.Source,
				"found", rep.Found,
				"new", rep.New,
				"updated", rep.Updated,
			)
		}

		// Small pause between sources to be polite, except after the last one.
		if i < len(r.scrapers)-1 {
			select {
			case <-ctx.Done():
				return reports
			case <-time.After(r.pause):
			}
		}
	}

	return reports
}

// runSource ingests a single source end to end. Whatever happens after
// StartRun succeeds, the run record is finalized exactly once.
func (r *Runner) runSource(ctx context.Context, sc model.Scraper) Report {
	source := sc.Name()

	runID, err := r.store.StartRun(source)
	if err != nil {
		return Report{Source: source, Err: fmt.Errorf("starting run for %s: %w", source, err)}
	}

	found, newJobs, updated, err := r.ingest(ctx, sc)
	if err != nil {
		if finErr := r.store.FinishRun(runID, 0, 0, 0, model.RunError, err.Error()); finErr != nil {
			err = errors.Join(err, fmt.Errorf("finalizing failed run: %w", finErr))
		}
		return Report{Source: source, Err: err}
	}

	if err := r.store.FinishRun(runID, found, newJobs, updated, model.RunSuccess, ""); err != nil {
		return Report{Source: source, Err: fmt.Errorf("finalizing run for %s: %w", source, err)}
	}

	return Report{Source: source, Found: found, New: newJobs, Updated: updated}
}

// ingest fetches and upserts one source's records. Record-level rejects are
// skipped; fetch and storage errors are source-level and propagate.
func (r *Runner) ingest(ctx context.Context, sc model.Scraper) (found, newJobs, updated int, err error) {
	fetchCtx := ctx
	if r.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, r.fetchTimeout)
		defer cancel()
	}

	raws, err := sc.Scrape(fetchCtx)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("scraping %s: %w", sc.Name(), err)
	}

	// Scoped to this source's single run: overlapping result pages may hand
	// us the same posting twice.
	seen := make(map[string]bool, len(raws))

	for _, raw := range raws {
		job, err := canonical.Job(raw, r.now())
		if err != nil {
			r.logger.Debug("dropping raw record",
				"source", sc.Name(),
				"source_id", raw.SourceID,
				"reason", err,
			)
			continue
		}

		if seen[job.SourceID] {
			continue
		}
		seen[job.SourceID] = true

		isNew, isUpdated, err := r.store.Upsert(job)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("storing %s: %w", job.ID, err)
		}

		found++
		if isNew {
			newJobs++
		} else if isUpdated {
			updated++
		}
	}

	return found, newJobs, updated, nil
}
