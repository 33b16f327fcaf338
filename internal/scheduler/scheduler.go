// Package scheduler owns the daemon loop: ticks on an interval and triggers
// a full ingestion run each time.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/jaume/remotejobs/internal/ingest"
)

// Scheduler runs the ingestion pipeline on a fixed interval.
type Scheduler struct {
	runner   *ingest.Runner
	interval time.Duration
	logger   *slog.Logger
}

// New creates a scheduler that ingests all sources at the given interval.
func New(runner *ingest.Runner, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		logger:   logger,
	}
}

// Run starts the loop. It runs one immediate ingestion pass, then ticks on
// the configured interval. It returns nil when ctx is cancelled (graceful
// shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler", "interval", s.interval.String())

	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-time.After(s.interval):
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	reports := s.runner.Run(ctx)

	var found, newJobs, updated, failed int
	for _, rep := range reports {
		if rep.Err != nil {
			failed++
			continue
		}
		found += rep.Found
		newJobs += rep.New
		updated += rep.Updated
	}

	s.logger.Info("ingestion pass complete",
		"sources", len(reports),
		"failed", failed,
		"found", found,
		"new", newJobs,
		"updated", updated,
	)
}
