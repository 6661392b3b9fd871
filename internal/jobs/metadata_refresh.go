package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/SAP-F-2025/cinema-service/internal/services"
)

// Refresher re-reads third-party metadata for stored movies.
type Refresher interface {
	RefreshMovies(ctx context.Context) (int, error)
}

// Scheduler runs background jobs on cron specs.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration
}

func NewScheduler(logger *slog.Logger, timeout time.Duration) *Scheduler {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger))),
		logger:  logger,
		timeout: timeout,
	}
}

// AddMetadataRefresh schedules refresher on spec, e.g. "0 3 * * *".
func (s *Scheduler) AddMetadataRefresh(spec string, refresher Refresher) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.RunMetadataRefresh(ctx, refresher)
	})
	if err != nil {
		return fmt.Errorf("invalid metadata refresh schedule %q: %w", spec, err)
	}
	s.logger.Info("Metadata refresh scheduled", "spec", spec)
	return nil
}

// RunMetadataRefresh performs one refresh and logs the outcome.
func (s *Scheduler) RunMetadataRefresh(ctx context.Context, refresher Refresher) {
	start := time.Now()
	updated, err := refresher.RefreshMovies(ctx)
	switch {
	case errors.Is(err, services.ErrUnavailable):
		s.logger.Info("Metadata refresh skipped, provider not configured")
	case err != nil:
		s.logger.Error("Metadata refresh failed", "error", err)
	default:
		s.logger.Info("Metadata refresh finished", "updated", updated, "duration", time.Since(start))
	}
}

func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("Timed out waiting for running jobs")
	}
}
