package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the periodic housekeeping jobs.
type Scheduler struct {
	cron   *cron.Cron
	quotes *QuoteService
	log    *slog.Logger
}

func NewScheduler(quotes *QuoteService, log *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		quotes: quotes,
		log:    log,
	}
}

// Start registers the quote expiry sweep on spec (standard 5-field cron) and starts
// the scheduler goroutine.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.ExpireQuotes); err != nil {
		return fmt.Errorf("schedule quote expiry %q: %w", spec, err)
	}
	s.cron.Start()
	s.log.Info("scheduler started", "quote_expiry", spec)
	return nil
}

// Stop waits for a running sweep to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out")
	}
}

// ExpireQuotes runs one quote expiry sweep.
func (s *Scheduler) ExpireQuotes() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := s.quotes.ExpireOverdue(ctx, time.Now())
	if err != nil {
		s.log.Error("quote expiry sweep failed", "error", err)
		return
	}
	s.log.Info("quote expiry sweep completed", "expired", n)
}
