package server

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/stvnw/fundval"
	"github.com/stvnw/fundval/store"
)

// Job is a named background task.
type Job interface {
	Name() string
	Run() error
}

// Scheduler runs jobs on cron schedules.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// NewScheduler builds an empty scheduler.
func NewScheduler(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// Start begins running registered jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a job against a cron schedule such as "@every 1h" or
// "0 18 * * MON-FRI".
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		if err := job.Run(); err != nil {
			s.log.Error().Err(err).Str("job", job.Name()).Msg("Job failed")
			return
		}
		s.log.Debug().Str("job", job.Name()).Msg("Job completed")
	})
	if err != nil {
		return fmt.Errorf("registering job %s: %w", job.Name(), err)
	}
	s.log.Info().Str("schedule", schedule).Str("job", job.Name()).Msg("Job registered")
	return nil
}

// QuoteRefreshJob periodically pulls live quotes and folds them into the
// stored price cache, so charts pick up intraday movement without a scrape.
type QuoteRefreshJob struct {
	Store  *store.Store
	Quotes *fundval.QuoteFeed
	Log    zerolog.Logger
}

func (j *QuoteRefreshJob) Name() string { return "quote-refresh" }

func (j *QuoteRefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	funds, err := j.Store.Funds(ctx)
	if err != nil {
		return err
	}
	cache, err := j.Store.PriceCache(ctx)
	if err != nil {
		return err
	}

	quotes, fetched, err := j.Quotes.Fetch(funds)
	if err != nil {
		return err
	}
	if len(quotes) == 0 {
		j.Log.Debug().Msg("No tickers to quote")
		return nil
	}

	if err := j.Store.SavePriceCache(ctx, cache.MergeLiveQuotes(quotes, fetched)); err != nil {
		return err
	}
	j.Log.Info().Int("quotes", len(quotes)).Msg("Merged live quotes")
	return nil
}
