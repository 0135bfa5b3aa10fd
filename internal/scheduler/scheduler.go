package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"hotelperf/server/config"
	"hotelperf/server/internal/models"
	"hotelperf/server/internal/scraping"
)

var ErrRunInProgress = errors.New("scraping run already in progress")

// HotelLister provides the hotels to scrape
type HotelLister interface {
	AllHotels(ctx context.Context) ([]models.Hotel, error)
}

// Runner scrapes one hotel from one source
type Runner interface {
	Run(ctx context.Context, hotel *models.Hotel, source scraping.Source) (*scraping.RunResult, error)
}

// Notifier is told about every finished pass
type Notifier interface {
	NotifyScrapeRun(ctx context.Context, summary *RunSummary) error
}

// RunSummary describes one pass over every hotel and source
type RunSummary struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Hotels     int       `json:"hotels"`
	Runs       int       `json:"runs"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
	Reviews    int       `json:"reviews"`
	Error      string    `json:"error,omitempty"`
}

type Status struct {
	Schedule string      `json:"schedule"`
	Enabled  bool        `json:"enabled"`
	Running  bool        `json:"running"`
	NextRun  *time.Time  `json:"next_run,omitempty"`
	LastRun  *RunSummary `json:"last_run,omitempty"`
}

// Scheduler runs the scraper over every hotel and source on a cron schedule.
// A pass that would overlap a running one is skipped.
type Scheduler struct {
	hotels        HotelLister
	runner        Runner
	notifier      Notifier
	logger        *logrus.Logger
	cron          *cron.Cron
	schedule      string
	maxConcurrent int

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running atomic.Bool

	mu      sync.Mutex
	started bool
	entry   cron.EntryID
	lastRun *RunSummary
}

// NewScheduler creates a new scheduler
func NewScheduler(hotels HotelLister, runner Runner, cfg *config.Config, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}

	maxConcurrent := cfg.Scraping.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		hotels:        hotels,
		runner:        runner,
		logger:        logger,
		cron:          cron.New(cron.WithChain(cron.Recover(cron.PrintfLogger(logger)))),
		schedule:      cfg.Scraping.Schedule,
		maxConcurrent: maxConcurrent,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// SetNotifier registers a notifier for finished passes. Call before Start.
func (s *Scheduler) SetNotifier(n Notifier) {
	s.notifier = n
}

// Start registers the cron entry and starts the cron loop
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("scheduler already running")
	}

	id, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunNow(); errors.Is(err, ErrRunInProgress) {
			s.logger.Warn("Previous scraping run still in progress, skipping scheduled run")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid scrape schedule %q: %w", s.schedule, err)
	}

	s.entry = id
	s.cron.Start()
	s.started = true

	s.logger.WithField("schedule", s.schedule).Info("Scraping scheduler started")
	return nil
}

// Stop halts the cron loop, cancels running scrapers and waits for them
func (s *Scheduler) Stop() {
	s.mu.Lock()
	started := s.started
	s.started = false
	s.mu.Unlock()

	if started {
		<-s.cron.Stop().Done()
	}
	s.cancel()
	s.wg.Wait()
	s.logger.Info("Scraping scheduler stopped")
}

// RunNow starts a pass in the background. It returns ErrRunInProgress when a
// pass is already running.
func (s *Scheduler) RunNow() error {
	if s.ctx.Err() != nil {
		return fmt.Errorf("scheduler stopped")
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrRunInProgress
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)

		summary := s.runAll(s.ctx)

		s.mu.Lock()
		s.lastRun = summary
		s.mu.Unlock()

		s.notify(summary)
	}()
	return nil
}

// notify sends the summary of every finished pass, failed ones included.
// It outlives a stopping scheduler so the final summary still goes out.
func (s *Scheduler) notify(summary *RunSummary) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), 30*time.Second)
	defer cancel()
	if err := s.notifier.NotifyScrapeRun(ctx, summary); err != nil {
		s.logger.WithError(err).Warn("Failed to send scraping summary")
	}
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Schedule: s.schedule,
		Enabled:  s.started,
		Running:  s.running.Load(),
	}
	if s.started {
		if next := s.cron.Entry(s.entry).Next; !next.IsZero() {
			st.NextRun = &next
		}
	}
	if s.lastRun != nil {
		last := *s.lastRun
		st.LastRun = &last
	}
	return st
}

// runAll scrapes every hotel from every source it has a link for, with at
// most maxConcurrent scrapers at a time. Failed runs do not stop the pass.
func (s *Scheduler) runAll(ctx context.Context) *RunSummary {
	summary := &RunSummary{StartedAt: time.Now().UTC()}
	s.logger.Info("Starting scraping job for all hotels")

	hotels, err := s.hotels.AllHotels(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list hotels for scraping")
		summary.Error = err.Error()
		summary.FinishedAt = time.Now().UTC()
		return summary
	}
	summary.Hotels = len(hotels)

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.maxConcurrent)

	for i := range hotels {
		hotel := &hotels[i]
		for _, source := range scraping.Sources {
			if source.Link(hotel) == "" {
				summary.Skipped++
				continue
			}
			if ctx.Err() != nil {
				break
			}

			g.Go(func() error {
				result, err := s.runner.Run(ctx, hotel, source)

				mu.Lock()
				defer mu.Unlock()
				summary.Runs++
				if result != nil {
					summary.Reviews += result.TotalReviews
				}
				if err != nil {
					summary.Failed++
					return nil
				}
				summary.Succeeded++
				return nil
			})
		}
	}
	_ = g.Wait()

	summary.FinishedAt = time.Now().UTC()
	s.logger.WithFields(logrus.Fields{
		"hotels":    summary.Hotels,
		"runs":      summary.Runs,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
		"skipped":   summary.Skipped,
		"reviews":   summary.Reviews,
		"duration":  summary.FinishedAt.Sub(summary.StartedAt).String(),
	}).Info("Scraping job completed")
	return summary
}
