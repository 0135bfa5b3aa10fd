package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelperf/server/config"
	"hotelperf/server/internal/models"
	"hotelperf/server/internal/scraping"
)

type fakeHotels struct {
	hotels []models.Hotel
	err    error
}

func (f *fakeHotels) AllHotels(ctx context.Context) ([]models.Hotel, error) {
	return f.hotels, f.err
}

type fakeRunner struct {
	mu      sync.Mutex
	calls   []string
	active  atomic.Int32
	peak    atomic.Int32
	block   chan struct{}
	failFor string
}

func (f *fakeRunner) Run(ctx context.Context, hotel *models.Hotel, source scraping.Source) (*scraping.RunResult, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	} else {
		time.Sleep(5 * time.Millisecond)
	}

	f.mu.Lock()
	f.calls = append(f.calls, hotel.HotelName+"/"+source.Name)
	f.mu.Unlock()

	if source.Name == f.failFor {
		return &scraping.RunResult{Status: models.ScrapeStatusFailed}, errors.New("scraper failed")
	}
	return &scraping.RunResult{TotalReviews: 2, Status: models.ScrapeStatusSuccess}, nil
}

func testConfig(maxConcurrent int) *config.Config {
	cfg := &config.Config{}
	cfg.Scraping.Schedule = "0 3 * * *"
	cfg.Scraping.MaxConcurrent = maxConcurrent
	return cfg
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func waitIdle(t *testing.T, s *Scheduler) {
	t.Helper()
	require.Eventually(t, func() bool { return !s.Status().Running }, 5*time.Second, 5*time.Millisecond)
}

func TestRunNow_ScrapesEveryLinkedSource(t *testing.T) {
	hotels := &fakeHotels{hotels: []models.Hotel{
		{ID: 1, HotelName: "A", AgodaLink: "https://agoda.test/a", TravelokaLink: "https://traveloka.test/a"},
		{ID: 2, HotelName: "B", TripcomLink: "https://trip.test/b"},
		{ID: 3, HotelName: "C"},
	}}
	runner := &fakeRunner{failFor: "tripcom"}

	s := NewScheduler(hotels, runner, testConfig(2), quietLogger())
	defer s.Stop()

	require.NoError(t, s.RunNow())
	waitIdle(t, s)

	assert.ElementsMatch(t, []string{"A/agoda", "A/traveloka", "B/tripcom"}, runner.calls)

	last := s.Status().LastRun
	require.NotNil(t, last)
	assert.Equal(t, 3, last.Hotels)
	assert.Equal(t, 3, last.Runs)
	assert.Equal(t, 2, last.Succeeded)
	assert.Equal(t, 1, last.Failed)
	assert.Equal(t, 9, last.Skipped)
	assert.Equal(t, 4, last.Reviews)
}

type fakeNotifier struct {
	mu        sync.Mutex
	summaries []*RunSummary
}

func (f *fakeNotifier) NotifyScrapeRun(ctx context.Context, summary *RunSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries = append(f.summaries, summary)
	return nil
}

func TestRunNow_NotifiesSummary(t *testing.T) {
	notifier := &fakeNotifier{}
	s := NewScheduler(&fakeHotels{hotels: []models.Hotel{{ID: 1, AgodaLink: "x"}}}, &fakeRunner{}, testConfig(1), quietLogger())
	s.SetNotifier(notifier)
	defer s.Stop()

	require.NoError(t, s.RunNow())
	require.Eventually(t, func() bool {
		notifier.mu.Lock()
		defer notifier.mu.Unlock()
		return len(notifier.summaries) == 1
	}, 5*time.Second, 5*time.Millisecond)

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	assert.Equal(t, 1, notifier.summaries[0].Succeeded)
}

func TestRunNow_NotifiesListFailure(t *testing.T) {
	notifier := &fakeNotifier{}
	runner := &fakeRunner{}
	s := NewScheduler(&fakeHotels{err: errors.New("db down")}, runner, testConfig(1), quietLogger())
	s.SetNotifier(notifier)

	require.NoError(t, s.RunNow())
	s.Stop()

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	require.Len(t, notifier.summaries, 1)
	assert.Equal(t, "db down", notifier.summaries[0].Error)
	assert.Zero(t, notifier.summaries[0].Runs)
	assert.Empty(t, runner.calls)
}

func TestRunNow_RespectsConcurrencyLimit(t *testing.T) {
	var hotels []models.Hotel
	for i := 0; i < 6; i++ {
		hotels = append(hotels, models.Hotel{ID: uint(i + 1), AgodaLink: "x", TripcomLink: "y"})
	}
	runner := &fakeRunner{}

	s := NewScheduler(&fakeHotels{hotels: hotels}, runner, testConfig(2), quietLogger())
	defer s.Stop()

	require.NoError(t, s.RunNow())
	waitIdle(t, s)

	assert.Len(t, runner.calls, 12)
	assert.LessOrEqual(t, runner.peak.Load(), int32(2))
}

func TestRunNow_SkipsOverlappingRun(t *testing.T) {
	runner := &fakeRunner{block: make(chan struct{})}
	hotels := &fakeHotels{hotels: []models.Hotel{{ID: 1, AgodaLink: "x"}}}

	s := NewScheduler(hotels, runner, testConfig(1), quietLogger())
	defer s.Stop()

	require.NoError(t, s.RunNow())
	assert.True(t, s.Status().Running)
	assert.ErrorIs(t, s.RunNow(), ErrRunInProgress)

	close(runner.block)
	waitIdle(t, s)
	assert.NoError(t, s.RunNow())
	waitIdle(t, s)
}

func TestRunNow_HotelListFailure(t *testing.T) {
	s := NewScheduler(&fakeHotels{err: errors.New("db down")}, &fakeRunner{}, testConfig(1), quietLogger())
	defer s.Stop()

	require.NoError(t, s.RunNow())
	waitIdle(t, s)

	last := s.Status().LastRun
	require.NotNil(t, last)
	assert.Equal(t, "db down", last.Error)
	assert.Equal(t, 0, last.Runs)
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(&fakeHotels{}, &fakeRunner{}, testConfig(1), quietLogger())

	require.NoError(t, s.Start())
	assert.Error(t, s.Start())

	st := s.Status()
	assert.True(t, st.Enabled)
	require.NotNil(t, st.NextRun)
	assert.Equal(t, 3, st.NextRun.Hour())

	s.Stop()
	assert.False(t, s.Status().Enabled)
	assert.Error(t, s.RunNow())
}

func TestStop_CancelsRunningScrapers(t *testing.T) {
	runner := &fakeRunner{block: make(chan struct{})}
	s := NewScheduler(&fakeHotels{hotels: []models.Hotel{{ID: 1, AgodaLink: "x"}}}, runner, testConfig(1), quietLogger())

	require.NoError(t, s.RunNow())
	require.Eventually(t, func() bool { return runner.active.Load() == 1 }, time.Second, time.Millisecond)

	s.Stop()
	assert.False(t, s.Status().Running)
}

func TestStart_InvalidSchedule(t *testing.T) {
	cfg := testConfig(1)
	cfg.Scraping.Schedule = "every day"
	s := NewScheduler(&fakeHotels{}, &fakeRunner{}, cfg, quietLogger())
	defer s.Stop()

	assert.Error(t, s.Start())
}
