package scraping

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hotelperf/server/config"
	"hotelperf/server/internal/metrics"
	"hotelperf/server/internal/models"
	"hotelperf/server/internal/queue"
)

var ErrNoLink = errors.New("hotel has no link for source")

// Publisher accepts scraped review batches
type Publisher interface {
	Push(batch *models.ReviewBatch) error
}

// LogRecorder stores the outcome of a run
type LogRecorder interface {
	RecordScrape(ctx context.Context, log *models.ScrapeLog) error
}

// ScraperManager launches the external scraper command for one hotel and
// source and forwards the reviews it prints to the publisher.
type ScraperManager struct {
	logger    *logrus.Logger
	command   string
	scriptDir string
	timeout   time.Duration
	publisher Publisher
	recorder  LogRecorder
	metrics   *metrics.Metrics
	pushRetry time.Duration
}

// RunResult summarises one scraper run
type RunResult struct {
	HotelID      uint   `json:"hotel_id"`
	Source       string `json:"source"`
	Batches      int    `json:"batches"`
	TotalReviews int    `json:"total_reviews"`
	Status       string `json:"status"`
	Message      string `json:"message"`
}

// NewScraperManager creates a new scraper manager
func NewScraperManager(cfg *config.Config, publisher Publisher, recorder LogRecorder, m *metrics.Metrics, logger *logrus.Logger) *ScraperManager {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	scriptDir, err := filepath.Abs(cfg.Scraping.ScriptDir)
	if err != nil {
		logger.WithError(err).Error("Failed to get absolute path to scraper directory")
		scriptDir = cfg.Scraping.ScriptDir
	}

	return &ScraperManager{
		logger:    logger,
		command:   cfg.Scraping.Command,
		scriptDir: scriptDir,
		timeout:   cfg.Scraping.Timeout,
		publisher: publisher,
		recorder:  recorder,
		metrics:   m,
		pushRetry: 500 * time.Millisecond,
	}
}

// Run scrapes one hotel from one source. Hotels without a link for the
// source return ErrNoLink and leave no scrape log. Every launched run is
// recorded, whether it succeeds or not.
func (m *ScraperManager) Run(ctx context.Context, hotel *models.Hotel, source Source) (*RunResult, error) {
	url := source.Link(hotel)
	if url == "" {
		return nil, ErrNoLink
	}

	result := &RunResult{HotelID: hotel.ID, Source: source.Name}
	runErr := m.execute(ctx, hotel, source, url, result)

	result.Status = models.ScrapeStatusSuccess
	if runErr != nil {
		result.Status = models.ScrapeStatusFailed
		result.Message = runErr.Error()
	}

	entry := &models.ScrapeLog{
		HotelID:      hotel.ID,
		OTA:          source.Name,
		Status:       result.Status,
		TotalReviews: result.TotalReviews,
		Message:      result.Message,
		Timestamp:    time.Now().UTC(),
	}
	// the run context may already be done; the log is written regardless
	if err := m.recorder.RecordScrape(context.WithoutCancel(ctx), entry); err != nil {
		m.logger.WithError(err).Error("Failed to record scrape log")
	}

	fields := logrus.Fields{
		"hotel_id":      hotel.ID,
		"source":        source.Name,
		"batches":       result.Batches,
		"total_reviews": result.TotalReviews,
	}
	if runErr != nil {
		m.logger.WithError(runErr).WithFields(fields).Error("Scraper run failed")
		return result, runErr
	}
	m.logger.WithFields(fields).Info("Scraper run completed")
	return result, nil
}

func (m *ScraperManager) execute(ctx context.Context, hotel *models.Hotel, source Source, url string, result *RunResult) error {
	scriptPath := filepath.Join(m.scriptDir, source.Script)
	if _, err := os.Stat(scriptPath); err != nil {
		return fmt.Errorf("script not found: %s", scriptPath)
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	m.logger.WithFields(logrus.Fields{
		"hotel_id": hotel.ID,
		"source":   source.Name,
		"url":      url,
	}).Info("Starting scraper")

	cmd := exec.CommandContext(ctx, m.command, scriptPath, url, strconv.FormatUint(uint64(hotel.ID), 10))

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start scraper: %w", err)
	}

	var (
		wg        sync.WaitGroup
		scriptErr string
		pushErr   error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		m.logStderr(stderr, hotel.ID, source.Name)
	}()

	readErr := readMessages(stdout, messageHandler{
		onReviews: func(reviews []models.IncomingReview) {
			if len(reviews) == 0 || pushErr != nil {
				return
			}
			batch := &models.ReviewBatch{
				ID:      uuid.NewString(),
				HotelID: hotel.ID,
				Source:  source.Name,
				Reviews: reviews,
			}
			if err := m.push(ctx, batch); err != nil {
				pushErr = err
				return
			}
			result.Batches++
			result.TotalReviews += len(reviews)
		},
		onComplete: func(c completeMessage) {
			m.logger.WithFields(logrus.Fields{
				"hotel_id":      hotel.ID,
				"source":        source.Name,
				"status":        c.Status,
				"message":       c.Message,
				"total_reviews": c.TotalReviews,
			}).Info("Scraper reported completion")
		},
		onError: func(e errorMessage) {
			scriptErr = e.Message
		},
		onInvalid: func(line string, err error) {
			m.logger.WithError(err).WithField("line", line).Warn("Failed to parse scraper message")
		},
	})
	if readErr != nil {
		// keep draining so the process is never blocked on a full pipe
		_, _ = io.Copy(io.Discard, stdout)
	}

	wg.Wait()
	waitErr := cmd.Wait()

	switch {
	case waitErr != nil && ctx.Err() == context.DeadlineExceeded:
		return fmt.Errorf("scraper timed out after %s", m.timeout)
	case waitErr != nil:
		return fmt.Errorf("scraper execution failed: %w", waitErr)
	case scriptErr != "":
		return fmt.Errorf("scraper reported error: %s", scriptErr)
	case pushErr != nil:
		return fmt.Errorf("failed to queue reviews: %w", pushErr)
	case readErr != nil:
		return fmt.Errorf("failed to read scraper output: %w", readErr)
	}
	return nil
}

// push hands a batch to the publisher, waiting while the queue is full
func (m *ScraperManager) push(ctx context.Context, batch *models.ReviewBatch) error {
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(m.pushRetry), 20), ctx)
	return backoff.Retry(func() error {
		err := m.publisher.Push(batch)
		switch {
		case errors.Is(err, queue.ErrQueueClosed):
			m.metrics.RecordQueueRejected("closed")
			return backoff.Permanent(err)
		case errors.Is(err, queue.ErrQueueFull):
			m.metrics.RecordQueueRejected("full")
		}
		return err
	}, b)
}

func (m *ScraperManager) logStderr(r io.Reader, hotelID uint, source string) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		m.logger.WithFields(logrus.Fields{
			"hotel_id": hotelID,
			"source":   source,
		}).Warn(scanner.Text())
	}
}
