package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"hotelperf/server/config"
	"hotelperf/server/internal/apperr"
	"hotelperf/server/internal/models"
	"hotelperf/server/internal/queue"
)

// Ingester stores a batch of scraped reviews
type Ingester interface {
	IngestBatch(ctx context.Context, batch *models.ReviewBatch) (*models.IngestResult, error)
}

// Stats counts batches handled since start
type Stats struct {
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
	Inserted  int64 `json:"inserted"`
	QueueLen  int   `json:"queue_length"`
}

// BatchProcessor drains the review queue into the ingester
type BatchProcessor struct {
	ingester   Ingester
	logger     *logrus.Logger
	queue      *queue.ReviewQueue
	workers    int
	maxRetries int
	retryDelay time.Duration
	ctx        context.Context
	cancel     context.CancelFunc

	processed atomic.Int64
	failed    atomic.Int64
	inserted  atomic.Int64
}

// NewBatchProcessor creates a new batch processor instance
func NewBatchProcessor(ingester Ingester, q *queue.ReviewQueue, cfg *config.Config, logger *logrus.Logger) *BatchProcessor {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	workers := cfg.BatchProcessing.ProcessorCount
	if workers < 1 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &BatchProcessor{
		ingester:   ingester,
		queue:      q,
		logger:     logger,
		workers:    workers,
		maxRetries: max(cfg.BatchProcessing.MaxRetries, 0),
		retryDelay: time.Duration(cfg.BatchProcessing.RetryDelay) * time.Second,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start subscribes the workers and starts the queue
func (p *BatchProcessor) Start() {
	for i := 0; i < p.workers; i++ {
		p.queue.Subscribe(func(batch *models.ReviewBatch) error {
			return p.processBatch(batch)
		})
	}
	p.queue.Start()
}

// Stop closes the queue, waits for queued batches to drain and then cancels
// any retry still waiting.
func (p *BatchProcessor) Stop() {
	done := make(chan struct{})
	go func() {
		p.queue.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		p.logger.Warn("Timed out draining review queue, cancelling retries")
		p.cancel()
		<-done
	}
	p.cancel()
}

func (p *BatchProcessor) Stats() Stats {
	return Stats{
		Processed: p.processed.Load(),
		Failed:    p.failed.Load(),
		Inserted:  p.inserted.Load(),
		QueueLen:  p.queue.Len(),
	}
}

func (p *BatchProcessor) newBackOff() backoff.BackOff {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = p.retryDelay
	if expo.InitialInterval <= 0 {
		expo.InitialInterval = time.Millisecond
	}
	expo.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(expo, uint64(p.maxRetries)), p.ctx)
}

// processBatch ingests a single batch, retrying transient failures with
// exponential backoff. Unknown hotels and invalid batches are not retried.
func (p *BatchProcessor) processBatch(batch *models.ReviewBatch) error {
	attempts := 0
	var result *models.IngestResult

	operation := func() error {
		attempts++
		var err error
		result, err = p.ingester.IngestBatch(p.ctx, batch)
		if err != nil && (errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrValidation)) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		p.logger.WithError(err).WithFields(logrus.Fields{
			"batch_id": batch.ID,
			"attempt":  attempts,
			"retry_in": wait.String(),
		}).Warn("Retrying batch processing")
	}

	if err := backoff.RetryNotify(operation, p.newBackOff(), notify); err != nil {
		p.failed.Add(1)
		return fmt.Errorf("failed to process batch after %d attempts: %w", attempts, err)
	}

	p.processed.Add(1)
	p.inserted.Add(int64(result.Inserted))
	p.logger.WithFields(logrus.Fields{
		"batch_id": result.BatchID,
		"inserted": result.Inserted,
		"attempts": attempts,
	}).Info("Successfully processed batch")
	return nil
}
