package queue

import (
	"errors"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"hotelperf/server/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// Handler consumes one review batch
type Handler func(batch *models.ReviewBatch) error

// ReviewQueue is an in-memory queue of review batches. Every batch is
// delivered to exactly one subscriber; subscribers compete for batches.
type ReviewQueue struct {
	items    chan *models.ReviewBatch
	maxSize  int
	closed   bool
	started  bool
	mu       sync.RWMutex
	wg       sync.WaitGroup
	logger   *logrus.Logger
	handlers []Handler
}

// NewReviewQueue creates a queue holding at most bufferSize waiting batches
func NewReviewQueue(bufferSize int, logger *logrus.Logger) *ReviewQueue {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &ReviewQueue{
		items:    make(chan *models.ReviewBatch, bufferSize),
		maxSize:  bufferSize,
		logger:   logger,
		handlers: make([]Handler, 0),
	}
}

// Push adds a batch without blocking
func (q *ReviewQueue) Push(batch *models.ReviewBatch) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.items <- batch:
		q.logger.WithFields(logrus.Fields{
			"batch_id":   batch.ID,
			"batch_size": len(batch.Reviews),
		}).Debug("Pushed batch to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe registers a consumer. Subscribing after Start launches the
// consumer immediately.
func (q *ReviewQueue) Subscribe(handler Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers = append(q.handlers, handler)
	if q.started && !q.closed {
		q.consume(handler)
	}
}

// Start launches one consumer per registered handler
func (q *ReviewQueue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.started || q.closed {
		return
	}
	q.started = true
	for _, h := range q.handlers {
		q.consume(h)
	}
}

func (q *ReviewQueue) consume(handler Handler) {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for batch := range q.items {
			q.processBatch(handler, batch)
		}
	}()
}

func (q *ReviewQueue) processBatch(handler Handler, batch *models.ReviewBatch) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.WithFields(logrus.Fields{
				"batch_id": batch.ID,
				"panic":    r,
			}).Error("Handler panicked while processing batch")
		}
	}()

	if err := handler(batch); err != nil {
		q.logger.WithError(err).WithField("batch_id", batch.ID).Error("Handler failed to process batch")
	}
}

// Close stops accepting batches, lets consumers drain what is already
// queued and waits for them to finish.
func (q *ReviewQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.items)
	q.mu.Unlock()

	q.wg.Wait()
	return nil
}

// Len returns the current number of batches in the queue
func (q *ReviewQueue) Len() int {
	return len(q.items)
}

func (q *ReviewQueue) Cap() int {
	return q.maxSize
}

// IsClosed returns whether the queue has been closed
func (q *ReviewQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
