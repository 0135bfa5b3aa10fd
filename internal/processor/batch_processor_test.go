package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"hotelperf/server/config"
	"hotelperf/server/internal/apperr"
	"hotelperf/server/internal/models"
	"hotelperf/server/internal/queue"
)

func TestMain(m *testing.M) {
	// the report cache janitor of the integration test lives until GC
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("github.com/patrickmn/go-cache.(*janitor).Run"))
}

// MockIngester is a mock implementation of Ingester
type MockIngester struct {
	mock.Mock
}

func (m *MockIngester) IngestBatch(ctx context.Context, batch *models.ReviewBatch) (*models.IngestResult, error) {
	args := m.Called(batch)
	result, _ := args.Get(0).(*models.IngestResult)
	return result, args.Error(1)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.BatchProcessing.ProcessorCount = 2
	cfg.BatchProcessing.MaxRetries = 3
	return cfg
}

func newTestProcessor(ingester Ingester) (*BatchProcessor, *queue.ReviewQueue) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	q := queue.NewReviewQueue(10, logger)
	p := NewBatchProcessor(ingester, q, testConfig(), logger)
	p.retryDelay = time.Millisecond
	return p, q
}

func TestNewBatchProcessor(t *testing.T) {
	ingester := &MockIngester{}
	q := queue.NewReviewQueue(10, nil)
	cfg := testConfig()
	cfg.BatchProcessing.RetryDelay = 5

	p := NewBatchProcessor(ingester, q, cfg, nil)

	assert.NotNil(t, p)
	assert.Equal(t, ingester, p.ingester)
	assert.Equal(t, q, p.queue)
	assert.Equal(t, 2, p.workers)
	assert.Equal(t, 3, p.maxRetries)
	assert.Equal(t, 5*time.Second, p.retryDelay)
	p.cancel()
}

func TestBatchProcessor_ProcessBatch(t *testing.T) {
	ingester := &MockIngester{}
	p, _ := newTestProcessor(ingester)
	defer p.cancel()

	batch := &models.ReviewBatch{ID: "b1", HotelID: 1}

	ingester.On("IngestBatch", batch).Return(&models.IngestResult{BatchID: "b1", Inserted: 2}, nil).Once()
	err := p.processBatch(batch)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), p.Stats().Processed)
	assert.Equal(t, int64(2), p.Stats().Inserted)

	ingester.On("IngestBatch", batch).Return(nil, errors.New("database is locked")).Times(4)
	err = p.processBatch(batch)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to process batch after 4 attempts")
	assert.Equal(t, int64(1), p.Stats().Failed)

	ingester.AssertExpectations(t)
}

func TestBatchProcessor_RecoversAfterTransientError(t *testing.T) {
	ingester := &MockIngester{}
	p, _ := newTestProcessor(ingester)
	defer p.cancel()

	batch := &models.ReviewBatch{ID: "b2", HotelID: 1}
	ingester.On("IngestBatch", batch).Return(nil, errors.New("database is locked")).Twice()
	ingester.On("IngestBatch", batch).Return(&models.IngestResult{BatchID: "b2"}, nil).Once()

	require.NoError(t, p.processBatch(batch))
	ingester.AssertNumberOfCalls(t, "IngestBatch", 3)
}

func TestBatchProcessor_DoesNotRetryPermanentErrors(t *testing.T) {
	ingester := &MockIngester{}
	p, _ := newTestProcessor(ingester)
	defer p.cancel()

	batch := &models.ReviewBatch{ID: "b3", HotelID: 99}
	ingester.On("IngestBatch", batch).Return(nil, apperr.NotFound("hotel 99 not found")).Once()

	err := p.processBatch(batch)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	ingester.AssertNumberOfCalls(t, "IngestBatch", 1)
}

func TestBatchProcessor_StartStop(t *testing.T) {
	ingester := &MockIngester{}
	p, q := newTestProcessor(ingester)

	for _, id := range []string{"a", "b", "c"} {
		ingester.On("IngestBatch", mock.MatchedBy(func(b *models.ReviewBatch) bool { return b.ID == id })).
			Return(&models.IngestResult{BatchID: id, Inserted: 1}, nil).Once()
	}

	p.Start()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Push(&models.ReviewBatch{ID: id, HotelID: 1}))
	}
	p.Stop()

	assert.True(t, q.IsClosed())
	assert.Equal(t, int64(3), p.Stats().Processed)
	assert.Equal(t, int64(3), p.Stats().Inserted)
	ingester.AssertExpectations(t)
}
