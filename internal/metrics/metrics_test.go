package metrics

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	m.RecordIngest("agoda", 3, 1, 2)
	m.RecordIngest("agoda", 1, 0, 0)
	m.RecordSentiment("positive")
	m.RecordRevenueWrite("create")
	m.RecordScrape("agoda", "success")

	assert.Equal(t, 4.0, testutil.ToFloat64(m.reviewsIngested.WithLabelValues("agoda")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reviewsDuplicate.WithLabelValues("agoda")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.reviewsInvalid.WithLabelValues("agoda")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sentimentLabels.WithLabelValues("positive")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.revenueWrites.WithLabelValues("create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.scrapeRuns.WithLabelValues("agoda", "success")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordIngest("agoda", 1, 1, 1)
		m.RecordSentiment("negative")
		m.RecordRevenueWrite("update")
		m.RecordScrape("agoda", "failed")
		m.RecordQueueRejected("full")
		m.ObserveReport("miss", time.Second)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)
	m.ObserveReport("miss", 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "hotelperf_report_build_duration_seconds"))
}

func TestMetrics_HandlerWithLogger(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)
	m.RecordIngest("agoda", 2, 0, 0)

	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)

	rec := httptest.NewRecorder()
	m.Handler(logger).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hotelperf_reviews_ingested_total")
	assert.Empty(t, buf.String())
}
