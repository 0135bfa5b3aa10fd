// Package metrics holds the Prometheus collectors of the server.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Metrics owns a private registry. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	reviewsIngested  *prometheus.CounterVec
	reviewsDuplicate *prometheus.CounterVec
	reviewsInvalid   *prometheus.CounterVec
	sentimentLabels  *prometheus.CounterVec
	revenueWrites    *prometheus.CounterVec
	scrapeRuns       *prometheus.CounterVec
	queueRejected    *prometheus.CounterVec
	reportDuration   *prometheus.HistogramVec
}

func NewMetrics() (*Metrics, error) {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.reviewsIngested = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hotelperf_reviews_ingested_total",
		Help: "Reviews inserted into the store",
	}, []string{"source"})
	m.reviewsDuplicate = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hotelperf_reviews_duplicate_total",
		Help: "Reviews skipped because they were already stored",
	}, []string{"source"})
	m.reviewsInvalid = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hotelperf_reviews_invalid_total",
		Help: "Reviews rejected by validation",
	}, []string{"source"})
	m.sentimentLabels = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hotelperf_sentiment_labels_total",
		Help: "Sentiment labels assigned at ingestion",
	}, []string{"label"})
	m.revenueWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hotelperf_revenue_writes_total",
		Help: "Revenue record writes by operation",
	}, []string{"operation"})
	m.scrapeRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hotelperf_scrape_runs_total",
		Help: "Scraper runs by source and status",
	}, []string{"source", "status"})
	m.queueRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hotelperf_queue_rejected_total",
		Help: "Review batches the queue refused",
	}, []string{"reason"})
	m.reportDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hotelperf_report_build_duration_seconds",
		Help:    "Time spent building monthly reports",
		Buckets: prometheus.DefBuckets,
	}, []string{"cache"})

	for _, c := range []prometheus.Collector{
		m.reviewsIngested, m.reviewsDuplicate, m.reviewsInvalid, m.sentimentLabels,
		m.revenueWrites, m.scrapeRuns, m.queueRejected, m.reportDuration,
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}

	return m, nil
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry. Encoding errors go to logger when it is set.
func (m *Metrics) Handler(logger *logrus.Logger) http.Handler {
	opts := promhttp.HandlerOpts{ErrorHandling: promhttp.HTTPErrorOnError}
	if logger != nil {
		opts.ErrorLog = logger.WithField("component", "metrics")
	}
	return promhttp.HandlerFor(m.registry, opts)
}

func (m *Metrics) RecordIngest(source string, inserted, duplicates, invalid int) {
	if m == nil {
		return
	}
	m.reviewsIngested.WithLabelValues(source).Add(float64(inserted))
	m.reviewsDuplicate.WithLabelValues(source).Add(float64(duplicates))
	m.reviewsInvalid.WithLabelValues(source).Add(float64(invalid))
}

func (m *Metrics) RecordSentiment(label string) {
	if m == nil {
		return
	}
	m.sentimentLabels.WithLabelValues(label).Inc()
}

func (m *Metrics) RecordRevenueWrite(operation string) {
	if m == nil {
		return
	}
	m.revenueWrites.WithLabelValues(operation).Inc()
}

func (m *Metrics) RecordScrape(source, status string) {
	if m == nil {
		return
	}
	m.scrapeRuns.WithLabelValues(source, status).Inc()
}

func (m *Metrics) RecordQueueRejected(reason string) {
	if m == nil {
		return
	}
	m.queueRejected.WithLabelValues(reason).Inc()
}

// ObserveReport records a report build; cache is "hit" or "miss"
func (m *Metrics) ObserveReport(cache string, d time.Duration) {
	if m == nil {
		return
	}
	m.reportDuration.WithLabelValues(cache).Observe(d.Seconds())
}
