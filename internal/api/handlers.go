package api

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"hotelperf/server/internal/apperr"
	"hotelperf/server/internal/models"
	"hotelperf/server/internal/processor"
	"hotelperf/server/internal/scheduler"
	"hotelperf/server/internal/service"
)

// ScrapeTrigger starts and reports scraping runs
type ScrapeTrigger interface {
	RunNow() error
	Status() scheduler.Status
}

// BatchPublisher queues review batches for background ingestion
type BatchPublisher interface {
	Push(batch *models.ReviewBatch) error
}

// StatsProvider reports the batch processor counters
type StatsProvider interface {
	Stats() processor.Stats
}

type Handler struct {
	svc       *service.Service
	logger    *logrus.Logger
	scraper   ScrapeTrigger
	publisher BatchPublisher
	stats     StatsProvider
}

// Option configures the optional collaborators of a Handler
type Option func(*Handler)

// WithScraper enables the scraping endpoints
func WithScraper(s ScrapeTrigger) Option {
	return func(h *Handler) { h.scraper = s }
}

// WithPipeline enables queued ingestion and processor stats
func WithPipeline(p BatchPublisher, stats StatsProvider) Option {
	return func(h *Handler) {
		h.publisher = p
		h.stats = stats
	}
}

func NewHandler(svc *service.Service, logger *logrus.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	h := &Handler{svc: svc, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// respondError writes err with the status matching its kind
func (h *Handler) respondError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logger.WithError(err).WithField("request_id", c.GetString(requestIDKey)).Error(msg)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

func pathID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid %s %q", name, c.Param(name))
	}
	return uint(id), nil
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperr.Validation("invalid %s %q", name, raw)
	}
	return v, nil
}

func pagingParams(c *gin.Context) (page, limit int, err error) {
	if page, err = queryInt(c, "page"); err != nil {
		return 0, 0, err
	}
	if limit, err = queryInt(c, "limit"); err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type classifyRequest struct {
	Text string `json:"text" binding:"required"`
}

// Classify scores free text with the configured lexicon
func (h *Handler) Classify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	c.JSON(http.StatusOK, h.svc.Classifier().Classify(req.Text))
}
