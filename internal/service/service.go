// Package service ties the store to the revenue calculator, the sentiment
// classifier and the monthly analytics.
package service

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"hotelperf/server/internal/analytics"
	"hotelperf/server/internal/apperr"
	"hotelperf/server/internal/database"
	"hotelperf/server/internal/metrics"
	"hotelperf/server/internal/sentiment"
)

const (
	DefaultPage  = 1
	DefaultLimit = 15
)

type Service struct {
	db         *database.Database
	classifier *sentiment.Classifier
	validate   *validator.Validate
	reports    *cache.Cache
	metrics    *metrics.Metrics
	geocoder   Geocoder
	logger     *logrus.Logger
	now        func() time.Time
}

type Options struct {
	ReportCacheTTL time.Duration
	Metrics        *metrics.Metrics
	Logger         *logrus.Logger

	// Geocoder fills missing hotel coordinates; nil disables it
	Geocoder Geocoder
}

func NewService(db *database.Database, classifier *sentiment.Classifier, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	ttl := opts.ReportCacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &Service{
		db:         db,
		classifier: classifier,
		validate:   validator.New(),
		reports:    cache.New(ttl, 2*ttl),
		metrics:    opts.Metrics,
		geocoder:   opts.Geocoder,
		logger:     logger,
		now:        time.Now,
	}
}

// Classifier exposes the classifier shared by ingestion
func (s *Service) Classifier() *sentiment.Classifier {
	return s.classifier
}

// invalidateReports drops every cached report after a revenue or review write
func (s *Service) invalidateReports() {
	s.reports.Flush()
}

func (s *Service) validateStruct(v interface{}) error {
	if err := s.validate.Struct(v); err != nil {
		return apperr.Validation("%s", validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

func pageBounds(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	return page, limit
}

// idFromValue reads a positive integer id out of a decoded JSON value
func idFromValue(field string, v interface{}) (uint, error) {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0, apperr.Validation("%s is required", field)
	case float64:
		f = t
	case int:
		f = float64(t)
	case uint:
		f = float64(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0, apperr.Validation("%s must be an integer", field)
		}
		f = n
	case string:
		n, err := strconv.ParseUint(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, apperr.Validation("%s must be an integer", field)
		}
		f = float64(n)
	default:
		return 0, apperr.Validation("%s must be an integer", field)
	}

	if f < 1 || f != math.Trunc(f) {
		return 0, apperr.Validation("%s must be a positive integer", field)
	}
	return uint(f), nil
}

// dateFromValue reads a dd-mm-yyyy date string out of a decoded JSON value
func dateFromValue(field string, v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", apperr.Validation("%s is required", field)
	}
	s = strings.TrimSpace(s)
	if _, err := analytics.ParseDate(s); err != nil {
		return "", apperr.Validation("%s must be in dd-mm-yyyy format", field)
	}
	return s, nil
}
