package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hotelperf/server/internal/analytics"
	"hotelperf/server/internal/apperr"
	"hotelperf/server/internal/models"
)

// ScrapeLogQuery carries the raw listing filters; dates are dd-mm-yyyy
type ScrapeLogQuery struct {
	OTA       string
	Status    string
	StartDate string
	EndDate   string
	Page      int
	Limit     int
}

// ParseScrapeLogFilter resolves a query into a store filter. The end date is
// inclusive up to 23:59:59.
func ParseScrapeLogFilter(q ScrapeLogQuery) (models.ScrapeLogFilter, error) {
	f := models.ScrapeLogFilter{
		OTA:    strings.ToLower(strings.TrimSpace(q.OTA)),
		Status: strings.ToLower(strings.TrimSpace(q.Status)),
	}

	if f.Status != "" && f.Status != models.ScrapeStatusSuccess && f.Status != models.ScrapeStatusFailed {
		return f, apperr.Validation("invalid status %q", q.Status)
	}

	if q.StartDate != "" {
		t, err := analytics.ParseDate(strings.TrimSpace(q.StartDate))
		if err != nil {
			return f, apperr.Validation("start_date must be in dd-mm-yyyy format")
		}
		f.Start = t
	}
	if q.EndDate != "" {
		t, err := analytics.ParseDate(strings.TrimSpace(q.EndDate))
		if err != nil {
			return f, apperr.Validation("end_date must be in dd-mm-yyyy format")
		}
		f.End = t.Add(24*time.Hour - time.Second)
	}
	if !f.Start.IsZero() && !f.End.IsZero() && f.End.Before(f.Start) {
		return f, apperr.Validation("end_date is before start_date")
	}
	return f, nil
}

func (s *Service) ListScrapeLogs(ctx context.Context, q ScrapeLogQuery) (*models.Page[models.ScrapeLog], error) {
	filter, err := ParseScrapeLogFilter(q)
	if err != nil {
		return nil, err
	}

	page, limit := pageBounds(q.Page, q.Limit)
	logs, total, err := s.db.ListScrapeLogs(ctx, filter, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list scrape logs: %w", err)
	}
	if logs == nil {
		logs = []models.ScrapeLog{}
	}
	return &models.Page[models.ScrapeLog]{Data: logs, Total: total, Page: page, Limit: limit}, nil
}

func (s *Service) GetScrapeLog(ctx context.Context, id uint) (*models.ScrapeLog, error) {
	return s.db.GetScrapeLog(ctx, id)
}

func (s *Service) DeleteScrapeLog(ctx context.Context, id uint) error {
	return s.db.DeleteScrapeLog(ctx, id)
}

// RecordScrape stores the outcome of one scraper run
func (s *Service) RecordScrape(ctx context.Context, log *models.ScrapeLog) error {
	if log.Timestamp.IsZero() {
		log.Timestamp = s.now().UTC()
	}
	if err := s.db.CreateScrapeLog(ctx, log); err != nil {
		return fmt.Errorf("failed to record scrape log: %w", err)
	}
	s.metrics.RecordScrape(log.OTA, log.Status)
	return nil
}
