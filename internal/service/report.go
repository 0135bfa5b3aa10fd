package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"hotelperf/server/internal/analytics"
	"hotelperf/server/internal/apperr"
	"hotelperf/server/internal/database"
	"hotelperf/server/internal/models"
)

// ParseHotelSelection reads a comma separated id list. Empty or "all" selects
// every hotel and yields an empty slice.
func ParseHotelSelection(raw string) ([]uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return []uint{}, nil
	}

	seen := make(map[uint]struct{})
	ids := make([]uint, 0)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil || id == 0 {
			return nil, apperr.Validation("invalid hotel id %q", part)
		}
		if _, dup := seen[uint(id)]; dup {
			continue
		}
		seen[uint(id)] = struct{}{}
		ids = append(ids, uint(id))
	}
	if len(ids) == 0 {
		return nil, apperr.Validation("no hotel ids given")
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// ParseYear reads an optional four digit year; empty means no year filter
func ParseYear(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1000 || year > 9999 {
		return 0, apperr.Validation("invalid year %q", raw)
	}
	return year, nil
}

// MonthlyReport builds the monthly analytics for the selected hotels. An empty
// hotelIDs covers every hotel and a zero year superimposes all years.
// Reports are cached until the next revenue or review write.
func (s *Service) MonthlyReport(ctx context.Context, hotelIDs []uint, year int) (*models.MonthlyReport, error) {
	start := time.Now()
	now := s.now()

	key := reportKey(hotelIDs, year, now)
	if cached, ok := s.reports.Get(key); ok {
		s.metrics.ObserveReport("hit", time.Since(start))
		return cached.(*models.MonthlyReport), nil
	}

	filter := database.ReportFilter{HotelIDs: hotelIDs, Year: year}
	var (
		revenues []models.RevenueRecord
		reviews  []models.Review
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		revenues, err = s.db.ReportRevenues(gctx, filter)
		if err != nil {
			return fmt.Errorf("failed to load revenues: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		reviews, err = s.db.ReportReviews(gctx, filter)
		if err != nil {
			return fmt.Errorf("failed to load reviews: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := analytics.BuildReport(hotelIDs, revenues, reviews, analytics.Query{Year: year, Now: now})
	s.reports.Set(key, report, cache.DefaultExpiration)
	s.metrics.ObserveReport("miss", time.Since(start))

	s.logger.WithFields(logrus.Fields{
		"hotel_ids": hotelIDs,
		"year":      year,
		"revenues":  len(revenues),
		"reviews":   len(reviews),
		"months":    len(report.Months),
	}).Debug("Built monthly report")
	return report, nil
}

// reportKey includes the current month because the bucket range of the
// current year grows with it.
func reportKey(hotelIDs []uint, year int, now time.Time) string {
	parts := make([]string, len(hotelIDs))
	for i, id := range hotelIDs {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	selection := strings.Join(parts, ",")
	if selection == "" {
		selection = "all"
	}
	return fmt.Sprintf("%s|%d|%s", selection, year, now.Format("2006-01"))
}
