package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"hotelperf/server/internal/analytics"
	"hotelperf/server/internal/apperr"
	"hotelperf/server/internal/models"
	"hotelperf/server/internal/revenue"
)

// CreateRevenue derives and stores a revenue record from a raw or partially
// nested document. hotel_id and date are mandatory.
func (s *Service) CreateRevenue(ctx context.Context, doc map[string]interface{}) (*models.RevenueRecord, error) {
	raw := revenue.Flatten(doc)

	rec, err := s.deriveRevenue(ctx, raw)
	if err != nil {
		return nil, err
	}

	if err := s.db.CreateRevenue(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to create revenue: %w", err)
	}
	s.metrics.RecordRevenueWrite("create")
	s.invalidateReports()

	s.logger.WithFields(logrus.Fields{
		"revenue_id": rec.ID,
		"hotel_id":   rec.HotelID,
		"date":       rec.Date,
	}).Info("Created revenue record")
	return rec, nil
}

// UpdateRevenue merges update over the stored raw inputs and recomputes every
// derived field.
func (s *Service) UpdateRevenue(ctx context.Context, id uint, update map[string]interface{}) (*models.RevenueRecord, error) {
	existing, err := s.db.GetRevenue(ctx, id)
	if err != nil {
		return nil, err
	}

	stored, err := revenue.Document(existing)
	if err != nil {
		return nil, err
	}

	rec, err := s.deriveRevenue(ctx, revenue.Merge(stored, update))
	if err != nil {
		return nil, err
	}
	rec.ID = existing.ID
	rec.CreatedAt = existing.CreatedAt

	if err := s.db.SaveRevenue(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to update revenue: %w", err)
	}
	s.metrics.RecordRevenueWrite("update")
	s.invalidateReports()
	return rec, nil
}

func (s *Service) DeleteRevenue(ctx context.Context, id uint) error {
	if err := s.db.DeleteRevenue(ctx, id); err != nil {
		return err
	}
	s.metrics.RecordRevenueWrite("delete")
	s.invalidateReports()
	return nil
}

func (s *Service) GetRevenue(ctx context.Context, id uint) (*models.RevenueRecord, error) {
	return s.db.GetRevenue(ctx, id)
}

func (s *Service) ListRevenues(ctx context.Context) ([]models.RevenueRecord, error) {
	recs, err := s.db.ListRevenues(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list revenues: %w", err)
	}
	if recs == nil {
		recs = []models.RevenueRecord{}
	}
	return recs, nil
}

func (s *Service) RevenuesByHotel(ctx context.Context, hotelID uint) ([]models.RevenueRecord, error) {
	if err := s.requireHotel(ctx, hotelID); err != nil {
		return nil, err
	}
	recs, err := s.db.RevenuesByHotel(ctx, hotelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list revenues: %w", err)
	}
	if recs == nil {
		recs = []models.RevenueRecord{}
	}
	return recs, nil
}

// RevenueDiagram returns a hotel's stored records as parallel series in date order
func (s *Service) RevenueDiagram(ctx context.Context, hotelID uint) (*models.RevenueDiagram, error) {
	recs, err := s.RevenuesByHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return dateLess(recs[i].Date, recs[j].Date)
	})

	d := &models.RevenueDiagram{
		Dates:             make([]string, 0, len(recs)),
		RoomRevenue:       make([]float64, 0, len(recs)),
		RestaurantRevenue: make([]float64, 0, len(recs)),
		OtherRevenue:      make([]float64, 0, len(recs)),
		NettRevenue:       make([]float64, 0, len(recs)),
		GrossRevenue:      make([]float64, 0, len(recs)),
		GrandTotalRevenue: make([]float64, 0, len(recs)),
	}
	for _, r := range recs {
		d.Dates = append(d.Dates, r.Date)
		d.RoomRevenue = append(d.RoomRevenue, r.RoomDetails.TotalRoomRevenue)
		d.RestaurantRevenue = append(d.RestaurantRevenue, r.Restaurant.TotalRestaurantRevenue)
		d.OtherRevenue = append(d.OtherRevenue, r.OtherRevenue.TotalOtherRevenue)
		d.NettRevenue = append(d.NettRevenue, r.NettRevenue)
		d.GrossRevenue = append(d.GrossRevenue, r.GrossRevenue)
		d.GrandTotalRevenue = append(d.GrandTotalRevenue, r.GrandTotalRevenue)
	}
	return d, nil
}

// deriveRevenue validates identity fields, checks the hotel and runs the calculator
func (s *Service) deriveRevenue(ctx context.Context, raw map[string]interface{}) (*models.RevenueRecord, error) {
	hotelID, err := idFromValue("hotel_id", raw["hotel_id"])
	if err != nil {
		return nil, err
	}
	date, err := dateFromValue("date", raw["date"])
	if err != nil {
		return nil, err
	}

	rec, err := revenue.Calculate(raw)
	if err != nil {
		return nil, err
	}

	if err := s.requireHotel(ctx, hotelID); err != nil {
		return nil, err
	}

	rec.HotelID = hotelID
	rec.Date = date
	return rec, nil
}

func (s *Service) requireHotel(ctx context.Context, hotelID uint) error {
	exists, err := s.db.HotelExists(ctx, hotelID)
	if err != nil {
		return fmt.Errorf("failed to look up hotel: %w", err)
	}
	if !exists {
		return apperr.NotFound("hotel %d not found", hotelID)
	}
	return nil
}

// dateLess orders dd-mm-yyyy strings chronologically; unparseable dates sort last
func dateLess(a, b string) bool {
	ta, errA := analytics.ParseDate(a)
	tb, errB := analytics.ParseDate(b)
	switch {
	case errA != nil:
		return false
	case errB != nil:
		return true
	default:
		return ta.Before(tb)
	}
}
