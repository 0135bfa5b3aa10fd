package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"

	"hotelperf/server/internal/apperr"
	"hotelperf/server/internal/geometry"
	"hotelperf/server/internal/models"
)

func (s *Service) CreateHotel(ctx context.Context, hotel *models.Hotel) (*models.Hotel, error) {
	hotel.ID = 0
	if err := s.validateStruct(hotel); err != nil {
		return nil, err
	}
	if err := s.db.CreateHotel(ctx, hotel); err != nil {
		return nil, fmt.Errorf("failed to create hotel: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"hotel_id":   hotel.ID,
		"hotel_name": hotel.HotelName,
	}).Info("Created hotel")
	return hotel, nil
}

func (s *Service) GetHotel(ctx context.Context, id uint) (*models.Hotel, error) {
	return s.db.GetHotel(ctx, id)
}

func (s *Service) ListHotels(ctx context.Context, search string, page, limit int) (*models.Page[models.Hotel], error) {
	page, limit = pageBounds(page, limit)
	hotels, total, err := s.db.ListHotels(ctx, search, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list hotels: %w", err)
	}
	if hotels == nil {
		hotels = []models.Hotel{}
	}
	return &models.Page[models.Hotel]{Data: hotels, Total: total, Page: page, Limit: limit}, nil
}

func (s *Service) HotelOptions(ctx context.Context) ([]models.HotelOption, error) {
	options, err := s.db.HotelOptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list hotel options: %w", err)
	}
	if options == nil {
		options = []models.HotelOption{}
	}
	return options, nil
}

// UpdateHotel lays the fields present in patch over the stored hotel
func (s *Service) UpdateHotel(ctx context.Context, id uint, patch map[string]interface{}) (*models.Hotel, error) {
	hotel, err := s.db.GetHotel(ctx, id)
	if err != nil {
		return nil, err
	}

	delete(patch, "id")
	delete(patch, "created_at")
	delete(patch, "updated_at")

	data, err := json.Marshal(patch)
	if err != nil {
		return nil, apperr.Validation("invalid hotel payload: %v", err)
	}
	if err := json.Unmarshal(data, hotel); err != nil {
		return nil, apperr.Validation("invalid hotel payload: %v", err)
	}
	hotel.ID = id

	if err := s.validateStruct(hotel); err != nil {
		return nil, err
	}
	if err := s.db.SaveHotel(ctx, hotel); err != nil {
		return nil, fmt.Errorf("failed to update hotel: %w", err)
	}
	return hotel, nil
}

// DeleteHotel removes the hotel and everything recorded for it
func (s *Service) DeleteHotel(ctx context.Context, id uint) (*models.HotelDeleteResult, error) {
	exists, err := s.db.HotelExists(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to look up hotel: %w", err)
	}
	if !exists {
		return nil, apperr.NotFound("hotel %d not found", id)
	}

	result, err := s.db.DeleteHotel(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete hotel: %w", err)
	}
	s.invalidateReports()

	s.logger.WithFields(logrus.Fields{
		"hotel_id":   id,
		"revenues":   result.RevenuesDeleted,
		"reviews":    result.ReviewsDeleted,
		"sentiments": result.SentimentsDeleted,
	}).Info("Deleted hotel")
	return result, nil
}

// HotelLocations returns every hotel with coordinates as GeoJSON points
func (s *Service) HotelLocations(ctx context.Context) (*geojson.FeatureCollection, error) {
	hotels, err := s.db.AllHotels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list hotels: %w", err)
	}
	return geometry.HotelFeatures(hotels), nil
}
