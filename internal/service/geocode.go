package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"hotelperf/server/internal/models"
)

// ErrGeocodingDisabled is returned when no geocoder is configured
var ErrGeocodingDisabled = errors.New("geocoding is not enabled")

// Geocoder resolves an address to latitude and longitude
type Geocoder interface {
	Geocode(ctx context.Context, address, city, country string) (float64, float64, error)
}

// GeocodeMissing looks up coordinates for every hotel that has none. A
// failed lookup is logged and counted; the pass continues.
func (s *Service) GeocodeMissing(ctx context.Context) (*models.GeocodeResult, error) {
	if s.geocoder == nil {
		return nil, ErrGeocodingDisabled
	}

	hotels, err := s.db.HotelsMissingCoordinates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list hotels without coordinates: %w", err)
	}

	result := &models.GeocodeResult{Candidates: len(hotels)}
	for i := range hotels {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		hotel := &hotels[i]
		lat, lon, err := s.geocoder.Geocode(ctx, hotel.Address, hotel.City, hotel.Country)
		if err != nil {
			result.Failed++
			s.logger.WithError(err).WithField("hotel_id", hotel.ID).Warn("Failed to geocode hotel")
			continue
		}

		hotel.Latitude = &lat
		hotel.Longitude = &lon
		if err := s.db.SaveHotel(ctx, hotel); err != nil {
			return result, fmt.Errorf("failed to save hotel coordinates: %w", err)
		}
		result.Updated++
	}

	s.logger.WithFields(logrus.Fields{
		"candidates": result.Candidates,
		"updated":    result.Updated,
		"failed":     result.Failed,
	}).Info("Geocoding pass completed")
	return result, nil
}
