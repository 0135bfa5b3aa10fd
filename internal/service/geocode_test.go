package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hotelperf/server/internal/models"
)

type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) Geocode(ctx context.Context, address, city, country string) (float64, float64, error) {
	args := m.Called(ctx, address, city, country)
	return args.Get(0).(float64), args.Get(1).(float64), args.Error(2)
}

func TestGeocodeMissing(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()

	lat, lon := -6.2, 106.8
	_, err := s.CreateHotel(ctx, &models.Hotel{HotelName: "Located", City: "Jakarta", Country: "Indonesia", Latitude: &lat, Longitude: &lon})
	require.NoError(t, err)
	_, err = s.CreateHotel(ctx, &models.Hotel{HotelName: "Nowhere", Country: "Indonesia"})
	require.NoError(t, err)
	mawar := newHotel(t, s, "Hotel Mawar")
	melati, err := s.CreateHotel(ctx, &models.Hotel{HotelName: "Hotel Melati", Address: "Jl. Braga 5", City: "Bandung", Country: "Indonesia"})
	require.NoError(t, err)

	geocoder := new(MockGeocoder)
	geocoder.On("Geocode", mock.Anything, "", "Bandung", "Indonesia").Return(-6.91, 107.61, nil)
	geocoder.On("Geocode", mock.Anything, "Jl. Braga 5", "Bandung", "Indonesia").Return(0.0, 0.0, errors.New("no results"))
	s.geocoder = geocoder

	result, err := s.GeocodeMissing(ctx)
	require.NoError(t, err)
	assert.Equal(t, &models.GeocodeResult{Candidates: 2, Updated: 1, Failed: 1}, result)
	geocoder.AssertExpectations(t)

	stored, err := db.GetHotel(ctx, mawar.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Latitude)
	assert.Equal(t, -6.91, *stored.Latitude)

	stored, err = db.GetHotel(ctx, melati.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Latitude)
}

func TestGeocodeMissing_Disabled(t *testing.T) {
	s, _ := newTestService(t)
	_, err := s.GeocodeMissing(context.Background())
	assert.ErrorIs(t, err, ErrGeocodingDisabled)
}
