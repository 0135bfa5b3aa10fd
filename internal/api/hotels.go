package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"hotelperf/server/internal/models"
	"hotelperf/server/internal/service"
)

func (h *Handler) CreateHotel(c *gin.Context) {
	var hotel models.Hotel
	if err := c.ShouldBindJSON(&hotel); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid hotel payload"})
		return
	}
	hotel.ID = 0

	created, err := h.svc.CreateHotel(c.Request.Context(), &hotel)
	if err != nil {
		h.respondError(c, err, "Failed to create hotel")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetHotel(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	hotel, err := h.svc.GetHotel(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to get hotel")
		return
	}
	c.JSON(http.StatusOK, hotel)
}

// ListHotels serves both the paginated list and the search (?q=)
func (h *Handler) ListHotels(c *gin.Context) {
	page, limit, err := pagingParams(c)
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	result, err := h.svc.ListHotels(c.Request.Context(), c.Query("q"), page, limit)
	if err != nil {
		h.respondError(c, err, "Failed to list hotels")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) HotelOptions(c *gin.Context) {
	options, err := h.svc.HotelOptions(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to list hotels")
		return
	}
	c.JSON(http.StatusOK, options)
}

func (h *Handler) UpdateHotel(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	var patch map[string]interface{}
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid hotel payload"})
		return
	}

	hotel, err := h.svc.UpdateHotel(c.Request.Context(), id, patch)
	if err != nil {
		h.respondError(c, err, "Failed to update hotel")
		return
	}
	c.JSON(http.StatusOK, hotel)
}

func (h *Handler) DeleteHotel(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	result, err := h.svc.DeleteHotel(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to delete hotel")
		return
	}

	h.logger.WithFields(logrus.Fields{
		"hotel_id":   id,
		"revenues":   result.RevenuesDeleted,
		"reviews":    result.ReviewsDeleted,
		"sentiments": result.SentimentsDeleted,
	}).Info("Hotel deleted via API")
	c.JSON(http.StatusOK, result)
}

// HotelLocations returns located hotels as a GeoJSON FeatureCollection
func (h *Handler) HotelLocations(c *gin.Context) {
	fc, err := h.svc.HotelLocations(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to build hotel locations")
		return
	}
	c.JSON(http.StatusOK, fc)
}

// GeocodeHotels fills in coordinates for hotels that have none
func (h *Handler) GeocodeHotels(c *gin.Context) {
	result, err := h.svc.GeocodeMissing(c.Request.Context())
	if errors.Is(err, service.ErrGeocodingDisabled) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.respondError(c, err, "Failed to geocode hotels")
		return
	}
	c.JSON(http.StatusOK, result)
}
