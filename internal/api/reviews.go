package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hotelperf/server/internal/models"
	"hotelperf/server/internal/queue"
)

// IngestReviews classifies and stores a batch synchronously
func (h *Handler) IngestReviews(c *gin.Context) {
	var batch models.ReviewBatch
	if err := c.ShouldBindJSON(&batch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review batch"})
		return
	}

	result, err := h.svc.IngestBatch(c.Request.Context(), &batch)
	if err != nil {
		h.respondError(c, err, "Failed to ingest reviews")
		return
	}
	c.JSON(http.StatusOK, result)
}

// QueueReviews hands a batch to the background processor
func (h *Handler) QueueReviews(c *gin.Context) {
	if h.publisher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Review queue is not available"})
		return
	}

	var batch models.ReviewBatch
	if err := c.ShouldBindJSON(&batch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review batch"})
		return
	}
	if batch.ID == "" {
		batch.ID = uuid.NewString()
	}

	err := h.publisher.Push(&batch)
	switch {
	case errors.Is(err, queue.ErrQueueFull):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Review queue is full"})
		return
	case errors.Is(err, queue.ErrQueueClosed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Review queue is closed"})
		return
	case err != nil:
		h.respondError(c, err, "Failed to queue reviews")
		return
	}

	h.logger.WithFields(logrus.Fields{
		"batch_id": batch.ID,
		"hotel_id": batch.HotelID,
		"reviews":  len(batch.Reviews),
	}).Info("Review batch queued")
	c.JSON(http.StatusAccepted, gin.H{"batch_id": batch.ID, "status": "queued"})
}

// ListReviews lists reviews of every hotel, or of one with ?hotel_id=
func (h *Handler) ListReviews(c *gin.Context) {
	page, limit, err := pagingParams(c)
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	hotelID, err := queryInt(c, "hotel_id")
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	result, err := h.svc.ListReviews(c.Request.Context(), uint(hotelID), page, limit)
	if err != nil {
		h.respondError(c, err, "Failed to list reviews")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) HotelReviews(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	page, limit, err := pagingParams(c)
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	if _, err := h.svc.GetHotel(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "Failed to get hotel")
		return
	}

	result, err := h.svc.ListReviews(c.Request.Context(), id, page, limit)
	if err != nil {
		h.respondError(c, err, "Failed to list reviews")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) ListSentiments(c *gin.Context) {
	sentiments, err := h.svc.ListSentiments(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to list sentiments")
		return
	}
	c.JSON(http.StatusOK, sentiments)
}

func (h *Handler) ReviewDiagram(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	diagram, err := h.svc.ReviewDiagram(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to build review diagram")
		return
	}
	c.JSON(http.StatusOK, diagram)
}
