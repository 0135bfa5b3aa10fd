package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateRevenue(c *gin.Context) {
	var doc map[string]interface{}
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid revenue payload"})
		return
	}

	record, err := h.svc.CreateRevenue(c.Request.Context(), doc)
	if err != nil {
		h.respondError(c, err, "Failed to create revenue")
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *Handler) GetRevenue(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	record, err := h.svc.GetRevenue(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to get revenue")
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) ListRevenues(c *gin.Context) {
	records, err := h.svc.ListRevenues(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to list revenues")
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) RevenuesByHotel(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	records, err := h.svc.RevenuesByHotel(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to list revenues")
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) UpdateRevenue(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	var update map[string]interface{}
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid revenue payload"})
		return
	}

	record, err := h.svc.UpdateRevenue(c.Request.Context(), id, update)
	if err != nil {
		h.respondError(c, err, "Failed to update revenue")
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) DeleteRevenue(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	if err := h.svc.DeleteRevenue(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "Failed to delete revenue")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Revenue deleted"})
}

func (h *Handler) RevenueDiagram(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	diagram, err := h.svc.RevenueDiagram(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to build revenue diagram")
		return
	}
	c.JSON(http.StatusOK, diagram)
}
