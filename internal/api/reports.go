package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotelperf/server/internal/service"
)

// MonthlyReport serves the monthly revenue and sentiment analytics for a
// hotel selection (?hotel_ids=all|1,2,3) and an optional ?year=
func (h *Handler) MonthlyReport(c *gin.Context) {
	hotelIDs, err := service.ParseHotelSelection(c.Query("hotel_ids"))
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	year, err := service.ParseYear(c.Query("year"))
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	report, err := h.svc.MonthlyReport(c.Request.Context(), hotelIDs, year)
	if err != nil {
		h.respondError(c, err, "Failed to build monthly report")
		return
	}
	c.JSON(http.StatusOK, report)
}
