package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hotelperf/server/internal/scheduler"
	"hotelperf/server/internal/service"
)

type scrapeLogParams struct {
	OTA       string `form:"ota"`
	Status    string `form:"status"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
}

func (h *Handler) ListScrapeLogs(c *gin.Context) {
	var params scrapeLogParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	result, err := h.svc.ListScrapeLogs(c.Request.Context(), service.ScrapeLogQuery{
		OTA:       params.OTA,
		Status:    params.Status,
		StartDate: params.StartDate,
		EndDate:   params.EndDate,
		Page:      params.Page,
		Limit:     params.Limit,
	})
	if err != nil {
		h.respondError(c, err, "Failed to list scrape logs")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetScrapeLog(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	log, err := h.svc.GetScrapeLog(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to get scrape log")
		return
	}
	c.JSON(http.StatusOK, log)
}

func (h *Handler) DeleteScrapeLog(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	if err := h.svc.DeleteScrapeLog(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "Failed to delete scrape log")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Scrape log deleted"})
}

// RunScraping starts a scraping pass over every hotel in the background
func (h *Handler) RunScraping(c *gin.Context) {
	if h.scraper == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Scraping is not enabled"})
		return
	}

	err := h.scraper.RunNow()
	switch {
	case errors.Is(err, scheduler.ErrRunInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.respondError(c, err, "Failed to start scraping")
		return
	}

	h.logger.Info("Scraping run triggered via API")
	c.JSON(http.StatusAccepted, gin.H{"message": "Scraping started"})
}

func (h *Handler) ScrapingStatus(c *gin.Context) {
	resp := gin.H{}
	if h.scraper != nil {
		resp["scheduler"] = h.scraper.Status()
	}
	if h.stats != nil {
		resp["processor"] = h.stats.Stats()
	}
	c.JSON(http.StatusOK, resp)
}
