package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotelperf/server/internal/metrics"
)

// NewRouter builds the engine with the shared middleware and every route
func NewRouter(handler *Handler, m *metrics.Metrics, origins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(handler.logger), CORS(origins))

	SetupRoutes(router, handler, m)
	return router
}

func SetupRoutes(router *gin.Engine, handler *Handler, m *metrics.Metrics) {
	router.GET("/health", handler.Health)
	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler(handler.logger)))
	}

	api := router.Group("/api")
	{
		api.GET("/hotels", handler.ListHotels)
		api.POST("/hotels", handler.CreateHotel)
		api.GET("/hotels/dropdown", handler.HotelOptions)
		api.GET("/hotels/geojson", handler.HotelLocations)
		api.POST("/hotels/geocode", handler.GeocodeHotels)
		api.GET("/hotels/:id", handler.GetHotel)
		api.PUT("/hotels/:id", handler.UpdateHotel)
		api.DELETE("/hotels/:id", handler.DeleteHotel)
		api.GET("/hotels/:id/revenues", handler.RevenuesByHotel)
		api.GET("/hotels/:id/reviews", handler.HotelReviews)

		api.GET("/revenues", handler.ListRevenues)
		api.POST("/revenues", handler.CreateRevenue)
		api.GET("/revenues/:id", handler.GetRevenue)
		api.PUT("/revenues/:id", handler.UpdateRevenue)
		api.DELETE("/revenues/:id", handler.DeleteRevenue)

		api.GET("/reviews", handler.ListReviews)
		api.POST("/reviews/ingest", handler.IngestReviews)
		api.POST("/reviews/queue", handler.QueueReviews)
		api.GET("/sentiments", handler.ListSentiments)
		api.POST("/sentiments/classify", handler.Classify)

		api.GET("/diagram/monthly", handler.MonthlyReport)
		api.GET("/diagram/revenue/:id", handler.RevenueDiagram)
		api.GET("/diagram/reviews/:id", handler.ReviewDiagram)

		api.GET("/scrape-logs", handler.ListScrapeLogs)
		api.GET("/scrape-logs/:id", handler.GetScrapeLog)
		api.DELETE("/scrape-logs/:id", handler.DeleteScrapeLog)

		api.POST("/scrape/run", handler.RunScraping)
		api.GET("/scrape/status", handler.ScrapingStatus)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})
}
