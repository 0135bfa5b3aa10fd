package analytics

import (
	"hotelperf/server/internal/models"
	"hotelperf/server/internal/numeric"
)

// GrowthRate is the percentage change from previous to current. A zero previous value yields 0.
func GrowthRate(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return numeric.Round2((current - previous) / previous * 100)
}

// Growth compares the last two months of the sequence
func Growth(months []models.MonthStats) models.Growth {
	if len(months) < 2 {
		return models.Growth{}
	}
	cur, prev := months[len(months)-1], months[len(months)-2]
	return models.Growth{
		RevenueGrowth:      GrowthRate(cur.GrandTotalRevenue, prev.GrandTotalRevenue),
		ReviewVolumeGrowth: GrowthRate(float64(cur.ReviewVolume), float64(prev.ReviewVolume)),
		SentimentGrowth:    GrowthRate(cur.WSI, prev.WSI),
	}
}
