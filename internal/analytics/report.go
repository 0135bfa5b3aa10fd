package analytics

import "hotelperf/server/internal/models"

// BuildReport runs the aggregation and lays the months out as parallel series
func BuildReport(hotelIDs []uint, revenues []models.RevenueRecord, reviews []models.Review, q Query) *models.MonthlyReport {
	months := Aggregate(revenues, reviews, q)

	n := len(months)
	r := &models.MonthlyReport{
		HotelIDs:          hotelIDs,
		Year:              q.Year,
		Months:            make([]string, 0, n),
		Keys:              make([]string, 0, n),
		RoomRevenue:       make([]float64, 0, n),
		RestaurantRevenue: make([]float64, 0, n),
		OtherRevenue:      make([]float64, 0, n),
		NettRevenue:       make([]float64, 0, n),
		GrossRevenue:      make([]float64, 0, n),
		GrandTotalRevenue: make([]float64, 0, n),
		RoomRatio:         make([]float64, 0, n),
		RestaurantRatio:   make([]float64, 0, n),
		OtherRatio:        make([]float64, 0, n),
		ReviewVolume:      make([]int, 0, n),
		Positive:          make([]int, 0, n),
		Negative:          make([]int, 0, n),
		Neutral:           make([]int, 0, n),
		PositiveRatio:     make([]float64, 0, n),
		NegativeRatio:     make([]float64, 0, n),
		NeutralRatio:      make([]float64, 0, n),
		WSI:               make([]float64, 0, n),
		CSI:               make([]float64, 0, n),
	}

	for _, m := range months {
		r.Months = append(r.Months, m.Month)
		r.Keys = append(r.Keys, m.Key)
		r.RoomRevenue = append(r.RoomRevenue, m.RoomRevenue)
		r.RestaurantRevenue = append(r.RestaurantRevenue, m.RestaurantRevenue)
		r.OtherRevenue = append(r.OtherRevenue, m.OtherRevenue)
		r.NettRevenue = append(r.NettRevenue, m.NettRevenue)
		r.GrossRevenue = append(r.GrossRevenue, m.GrossRevenue)
		r.GrandTotalRevenue = append(r.GrandTotalRevenue, m.GrandTotalRevenue)
		r.RoomRatio = append(r.RoomRatio, m.RoomRatio)
		r.RestaurantRatio = append(r.RestaurantRatio, m.RestaurantRatio)
		r.OtherRatio = append(r.OtherRatio, m.OtherRatio)
		r.ReviewVolume = append(r.ReviewVolume, m.ReviewVolume)
		r.Positive = append(r.Positive, m.Positive)
		r.Negative = append(r.Negative, m.Negative)
		r.Neutral = append(r.Neutral, m.Neutral)
		r.PositiveRatio = append(r.PositiveRatio, m.PositiveRatio)
		r.NegativeRatio = append(r.NegativeRatio, m.NegativeRatio)
		r.NeutralRatio = append(r.NeutralRatio, m.NeutralRatio)
		r.WSI = append(r.WSI, m.WSI)
		r.CSI = append(r.CSI, m.CSI)
	}

	r.Summary = Summarize(months)
	r.Growth = Growth(months)
	return r
}
