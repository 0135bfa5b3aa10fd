package analytics

import (
	"hotelperf/server/internal/models"
	"hotelperf/server/internal/numeric"
)

// Summarize computes whole-range totals and extremes over a monthly sequence.
// The per-month sentiment score is the WSI.
func Summarize(months []models.MonthStats) models.Summary {
	var s models.Summary
	if len(months) == 0 {
		return s
	}

	var totalRevenue, totalSentiment float64
	revenueMonths := 0
	best, worst := 0, -1
	bestSentiment, worstSentiment, peak := 0, 0, 0

	for i, m := range months {
		totalRevenue += m.GrandTotalRevenue
		if m.GrandTotalRevenue > 0 {
			revenueMonths++
		}
		// months without revenue are skipped, negative ones still count
		if m.GrandTotalRevenue != 0 && (worst == -1 || m.GrandTotalRevenue < months[worst].GrandTotalRevenue) {
			worst = i
		}
		if m.GrandTotalRevenue > months[best].GrandTotalRevenue {
			best = i
		}

		s.TotalReviews += m.ReviewVolume
		s.TotalPositive += m.Positive
		s.TotalNegative += m.Negative
		s.TotalNeutral += m.Neutral

		totalSentiment += m.WSI
		if m.WSI > months[bestSentiment].WSI {
			bestSentiment = i
		}
		if m.WSI < months[worstSentiment].WSI {
			worstSentiment = i
		}
		if m.ReviewVolume > months[peak].ReviewVolume {
			peak = i
		}
	}
	if worst == -1 {
		worst = 0
	}

	s.TotalRevenue = numeric.Round2(totalRevenue)
	if revenueMonths > 0 {
		s.AverageMonthlyRevenue = numeric.Round2(totalRevenue / float64(revenueMonths))
	}
	s.AverageReviewVolume = numeric.Round2(float64(s.TotalReviews) / float64(len(months)))

	if s.TotalNegative == 0 {
		s.PositiveNegativeRatio = float64(s.TotalPositive)
	} else {
		s.PositiveNegativeRatio = numeric.Round2(float64(s.TotalPositive) / float64(s.TotalNegative))
	}

	s.AverageSentimentScore = numeric.Round2(totalSentiment / float64(len(months)))
	s.LatestSentimentScore = months[len(months)-1].WSI

	s.BestRevenueMonth = monthValue(months[best], months[best].GrandTotalRevenue)
	s.WorstRevenueMonth = monthValue(months[worst], months[worst].GrandTotalRevenue)
	s.BestSentimentMonth = monthValue(months[bestSentiment], months[bestSentiment].WSI)
	s.WorstSentimentMonth = monthValue(months[worstSentiment], months[worstSentiment].WSI)
	s.PeakReviewMonth = monthValue(months[peak], float64(months[peak].ReviewVolume))
	return s
}

func monthValue(m models.MonthStats, v float64) models.MonthValue {
	return models.MonthValue{Month: m.Month, Value: v}
}
