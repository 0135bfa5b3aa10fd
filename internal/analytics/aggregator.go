// Package analytics buckets revenue records and classified reviews by month and derives
// composite sentiment indices, summary statistics and period-over-period growth.
package analytics

import (
	"fmt"
	"time"

	"hotelperf/server/internal/models"
	"hotelperf/server/internal/numeric"
	"hotelperf/server/internal/sentiment"
)

// DateLayout is the day-month-year format of revenue dates and review timestamps.
// Single-digit day and month are accepted.
const DateLayout = "2-1-2006"

// ParseDate parses a dd-mm-yyyy date
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// Query selects the months to report on. Year 0 superimposes all years onto twelve month buckets.
type Query struct {
	Year int
	Now  time.Time
}

// accumulator collects the raw sums of one month key
type accumulator struct {
	room, restaurant, other     float64
	nett, gross, grandTotal     float64
	positive, negative, neutral int
}

// monthKey identifies a bucket
type monthKey struct {
	key   string
	month time.Month
}

// months resolves the ordered bucket keys for q
func (q Query) months() []monthKey {
	last := time.December
	if q.Year != 0 && q.Year == q.Now.Year() {
		last = q.Now.Month()
	}

	keys := make([]monthKey, 0, int(last))
	for m := time.January; m <= last; m++ {
		keys = append(keys, monthKey{key: q.key(m, q.Year), month: m})
	}
	return keys
}

func (q Query) key(m time.Month, year int) string {
	if q.Year != 0 {
		return fmt.Sprintf("%04d-%02d", year, int(m))
	}
	return fmt.Sprintf("%02d", int(m))
}

// bucketFor returns the key a date belongs to, or false when it is unparseable or outside the range
func (q Query) bucketFor(date string) (string, bool) {
	t, err := ParseDate(date)
	if err != nil {
		return "", false
	}
	if q.Year != 0 {
		if t.Year() != q.Year {
			return "", false
		}
		if q.Year == q.Now.Year() && t.Month() > q.Now.Month() {
			return "", false
		}
	}
	return q.key(t.Month(), t.Year()), true
}

// Aggregate buckets revenues and reviews into the months resolved by q. Records with unparseable dates
// are dropped. Reviews without a stored sentiment count as neutral.
func Aggregate(revenues []models.RevenueRecord, reviews []models.Review, q Query) []models.MonthStats {
	months := q.months()
	buckets := make(map[string]*accumulator, len(months))
	for _, m := range months {
		buckets[m.key] = &accumulator{}
	}

	for i := range revenues {
		rec := &revenues[i]
		key, ok := q.bucketFor(rec.Date)
		if !ok {
			continue
		}
		acc := buckets[key]
		acc.room += rec.RoomDetails.TotalRoomRevenue
		acc.restaurant += rec.Restaurant.TotalRestaurantRevenue
		acc.other += rec.OtherRevenue.TotalOtherRevenue
		acc.nett += rec.NettRevenue
		acc.gross += rec.GrossRevenue
		acc.grandTotal += rec.GrandTotalRevenue
	}

	for i := range reviews {
		review := &reviews[i]
		key, ok := q.bucketFor(review.Timestamp)
		if !ok {
			continue
		}
		acc := buckets[key]
		label := sentiment.Neutral
		if review.Sentiment != nil {
			label = sentiment.Label(review.Sentiment.Label)
		}
		switch label {
		case sentiment.Positive:
			acc.positive++
		case sentiment.Negative:
			acc.negative++
		default:
			acc.neutral++
		}
	}

	stats := make([]models.MonthStats, 0, len(months))
	for _, m := range months {
		stats = append(stats, buckets[m.key].stats(m))
	}
	return stats
}

func (a *accumulator) stats(m monthKey) models.MonthStats {
	s := models.MonthStats{
		Key:               m.key,
		Month:             m.month.String()[:3],
		RoomRevenue:       numeric.Round2(a.room),
		RestaurantRevenue: numeric.Round2(a.restaurant),
		OtherRevenue:      numeric.Round2(a.other),
		NettRevenue:       numeric.Round2(a.nett),
		GrossRevenue:      numeric.Round2(a.gross),
		GrandTotalRevenue: numeric.Round2(a.grandTotal),
		RoomRatio:         numeric.Percent(a.room, a.gross),
		RestaurantRatio:   numeric.Percent(a.restaurant, a.gross),
		OtherRatio:        numeric.Percent(a.other, a.gross),
		Positive:          a.positive,
		Negative:          a.negative,
		Neutral:           a.neutral,
	}

	volume := a.positive + a.negative + a.neutral
	s.ReviewVolume = volume
	s.WSI = WeightedSentimentIndex(a.positive, a.neutral, volume)
	s.CSI = CompositeSentimentIndex(a.positive, a.negative, a.neutral, volume)
	if volume > 0 {
		v := float64(volume)
		s.PositiveRatio = numeric.Round2(float64(a.positive) / v * 100)
		s.NegativeRatio = numeric.Round2(float64(a.negative) / v * 100)
		s.NeutralRatio = numeric.Round2(float64(a.neutral) / v * 100)
	}
	return s
}

// WeightedSentimentIndex scores positive reviews fully and neutral ones by half, 0 without reviews
func WeightedSentimentIndex(positive, neutral, volume int) float64 {
	if volume == 0 {
		return 0
	}
	return numeric.Round2((float64(positive) + float64(neutral)*0.5) / float64(volume) * 100)
}

// CompositeSentimentIndex maps the net sentiment balance onto 0..100, 50 without reviews
func CompositeSentimentIndex(positive, negative, neutral, volume int) float64 {
	if volume == 0 {
		return 50
	}
	v := float64(volume)
	raw := float64(positive)/v + float64(neutral)/v*0.5 - float64(negative)/v
	return numeric.Round2((raw + 1) / 2 * 100)
}
