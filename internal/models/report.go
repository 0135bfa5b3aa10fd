package models

// MonthStats is one month bucket of the monthly analytics
type MonthStats struct {
	Key   string `json:"key"`
	Month string `json:"month"`

	RoomRevenue       float64 `json:"room_revenue"`
	RestaurantRevenue float64 `json:"restaurant_revenue"`
	OtherRevenue      float64 `json:"other_revenue"`
	NettRevenue       float64 `json:"nett_revenue"`
	GrossRevenue      float64 `json:"gross_revenue"`
	GrandTotalRevenue float64 `json:"grand_total_revenue"`

	RoomRatio       float64 `json:"room_ratio"`
	RestaurantRatio float64 `json:"restaurant_ratio"`
	OtherRatio      float64 `json:"other_ratio"`

	ReviewVolume int `json:"review_volume"`
	Positive     int `json:"positive"`
	Negative     int `json:"negative"`
	Neutral      int `json:"neutral"`

	PositiveRatio float64 `json:"positive_ratio"`
	NegativeRatio float64 `json:"negative_ratio"`
	NeutralRatio  float64 `json:"neutral_ratio"`

	WSI float64 `json:"wsi"`
	CSI float64 `json:"csi"`
}

// MonthValue names a month together with the value that selected it
type MonthValue struct {
	Month string  `json:"month"`
	Value float64 `json:"value"`
}

type Summary struct {
	TotalRevenue          float64 `json:"total_revenue"`
	AverageMonthlyRevenue float64 `json:"average_monthly_revenue"`

	TotalReviews        int     `json:"total_reviews"`
	AverageReviewVolume float64 `json:"average_review_volume"`

	TotalPositive         int     `json:"total_positive"`
	TotalNegative         int     `json:"total_negative"`
	TotalNeutral          int     `json:"total_neutral"`
	PositiveNegativeRatio float64 `json:"positive_negative_ratio"`

	AverageSentimentScore float64 `json:"average_sentiment_score"`
	LatestSentimentScore  float64 `json:"latest_sentiment_score"`

	BestRevenueMonth    MonthValue `json:"best_revenue_month"`
	WorstRevenueMonth   MonthValue `json:"worst_revenue_month"`
	BestSentimentMonth  MonthValue `json:"best_sentiment_month"`
	WorstSentimentMonth MonthValue `json:"worst_sentiment_month"`
	PeakReviewMonth     MonthValue `json:"peak_review_month"`
}

type Growth struct {
	RevenueGrowth      float64 `json:"revenue_growth"`
	ReviewVolumeGrowth float64 `json:"review_volume_growth"`
	SentimentGrowth    float64 `json:"sentiment_growth"`
}

// MonthlyReport is the analytics payload. Every slice has one entry per month.
type MonthlyReport struct {
	HotelIDs []uint `json:"hotel_ids"`
	Year     int    `json:"year,omitempty"`

	Months []string `json:"months"`
	Keys   []string `json:"keys"`

	RoomRevenue       []float64 `json:"room_revenue"`
	RestaurantRevenue []float64 `json:"restaurant_revenue"`
	OtherRevenue      []float64 `json:"other_revenue"`
	NettRevenue       []float64 `json:"nett_revenue"`
	GrossRevenue      []float64 `json:"gross_revenue"`
	GrandTotalRevenue []float64 `json:"grand_total_revenue"`

	RoomRatio       []float64 `json:"room_ratio"`
	RestaurantRatio []float64 `json:"restaurant_ratio"`
	OtherRatio      []float64 `json:"other_ratio"`

	ReviewVolume  []int     `json:"review_volume"`
	Positive      []int     `json:"positive"`
	Negative      []int     `json:"negative"`
	Neutral       []int     `json:"neutral"`
	PositiveRatio []float64 `json:"positive_ratio"`
	NegativeRatio []float64 `json:"negative_ratio"`
	NeutralRatio  []float64 `json:"neutral_ratio"`

	WSI []float64 `json:"wsi"`
	CSI []float64 `json:"csi"`

	Summary Summary `json:"summary"`
	Growth  Growth  `json:"growth"`
}
