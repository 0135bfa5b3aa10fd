package models

import "time"

const (
	ScrapeStatusSuccess = "success"
	ScrapeStatusFailed  = "failed"
)

type ScrapeLog struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	HotelID      uint      `json:"hotel_id" gorm:"index"`
	OTA          string    `json:"ota" gorm:"index"`
	Status       string    `json:"status" gorm:"index"`
	TotalReviews int       `json:"total_reviews"`
	Message      string    `json:"message"`
	Timestamp    time.Time `json:"timestamp" gorm:"index"`
}

// ScrapeLogFilter narrows a scrape log listing. Zero values mean no filter.
type ScrapeLogFilter struct {
	OTA    string
	Status string
	Start  time.Time
	End    time.Time
}
