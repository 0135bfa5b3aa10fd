package models

import "time"

type Hotel struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	HotelName     string    `json:"hotel_name" gorm:"not null;index" validate:"required"`
	Address       string    `json:"address"`
	City          string    `json:"city"`
	Country       string    `json:"country" validate:"required"`
	AgodaLink     string    `json:"agoda_link"`
	TravelokaLink string    `json:"traveloka_link"`
	TripcomLink   string    `json:"tripcom_link"`
	TicketcomLink string    `json:"ticketcom_link"`
	Latitude      *float64  `json:"latitude"`
	Longitude     *float64  `json:"longitude"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HotelOption is the id/name pair used by dropdowns
type HotelOption struct {
	ID        uint   `json:"id"`
	HotelName string `json:"hotel_name"`
}

// Page is a paginated list response
type Page[T any] struct {
	Data  []T   `json:"data"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// HotelDeleteResult reports what a cascading hotel delete removed
type HotelDeleteResult struct {
	HotelDeleted      int64 `json:"hotel_deleted"`
	RevenuesDeleted   int64 `json:"revenues_deleted"`
	ReviewsDeleted    int64 `json:"reviews_deleted"`
	SentimentsDeleted int64 `json:"sentiments_deleted"`
}

// GeocodeResult reports a pass over hotels without coordinates
type GeocodeResult struct {
	Candidates int `json:"candidates"`
	Updated    int `json:"updated"`
	Failed     int `json:"failed"`
}
