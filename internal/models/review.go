package models

import "time"

// Review is a stored guest review. The unique index enforces deduplication.
type Review struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	HotelID   uint       `json:"hotel_id" gorm:"not null;index"`
	HotelName string     `json:"hotel_name" gorm:"uniqueIndex:idx_review_identity"`
	Author    string     `json:"author" gorm:"uniqueIndex:idx_review_identity"`
	Comment   string     `json:"comment" gorm:"uniqueIndex:idx_review_identity"`
	Timestamp string     `json:"timestamp" gorm:"uniqueIndex:idx_review_identity"`
	Source    string     `json:"source" gorm:"uniqueIndex:idx_review_identity"`
	Rating    float64    `json:"rating"`
	Sentiment *Sentiment `json:"sentiment,omitempty" gorm:"foreignKey:ReviewID"`
	CreatedAt time.Time  `json:"created_at"`
}

// Sentiment is the label computed once when its review is inserted
type Sentiment struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	ReviewID      uint      `json:"review_id" gorm:"not null;uniqueIndex"`
	Label         string    `json:"sentiment" gorm:"not null;index"`
	PositiveScore int       `json:"positive_score"`
	NegativeScore int       `json:"negative_score"`
	CreatedAt     time.Time `json:"created_at"`
}

// IncomingReview is a raw review as delivered by the ingestion side
type IncomingReview struct {
	Author    string  `json:"author"`
	Comment   string  `json:"comment" validate:"required"`
	Timestamp string  `json:"timestamp"`
	Source    string  `json:"source"`
	Rating    float64 `json:"rating" validate:"gte=0"`
}

// ReviewBatch groups raw reviews scraped for one hotel from one source
type ReviewBatch struct {
	ID      string           `json:"batch_id"`
	HotelID uint             `json:"hotel_id" binding:"required"`
	Source  string           `json:"source"`
	Reviews []IncomingReview `json:"reviews"`
}

// IngestResult summarises what happened to a batch
type IngestResult struct {
	BatchID    string `json:"batch_id"`
	Received   int    `json:"received"`
	Inserted   int    `json:"inserted"`
	Duplicates int    `json:"duplicates"`
	Invalid    int    `json:"invalid"`
}

// ReviewSentimentDiagram is the per-review sentiment series of one hotel
type ReviewSentimentDiagram struct {
	Dates    []string  `json:"dates"`
	Ratings  []float64 `json:"ratings"`
	Positive []int     `json:"positive"`
	Neutral  []int     `json:"neutral"`
	Negative []int     `json:"negative"`
}
