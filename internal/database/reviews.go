package database

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotelperf/server/internal/models"
)

// InsertReview stores a review unless one with the same identity already
// exists. It reports whether a row was written.
func (d *Database) InsertReview(ctx context.Context, review *models.Review) (bool, error) {
	res := d.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Omit("Sentiment").Create(review)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (d *Database) CreateSentiment(ctx context.Context, s *models.Sentiment) error {
	return d.conn(ctx).Create(s).Error
}

// ListReviews returns one page of reviews, newest first. A zero hotelID
// lists reviews for every hotel.
func (d *Database) ListReviews(ctx context.Context, hotelID uint, page, limit int) ([]models.Review, int64, error) {
	query := d.conn(ctx).Model(&models.Review{})
	if hotelID > 0 {
		query = query.Where("hotel_id = ?", hotelID)
	}

	query = query.Session(&gorm.Session{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, size := paginate(page, limit)
	var reviews []models.Review
	err := query.Preload("Sentiment").Order("id DESC").Offset(offset).Limit(size).Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (d *Database) ReviewsByHotel(ctx context.Context, hotelID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := d.conn(ctx).Preload("Sentiment").Where("hotel_id = ?", hotelID).Order("id").Find(&reviews).Error
	return reviews, err
}

func (d *Database) ReportReviews(ctx context.Context, f ReportFilter) ([]models.Review, error) {
	var reviews []models.Review
	err := f.apply(d.conn(ctx), "timestamp").Preload("Sentiment").Order("id").Find(&reviews).Error
	return reviews, err
}

func (d *Database) ListSentiments(ctx context.Context) ([]models.Sentiment, error) {
	var sentiments []models.Sentiment
	err := d.conn(ctx).Order("id").Find(&sentiments).Error
	return sentiments, err
}

func (d *Database) CountReviews(ctx context.Context) (int64, error) {
	var count int64
	err := d.conn(ctx).Model(&models.Review{}).Count(&count).Error
	return count, err
}
