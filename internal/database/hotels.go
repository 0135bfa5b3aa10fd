package database

import (
	"context"

	"gorm.io/gorm"

	"hotelperf/server/internal/models"
)

func (d *Database) CreateHotel(ctx context.Context, hotel *models.Hotel) error {
	return d.conn(ctx).Create(hotel).Error
}

func (d *Database) GetHotel(ctx context.Context, id uint) (*models.Hotel, error) {
	var hotel models.Hotel
	if err := d.conn(ctx).First(&hotel, id).Error; err != nil {
		return nil, notFound(err, "hotel %d not found", id)
	}
	return &hotel, nil
}

func (d *Database) HotelExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := d.conn(ctx).Model(&models.Hotel{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// ListHotels returns one page of hotels, optionally filtered by a
// case-insensitive substring of the name, address, city or country.
func (d *Database) ListHotels(ctx context.Context, search string, page, limit int) ([]models.Hotel, int64, error) {
	query := d.conn(ctx).Model(&models.Hotel{})
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("hotel_name LIKE ? OR address LIKE ? OR city LIKE ? OR country LIKE ?", like, like, like, like)
	}

	query = query.Session(&gorm.Session{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, size := paginate(page, limit)
	var hotels []models.Hotel
	if err := query.Order("id").Offset(offset).Limit(size).Find(&hotels).Error; err != nil {
		return nil, 0, err
	}
	return hotels, total, nil
}

func (d *Database) AllHotels(ctx context.Context) ([]models.Hotel, error) {
	var hotels []models.Hotel
	err := d.conn(ctx).Order("id").Find(&hotels).Error
	return hotels, err
}

// HotelsMissingCoordinates lists hotels that have an address or city but no
// latitude/longitude yet
func (d *Database) HotelsMissingCoordinates(ctx context.Context) ([]models.Hotel, error) {
	var hotels []models.Hotel
	err := d.conn(ctx).
		Where("latitude IS NULL OR longitude IS NULL").
		Where("address <> '' OR city <> ''").
		Order("id").
		Find(&hotels).Error
	return hotels, err
}

func (d *Database) HotelOptions(ctx context.Context) ([]models.HotelOption, error) {
	var options []models.HotelOption
	err := d.conn(ctx).Model(&models.Hotel{}).Select("id", "hotel_name").Order("hotel_name").Scan(&options).Error
	return options, err
}

// SaveHotel writes every column of an existing hotel
func (d *Database) SaveHotel(ctx context.Context, hotel *models.Hotel) error {
	return d.conn(ctx).Save(hotel).Error
}

// DeleteHotel removes a hotel together with its revenues, reviews and
// sentiments in one transaction.
func (d *Database) DeleteHotel(ctx context.Context, id uint) (*models.HotelDeleteResult, error) {
	result := &models.HotelDeleteResult{}

	err := d.conn(ctx).Transaction(func(tx *gorm.DB) error {
		reviewIDs := tx.Model(&models.Review{}).Select("id").Where("hotel_id = ?", id)

		res := tx.Where("review_id IN (?)", reviewIDs).Delete(&models.Sentiment{})
		if res.Error != nil {
			return res.Error
		}
		result.SentimentsDeleted = res.RowsAffected

		res = tx.Where("hotel_id = ?", id).Delete(&models.Review{})
		if res.Error != nil {
			return res.Error
		}
		result.ReviewsDeleted = res.RowsAffected

		res = tx.Where("hotel_id = ?", id).Delete(&models.RevenueRecord{})
		if res.Error != nil {
			return res.Error
		}
		result.RevenuesDeleted = res.RowsAffected

		res = tx.Delete(&models.Hotel{}, id)
		if res.Error != nil {
			return res.Error
		}
		result.HotelDeleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
