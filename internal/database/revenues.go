package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"hotelperf/server/internal/apperr"
	"hotelperf/server/internal/models"
)

// ReportFilter selects the rows feeding a monthly report. An empty HotelIDs
// means every hotel and a zero Year means every year.
type ReportFilter struct {
	HotelIDs []uint
	Year     int
}

func (f ReportFilter) apply(query *gorm.DB, dateColumn string) *gorm.DB {
	if len(f.HotelIDs) > 0 {
		query = query.Where("hotel_id IN ?", f.HotelIDs)
	}
	if f.Year > 0 {
		query = query.Where(dateColumn+" LIKE ?", fmt.Sprintf("%%-%d", f.Year))
	}
	return query
}

func (d *Database) CreateRevenue(ctx context.Context, rec *models.RevenueRecord) error {
	return d.conn(ctx).Create(rec).Error
}

func (d *Database) GetRevenue(ctx context.Context, id uint) (*models.RevenueRecord, error) {
	var rec models.RevenueRecord
	if err := d.conn(ctx).First(&rec, id).Error; err != nil {
		return nil, notFound(err, "revenue %d not found", id)
	}
	return &rec, nil
}

func (d *Database) SaveRevenue(ctx context.Context, rec *models.RevenueRecord) error {
	return d.conn(ctx).Save(rec).Error
}

func (d *Database) DeleteRevenue(ctx context.Context, id uint) error {
	res := d.conn(ctx).Delete(&models.RevenueRecord{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("revenue %d not found", id)
	}
	return nil
}

func (d *Database) ListRevenues(ctx context.Context) ([]models.RevenueRecord, error) {
	var recs []models.RevenueRecord
	err := d.conn(ctx).Order("id").Find(&recs).Error
	return recs, err
}

func (d *Database) RevenuesByHotel(ctx context.Context, hotelID uint) ([]models.RevenueRecord, error) {
	var recs []models.RevenueRecord
	err := d.conn(ctx).Where("hotel_id = ?", hotelID).Order("id").Find(&recs).Error
	return recs, err
}

func (d *Database) ReportRevenues(ctx context.Context, f ReportFilter) ([]models.RevenueRecord, error) {
	var recs []models.RevenueRecord
	err := f.apply(d.conn(ctx), "date").Order("id").Find(&recs).Error
	return recs, err
}
