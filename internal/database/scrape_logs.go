package database

import (
	"context"

	"gorm.io/gorm"

	"hotelperf/server/internal/apperr"
	"hotelperf/server/internal/models"
)

func (d *Database) CreateScrapeLog(ctx context.Context, log *models.ScrapeLog) error {
	return d.conn(ctx).Create(log).Error
}

func (d *Database) GetScrapeLog(ctx context.Context, id uint) (*models.ScrapeLog, error) {
	var log models.ScrapeLog
	if err := d.conn(ctx).First(&log, id).Error; err != nil {
		return nil, notFound(err, "scrape log %d not found", id)
	}
	return &log, nil
}

// ListScrapeLogs returns one page of matching logs, newest first
func (d *Database) ListScrapeLogs(ctx context.Context, f models.ScrapeLogFilter, page, limit int) ([]models.ScrapeLog, int64, error) {
	query := d.conn(ctx).Model(&models.ScrapeLog{})
	if f.OTA != "" {
		query = query.Where("ota = ?", f.OTA)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if !f.Start.IsZero() {
		query = query.Where("timestamp >= ?", f.Start)
	}
	if !f.End.IsZero() {
		query = query.Where("timestamp <= ?", f.End)
	}

	query = query.Session(&gorm.Session{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, size := paginate(page, limit)
	var logs []models.ScrapeLog
	if err := query.Order("timestamp DESC, id DESC").Offset(offset).Limit(size).Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (d *Database) DeleteScrapeLog(ctx context.Context, id uint) error {
	res := d.conn(ctx).Delete(&models.ScrapeLog{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("scrape log %d not found", id)
	}
	return nil
}
