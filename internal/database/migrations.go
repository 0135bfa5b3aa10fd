package database

import (
	"gorm.io/gorm"

	"hotelperf/server/internal/models"
)

// MigrateSchema creates or updates every table and index
func MigrateSchema(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Hotel{},
		&models.RevenueRecord{},
		&models.Review{},
		&models.Sentiment{},
		&models.ScrapeLog{},
	)
}

func (d *Database) RunMigrations() error {
	return MigrateSchema(d.db)
}
