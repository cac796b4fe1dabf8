package infra

import (
	"fmt"

	"snp/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the Postgres ticket store (STORE_DRIVER=postgres) and
// migrates the single tickets table.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the tickets table. There is no versioned schema:
// the record shape is the document shape.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Ticket{}); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return nil
}
