// Package db opens the shared GORM connection pool and keeps the
// schema migrated.
package db

import (
	"fmt"
	"time"

	"bridge-syncer/internal/config"
	"bridge-syncer/internal/metrics"
	"bridge-syncer/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to Postgres, sizes the pool and migrates the schema.
// Foreign key constraints are deliberately not created: chain, token
// and ticket streams are ingested on independent timers, so references
// across them are only eventually consistent.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		SkipDefaultTransaction:                   true,
		PrepareStmt:                              true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}

// Migrate creates or updates the tables for all persisted entities
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&models.Chain{},
		&models.Token{},
		&models.Ticket{},
		&models.DeletedTicket{},
		&models.PendingTicketIndex{},
		&models.TokenVolume{},
	); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// ReportPoolStats pushes current pool gauges; called periodically by
// the scheduler.
func ReportPoolStats(gdb *gorm.DB) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return
	}
	stats := sqlDB.Stats()
	metrics.DBConnectionsOpen.Set(float64(stats.OpenConnections))
	metrics.DBConnectionsIdle.Set(float64(stats.Idle))
}
