package db

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-turnos/internal/models"
)

const connectTimeout = 5 * time.Second

// Open connects to PostgreSQL and migrates the schema. It fails instead of
// exiting so the caller can fall back to another engine.
func Open(ctx context.Context, dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:          true,
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := Migrate(db); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Appointment{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// at most one pending/accepted appointment per owner
	if err := db.Exec(`
        CREATE UNIQUE INDEX IF NOT EXISTS ux_appointments_owner_active
        ON appointments (owner_user_id)
        WHERE status IN ('pending', 'accepted') AND owner_user_id IS NOT NULL
    `).Error; err != nil {
		return fmt.Errorf("create active appointment index: %w", err)
	}

	return nil
}
