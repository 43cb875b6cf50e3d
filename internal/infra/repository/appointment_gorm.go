package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/barber-turnos/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-turnos/internal/httperr"
	"github.com/BruksfildServices01/barber-turnos/internal/models"
)

// GormStore is the durable storage engine.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (r *GormStore) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// --------------------------------------------------
// Listing
// --------------------------------------------------

func (r *GormStore) ListPublic(ctx context.Context) ([]models.Appointment, error) {
	return r.listActive(ctx)
}

func (r *GormStore) ListAll(ctx context.Context) ([]models.Appointment, error) {
	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Order("scheduled_at ASC, created_at ASC").
		Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return apps, nil
}

func (r *GormStore) CalendarSnapshot(ctx context.Context) ([]models.Appointment, error) {
	return r.listActive(ctx)
}

func (r *GormStore) listActive(ctx context.Context) ([]models.Appointment, error) {
	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Where("status IN ?", domain.ActiveStatuses).
		Order("scheduled_at ASC, created_at ASC").
		Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("list active appointments: %w", err)
	}
	return apps, nil
}

// --------------------------------------------------
// Lookup
// --------------------------------------------------

func (r *GormStore) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	var ap models.Appointment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&ap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httperr.NotFound("appointment_not_found")
	}
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return &ap, nil
}

func (r *GormStore) GetActiveForUser(ctx context.Context, userID uint) (*models.Appointment, error) {
	var ap models.Appointment
	err := r.db.WithContext(ctx).
		Where("owner_user_id = ? AND status IN ?", userID, domain.ActiveStatuses).
		Order("scheduled_at DESC").
		First(&ap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active appointment: %w", err)
	}
	return &ap, nil
}

// --------------------------------------------------
// Create
// --------------------------------------------------

func (r *GormStore) Create(ctx context.Context, ap *models.Appointment) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(ap).Error; err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}

// CreateForUser locks the owner row so concurrent bookings of the same user
// queue behind each other; the partial unique index catches anything that
// slips past the count.
func (r *GormStore) CreateForUser(ctx context.Context, ap *models.Appointment) error {
	if ap.OwnerUserID == nil {
		return httperr.Validation("invalid_request")
	}
	ownerID := *ap.OwnerUserID

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var owner models.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&owner, ownerID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.NotFound("user_not_found")
		}
		if err != nil {
			return fmt.Errorf("lock owner: %w", err)
		}

		var count int64
		if err := tx.Model(&models.Appointment{}).
			Where("owner_user_id = ? AND status IN ?", ownerID, domain.ActiveStatuses).
			Count(&count).Error; err != nil {
			return fmt.Errorf("count active appointments: %w", err)
		}
		if count > 0 {
			return httperr.Conflict("active_appointment")
		}

		if err := tx.Omit(clause.Associations).Create(ap).Error; err != nil {
			if httperr.IsUniqueViolation(err) {
				return httperr.Conflict("active_appointment")
			}
			return fmt.Errorf("create appointment: %w", err)
		}
		return nil
	})
}

// --------------------------------------------------
// State change
// --------------------------------------------------

func (r *GormStore) SetStatus(
	ctx context.Context,
	id string,
	status domain.Status,
	now time.Time,
) (*models.Appointment, error) {

	var ap models.Appointment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&ap).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.NotFound("appointment_not_found")
		}
		if err != nil {
			return fmt.Errorf("lock appointment: %w", err)
		}

		if err := domain.Decide(&ap, status, now); err != nil {
			return err
		}

		if err := tx.Model(&ap).Updates(map[string]any{
			"status":     ap.Status,
			"decided_at": ap.DecidedAt,
		}).Error; err != nil {
			return fmt.Errorf("update appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ap, nil
}

// --------------------------------------------------
// Audit
// --------------------------------------------------

func (r *GormStore) AppendAudit(ctx context.Context, entry *models.AuditLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	return nil
}

// Compile-time check
var _ domain.Repository = (*GormStore)(nil)
