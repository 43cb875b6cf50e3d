package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/barber-turnos/internal/models"
)

// Repository is the appointment half of a storage engine. Every mutation is
// persisted before the call returns.
type Repository interface {
	// -------- Listing --------
	ListPublic(ctx context.Context) ([]models.Appointment, error)
	ListAll(ctx context.Context) ([]models.Appointment, error)
	CalendarSnapshot(ctx context.Context) ([]models.Appointment, error)

	// -------- Lookup --------

	// GetByID fails with a not_found business error for unknown ids.
	GetByID(ctx context.Context, id string) (*models.Appointment, error)

	// GetActiveForUser returns nil, nil when the user holds no active appointment.
	GetActiveForUser(ctx context.Context, userID uint) (*models.Appointment, error)

	// -------- Create --------
	Create(ctx context.Context, ap *models.Appointment) error

	// CreateForUser checks and inserts atomically; it fails with a conflict
	// business error when ap's owner already holds an active appointment.
	CreateForUser(ctx context.Context, ap *models.Appointment) error

	// -------- State change --------
	SetStatus(
		ctx context.Context,
		id string,
		status Status,
		now time.Time,
	) (*models.Appointment, error)

	// -------- Audit --------
	AppendAudit(ctx context.Context, entry *models.AuditLog) error
}
