package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/barber-turnos/internal/audit"
	domain "github.com/BruksfildServices01/barber-turnos/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-turnos/internal/metrics"
	"github.com/BruksfildServices01/barber-turnos/internal/models"
)

// DecideAppointment accepts or rejects a pending appointment.
type DecideAppointment struct {
	repo    domain.Repository
	audit   *audit.Dispatcher
	metrics metrics.Recorder
	now     func() time.Time
}

func NewDecideAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	rec metrics.Recorder,
) *DecideAppointment {
	return &DecideAppointment{
		repo:    repo,
		audit:   audit,
		metrics: metrics.OrNop(rec),
		now:     time.Now,
	}
}

// Execute fails with a validation error for targets other than accepted and
// rejected, not_found for unknown ids and conflict when the appointment was
// already decided. actorID is nil for the legacy admin cookie.
func (uc *DecideAppointment) Execute(
	ctx context.Context,
	appointmentID string,
	target domain.Status,
	actorID *uint,
) (*models.Appointment, error) {

	if _, err := domain.ParseDecision(string(target)); err != nil {
		return nil, err
	}

	ap, err := uc.repo.SetStatus(ctx, appointmentID, target, uc.now())
	if err != nil {
		return nil, err
	}

	action := audit.ActionAppointmentAccepted
	if target == domain.StatusRejected {
		action = audit.ActionAppointmentRejected
	}

	uc.metrics.RecordTransition(string(target))
	uc.audit.Dispatch(audit.Event{
		UserID:   actorID,
		Action:   action,
		Entity:   audit.EntityAppointment,
		EntityID: ap.ID,
	})

	return ap, nil
}
