package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/barber-turnos/internal/audit"
	domain "github.com/BruksfildServices01/barber-turnos/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-turnos/internal/metrics"
	"github.com/BruksfildServices01/barber-turnos/internal/models"
)

// ======================================================
// USE CASE
// ======================================================

type CreatePublicAppointment struct {
	repo    domain.Repository
	audit   *audit.Dispatcher
	metrics metrics.Recorder
	loc     *time.Location
	now     func() time.Time
}

func NewCreatePublicAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	rec metrics.Recorder,
	loc *time.Location,
) *CreatePublicAppointment {
	return &CreatePublicAppointment{
		repo:    repo,
		audit:   audit,
		metrics: metrics.OrNop(rec),
		loc:     loc,
		now:     time.Now,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreatePublicAppointment) Execute(
	ctx context.Context,
	in domain.Draft,
) (*models.Appointment, error) {

	ap, err := domain.New(in, nil, uc.loc, uc.now())
	if err != nil {
		return nil, err
	}

	if err := uc.repo.Create(ctx, ap); err != nil {
		return nil, err
	}

	uc.metrics.RecordAppointmentCreated(metrics.FlowPublic)
	uc.audit.Dispatch(audit.Event{
		Action:   audit.ActionAppointmentCreated,
		Entity:   audit.EntityAppointment,
		EntityID: ap.ID,
		Metadata: map[string]string{"flow": metrics.FlowPublic},
	})

	return ap, nil
}
