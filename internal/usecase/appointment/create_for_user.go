package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/barber-turnos/internal/audit"
	domain "github.com/BruksfildServices01/barber-turnos/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-turnos/internal/httperr"
	"github.com/BruksfildServices01/barber-turnos/internal/metrics"
	"github.com/BruksfildServices01/barber-turnos/internal/models"
)

// CreateUserAppointment books on behalf of a signed-in user, who may hold
// only one active appointment at a time.
type CreateUserAppointment struct {
	repo    domain.Repository
	audit   *audit.Dispatcher
	metrics metrics.Recorder
	loc     *time.Location
	now     func() time.Time
}

func NewCreateUserAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	rec metrics.Recorder,
	loc *time.Location,
) *CreateUserAppointment {
	return &CreateUserAppointment{
		repo:    repo,
		audit:   audit,
		metrics: metrics.OrNop(rec),
		loc:     loc,
		now:     time.Now,
	}
}

func (uc *CreateUserAppointment) Execute(
	ctx context.Context,
	userID uint,
	in domain.Draft,
) (*models.Appointment, error) {

	ap, err := domain.New(in, &userID, uc.loc, uc.now())
	if err != nil {
		return nil, err
	}

	// check and insert happen atomically inside the engine
	if err := uc.repo.CreateForUser(ctx, ap); err != nil {
		if httperr.IsBusiness(err, "active_appointment") {
			uc.audit.Dispatch(audit.Event{
				UserID: &userID,
				Action: audit.ActionAppointmentConflict,
				Entity: audit.EntityUser,
			})
		}
		return nil, err
	}

	uc.metrics.RecordAppointmentCreated(metrics.FlowUser)
	uc.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   audit.ActionAppointmentCreated,
		Entity:   audit.EntityAppointment,
		EntityID: ap.ID,
		Metadata: map[string]string{"flow": metrics.FlowUser},
	})

	return ap, nil
}
