package appointment

import (
	"context"

	domain "github.com/BruksfildServices01/barber-turnos/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-turnos/internal/models"
)

type ListAppointments struct {
	repo domain.Repository
}

func NewListAppointments(repo domain.Repository) *ListAppointments {
	return &ListAppointments{repo: repo}
}

// Public lists pending and accepted appointments.
func (uc *ListAppointments) Public(ctx context.Context) ([]models.Appointment, error) {
	return uc.repo.ListPublic(ctx)
}

// All includes rejected appointments. Callers must have checked for admin.
func (uc *ListAppointments) All(ctx context.Context) ([]models.Appointment, error) {
	return uc.repo.ListAll(ctx)
}
