package appointment

import (
	"context"

	domain "github.com/BruksfildServices01/barber-turnos/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-turnos/internal/models"
)

type GetMyAppointment struct {
	repo domain.Repository
}

func NewGetMyAppointment(repo domain.Repository) *GetMyAppointment {
	return &GetMyAppointment{repo: repo}
}

// Execute returns nil when the user holds no active appointment.
func (uc *GetMyAppointment) Execute(ctx context.Context, userID uint) (*models.Appointment, error) {
	return uc.repo.GetActiveForUser(ctx, userID)
}
