package dto

import "github.com/BruksfildServices01/barber-turnos/internal/models"

type UserDTO struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

// IdentityDTO renders {"user": null} for anonymous callers.
type IdentityDTO struct {
	User *UserDTO `json:"user"`
}

func NewIdentityDTO(u *models.User) IdentityDTO {
	if u == nil {
		return IdentityDTO{}
	}
	return IdentityDTO{User: &UserDTO{
		ID:       u.ID,
		Username: u.Username,
		IsAdmin:  u.IsAdmin,
	}}
}

// MyAppointmentDTO renders {"appointment": null} when there is none.
type MyAppointmentDTO struct {
	Appointment *models.Appointment `json:"appointment"`
}
