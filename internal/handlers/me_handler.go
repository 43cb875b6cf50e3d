package handlers

import (
	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/barber-turnos/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-turnos/internal/dto"
	"github.com/BruksfildServices01/barber-turnos/internal/httperr"
	"github.com/BruksfildServices01/barber-turnos/internal/httpresp"
	"github.com/BruksfildServices01/barber-turnos/internal/middleware"
	ucAppointment "github.com/BruksfildServices01/barber-turnos/internal/usecase/appointment"
)

// MeHandler serves the signed-in user's own appointment. Routes are behind
// middleware.RequireUser.
type MeHandler struct {
	get    *ucAppointment.GetMyAppointment
	create *ucAppointment.CreateUserAppointment
}

func NewMeHandler(
	get *ucAppointment.GetMyAppointment,
	create *ucAppointment.CreateUserAppointment,
) *MeHandler {
	return &MeHandler{get: get, create: create}
}

func (h *MeHandler) GetAppointment(c *gin.Context) {
	userID := middleware.IdentityFrom(c).UserID()
	if userID == nil {
		httperr.FromError(c, httperr.Unauthenticated("not_authenticated"))
		return
	}

	ap, err := h.get.Execute(c.Request.Context(), *userID)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, dto.MyAppointmentDTO{Appointment: ap})
}

func (h *MeHandler) CreateAppointment(c *gin.Context) {
	userID := middleware.IdentityFrom(c).UserID()
	if userID == nil {
		httperr.FromError(c, httperr.Unauthenticated("not_authenticated"))
		return
	}

	var req domain.Draft
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Datos inválidos.")
		return
	}

	ap, err := h.create.Execute(c.Request.Context(), *userID, req)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Created(c, ap)
}
