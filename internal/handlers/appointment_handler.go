package handlers

import (
	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/barber-turnos/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-turnos/internal/httperr"
	"github.com/BruksfildServices01/barber-turnos/internal/httpresp"
	ucAppointment "github.com/BruksfildServices01/barber-turnos/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	create *ucAppointment.CreatePublicAppointment
	list   *ucAppointment.ListAppointments
}

func NewAppointmentHandler(
	create *ucAppointment.CreatePublicAppointment,
	list *ucAppointment.ListAppointments,
) *AppointmentHandler {
	return &AppointmentHandler{
		create: create,
		list:   list,
	}
}

// ======================================================
// LIST (public)
// ======================================================

func (h *AppointmentHandler) List(c *gin.Context) {
	apps, err := h.list.Public(c.Request.Context())
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.List(c, apps)
}

// ======================================================
// CREATE (public)
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req domain.Draft
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Datos inválidos.")
		return
	}

	ap, err := h.create.Execute(c.Request.Context(), req)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Created(c, ap)
}
