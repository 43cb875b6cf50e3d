package handlers

import (
	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/barber-turnos/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-turnos/internal/httperr"
	"github.com/BruksfildServices01/barber-turnos/internal/httpresp"
	"github.com/BruksfildServices01/barber-turnos/internal/middleware"
	ucAppointment "github.com/BruksfildServices01/barber-turnos/internal/usecase/appointment"
)

// AdminHandler serves the administrator's appointment views. The caller is
// checked by middleware.RequireAdmin before any of these run.
type AdminHandler struct {
	list     *ucAppointment.ListAppointments
	decide   *ucAppointment.DecideAppointment
	calendar *ucAppointment.WeeklyCalendar
}

func NewAdminHandler(
	list *ucAppointment.ListAppointments,
	decide *ucAppointment.DecideAppointment,
	calendar *ucAppointment.WeeklyCalendar,
) *AdminHandler {
	return &AdminHandler{
		list:     list,
		decide:   decide,
		calendar: calendar,
	}
}

func (h *AdminHandler) List(c *gin.Context) {
	apps, err := h.list.All(c.Request.Context())
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.List(c, apps)
}

func (h *AdminHandler) Accept(c *gin.Context) {
	h.setStatus(c, domain.StatusAccepted)
}

func (h *AdminHandler) Reject(c *gin.Context) {
	h.setStatus(c, domain.StatusRejected)
}

func (h *AdminHandler) setStatus(c *gin.Context, target domain.Status) {
	ap, err := h.decide.Execute(
		c.Request.Context(),
		c.Param("id"),
		target,
		middleware.IdentityFrom(c).UserID(),
	)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, ap)
}

func (h *AdminHandler) Calendar(c *gin.Context) {
	grid, err := h.calendar.Execute(c.Request.Context())
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, grid)
}
