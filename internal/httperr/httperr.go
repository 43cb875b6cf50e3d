package httperr

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindUnauthorized:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FromError writes the response for err. Business errors keep their code;
// anything else is logged and answered with a generic internal error.
func FromError(c *gin.Context, err error) {
	var be BusinessError
	if errors.As(err, &be) {
		Write(c, StatusFor(be.Kind), be.Code, messages[be.Code])
		return
	}

	slog.Error("request failed",
		slog.String("method", c.Request.Method),
		slog.String("path", c.FullPath()),
		slog.String("error", err.Error()),
	)
	Internal(c, "internal_error", "Error interno.")
}

var messages = map[string]string{
	"invalid_request":       "Datos inválidos.",
	"missing_fields":        "Los campos client, service y time son obligatorios.",
	"field_too_long":        "El nombre o el servicio es demasiado largo.",
	"invalid_time":          "La fecha y hora no son válidas.",
	"invalid_status":        "Estado inválido.",
	"missing_username":      "El usuario es obligatorio.",
	"invalid_credentials":   "Credenciales inválidas.",
	"not_authenticated":     "Sesión requerida.",
	"admin_required":        "Se requieren permisos de administrador.",
	"appointment_not_found": "Turno no encontrado.",
	"user_not_found":        "Usuario no encontrado.",
	"active_appointment":    "Ya tenés un turno activo.",
	"invalid_state":         "El turno ya fue resuelto.",
}
