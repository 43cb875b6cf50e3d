package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-turnos/internal/httpresp"
)

func Health(c *gin.Context) {
	httpresp.OK(c, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
