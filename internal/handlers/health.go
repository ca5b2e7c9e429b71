package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Deepanshv/resume-optimizer/internal/database"
)

// HealthHandler reports liveness plus the database phase. The endpoint stays
// 200 while the database is down: the listener is up, just in limited mode.
type HealthHandler struct {
	Sup *database.Supervisor
}

func NewHealthHandler(sup *database.Supervisor) *HealthHandler {
	return &HealthHandler{Sup: sup}
}

func (h *HealthHandler) Check(c *gin.Context) {
	phase := h.Sup.Phase()
	status := "ok"
	if phase != database.PhaseConnected {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"database": string(phase),
	})
}
