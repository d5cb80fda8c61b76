package handlers

import (
	"net/http"
	"time"

	"github.com/axevisa/visa-backend/internal/database"
	"github.com/gin-gonic/gin"
)

// HealthHandler reports service and database liveness
type HealthHandler struct {
	db      database.DB
	started time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db database.DB) *HealthHandler {
	return &HealthHandler{
		db:      db,
		started: time.Now(),
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	overall := "ok"
	dbStatus := "up"
	status := http.StatusOK
	if err := h.db.Ping(); err != nil {
		overall = "degraded"
		dbStatus = "down"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":   overall,
		"uptime":   time.Since(h.started).String(),
		"database": dbStatus,
		"time":     time.Now().UTC(),
	})
}
