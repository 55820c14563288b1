package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles info and health check endpoints.
type HealthHandler struct {
	version string
	db      Pinger
	now     func() time.Time
}

// NewHealthHandler creates a new HealthHandler. db may be nil when the audit
// log is disabled.
func NewHealthHandler(version string, db Pinger) *HealthHandler {
	return &HealthHandler{version: version, db: db, now: time.Now}
}

// Info handles GET /
// @Summary Service info
// @Tags health
// @Produce json
// @Success 200 {object} InfoResponse
// @Router / [get]
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, InfoResponse{
		Message:  "Bill Extraction API",
		Version:  h.version,
		Endpoint: "/extract-bill-data",
	})
}

// Health handles GET /health
// @Summary Health check with timestamp
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Timestamp: h.now().Format(time.RFC3339)})
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.db != nil {
		if err := h.db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Error: "audit database not reachable"})
			return
		}
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
