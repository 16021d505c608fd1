package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	pinger Pinger
	store  string
}

// NewHealthHandler reports readiness from pinger. A nil pinger means the
// service runs without a database and is ready once it is up.
func NewHealthHandler(pinger Pinger, store string) *HealthHandler {
	return &HealthHandler{pinger: pinger, store: store}
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "simplelender-backend",
		"store":   h.store,
	})
}

func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if h.pinger == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ready", "database": "disabled"})
		return
	}
	if err := h.pinger.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "not_ready",
			"database": "error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"database": "ok",
	})
}
