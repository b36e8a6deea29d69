package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/placement-track/placement-track-backend/internal/store"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Store     string    `json:"store,omitempty"`
}

type HealthHandler struct {
	serviceName string
	version     string
	store       store.DocumentStore
}

func NewHealthHandler(serviceName, version string, s store.DocumentStore) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		store:       s,
	}
}

// HealthCheck reports liveness. The store is pinged only when the wired
// backend supports it; Firestore has no cheap ping, so it reports "enabled".
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	storeStatus := "disabled"
	if h.store != nil {
		storeStatus = "enabled"
		if pinger, ok := h.store.(store.Pinger); ok {
			pingCtx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
			defer cancel()

			if err := pinger.Ping(pingCtx); err != nil {
				storeStatus = "down"
			} else {
				storeStatus = "up"
			}
		}
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		Store:     storeStatus,
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
