package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck returns service health status (basic)
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "pricing-service",
	})
}

// HealthHandler runs dependency checks for the extended health endpoint.
// Nil check funcs are skipped.
type HealthHandler struct {
	RedisPing   func(ctx context.Context) error
	ObjectStore func(ctx context.Context) error
}

// ExtendedHealthCheck returns detailed health status including the
// recommendation store and object storage
func (h *HealthHandler) ExtendedHealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	health := gin.H{
		"status":  "healthy",
		"service": "pricing-service",
		"checks":  gin.H{},
	}
	checks := health["checks"].(gin.H)

	if h.RedisPing != nil {
		if err := h.RedisPing(ctx); err != nil {
			checks["redis"] = gin.H{"status": "unhealthy", "error": err.Error()}
		} else {
			checks["redis"] = gin.H{"status": "healthy"}
		}
	}

	if h.ObjectStore != nil {
		if err := h.ObjectStore(ctx); err != nil {
			checks["object_store"] = gin.H{"status": "unhealthy", "error": err.Error()}
		} else {
			checks["object_store"] = gin.H{"status": "healthy"}
		}
	}

	for _, check := range checks {
		if checkMap, ok := check.(gin.H); ok {
			if status, ok := checkMap["status"]; ok && status == "unhealthy" {
				health["status"] = "degraded"
				break
			}
		}
	}

	c.JSON(http.StatusOK, health)
}
