package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/chatclaim/pkg/logger"
)

// HealthCheck reports whether one dependency is usable.
type HealthCheck func(ctx context.Context) error

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	checks map[string]HealthCheck
	log    logger.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(checks map[string]HealthCheck, log logger.Logger) *HealthHandler {
	return &HealthHandler{
		checks: checks,
		log:    log.WithComponent("HealthHandler"),
	}
}

// HealthCheck godoc
// @Summary      Health Check
// @Description  Reports the service status. Failed checks mark it degraded: chat is still relayed, without claims.
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	checks, healthy := h.performChecks(c.Request.Context())
	status := "healthy"
	if !healthy {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	})
}

// ReadinessCheck godoc
// @Summary      Readiness Check
// @Description  Checks if the service can issue claim tokens.
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	checks, healthy := h.performChecks(c.Request.Context())
	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
}

// LivenessCheck reports that the process is serving requests.
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (h *HealthHandler) performChecks(ctx context.Context) (map[string]string, bool) {
	var wg sync.WaitGroup
	mu := &sync.Mutex{}
	checks := make(map[string]string, len(h.checks))
	healthy := true

	wg.Add(len(h.checks))
	for name, check := range h.checks {
		go func(name string, check HealthCheck) {
			defer wg.Done()
			status := "ok"
			if err := check(ctx); err != nil {
				status = "error: " + err.Error()
				h.log.Warn(ctx, "health check failed", logger.String("check", name), logger.Err(err))
			}
			mu.Lock()
			checks[name] = status
			if status != "ok" {
				healthy = false
			}
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()
	return checks, healthy
}
