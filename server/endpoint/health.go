// Package endpoint provides the default HTTP endpoints registered on every
// gateway server.
package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Check reports the health of a single dependency.
type Check struct {
	Name   string `json:"name"`
	Status string `json:"status"` // "ok" or "unhealthy"
	Error  string `json:"error,omitempty"`
}

// HealthChecker returns health status for registered dependencies.
type HealthChecker func(ctx context.Context) []Check

// Health returns a handler that reports service health including dependency
// statuses. The endpoint responds 503 when any dependency is unhealthy.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		var checks []Check

		if checker != nil {
			checks = checker(c.Request.Context())
			for _, ch := range checks {
				if ch.Status != "ok" {
					status = "unhealthy"
					break
				}
			}
		}

		httpStatus := http.StatusOK
		if status == "unhealthy" {
			httpStatus = http.StatusServiceUnavailable
		}

		c.JSON(httpStatus, gin.H{
			"status":    status,
			"service":   serviceName,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"checks":    checks,
		})
	}
}
