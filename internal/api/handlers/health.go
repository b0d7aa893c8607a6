package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

const version = "1.0.0"

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck returns server health status
func HealthCheck(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status, database := http.StatusOK, "ok"
		if err := db.Ping(ctx); err != nil {
			status, database = http.StatusServiceUnavailable, "unavailable"
			c.Error(err)
		}

		c.JSON(status, gin.H{
			"status":   http.StatusText(status),
			"service":  "billiards-api",
			"version":  version,
			"uptime":   time.Since(startTime).String(),
			"database": database,
		})
	}
}
