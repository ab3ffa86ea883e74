package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"store-service/internal/metrics"
)

// Metrics counts requests per route template, so ids never become label values.
func Metrics(sm *metrics.ServerMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		sm.Requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		sm.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
	}
}
