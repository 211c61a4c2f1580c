package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/excellence-college/school-portal/internal/metrics"
)

// Metrics returns middleware that records request metrics on the provided
// service.
func Metrics(metricsSvc *metrics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
