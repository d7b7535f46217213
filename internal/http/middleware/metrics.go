package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/honeyjobs-backend/internal/metrics"
)

// MetricsMiddleware считает запросы по шаблону маршрута, а не по фактическому пути.
func MetricsMiddleware(m *metrics.HTTP) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.Observe(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start).Seconds())
	}
}
