package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/qubitgyan-student/internal/observability"
)

// Metrics records request counts and latency per route template.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		m.InflightInc()
		defer m.InflightDec()

		c.Next()

		m.ObserveAPI(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
