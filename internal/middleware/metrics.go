package middleware

import (
	"strconv"
	"time"

	"github.com/01moynul/med-delivery-golang/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request count and latency by matched route, so path
// parameters do not blow up label cardinality.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.Requests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		m.LatencySecs.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}
