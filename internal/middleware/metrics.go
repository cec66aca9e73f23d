package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/flightdeck-io/flightdeck/pkg/metrics"
)

// Metrics feeds request latency into the flightdeck_api_latency_seconds
// histogram, labelled by the registered route pattern rather than the
// raw path so /flights/:id stays one series.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			// Unmatched request, keep it out of the per-route series.
			route = "unmatched"
		}

		metrics.APILatency.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
