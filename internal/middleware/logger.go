package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flightdeck-io/flightdeck/pkg/logger"
)

// accessLogSkip lists paths polled by monitors; logging every probe
// would drown the useful entries.
var accessLogSkip = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// Logger writes one structured access-log line per request.
func Logger() gin.HandlerFunc {
	log := logger.WithModule("http")

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		if _, skip := accessLogSkip[path]; skip {
			return
		}

		log.Info("request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
