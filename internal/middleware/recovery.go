package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/flightdeck-io/flightdeck/pkg/errors"
	"github.com/flightdeck-io/flightdeck/pkg/logger"
	"github.com/flightdeck-io/flightdeck/pkg/response"
)

// Recovery traps handler panics, logs them with a stack trace, and
// renders the generic 500 envelope. The panic value never reaches the
// client.
func Recovery() gin.HandlerFunc {
	log := logger.WithModule("http")

	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic",
					zap.String("path", c.Request.URL.Path),
					zap.Any("error", r),
					zap.Stack("stack"),
				)
				c.Abort()
				response.Error(c, appErrors.ErrInternalServer)
			}
		}()
		c.Next()
	}
}

// NotFoundHandler renders unknown routes as a NOT_FOUND error envelope
// so the dashboard client sees the same shape it gets from handlers.
func NotFoundHandler(c *gin.Context) {
	response.Error(c, appErrors.ErrNotFound)
}
