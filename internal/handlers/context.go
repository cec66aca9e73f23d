package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
)

// requestContext extracts the request-scoped context so cancellation
// propagates into service calls. Handlers built without a request, as
// some tests do, get a background context instead.
func requestContext(c *gin.Context) context.Context {
	if c == nil || c.Request == nil {
		return context.Background()
	}
	return c.Request.Context()
}
