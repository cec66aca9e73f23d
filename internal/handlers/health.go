package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flightdeck-io/flightdeck/pkg/response"
)

// Health answers readiness probes. It is mounted outside the
// authenticated API group so load balancers can poll it unauthenticated.
func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{
			"status":  "ok",
			"service": "flightdeck",
		})
	}
}
