package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/flightdeck-io/flightdeck/internal/auth"
	"github.com/flightdeck-io/flightdeck/internal/realtime"
	"github.com/flightdeck-io/flightdeck/pkg/errors"
	"github.com/flightdeck-io/flightdeck/pkg/response"
)

// RealtimeHandler upgrades HTTP connections into authenticated WebSocket
// session streams scoped to one trial or flight dashboard.
type RealtimeHandler struct {
	hub *realtime.Hub
	jwt *iauth.JWTService
}

func NewRealtimeHandler(hub *realtime.Hub, jwt *iauth.JWTService) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, jwt: jwt}
}

// Stream validates the caller and hands the connection to the hub.
//
// Browsers cannot set headers on websocket upgrades, so the token travels
// as a query parameter. Exactly one of trialId or flightId selects the
// dashboard to join.
func (h *RealtimeHandler) Stream(c *gin.Context) {
	if h.jwt == nil || h.hub == nil {
		response.Error(c, errors.ErrNotFound)
		return
	}

	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		authz := c.GetHeader("Authorization")
		if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			token = strings.TrimSpace(authz[7:])
		}
	}
	if token == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	claims, err := h.jwt.ValidateAccessToken(token)
	if err != nil || strings.TrimSpace(claims.UserID) == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	res, ok := resolveResource(c)
	if !ok {
		response.Error(c, errors.NewBadRequest("exactly one of trialId or flightId is required"))
		return
	}

	h.hub.Serve(res, claims.UserID, c.Writer, c.Request)
}

func resolveResource(c *gin.Context) (realtime.Resource, bool) {
	trialID := strings.TrimSpace(c.Query("trialId"))
	flightID := strings.TrimSpace(c.Query("flightId"))

	switch {
	case trialID != "" && flightID == "":
		return realtime.Resource{Kind: realtime.KindTrial, ID: trialID}, true
	case flightID != "" && trialID == "":
		return realtime.Resource{Kind: realtime.KindFlight, ID: flightID}, true
	default:
		return realtime.Resource{}, false
	}
}
