package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/flightdeck-io/flightdeck/internal/middleware"
	"github.com/flightdeck-io/flightdeck/internal/services"
	appErrors "github.com/flightdeck-io/flightdeck/pkg/errors"
	"github.com/flightdeck-io/flightdeck/pkg/response"
)

// ShareHandler issues and resolves read-only dashboard links.
type ShareHandler struct {
	shares *services.ShareService
	trials *services.TrialService
}

func NewShareHandler(shares *services.ShareService, trials *services.TrialService) *ShareHandler {
	return &ShareHandler{shares: shares, trials: trials}
}

type issueShareRequest struct {
	TrialID  string `json:"trial_id" validate:"required"`
	TTLHours int    `json:"ttl_hours" validate:"omitempty,min=1,max=8760"`
}

// POST /api/shares
func (h *ShareHandler) Issue(c *gin.Context) {
	var req issueShareRequest
	if !bindAndValidate(c, &req) {
		return
	}

	link, err := h.shares.Issue(requestContext(c), services.IssueShareInput{
		TrialID:   req.TrialID,
		CreatedBy: c.GetString(middleware.CtxUserIDKey),
		TTL:       time.Duration(req.TTLHours) * time.Hour,
	})
	if err != nil {
		if errors.Is(err, services.ErrTrialNotFound) {
			response.Error(c, appErrors.ErrNotFound)
			return
		}
		response.Error(c, appErrors.ErrInternalServer)
		return
	}
	response.Success(c, http.StatusCreated, link)
}

// DELETE /api/shares/:id
func (h *ShareHandler) Revoke(c *gin.Context) {
	if err := h.shares.Revoke(requestContext(c), c.Param("id")); err != nil {
		if errors.Is(err, services.ErrShareNotFound) {
			response.Error(c, appErrors.ErrNotFound)
			return
		}
		response.Error(c, appErrors.ErrInternalServer)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"revoked": true})
}

// GET /api/share/:token
//
// Public: resolves a share token to its trial dashboard without a login.
func (h *ShareHandler) Resolve(c *gin.Context) {
	link, err := h.shares.Validate(requestContext(c), c.Param("token"))
	if err != nil {
		if errors.Is(err, services.ErrShareNotFound) || errors.Is(err, services.ErrShareExpired) {
			response.Error(c, appErrors.ErrShareInvalid)
			return
		}
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	trial, err := h.trials.Get(requestContext(c), link.TrialID)
	if err != nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"trial":      trial,
		"expires_at": link.ExpiresAt,
	})
}
