package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flightdeck-io/flightdeck/internal/middleware"
	"github.com/flightdeck-io/flightdeck/internal/services"
	appErrors "github.com/flightdeck-io/flightdeck/pkg/errors"
	"github.com/flightdeck-io/flightdeck/pkg/response"
)

// TrialHandler exposes CRUD endpoints for test campaigns.
type TrialHandler struct {
	trials *services.TrialService
}

func NewTrialHandler(trials *services.TrialService) *TrialHandler {
	return &TrialHandler{trials: trials}
}

type createTrialRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

type updateTrialRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// GET /api/trials
func (h *TrialHandler) List(c *gin.Context) {
	trials, err := h.trials.List(requestContext(c))
	if err != nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}
	response.Success(c, http.StatusOK, trials)
}

// POST /api/trials
func (h *TrialHandler) Create(c *gin.Context) {
	var req createTrialRequest
	if !bindAndValidate(c, &req) {
		return
	}

	trial, err := h.trials.Create(requestContext(c), services.CreateTrialInput{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   c.GetString(middleware.CtxUserIDKey),
	})
	if err != nil {
		response.Error(c, appErrors.NewBadRequest(err.Error()))
		return
	}
	response.Success(c, http.StatusCreated, trial)
}

// GET /api/trials/:id
func (h *TrialHandler) Get(c *gin.Context) {
	trial, err := h.trials.Get(requestContext(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrTrialNotFound) {
			response.Error(c, appErrors.ErrNotFound)
			return
		}
		response.Error(c, appErrors.ErrInternalServer)
		return
	}
	response.Success(c, http.StatusOK, trial)
}

// PATCH /api/trials/:id
func (h *TrialHandler) Update(c *gin.Context) {
	var req updateTrialRequest
	if !bindAndValidate(c, &req) {
		return
	}

	trial, err := h.trials.Update(requestContext(c), c.Param("id"), services.UpdateTrialInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, services.ErrTrialNotFound) {
			response.Error(c, appErrors.ErrNotFound)
			return
		}
		response.Error(c, appErrors.NewBadRequest(err.Error()))
		return
	}
	response.Success(c, http.StatusOK, trial)
}

// DELETE /api/trials/:id
func (h *TrialHandler) Delete(c *gin.Context) {
	if err := h.trials.Delete(requestContext(c), c.Param("id")); err != nil {
		if errors.Is(err, services.ErrTrialNotFound) {
			response.Error(c, appErrors.ErrNotFound)
			return
		}
		response.Error(c, appErrors.ErrInternalServer)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
