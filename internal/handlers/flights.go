package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/flightdeck-io/flightdeck/internal/models"
	"github.com/flightdeck-io/flightdeck/internal/services"
	appErrors "github.com/flightdeck-io/flightdeck/pkg/errors"
	"github.com/flightdeck-io/flightdeck/pkg/response"
)

// defaultTelemetryPoints caps chart payloads when the client does not ask
// for a specific resolution.
const defaultTelemetryPoints = 2000

// FlightHandler exposes flight and telemetry endpoints.
type FlightHandler struct {
	flights *services.FlightService
}

func NewFlightHandler(flights *services.FlightService) *FlightHandler {
	return &FlightHandler{flights: flights}
}

type createFlightRequest struct {
	TrialID string    `json:"trial_id" validate:"required"`
	Date    time.Time `json:"date"`
	Pilot   string    `json:"pilot" validate:"required,min=1,max=200"`
	Kind    string    `json:"kind" validate:"omitempty,oneof=acceptance experimental resource operational"`
	Status  string    `json:"status" validate:"max=100"`
}

type updateFlightRequest struct {
	Date   *time.Time `json:"date"`
	Pilot  *string    `json:"pilot" validate:"omitempty,min=1,max=200"`
	Kind   *string    `json:"kind" validate:"omitempty,oneof=acceptance experimental resource operational"`
	Status *string    `json:"status" validate:"omitempty,max=100"`
}

// GET /api/flights?trialId=...
func (h *FlightHandler) List(c *gin.Context) {
	trialID := c.Query("trialId")
	if trialID == "" {
		response.Error(c, appErrors.NewBadRequest("trialId query parameter is required"))
		return
	}

	flights, err := h.flights.ListByTrial(requestContext(c), trialID)
	if err != nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}
	response.Success(c, http.StatusOK, flights)
}

// POST /api/flights
func (h *FlightHandler) Create(c *gin.Context) {
	var req createFlightRequest
	if !bindAndValidate(c, &req) {
		return
	}

	flight, err := h.flights.Create(requestContext(c), services.CreateFlightInput{
		TrialID: req.TrialID,
		Date:    req.Date,
		Pilot:   req.Pilot,
		Kind:    req.Kind,
		Status:  req.Status,
	})
	if err != nil {
		if errors.Is(err, services.ErrTrialNotFound) {
			response.Error(c, appErrors.ErrNotFound)
			return
		}
		response.Error(c, appErrors.NewBadRequest(err.Error()))
		return
	}
	response.Success(c, http.StatusCreated, flight)
}

// GET /api/flights/:id
func (h *FlightHandler) Get(c *gin.Context) {
	flight, err := h.flights.Get(requestContext(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrFlightNotFound) {
			response.Error(c, appErrors.ErrNotFound)
			return
		}
		response.Error(c, appErrors.ErrInternalServer)
		return
	}
	response.Success(c, http.StatusOK, flight)
}

// PATCH /api/flights/:id
func (h *FlightHandler) Update(c *gin.Context) {
	var req updateFlightRequest
	if !bindAndValidate(c, &req) {
		return
	}

	flight, err := h.flights.Update(requestContext(c), c.Param("id"), services.UpdateFlightInput{
		Date:   req.Date,
		Pilot:  req.Pilot,
		Kind:   req.Kind,
		Status: req.Status,
	})
	if err != nil {
		if errors.Is(err, services.ErrFlightNotFound) {
			response.Error(c, appErrors.ErrNotFound)
			return
		}
		response.Error(c, appErrors.NewBadRequest(err.Error()))
		return
	}
	response.Success(c, http.StatusOK, flight)
}

// DELETE /api/flights/:id
func (h *FlightHandler) Delete(c *gin.Context) {
	if err := h.flights.Delete(requestContext(c), c.Param("id")); err != nil {
		if errors.Is(err, services.ErrFlightNotFound) {
			response.Error(c, appErrors.ErrNotFound)
			return
		}
		response.Error(c, appErrors.ErrInternalServer)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// GET /api/flights/:id/telemetry?from=&to=&points=
func (h *FlightHandler) Telemetry(c *gin.Context) {
	query := services.TelemetryQuery{
		From:      parseFloatQuery(c, "from", 0),
		To:        parseFloatQuery(c, "to", 0),
		MaxPoints: parseIntQuery(c, "points", defaultTelemetryPoints),
	}

	points, err := h.flights.Telemetry(requestContext(c), c.Param("id"), query)
	if err != nil {
		if errors.Is(err, services.ErrFlightNotFound) {
			response.Error(c, appErrors.ErrNotFound)
			return
		}
		response.Error(c, appErrors.ErrInternalServer)
		return
	}
	response.Success(c, http.StatusOK, points)
}

// POST /api/flights/:id/telemetry
func (h *FlightHandler) AppendTelemetry(c *gin.Context) {
	var points []models.TelemetryPoint
	if err := c.ShouldBindJSON(&points); err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid JSON payload"))
		return
	}

	if err := h.flights.AppendTelemetry(requestContext(c), c.Param("id"), points); err != nil {
		if errors.Is(err, services.ErrFlightNotFound) {
			response.Error(c, appErrors.ErrNotFound)
			return
		}
		response.Error(c, appErrors.ErrInternalServer)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"accepted": len(points)})
}
