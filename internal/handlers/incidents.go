package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/flightdeck-io/flightdeck/internal/services"
	appErrors "github.com/flightdeck-io/flightdeck/pkg/errors"
	"github.com/flightdeck-io/flightdeck/pkg/response"
)

// IncidentHandler serves the incident analysis endpoints.
type IncidentHandler struct {
	incidents *services.IncidentService
}

func NewIncidentHandler(incidents *services.IncidentService) *IncidentHandler {
	return &IncidentHandler{incidents: incidents}
}

type reportIncidentRequest struct {
	FlightID    string    `json:"flight_id" validate:"required"`
	Date        time.Time `json:"date"`
	Description string    `json:"description" validate:"required,min=1,max=4000"`
	Resolution  string    `json:"resolution" validate:"max=4000"`
}

// GET /api/incidents?flightId=...
func (h *IncidentHandler) List(c *gin.Context) {
	flightID := c.Query("flightId")
	if flightID == "" {
		response.Error(c, appErrors.NewBadRequest("flightId query parameter is required"))
		return
	}

	incidents, err := h.incidents.ListByFlight(requestContext(c), flightID)
	if err != nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}
	response.Success(c, http.StatusOK, incidents)
}

// GET /api/incidents/:id
func (h *IncidentHandler) Get(c *gin.Context) {
	incident, err := h.incidents.Get(requestContext(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrIncidentNotFound) {
			response.Error(c, appErrors.ErrNotFound)
			return
		}
		response.Error(c, appErrors.ErrInternalServer)
		return
	}
	response.Success(c, http.StatusOK, incident)
}

// POST /api/incidents
func (h *IncidentHandler) Report(c *gin.Context) {
	var req reportIncidentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	incident, err := h.incidents.Report(requestContext(c), services.ReportIncidentInput{
		FlightID:    req.FlightID,
		Date:        req.Date,
		Description: req.Description,
		Resolution:  req.Resolution,
	})
	if err != nil {
		if errors.Is(err, services.ErrFlightNotFound) {
			response.Error(c, appErrors.ErrNotFound)
			return
		}
		response.Error(c, appErrors.NewBadRequest(err.Error()))
		return
	}
	response.Success(c, http.StatusCreated, incident)
}
