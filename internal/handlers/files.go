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

// FileHandler manages artefact descriptors attached to trials.
type FileHandler struct {
	files *services.FileService
}

func NewFileHandler(files *services.FileService) *FileHandler {
	return &FileHandler{files: files}
}

type registerFileRequest struct {
	TrialID     string `json:"trial_id" validate:"required"`
	Name        string `json:"name" validate:"required,min=1,max=255"`
	ContentType string `json:"content_type" validate:"max=255"`
	SizeBytes   int64  `json:"size_bytes" validate:"min=0"`
	URL         string `json:"url" validate:"required"`
}

// GET /api/files?trialId=...
func (h *FileHandler) List(c *gin.Context) {
	trialID := c.Query("trialId")
	if trialID == "" {
		response.Error(c, appErrors.NewBadRequest("trialId query parameter is required"))
		return
	}

	files, err := h.files.ListByTrial(requestContext(c), trialID)
	if err != nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}
	response.Success(c, http.StatusOK, files)
}

// POST /api/files
func (h *FileHandler) Register(c *gin.Context) {
	var req registerFileRequest
	if !bindAndValidate(c, &req) {
		return
	}

	file, err := h.files.Register(requestContext(c), services.RegisterFileInput{
		TrialID:     req.TrialID,
		Name:        req.Name,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
		URL:         req.URL,
		UploadedBy:  c.GetString(middleware.CtxUserIDKey),
	})
	if err != nil {
		if errors.Is(err, services.ErrTrialNotFound) {
			response.Error(c, appErrors.ErrNotFound)
			return
		}
		response.Error(c, appErrors.NewBadRequest(err.Error()))
		return
	}
	response.Success(c, http.StatusCreated, file)
}

// DELETE /api/files/:id
func (h *FileHandler) Delete(c *gin.Context) {
	if err := h.files.Delete(requestContext(c), c.Param("id")); err != nil {
		if errors.Is(err, services.ErrFileNotFound) {
			response.Error(c, appErrors.ErrNotFound)
			return
		}
		response.Error(c, appErrors.ErrInternalServer)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
