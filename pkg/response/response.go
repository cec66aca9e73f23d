// Package response renders the JSON envelope every FlightDeck endpoint
// returns: a success flag, a data payload, and a structured error so
// the dashboard client can surface failures without parsing strings.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/flightdeck-io/flightdeck/pkg/errors"
)

// Response is the envelope written by every handler.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo is the client-facing portion of an AppError.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success writes data under a success envelope.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Data:    data,
	})
}

// Error maps err to its AppError representation and writes it with the
// matching HTTP status. Unclassified errors render as a 500 so internal
// detail never reaches the client.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}

	appErr := appErrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	c.JSON(status, Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    appErr.Code,
			Message: appErr.Message,
		},
	})
}
