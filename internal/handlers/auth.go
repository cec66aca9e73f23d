package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	iauth "github.com/flightdeck-io/flightdeck/internal/auth"
	"github.com/flightdeck-io/flightdeck/internal/middleware"
	"github.com/flightdeck-io/flightdeck/internal/services"
	appErrors "github.com/flightdeck-io/flightdeck/pkg/errors"
	"github.com/flightdeck-io/flightdeck/pkg/metrics"
	"github.com/flightdeck-io/flightdeck/pkg/response"
)

// AuthHandler manages the login flow and identity lookups.
type AuthHandler struct {
	users *services.UserService
	jwt   *iauth.JWTService
}

func NewAuthHandler(users *services.UserService, jwt *iauth.JWTService) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwt}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.Authenticate(requestContext(c), req.Username, req.Password)
	if err != nil {
		// Normalise auth errors to 401
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		if errors.Is(err, services.ErrInvalidCredentials) || errors.Is(err, services.ErrUserDisabled) {
			response.Error(c, appErrors.ErrInvalidCredentials)
			return
		}
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	token, err := h.jwt.GenerateAccessToken(iauth.AccessTokenInput{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
	})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	response.Success(c, http.StatusOK, tokenResponse{
		AccessToken: token,
		UserID:      user.ID,
		DisplayName: user.DisplayName,
	})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	user, err := h.users.Get(requestContext(c), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}
		response.Error(c, appErrors.ErrInternalServer)
		return
	}
	response.Success(c, http.StatusOK, user)
}
