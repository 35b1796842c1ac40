package handler

import (
	"encoding/json"
	"net/http"

	"github.com/KingdomVR/kvr-go-database/internal/api/apierr"
	"github.com/KingdomVR/kvr-go-database/internal/api/middleware"
	"github.com/KingdomVR/kvr-go-database/internal/api/request"
	"github.com/KingdomVR/kvr-go-database/internal/api/response"
	"github.com/KingdomVR/kvr-go-database/internal/model"
	"github.com/KingdomVR/kvr-go-database/internal/services/auth"
)

// AuthHandler handles login and logout endpoints
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Username == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("username is required"))
		return
	}
	if req.Pin == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("pin is required"))
		return
	}

	session, acct, err := h.authService.Authenticate(r.Context(), model.Username(req.Username), req.Pin)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(session, acct))
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())
	h.authService.Revoke(session.Token)
	response.NoContent(w)
}
