package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/KingdomVR/kvr-go-database/internal/api/apierr"
	"github.com/KingdomVR/kvr-go-database/internal/api/middleware"
	"github.com/KingdomVR/kvr-go-database/internal/api/request"
	"github.com/KingdomVR/kvr-go-database/internal/api/response"
	"github.com/KingdomVR/kvr-go-database/internal/model"
	"github.com/KingdomVR/kvr-go-database/internal/services/auth"
	"github.com/KingdomVR/kvr-go-database/internal/services/registry"
)

// AccountHandler handles account lookup, PIN change, and provisioning
type AccountHandler struct {
	authService     *auth.Service
	registryService *registry.Service
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(authService *auth.Service, registryService *registry.Service) *AccountHandler {
	return &AccountHandler{
		authService:     authService,
		registryService: registryService,
	}
}

// GetMe handles GET /api/v1/accounts/me
func (h *AccountHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	acct, err := h.authService.GetAccount(r.Context(), session.Token)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AccountFromModel(acct))
}

// Get handles GET /api/v1/accounts/{username}
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	username := model.Username(mux.Vars(r)["username"])

	acct, err := h.registryService.Lookup(r.Context(), username)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AccountFromModel(acct))
}

// ChangePin handles POST /api/v1/accounts/me/pin
func (h *AccountHandler) ChangePin(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	var req request.ChangePinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	if req.OldPin == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("old_pin is required"))
		return
	}
	if req.NewPin == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("new_pin is required"))
		return
	}

	acct, err := h.authService.ChangePIN(r.Context(), session.Token, req.OldPin, req.NewPin)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AccountFromModel(acct))
}

// Create handles POST /api/v1/accounts (API-key guarded)
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateAccountRequest
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

	acct, err := h.registryService.Register(r.Context(), model.Username(req.Username), req.Pin, req.Kvrcoin, req.ChessPoints)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AccountFromModel(acct))
}

// Update handles PATCH /api/v1/accounts/{username} (API-key guarded)
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	username := model.Username(mux.Vars(r)["username"])

	var req request.UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Pin == nil && req.Kvrcoin == nil && req.ChessPoints == nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("at least one of pin, kvrcoin, chess_points is required"))
		return
	}

	acct, err := h.registryService.Update(r.Context(), username, registry.AccountUpdate{
		PIN:     req.Pin,
		Balance: req.Kvrcoin,
		Score:   req.ChessPoints,
	})
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AccountFromModel(acct))
}

// Delete handles DELETE /api/v1/accounts/{username} (API-key guarded)
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username := model.Username(mux.Vars(r)["username"])

	if err := h.registryService.Remove(r.Context(), username); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.NoContent(w)
}
