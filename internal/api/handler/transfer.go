package handler

import (
	"encoding/json"
	"net/http"

	"github.com/KingdomVR/kvr-go-database/internal/api/apierr"
	"github.com/KingdomVR/kvr-go-database/internal/api/middleware"
	"github.com/KingdomVR/kvr-go-database/internal/api/request"
	"github.com/KingdomVR/kvr-go-database/internal/api/response"
	"github.com/KingdomVR/kvr-go-database/internal/model"
	"github.com/KingdomVR/kvr-go-database/internal/services/transfer"
)

// TransferHandler handles the coin transfer endpoint
type TransferHandler struct {
	transferService *transfer.Service
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(transferService *transfer.Service) *TransferHandler {
	return &TransferHandler{
		transferService: transferService,
	}
}

// Create handles POST /api/v1/transfers
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	var req request.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	if req.To == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("to is required"))
		return
	}

	acct, err := h.transferService.Transfer(r.Context(), session.Token, model.Username(req.To), req.Amount)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AccountFromModel(acct))
}
