package handler

import (
	"errors"
	"net/http"

	"github.com/betmasterx/betmasterx-go/internal/middleware"
	"github.com/betmasterx/betmasterx-go/internal/service"
)

// UserHandler serves the wallet of the authenticated user.
type UserHandler struct {
	wallets *service.WalletService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(wallets *service.WalletService) *UserHandler {
	return &UserHandler{wallets: wallets}
}

// HandleBalance handles GET /user/balance requests.
func (h *UserHandler) HandleBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("Not authenticated"))
		return
	}

	resp, err := h.wallets.Balance(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrWalletNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
			return
		}
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
