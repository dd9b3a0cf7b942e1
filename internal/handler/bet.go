package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/betmasterx/betmasterx-go/internal/middleware"
	"github.com/betmasterx/betmasterx-go/internal/model"
	"github.com/betmasterx/betmasterx-go/internal/service"
)

const defaultHistoryLimit = 20

// BetHandler handles HTTP requests for placing and listing bets.
type BetHandler struct {
	service *service.BetService
}

// NewBetHandler creates a new BetHandler.
func NewBetHandler(svc *service.BetService) *BetHandler {
	return &BetHandler{service: svc}
}

// HandlePlaceHorseBet handles POST /bets/horse requests.
func (h *BetHandler) HandlePlaceHorseBet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("Not authenticated"))
		return
	}

	var req model.HorseBetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.PlaceHorseBet(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidHorseChoice),
			errors.Is(err, service.ErrInvalidBetAmount),
			errors.Is(err, service.ErrBetAmountPrecision),
			errors.Is(err, service.ErrBetTooLarge),
			errors.Is(err, service.ErrInsufficientBalance):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, service.ErrRateLimited):
			writeJSON(w, http.StatusTooManyRequests, errorResponse(err.Error()))
		case errors.Is(err, service.ErrBetConflict):
			writeJSON(w, http.StatusConflict, errorResponse(err.Error()))
		case errors.Is(err, service.ErrWalletNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
		default:
			internalError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleHistory handles GET /bets/history requests. The optional limit query
// parameter bounds the number of bets returned.
func (h *BetHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("Not authenticated"))
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse("limit must be a positive integer"))
			return
		}
		limit = n
	}

	resp, err := h.service.History(r.Context(), userID, limit)
	if err != nil {
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
