package handler

import "net/http"

// PaymentHandler answers the payment endpoints until a gateway is integrated.
type PaymentHandler struct{}

func NewPaymentHandler() *PaymentHandler {
	return &PaymentHandler{}
}

// HandleStatus handles GET /payment/status requests.
func (h *PaymentHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "coming_soon",
		"message":           "Payment Gateway Integration Coming Soon",
		"supported_methods": []string{},
	})
}

// HandleDeposit handles POST /payment/deposit requests.
func (h *PaymentHandler) HandleDeposit(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotImplemented, map[string]string{
		"status":  "not_implemented",
		"message": "Deposit functionality will be available soon",
	})
}

// HandleWithdraw handles POST /payment/withdraw requests.
func (h *PaymentHandler) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotImplemented, map[string]string{
		"status":  "not_implemented",
		"message": "Withdrawal functionality will be available soon",
	})
}
