package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet holds the spendable balance of a user. Version increments on every
// balance change and guards conditional updates.
type Wallet struct {
	UserID    int64
	Balance   decimal.Decimal
	Version   int64
	UpdatedAt time.Time
}

// BalanceResponse is the body of GET /user/balance.
type BalanceResponse struct {
	UserID  int64   `json:"user_id"`
	Balance float64 `json:"balance"`
}

// BalanceUpdate is pushed to websocket subscribers when a balance changes.
type BalanceUpdate struct {
	Balance float64 `json:"balance"`
}
