package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// HorseCount is the number of runners in every horse race.
const HorseCount = 4

type BetResult string

const (
	BetResultWin  BetResult = "win"
	BetResultLose BetResult = "lose"
)

// Bet is a settled horse race wager as stored in the ledger.
type Bet struct {
	ID            string
	UserID        int64
	HorseChoice   int
	BetAmount     decimal.Decimal
	WinningHorse  int
	Result        BetResult
	Winnings      decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	CreatedAt     time.Time
}

// HorseBetRequest is the body of POST /bets/horse.
type HorseBetRequest struct {
	HorseChoice int             `json:"horse_choice"`
	BetAmount   decimal.Decimal `json:"bet_amount"`
}

// BetResponse is returned for a placed bet and for history entries.
type BetResponse struct {
	ID           string    `json:"id"`
	UserID       int64     `json:"user_id"`
	HorseChoice  int       `json:"horse_choice"`
	BetAmount    float64   `json:"bet_amount"`
	WinningHorse int       `json:"winning_horse"`
	Result       BetResult `json:"result"`
	Winnings     float64   `json:"winnings"`
	NewBalance   float64   `json:"new_balance"`
	CreatedAt    time.Time `json:"created_at"`
}

// BetHistoryResponse wraps a page of past bets.
type BetHistoryResponse struct {
	Bets  []BetResponse `json:"bets"`
	Count int           `json:"count"`
}

// ToResponse renders the bet with money as JSON numbers.
func (b *Bet) ToResponse() BetResponse {
	return BetResponse{
		ID:           b.ID,
		UserID:       b.UserID,
		HorseChoice:  b.HorseChoice,
		BetAmount:    b.BetAmount.InexactFloat64(),
		WinningHorse: b.WinningHorse,
		Result:       b.Result,
		Winnings:     b.Winnings.InexactFloat64(),
		NewBalance:   b.BalanceAfter.InexactFloat64(),
		CreatedAt:    b.CreatedAt,
	}
}
