package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/betmasterx/betmasterx-go/internal/crypto"
	"github.com/betmasterx/betmasterx-go/internal/model"
	"github.com/betmasterx/betmasterx-go/internal/repository"
)

var (
	ErrInvalidHorseChoice  = fmt.Errorf("invalid horse choice, must be between 1 and %d", model.HorseCount)
	ErrInvalidBetAmount    = errors.New("bet amount must be greater than 0")
	ErrBetAmountPrecision  = errors.New("bet amount must have at most 2 decimal places")
	ErrBetTooLarge         = errors.New("bet amount exceeds the maximum stake")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrRateLimited         = errors.New("too many bets, slow down")
	ErrBetConflict         = errors.New("balance changed concurrently, please retry")
)

const maxSettleAttempts = 3

// BalancePublisher receives the new balance after each settled bet.
type BalancePublisher interface {
	Publish(userID int64, balance decimal.Decimal)
}

// DrawFunc picks the winning runner out of runners.
type DrawFunc func(runners int) (int, error)

// BetService places and lists horse race bets.
type BetService struct {
	wallets    *repository.WalletRepository
	bets       *repository.BetRepository
	limiter    RateLimiter
	publisher  BalancePublisher
	draw       DrawFunc
	multiplier decimal.Decimal
	maxBet     decimal.Decimal
	locks      *userLocks
}

// BetOption customises a BetService.
type BetOption func(*BetService)

// WithRateLimiter limits how often a single user may bet.
func WithRateLimiter(l RateLimiter) BetOption {
	return func(s *BetService) { s.limiter = l }
}

// WithPublisher pushes settled balances to p.
func WithPublisher(p BalancePublisher) BetOption {
	return func(s *BetService) { s.publisher = p }
}

// WithDraw replaces the race draw.
func WithDraw(draw DrawFunc) BetOption {
	return func(s *BetService) { s.draw = draw }
}

// WithMaxBet caps a single stake. Zero disables the cap.
func WithMaxBet(limit decimal.Decimal) BetOption {
	return func(s *BetService) { s.maxBet = limit }
}

// NewBetService creates a new BetService paying PayoutMultiplier(HorseCount, houseEdge).
func NewBetService(wallets *repository.WalletRepository, bets *repository.BetRepository, houseEdge float64, opts ...BetOption) *BetService {
	s := &BetService{
		wallets:    wallets,
		bets:       bets,
		draw:       crypto.DrawWinner,
		multiplier: PayoutMultiplier(model.HorseCount, houseEdge),
		locks:      newUserLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PayoutMultiplier is the gross return per unit staked on a winning runner:
// the fair odds of an even field reduced by the house edge.
func PayoutMultiplier(runners int, houseEdge float64) decimal.Decimal {
	return decimal.NewFromInt(int64(runners)).Mul(decimal.NewFromInt(1).Sub(decimal.NewFromFloat(houseEdge)))
}

// Multiplier returns the payout multiplier in use.
func (s *BetService) Multiplier() decimal.Decimal {
	return s.multiplier
}

// PlaceHorseBet validates the wager, draws the race and settles stake and
// winnings as one balance transition.
func (s *BetService) PlaceHorseBet(ctx context.Context, userID int64, req model.HorseBetRequest) (model.BetResponse, error) {
	if err := s.validate(req); err != nil {
		return model.BetResponse{}, err
	}

	if s.limiter != nil {
		ok, err := s.limiter.Allow(ctx, userID)
		if err != nil {
			slog.Warn("bet rate limiter unavailable", "user_id", userID, "error", err)
		} else if !ok {
			return model.BetResponse{}, ErrRateLimited
		}
	}

	release := s.locks.Lock(userID)
	defer release()

	var (
		bet *model.Bet
		err error
	)
	for attempt := 1; attempt <= maxSettleAttempts; attempt++ {
		bet, err = s.wallets.Settle(ctx, userID, s.resolve(req))
		if !errors.Is(err, repository.ErrVersionConflict) {
			break
		}
		slog.Warn("bet settlement conflict", "user_id", userID, "attempt", attempt)
	}
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrWalletNotFound):
			return model.BetResponse{}, ErrWalletNotFound
		case errors.Is(err, repository.ErrVersionConflict):
			return model.BetResponse{}, ErrBetConflict
		}
		return model.BetResponse{}, err
	}

	slog.Info("bet settled",
		"bet_id", bet.ID,
		"user_id", userID,
		"horse_choice", bet.HorseChoice,
		"winning_horse", bet.WinningHorse,
		"result", bet.Result,
		"bet_amount", bet.BetAmount.String(),
		"new_balance", bet.BalanceAfter.String(),
	)

	if s.publisher != nil {
		s.publisher.Publish(userID, bet.BalanceAfter)
	}

	return bet.ToResponse(), nil
}

func (s *BetService) validate(req model.HorseBetRequest) error {
	if req.HorseChoice < 1 || req.HorseChoice > model.HorseCount {
		return ErrInvalidHorseChoice
	}
	if !req.BetAmount.IsPositive() {
		return ErrInvalidBetAmount
	}
	if !req.BetAmount.Equal(req.BetAmount.Truncate(2)) {
		return ErrBetAmountPrecision
	}
	if s.maxBet.IsPositive() && req.BetAmount.GreaterThan(s.maxBet) {
		return ErrBetTooLarge
	}
	return nil
}

// resolve returns the settlement step run against the locked wallet.
func (s *BetService) resolve(req model.HorseBetRequest) repository.SettleFunc {
	return func(wallet model.Wallet) (*model.Bet, error) {
		if req.BetAmount.GreaterThan(wallet.Balance) {
			return nil, ErrInsufficientBalance
		}

		winner, err := s.draw(model.HorseCount)
		if err != nil {
			return nil, fmt.Errorf("draw race: %w", err)
		}

		// Version 7 ids sort by creation time; history breaks created_at ties on id.
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("bet id: %w", err)
		}

		bet := &model.Bet{
			ID:           id.String(),
			HorseChoice:  req.HorseChoice,
			BetAmount:    req.BetAmount,
			WinningHorse: winner,
			Result:       model.BetResultLose,
			Winnings:     decimal.Zero,
		}
		if winner == req.HorseChoice {
			bet.Result = model.BetResultWin
			bet.Winnings = req.BetAmount.Mul(s.multiplier).Round(2)
		}
		bet.BalanceAfter = wallet.Balance.Sub(req.BetAmount).Add(bet.Winnings)
		return bet, nil
	}
}

// History returns the user's most recent bets, newest first.
func (s *BetService) History(ctx context.Context, userID int64, limit int) (model.BetHistoryResponse, error) {
	bets, err := s.bets.ListByUser(ctx, userID, limit)
	if err != nil {
		return model.BetHistoryResponse{}, err
	}

	resp := model.BetHistoryResponse{Bets: make([]model.BetResponse, len(bets)), Count: len(bets)}
	for i := range bets {
		resp.Bets[i] = bets[i].ToResponse()
	}
	return resp, nil
}
