package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/betmasterx/betmasterx-go/internal/model"
	"github.com/betmasterx/betmasterx-go/internal/repository"
)

var ErrWalletNotFound = errors.New("wallet not found")

// WalletService reads account balances.
type WalletService struct {
	repo *repository.WalletRepository
}

// NewWalletService creates a new WalletService.
func NewWalletService(repo *repository.WalletRepository) *WalletService {
	return &WalletService{repo: repo}
}

// Balance returns the current balance of the user.
func (s *WalletService) Balance(ctx context.Context, userID int64) (model.BalanceResponse, error) {
	balance, err := s.CurrentBalance(ctx, userID)
	if err != nil {
		return model.BalanceResponse{}, err
	}
	return model.BalanceResponse{
		UserID:  userID,
		Balance: balance.InexactFloat64(),
	}, nil
}

// CurrentBalance returns the exact stored balance of the user.
func (s *WalletService) CurrentBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	wallet, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrWalletNotFound) {
			return decimal.Zero, ErrWalletNotFound
		}
		return decimal.Zero, err
	}
	return wallet.Balance, nil
}
