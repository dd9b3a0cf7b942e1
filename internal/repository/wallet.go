package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/betmasterx/betmasterx-go/internal/model"
)

var (
	ErrWalletNotFound  = errors.New("wallet not found")
	ErrVersionConflict = errors.New("wallet was modified concurrently")
)

// WalletRepository handles wallet balances and the bets that move them.
type WalletRepository struct {
	db *DB
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(db *DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// Get returns the wallet of a user.
func (r *WalletRepository) Get(ctx context.Context, userID int64) (*model.Wallet, error) {
	query := r.db.Dialect.Rebind(`SELECT user_id, balance, version, updated_at FROM wallets WHERE user_id = ?`)
	return scanWallet(r.db.QueryRowContext(ctx, query, userID))
}

// SettleFunc decides a bet against the locked wallet. It must fill in
// BalanceAfter; returning an error aborts the settlement.
type SettleFunc func(wallet model.Wallet) (*model.Bet, error)

// Settle locks the user's wallet, lets decide compute the bet, then writes the
// new balance and the bet record in the same transaction. The balance update
// is conditional on the version read under the lock.
func (r *WalletRepository) Settle(ctx context.Context, userID int64, decide SettleFunc) (*model.Bet, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := r.db.Dialect.Rebind(`SELECT user_id, balance, version, updated_at FROM wallets WHERE user_id = ?` + r.db.Dialect.forUpdate())
	wallet, err := scanWallet(tx.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, err
	}

	bet, err := decide(*wallet)
	if err != nil {
		return nil, err
	}
	bet.UserID = userID
	bet.BalanceBefore = wallet.Balance
	if bet.CreatedAt.IsZero() {
		bet.CreatedAt = time.Now().UTC()
	}

	if err := updateBalance(ctx, tx, r.db.Dialect, wallet, bet.BalanceAfter, bet.CreatedAt); err != nil {
		return nil, err
	}

	if err := insertBet(ctx, tx, r.db.Dialect, bet); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return bet, nil
}

// updateBalance writes the new balance only if the wallet still carries the
// version it was read at.
func updateBalance(ctx context.Context, q queryExecer, dialect Dialect, wallet *model.Wallet, balance decimal.Decimal, at time.Time) error {
	query := dialect.Rebind(`UPDATE wallets SET balance = ?, version = version + 1, updated_at = ? WHERE user_id = ? AND version = ?`)
	result, err := q.ExecContext(ctx, query, balance.StringFixed(2), toMillis(at), wallet.UserID, wallet.Version)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

func scanWallet(row *sql.Row) (*model.Wallet, error) {
	wallet := &model.Wallet{}
	var updatedAt int64
	if err := row.Scan(&wallet.UserID, &wallet.Balance, &wallet.Version, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	wallet.UpdatedAt = fromMillis(updatedAt)
	return wallet, nil
}
