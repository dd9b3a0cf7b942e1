package repository

import (
	"context"
	"database/sql"

	"github.com/betmasterx/betmasterx-go/internal/model"
)

const maxHistory = 100

// BetRepository reads the bet ledger.
type BetRepository struct {
	db *DB
}

// NewBetRepository creates a new BetRepository.
func NewBetRepository(db *DB) *BetRepository {
	return &BetRepository{db: db}
}

func insertBet(ctx context.Context, tx *sql.Tx, dialect Dialect, bet *model.Bet) error {
	query := dialect.Rebind(`INSERT INTO bets (id, user_id, horse_choice, bet_amount, winning_horse, outcome, winnings, balance_before, balance_after, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := tx.ExecContext(ctx, query,
		bet.ID,
		bet.UserID,
		bet.HorseChoice,
		bet.BetAmount.StringFixed(2),
		bet.WinningHorse,
		string(bet.Result),
		bet.Winnings.StringFixed(2),
		bet.BalanceBefore.StringFixed(2),
		bet.BalanceAfter.StringFixed(2),
		toMillis(bet.CreatedAt),
	)
	return err
}

// ListByUser returns the most recent bets of a user, newest first.
func (r *BetRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]model.Bet, error) {
	if limit <= 0 || limit > maxHistory {
		limit = maxHistory
	}

	query := r.db.Dialect.Rebind(`SELECT id, user_id, horse_choice, bet_amount, winning_horse, outcome, winnings, balance_before, balance_after, created_at
		FROM bets WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`)

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bets []model.Bet
	for rows.Next() {
		var (
			b         model.Bet
			outcome   string
			createdAt int64
		)
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.HorseChoice, &b.BetAmount, &b.WinningHorse, &outcome,
			&b.Winnings, &b.BalanceBefore, &b.BalanceAfter, &createdAt,
		); err != nil {
			return nil, err
		}
		b.Result = model.BetResult(outcome)
		b.CreatedAt = fromMillis(createdAt)
		bets = append(bets, b)
	}

	return bets, rows.Err()
}
