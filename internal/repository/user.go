package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/betmasterx/betmasterx-go/internal/model"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
)

// UserRepository handles user persistence operations.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateWithWallet inserts a new user together with a funded wallet in one
// transaction and sets the generated ID on the user struct.
func (r *UserRepository) CreateWithWallet(ctx context.Context, user *model.User, startingBalance decimal.Decimal) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	id, err := r.db.Dialect.insertReturningID(ctx, tx,
		`INSERT INTO users (username, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		user.Username, user.Email, user.PasswordHash, toMillis(now), toMillis(now),
	)
	if err != nil {
		return mapUserConstraint(err)
	}

	walletQuery := r.db.Dialect.Rebind(`INSERT INTO wallets (user_id, balance, version, updated_at) VALUES (?, ?, 0, ?)`)
	if _, err := tx.ExecContext(ctx, walletQuery, id, startingBalance.StringFixed(2), toMillis(now)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	user.ID = id
	user.CreatedAt = fromMillis(toMillis(now))
	user.UpdatedAt = user.CreatedAt
	return nil
}

// GetByUsername retrieves a user by their username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT id, username, email, password_hash, created_at, updated_at FROM users WHERE username = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, r.db.Dialect.Rebind(query), username))
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT id, username, email, password_hash, created_at, updated_at FROM users WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, r.db.Dialect.Rebind(query), id))
}

// UpdatePasswordHash replaces the stored hash, used when upgrading legacy hashes.
func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	query := r.db.Dialect.Rebind(`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, hash, toMillis(time.Now()), id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) scanOne(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	var createdAt, updatedAt int64
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.CreatedAt = fromMillis(createdAt)
	user.UpdatedAt = fromMillis(updatedAt)
	return user, nil
}

// mapUserConstraint turns unique violations on users into sentinel errors.
func mapUserConstraint(err error) error {
	detail, ok := uniqueViolation(err)
	if !ok {
		return err
	}
	for _, marker := range []string{"users.email", "'email'", "users_email_key"} {
		if strings.Contains(detail, marker) {
			return ErrDuplicateEmail
		}
	}
	return ErrDuplicateUsername
}
