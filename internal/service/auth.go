package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/betmasterx/betmasterx-go/internal/crypto"
	"github.com/betmasterx/betmasterx-go/internal/model"
	"github.com/betmasterx/betmasterx-go/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthService handles authentication business logic.
type AuthService struct {
	repo            *repository.UserRepository
	jwtSecret       string
	jwtExpiry       time.Duration
	startingBalance decimal.Decimal
}

// NewAuthService creates a new AuthService. Every new account is funded with
// startingBalance.
func NewAuthService(repo *repository.UserRepository, secret string, expiry time.Duration, startingBalance decimal.Decimal) *AuthService {
	return &AuthService{
		repo:            repo,
		jwtSecret:       secret,
		jwtExpiry:       expiry,
		startingBalance: startingBalance,
	}
}

// Register creates a new user account with a funded wallet. It does not open a
// session; the client logs in afterwards.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.RegisterResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Password = crypto.NormalizePassword(req.Password)

	if err := model.Validate(req); err != nil {
		return model.RegisterResponse{}, err
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.RegisterResponse{}, err
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}

	if err := s.repo.CreateWithWallet(ctx, user, s.startingBalance); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			return model.RegisterResponse{}, ErrUsernameTaken
		case errors.Is(err, repository.ErrDuplicateEmail):
			return model.RegisterResponse{}, ErrEmailTaken
		}
		return model.RegisterResponse{}, err
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)

	return model.RegisterResponse{
		Message: "User registered successfully",
		User:    user.ToResponse(),
	}, nil
}

// Login authenticates a user and returns an auth token.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := model.Validate(req); err != nil {
		return model.LoginResponse{}, err
	}

	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.LoginResponse{}, ErrInvalidCredentials
		}
		return model.LoginResponse{}, err
	}

	match, err := crypto.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return model.LoginResponse{}, err
	}
	if !match {
		return model.LoginResponse{}, ErrInvalidCredentials
	}

	if crypto.NeedsRehash(user.PasswordHash) {
		s.upgradeHash(ctx, user.ID, req.Password)
	}

	token, err := crypto.GenerateToken(user.ID, user.Username, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return model.LoginResponse{}, err
	}

	return model.LoginResponse{
		Message:   "Login successful",
		User:      user.ToResponse(),
		Token:     token,
		TokenType: "bearer",
	}, nil
}

// upgradeHash replaces a legacy hash after a successful login. Failure only
// delays the upgrade to the next login.
func (s *AuthService) upgradeHash(ctx context.Context, userID int64, password string) {
	hash, err := crypto.HashPassword(password)
	if err != nil {
		slog.Warn("rehash failed", "user_id", userID, "error", err)
		return
	}
	if err := s.repo.UpdatePasswordHash(ctx, userID, hash); err != nil {
		slog.Warn("storing upgraded hash failed", "user_id", userID, "error", err)
	}
}

// GetUser retrieves a user by ID and returns safe user data.
func (s *AuthService) GetUser(ctx context.Context, userID int64) (model.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrUserNotFound
		}
		return model.UserResponse{}, err
	}

	return user.ToResponse(), nil
}
