package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/betmasterx/betmasterx-go/internal/cache"
	"github.com/betmasterx/betmasterx-go/internal/config"
	"github.com/betmasterx/betmasterx-go/internal/handler"
	"github.com/betmasterx/betmasterx-go/internal/realtime"
	"github.com/betmasterx/betmasterx-go/internal/repository"
	"github.com/betmasterx/betmasterx-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if cfg.Env == "production" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.NewDB(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database connection failed", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	betRepo := repository.NewBetRepository(db)

	hub := realtime.NewHub()
	defer hub.Close()

	betOpts := []service.BetOption{
		service.WithPublisher(hub),
		service.WithMaxBet(cfg.MaxBet),
	}
	if cfg.BetRateLimit > 0 {
		betOpts = append(betOpts, service.WithRateLimiter(newBetLimiter(ctx, cfg)))
	}

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry, cfg.StartingBalance)
	walletService := service.NewWalletService(walletRepo)
	betService := service.NewBetService(walletRepo, betRepo, cfg.HouseEdge, betOpts...)

	slog.Info("betting configured",
		"payout_multiplier", betService.Multiplier().String(),
		"max_bet", cfg.MaxBet.String(),
		"starting_balance", cfg.StartingBalance.String(),
	)

	router := handler.NewRouter(ctx, handler.RouterConfig{
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AuthRateRPS:    cfg.AuthRateRPS,
		AuthRateBurst:  cfg.AuthRateBurst,
		TrustProxy:     cfg.TrustProxy,
	}, handler.Handlers{
		Auth:          handler.NewAuthHandler(authService),
		User:          handler.NewUserHandler(walletService),
		Bet:           handler.NewBetHandler(betService),
		Payment:       handler.NewPaymentHandler(),
		System:        handler.NewSystemHandler(db),
		BalanceStream: realtime.NewHandler(hub, walletService, cfg.CORSAllowedOrigins).HandleBalanceStream,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "driver", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

// newBetLimiter shares bet counters through Redis when it is configured and
// reachable, and falls back to per-process buckets otherwise.
func newBetLimiter(ctx context.Context, cfg config.Config) service.RateLimiter {
	if cfg.RedisAddr == "" {
		return service.NewMemoryLimiter(ctx, cfg.BetRateLimit)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	store, err := cache.NewRedisStore(pingCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		slog.Warn("redis unavailable, using in-memory bet limiter", "addr", cfg.RedisAddr, "error", err)
		return service.NewMemoryLimiter(ctx, cfg.BetRateLimit)
	}

	go func() {
		<-ctx.Done()
		store.Close()
	}()

	slog.Info("redis bet limiter enabled", "addr", cfg.RedisAddr)
	return service.NewWindowLimiter(store, cfg.BetRateLimit)
}
