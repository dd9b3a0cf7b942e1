package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/betmasterx/betmasterx-go/internal/middleware"
)

// RouterConfig carries the settings the router needs from the configuration.
type RouterConfig struct {
	JWTSecret      string
	AllowedOrigins []string
	AuthRateRPS    float64
	AuthRateBurst  int

	// TrustProxy takes the client address from X-Forwarded-For and X-Real-IP.
	// Only enable it behind a proxy that overwrites those headers.
	TrustProxy bool
}

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Auth          *AuthHandler
	User          *UserHandler
	Bet           *BetHandler
	Payment       *PaymentHandler
	System        *SystemHandler
	BalanceStream http.HandlerFunc
}

// NewRouter builds the HTTP router. The API is served both at the root and
// under /api. Background cleanup of rate limiters stops when ctx is done.
func NewRouter(ctx context.Context, cfg RouterConfig, h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	r.Get("/", h.System.HandleRoot)

	api := apiRoutes(ctx, cfg, h)
	r.Mount("/api", api)
	r.Mount("/", api)

	return r
}

func apiRoutes(ctx context.Context, cfg RouterConfig, h Handlers) chi.Router {
	r := chi.NewRouter()

	r.Get("/health", h.System.HandleHealth)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(ctx, cfg.AuthRateRPS, cfg.AuthRateBurst))
		r.Post("/auth/register", h.Auth.HandleRegister)
		r.Post("/auth/login", h.Auth.HandleLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.JWTSecret))

		r.Get("/user/me", h.Auth.HandleMe)
		r.Get("/user/balance", h.User.HandleBalance)
		if h.BalanceStream != nil {
			r.Get("/user/balance/ws", h.BalanceStream)
		}

		r.Post("/bets/horse", h.Bet.HandlePlaceHorseBet)
		r.Get("/bets/history", h.Bet.HandleHistory)

		r.Get("/payment/status", h.Payment.HandleStatus)
		r.Post("/payment/deposit", h.Payment.HandleDeposit)
		r.Post("/payment/withdraw", h.Payment.HandleWithdraw)
	})

	return r
}
