package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
)

const devJWTSecret = "dev-secret-change-in-production"

var (
	ErrProductionSecret = errors.New("JWT_SECRET must be set in production environment")
	ErrHouseEdge        = errors.New("HOUSE_EDGE must be in [0, 1)")
	ErrStartingBalance  = errors.New("STARTING_BALANCE must not be negative")
	ErrDBDriver         = errors.New("DB_DRIVER must be one of sqlite, mysql, postgres")
)

type Config struct {
	Port        string        `env:"PORT" envDefault:"8000"`
	Env         string        `env:"ENV" envDefault:"development"`
	DBDriver    string        `env:"DB_DRIVER" envDefault:"sqlite"`
	DatabaseDSN string        `env:"DATABASE_DSN" envDefault:"betmasterx.db"`
	JWTSecret   string        `env:"JWT_SECRET" envDefault:"dev-secret-change-in-production"`
	JWTExpiry   time.Duration `env:"JWT_EXPIRY" envDefault:"30m"`

	StartingBalance decimal.Decimal `env:"STARTING_BALANCE" envDefault:"1000"`
	HouseEdge       float64         `env:"HOUSE_EDGE" envDefault:"0.05"`
	MaxBet          decimal.Decimal `env:"MAX_BET" envDefault:"1000"`

	AuthRateRPS   float64 `env:"AUTH_RATE_RPS" envDefault:"5"`
	AuthRateBurst int     `env:"AUTH_RATE_BURST" envDefault:"10"`
	BetRateLimit  int     `env:"BET_RATE_LIMIT" envDefault:"30"`
	TrustProxy    bool    `env:"TRUST_PROXY" envDefault:"false"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173,http://127.0.0.1:3000,http://127.0.0.1:5173"`
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints that env tags cannot express.
func (c Config) Validate() error {
	if c.Env == "production" && c.JWTSecret == devJWTSecret {
		return ErrProductionSecret
	}
	if c.HouseEdge < 0 || c.HouseEdge >= 1 {
		return ErrHouseEdge
	}
	if c.StartingBalance.IsNegative() {
		return ErrStartingBalance
	}
	switch c.DBDriver {
	case "sqlite", "mysql", "postgres":
	default:
		return ErrDBDriver
	}
	return nil
}
