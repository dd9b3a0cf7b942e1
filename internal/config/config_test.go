package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8000")
	}
	if cfg.DBDriver != "sqlite" {
		t.Errorf("DBDriver = %q, want %q", cfg.DBDriver, "sqlite")
	}
	if cfg.JWTExpiry != 30*time.Minute {
		t.Errorf("JWTExpiry = %v, want 30m", cfg.JWTExpiry)
	}
	if cfg.StartingBalance.String() != "1000" {
		t.Errorf("StartingBalance = %s, want 1000", cfg.StartingBalance)
	}
	if cfg.TrustProxy {
		t.Error("TrustProxy should default to false")
	}
	if len(cfg.CORSAllowedOrigins) != 4 {
		t.Errorf("expected 4 default CORS origins, got %d", len(cfg.CORSAllowedOrigins))
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", " MySQL ")
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("STARTING_BALANCE", "250.50")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want %q", cfg.Port, "9090")
	}
	if cfg.DBDriver != "mysql" {
		t.Errorf("DBDriver = %q, want %q", cfg.DBDriver, "mysql")
	}
	if cfg.JWTExpiry != 2*time.Hour {
		t.Errorf("JWTExpiry = %v, want 2h", cfg.JWTExpiry)
	}
	if cfg.StartingBalance.String() != "250.5" {
		t.Errorf("StartingBalance = %s, want 250.5", cfg.StartingBalance)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Errorf("expected 2 CORS origins, got %d", len(cfg.CORSAllowedOrigins))
	}
}

func TestLoadProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENV", "production")

	_, err := Load()
	if !errors.Is(err, ErrProductionSecret) {
		t.Fatalf("expected ErrProductionSecret, got %v", err)
	}

	t.Setenv("JWT_SECRET", "a-real-secret")
	if _, err := Load(); err != nil {
		t.Fatalf("Load() unexpected error with secret set: %v", err)
	}
}

func TestValidate(t *testing.T) {
	base, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	edge := base
	edge.HouseEdge = 1
	if err := edge.Validate(); !errors.Is(err, ErrHouseEdge) {
		t.Errorf("expected ErrHouseEdge, got %v", err)
	}

	balance := base
	balance.StartingBalance = balance.StartingBalance.Neg()
	if err := balance.Validate(); !errors.Is(err, ErrStartingBalance) {
		t.Errorf("expected ErrStartingBalance, got %v", err)
	}

	driver := base
	driver.DBDriver = "oracle"
	if err := driver.Validate(); !errors.Is(err, ErrDBDriver) {
		t.Errorf("expected ErrDBDriver, got %v", err)
	}
}
