package main

import (
	"slices"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"ENV", "PORT", "STORE_DRIVER", "DATA_DIR", "JWT_SECRET", "JWT_EXPIRATION_HOURS", "CORS_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	if cfg.Env != "development" || cfg.Port != "8080" {
		t.Errorf("unexpected env/port: %s %s", cfg.Env, cfg.Port)
	}
	if cfg.StoreDriver != "json" || cfg.DataDir != "./data" {
		t.Errorf("unexpected store settings: %s %s", cfg.StoreDriver, cfg.DataDir)
	}
	if cfg.JWTExp != 24*time.Hour {
		t.Errorf("expected 24h token lifetime, got %s", cfg.JWTExp)
	}
	if !slices.Equal(cfg.CORSOrigins, []string{"http://localhost:3000"}) {
		t.Errorf("unexpected CORS origins: %v", cfg.CORSOrigins)
	}
	if cfg.IsProduction() {
		t.Error("development config reported as production")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("JWT_EXPIRATION_HOURS", "2")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")

	cfg := LoadConfig()
	if !cfg.IsProduction() {
		t.Error("expected production")
	}
	if cfg.StoreDriver != "postgres" {
		t.Errorf("driver should be lowercased, got %s", cfg.StoreDriver)
	}
	if cfg.JWTExp != 2*time.Hour {
		t.Errorf("expected 2h, got %s", cfg.JWTExp)
	}
	if want := []string{"https://a.example", "https://b.example"}; !slices.Equal(cfg.CORSOrigins, want) {
		t.Errorf("expected %v, got %v", want, cfg.CORSOrigins)
	}
}

func TestGetEnvAsIntFallsBack(t *testing.T) {
	t.Setenv("JWT_EXPIRATION_HOURS", "soon")
	if got := getEnvAsInt("JWT_EXPIRATION_HOURS", 7); got != 7 {
		t.Errorf("expected fallback 7, got %d", got)
	}
}

func TestInitStoreRejectsUnknownDriver(t *testing.T) {
	if _, err := InitStore(&Config{StoreDriver: "mongo", DataDir: t.TempDir()}); err == nil {
		t.Error("expected error for unknown driver")
	}
}
