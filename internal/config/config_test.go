package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ADDR", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PRESENCE_TTL", "")
	t.Setenv("DEBUG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("want default addr :8080, got %q", cfg.Addr)
	}
	if cfg.PresenceTTL != 10*time.Second {
		t.Fatalf("want default presence ttl 10s, got %v", cfg.PresenceTTL)
	}
	if cfg.Debug {
		t.Fatalf("debug should default off")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("DATABASE_URL", "postgres://localhost/boards")
	t.Setenv("PRESENCE_TTL", "30s")
	t.Setenv("DEBUG", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9999" || cfg.DatabaseURL != "postgres://localhost/boards" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.PresenceTTL != 30*time.Second || !cfg.Debug {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoad_BadTTL(t *testing.T) {
	t.Setenv("PRESENCE_TTL", "soon")
	if _, err := Load(); err == nil {
		t.Fatalf("want error for malformed PRESENCE_TTL")
	}

	t.Setenv("PRESENCE_TTL", "-5s")
	if _, err := Load(); err == nil {
		t.Fatalf("want error for negative PRESENCE_TTL")
	}
}
