package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Addr is the HTTP listen address.
	Addr string
	// DatabaseURL is the postgres DSN for the persistence bridge. Empty
	// runs the realtime core without the REST surface.
	DatabaseURL string
	// PresenceTTL is the inactivity window after which a silent cursor is
	// evicted.
	PresenceTTL time.Duration
	// Debug switches zap to development output.
	Debug bool
}

// Load reads .env if present, then the environment. Missing values fall
// back to defaults; only malformed ones are errors.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:        getenv("ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		PresenceTTL: 10 * time.Second,
		Debug:       os.Getenv("DEBUG") == "1",
	}

	if v := os.Getenv("PRESENCE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse PRESENCE_TTL: %w", err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("PRESENCE_TTL must be positive, got %q", v)
		}
		cfg.PresenceTTL = d
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
