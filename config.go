package ephemeral

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the environment-driven settings that select the store stack.
type Config struct {
	// RedisURL enables the shared remote backend when non-empty
	// (redis://[:password@]host:port[/db]). When empty the system runs on
	// the local backend only.
	RedisURL string
	// SQLitePath selects a durable SQLite local backend instead of the
	// in-memory one when non-empty.
	SQLitePath string
	// TokenTTL is the confirmation token validity window.
	TokenTTL time.Duration
	// SweepInterval is how often expired entries are physically removed.
	SweepInterval time.Duration
	// RemoteTimeout bounds each call to the remote backend.
	RemoteTimeout time.Duration
}

// LoadConfig reads configuration from the environment, after loading a
// .env file if one is present.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		RedisURL:      os.Getenv("REDIS_URL"),
		SQLitePath:    os.Getenv("SQLITE_PATH"),
		TokenTTL:      DefaultTokenTTL,
		SweepInterval: 5 * time.Minute,
		RemoteTimeout: 2 * time.Second,
	}

	var err error
	if cfg.TokenTTL, err = durationEnv("TOKEN_TTL", cfg.TokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.SweepInterval, err = durationEnv("SWEEP_INTERVAL", cfg.SweepInterval); err != nil {
		return Config{}, err
	}
	if cfg.RemoteTimeout, err = durationEnv("REMOTE_TIMEOUT", cfg.RemoteTimeout); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("ephemeral: invalid %s: %w", name, err)
	}
	return d, nil
}
