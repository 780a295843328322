package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port int
	// DatabaseURL is the sql.Open data source; DatabaseType is the driver
	// name, derived from its scheme ("postgres://..." vs. a sqlite file
	// path) unless overridden.
	DatabaseURL  string
	DatabaseType string
	AdminKeySalt string
	PollSlugSalt string
	// RedisURL enables the result-snapshot cache when non-empty.
	RedisURL     string
	CacheEnabled bool
}

// ParseFlags validates flags and sets configuration
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("quickly-pick", flag.ContinueOnError)

	// Network config
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")

	// Secrets (prefer env variables)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt")
	fs.StringVar(&cfg.PollSlugSalt, "slug-salt", "", "Poll slug salt")

	// Optional result cache
	fs.StringVar(&cfg.RedisURL, "redis-url", "", "Redis URL for result caching")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL required")
	}

	cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
	if cfg.DatabaseType == "" {
		if strings.HasPrefix(cfg.DatabaseURL, "postgres://") || strings.HasPrefix(cfg.DatabaseURL, "postgresql://") {
			cfg.DatabaseType = "postgres"
		} else {
			cfg.DatabaseType = "sqlite"
		}
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}

	if cfg.PollSlugSalt == "" {
		cfg.PollSlugSalt = os.Getenv("POLL_SLUG_SALT")
	}
	if cfg.PollSlugSalt == "" {
		return Config{}, errors.New("POLL_SLUG_SALT required")
	}

	// Result cache is opt-in: absent REDIS_URL/-redis-url just disables it.
	if cfg.RedisURL == "" {
		cfg.RedisURL = os.Getenv("REDIS_URL")
	}
	cfg.CacheEnabled = cfg.RedisURL != ""

	return cfg, nil
}
