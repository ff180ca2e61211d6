// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port            int
	DatabaseURL     string
	DatabaseType    string
	BaseURL         string
	AccessSecret    string
	RefreshSecret   string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// ParseFlags validates flags and fills in defaults
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var accessTTLMin, refreshTTLHours int

	fs := flag.NewFlagSet("civiclink", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.BaseURL, "base-url", "", "Public base URL")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AccessSecret, "access-secret", "", "Access token signing secret (prefer env)")
	fs.StringVar(&cfg.RefreshSecret, "refresh-secret", "", "Refresh token hashing secret (prefer env)")

	// Token lifetimes
	fs.IntVar(&accessTTLMin, "access-ttl", 0, "Access token lifetime in minutes")
	fs.IntVar(&refreshTTLHours, "refresh-ttl", 0, "Refresh token lifetime in hours")

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
			cfg.Port = 4270 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, errors.New("database type must be sqlite or postgres")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv("BASE_URL")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + strconv.Itoa(cfg.Port)
	}

	// Secrets - MUST be provided
	if cfg.AccessSecret == "" {
		cfg.AccessSecret = os.Getenv("ACCESS_TOKEN_SECRET")
	}
	if cfg.AccessSecret == "" {
		return Config{}, errors.New("ACCESS_TOKEN_SECRET required")
	}

	if cfg.RefreshSecret == "" {
		cfg.RefreshSecret = os.Getenv("REFRESH_TOKEN_SECRET")
	}
	if cfg.RefreshSecret == "" {
		return Config{}, errors.New("REFRESH_TOKEN_SECRET required")
	}

	if accessTTLMin == 0 {
		if v := os.Getenv("ACCESS_TOKEN_TTL_MIN"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return Config{}, errors.New("invalid ACCESS_TOKEN_TTL_MIN env variable")
			}
			accessTTLMin = n
		} else {
			accessTTLMin = 15
		}
	}
	cfg.AccessTokenTTL = time.Duration(accessTTLMin) * time.Minute

	if refreshTTLHours == 0 {
		if v := os.Getenv("REFRESH_TOKEN_TTL_HOURS"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return Config{}, errors.New("invalid REFRESH_TOKEN_TTL_HOURS env variable")
			}
			refreshTTLHours = n
		} else {
			refreshTTLHours = 24 * 30
		}
	}
	cfg.RefreshTokenTTL = time.Duration(refreshTTLHours) * time.Hour

	return cfg, nil
}
