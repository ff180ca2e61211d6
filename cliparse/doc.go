// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 4270)
  - DatabaseURL: SQLite path or PostgreSQL connection string (required)
  - DatabaseType: "sqlite" or "postgres" (default: sqlite)
  - BaseURL: Public base URL (default: http://localhost:<port>)
  - AccessSecret: Access token signing secret (required)
  - RefreshSecret: Refresh token hashing secret (required)
  - AccessTokenTTL: Access token lifetime (default: 15m)
  - RefreshTokenTTL: Refresh token lifetime (default: 720h)

# CLI Flags

	-p               Server port
	-d               Database URL
	-t               Database type
	--base-url       Public base URL
	--access-secret  Access token secret
	--refresh-secret Refresh token secret
	--access-ttl     Access token lifetime (minutes)
	--refresh-ttl    Refresh token lifetime (hours)

# Environment Variables

Flags fall back to environment variables:

	PORT                    → -p
	DATABASE_URL            → -d
	DATABASE_TYPE           → -t
	BASE_URL                → --base-url
	ACCESS_TOKEN_SECRET     → --access-secret
	REFRESH_TOKEN_SECRET    → --refresh-secret
	ACCESS_TOKEN_TTL_MIN    → --access-ttl
	REFRESH_TOKEN_TTL_HOURS → --refresh-ttl

CLI flags take precedence over environment variables. main loads a .env
file (via godotenv) before parsing, so a local .env behaves like exported
environment variables.

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - ACCESS_TOKEN_SECRET must be provided
  - REFRESH_TOKEN_SECRET must be provided
  - DATABASE_TYPE, if set, must be sqlite or postgres
*/
package cliparse
