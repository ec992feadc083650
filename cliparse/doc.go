// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Values are layered: a .env file in the working directory (if present) seeds
the environment without overriding it, envconfig reads the environment
into Config, and flags override both.

# Environment Variables

	PORT                      Server port (default: 3318)
	DATABASE_URL              Postgres URL or SQLite path (required)
	DATABASE_TYPE             sqlite or postgres (default: sqlite)
	JWT_SECRET                Token signing secret (required)
	TOKEN_TTL                 Session lifetime (default: 168h)
	CORS_ORIGINS              Comma-separated allowed origins
	BOOTSTRAP_ADMIN_EMAIL     Admin account ensured at startup
	BOOTSTRAP_ADMIN_PASSWORD  Its password
	VOTE_RETRIES              Retries on transient storage failure (default: 3)
	VOTE_RETRY_BASE           First retry delay (default: 50ms)
	LOGIN_RATE_LIMIT          Login attempts per IP (default: 20)
	LOGIN_RATE_WINDOW         Window for LOGIN_RATE_LIMIT (default: 15m)

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type
	-jwt-secret   Token signing secret

# Validation

ParseFlags returns an error if:

  - DATABASE_URL is missing
  - DATABASE_TYPE is not sqlite or postgres
  - JWT_SECRET is missing or is the sample value "supersecretkey"
  - only one of the bootstrap admin email and password is set
*/
package cliparse
