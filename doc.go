// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the VoteSecure API server.

VoteSecure runs online elections for registered, administrator-approved
voters. Every approved voter may cast exactly one ballot per election,
within the election's voting window, for a candidate admitted to that
election. Results stay sealed until the election ends.

# Starting the Server

The server reads a .env file, then environment variables, then CLI flags:

	JWT_SECRET=... DATABASE_URL=votesecure.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -jwt-secret ...

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file path or PostgreSQL connection string
  - JWT_SECRET (-jwt-secret): HMAC key for session tokens

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - TOKEN_TTL: Session lifetime (default: 168h)
  - CORS_ORIGINS: Comma-separated allowed origins (default: any)
  - BOOTSTRAP_ADMIN_EMAIL, BOOTSTRAP_ADMIN_PASSWORD: Administrator created at startup
  - VOTE_RETRIES, VOTE_RETRY_BASE: Retry policy for transient storage errors
  - LOGIN_RATE_LIMIT, LOGIN_RATE_WINDOW: Login attempts per client IP
  - TRUSTED_PROXIES: IPs or CIDRs whose X-Forwarded-For is honoured (default: none)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - election: Admission, lifecycle and tally rules, independent of storage
  - handlers: HTTP request handlers (accounts, elections, voting, results)
  - router: Route definitions using Go 1.22+ routing
  - middleware: Authentication, rate limiting, CORS, logging, JSON helpers
  - models: Request/response types
  - auth: Password hashing and session tokens
  - db: Schema and stores over SQLite or PostgreSQL
  - metrics: Prometheus counters and histograms
  - cliparse: Configuration parsing

On SIGINT or SIGTERM the server stops accepting connections, drains
in-flight requests and closes the database.

See package documentation for each component.
*/
package main
