// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status,
duration_ms).

# Authentication

Authenticator turns a bearer token into the caller's account:

	authn := middleware.NewAuthenticator(tokens, accounts)
	mux.HandleFunc("POST /vote", middleware.WithLogging(authn.RequireApproved(h.CastVote)))
	mux.HandleFunc("GET /admin/pending-users", middleware.WithLogging(authn.RequireAdmin(h.PendingUsers)))

The account is loaded from the database on every request and attached to
the context:

	acct, _ := middleware.AccountFromContext(r.Context())

Missing or invalid tokens get 401. Unapproved accounts behind
RequireApproved and non-admins behind RequireAdmin get 403.

# Rate Limiting

RateLimiter keeps a token bucket per client IP in a bounded LRU cache:

	limiter := middleware.NewRateLimiter(20, 15*time.Minute, cfg.TrustedProxies)
	mux.HandleFunc("POST /login", middleware.WithLogging(limiter.Limit(h.Login)))

Requests over the limit get 429 with a Retry-After header.

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(cfg.CORSOrigins)(mux),
	}

An empty origin list allows any origin. Allows methods GET, POST, PUT,
DELETE, OPTIONS with headers Content-Type, Authorization.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.ReasonResponse(w, http.StatusConflict, "duplicate_vote", "message")

Parse and validate JSON request bodies against their validate tags:

	var req models.CastVoteRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

Validation messages name fields by their JSON keys.

# Client IP Extraction

Get the client IP. X-Forwarded-For and X-Real-IP are read only when the
direct peer is a trusted proxy; otherwise the socket address is used:

	ip := middleware.GetClientIP(r, cfg.TrustedProxies)

Used as the rate limiter key.
*/
package middleware
