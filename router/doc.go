// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the VoteSecure API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(conn, cfg, m)

A nil *metrics.Metrics disables instrumentation; /metrics then answers 404.

# Endpoints

Health and metrics:

	GET /health
	GET /metrics

Accounts (public):

	POST /register - Create an account awaiting approval
	POST /login    - Exchange credentials for a bearer token (rate limited)

Voters (bearer token):

	GET  /dashboard                - Open elections for the caller's group (approved only)
	GET  /elections                - All elections with candidates
	GET  /elections/{id}/candidates - Candidates and has_voted
	POST /nominate                 - Self-nomination (approved only)
	POST /report                   - Report an issue
	POST /vote                     - Cast a ballot
	GET  /results/{id}             - Ranked results (after the election ends)
	GET  /stats/{id}               - Turnout

Administration (bearer token of an administrator):

	GET    /admin/pending-users
	POST   /admin/users/{id}/approve
	POST   /admin/users/{id}/reject
	GET    /admin/pending-candidates
	POST   /admin/candidates/{id}/approve
	POST   /admin/candidates/{id}/reject
	POST   /admin/elections
	PUT    /admin/elections/{id}
	DELETE /admin/elections/{id}
	POST   /admin/candidates
	GET    /admin/candidates
	PUT    /admin/candidates/{id}
	DELETE /admin/candidates/{id}
	GET    /admin/reports

# Middleware Order

Each route is wrapped as logging → authentication → handler. Role checks
reload the account on every request, so revoking approval or admin rights
takes effect without waiting for tokens to expire.
*/
package router
