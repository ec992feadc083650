// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the VoteSecure API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - AccountHandler: Registration, login and account approval
  - ElectionHandler: Dashboard, election listing and election administration
  - CandidateHandler: Nominations, candidate review and candidate administration
  - VotingHandler: Ballot admission
  - ResultsHandler: Tallies and turnout
  - ReportHandler: Voter issue reports
  - HealthHandler: Liveness and database reachability

Handlers are created via constructor functions that accept *sql.DB and Config:

	votingHandler := handlers.NewVotingHandler(conn, cfg, m)

VotingHandler and ResultsHandler also take a *metrics.Metrics (nil disables
metrics) and election.Option values, so tests can pin the clock.

# Authentication

Handlers do not read tokens. The router wraps them in middleware.Authenticator,
which stores the caller's account in the request context; handlers fetch it
with middleware.AccountFromContext.

# Voting Flow

	POST /vote → CastVote

The ballot goes through election.Admitter, which checks the candidate, the
voter's eligibility, the election window and the ledger in that order. The
call is retried with exponential backoff while storage is unavailable.
A rejection answers with its reason:

	400 invalid_candidate
	403 not_eligible
	404 election_not_found
	409 duplicate_vote, not_started, ended, suspended
	503 storage_unavailable

# Results

	GET /results/{id} → GetResults
	GET /stats/{id}   → GetStats

Results are sealed with 403 results_not_yet_available until the election
has ended, except for administrators. Turnout is always visible.

# Administration

Routes under /admin require an administrator account. Elections and
candidates support create, update and delete; accounts and nominations
are approved or rejected.
*/
package handlers
