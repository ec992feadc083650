// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and account types for the API.

Election, candidate, ballot and result types live in package election;
models embeds them where a response needs more than the core type.

# Request Types

Types for parsing incoming JSON, validated with struct tags:

  - RegisterRequest: name, email, password, eligibility
  - LoginRequest: email, password
  - CreateElectionRequest / UpdateElectionRequest
  - CreateCandidateRequest / UpdateCandidateRequest / NominateRequest
  - CastVoteRequest: election_id, candidate_id
  - ReportRequest: subject, description

Update requests use pointer fields; nil leaves the stored value unchanged.

# Response Types

  - RegisterResponse, LoginResponse
  - CastVoteResponse: accepted, ballot_id, cast_at, or reason and message
  - CandidatesResponse: candidates, has_voted
  - DashboardResponse, MessageResponse, HealthResponse
  - ErrorResponse: error, message, reason

# Domain Types

  - Account: a voter or administrator
  - Report: an issue raised by a voter
  - ElectionWithCandidates: an election and its admitted candidates
*/
package models
