// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/sethvargo/go-retry"

	"github.com/danielhkuo/votesecure/cliparse"
	"github.com/danielhkuo/votesecure/db"
	"github.com/danielhkuo/votesecure/election"
	"github.com/danielhkuo/votesecure/metrics"
	"github.com/danielhkuo/votesecure/middleware"
	"github.com/danielhkuo/votesecure/models"
)

type VotingHandler struct {
	cfg      cliparse.Config
	metrics  *metrics.Metrics
	admitter *election.Admitter
}

func NewVotingHandler(conn *sql.DB, cfg cliparse.Config, m *metrics.Metrics, opts ...election.Option) *VotingHandler {
	return &VotingHandler{
		cfg:     cfg,
		metrics: m,
		admitter: election.NewAdmitter(
			db.NewAccounts(conn),
			db.NewElections(conn),
			db.NewCandidates(conn),
			db.NewLedger(conn),
			opts...,
		),
	}
}

// CastVote handles POST /vote
// The caller must be authenticated; approval and eligibility are decided
// by the admitter so the client gets a reason code.
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	acct, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req models.CastVoteRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	ballot, err := h.admit(r.Context(), acct.ID, req.ElectionID, req.CandidateID)
	h.metrics.ObserveAdmission(err)

	if err != nil {
		reason := election.ReasonOf(err)
		status := statusFor(reason)
		if status >= http.StatusInternalServerError {
			slog.Error("failed to record vote", "error", err, "election_id", req.ElectionID)
		} else {
			slog.Info("vote rejected", "election_id", req.ElectionID, "reason", reason)
		}

		message := reasonMessage(err)
		if status == http.StatusInternalServerError {
			message = "Failed to record vote"
		}
		middleware.JSONResponse(w, status, models.CastVoteResponse{
			Accepted: false,
			Reason:   string(reason),
			Message:  message,
		})
		return
	}

	slog.Info("vote recorded", "election_id", ballot.ElectionID, "ballot_id", ballot.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{
		Accepted: true,
		BallotID: ballot.ID,
		CastAt:   &ballot.CastAt,
		Message:  "Vote recorded successfully",
	})
}

// admit runs the admitter, retrying the whole decision on transient
// storage failures. A retried attempt re-runs the duplicate check, so a
// ballot that did land is reported as a duplicate rather than written twice.
func (h *VotingHandler) admit(ctx context.Context, voterID, electionID, candidateID string) (election.Ballot, error) {
	backoff := retry.WithMaxRetries(h.cfg.VoteRetries, retry.NewExponential(h.cfg.VoteRetryBase))

	var ballot election.Ballot
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		b, err := h.admitter.Admit(ctx, voterID, electionID, candidateID)
		if election.Retryable(err) {
			slog.Warn("transient storage failure while admitting vote, retrying", "error", err)
			return retry.RetryableError(err)
		}
		ballot = b
		return err
	})
	return ballot, err
}
