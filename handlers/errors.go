// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/votesecure/election"
	"github.com/danielhkuo/votesecure/middleware"
)

// statusFor maps a rejection reason to its HTTP status. Unknown errors are
// internal failures.
func statusFor(reason election.Reason) int {
	switch reason {
	case election.ReasonInvalidCandidate:
		return http.StatusBadRequest
	case election.ReasonNotEligible, election.ReasonResultsNotYetAvailable:
		return http.StatusForbidden
	case election.ReasonDuplicateVote, election.ReasonNotStarted,
		election.ReasonEnded, election.ReasonSuspended:
		return http.StatusConflict
	case election.ReasonElectionNotFound, election.ReasonCandidateNotFound,
		election.ReasonVoterNotFound:
		return http.StatusNotFound
	case election.ReasonStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError reports err to the client. Errors carrying a reason are
// returned with it; anything else is logged and hidden behind fallback.
func writeError(w http.ResponseWriter, err error, fallback string) {
	reason := election.ReasonOf(err)
	status := statusFor(reason)

	if status >= http.StatusInternalServerError {
		slog.Error(fallback, "error", err)
		if reason == election.ReasonStorageUnavailable {
			middleware.ReasonResponse(w, status, string(reason), "service temporarily unavailable, try again")
			return
		}
		middleware.ErrorResponse(w, status, fallback)
		return
	}

	middleware.ReasonResponse(w, status, string(reason), reasonMessage(err))
}

// reasonMessage returns the client-facing message of the rejection in err
// without the storage context it was wrapped in.
func reasonMessage(err error) string {
	var e *election.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
