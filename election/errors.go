// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import "errors"

// Reason is the stable, machine-readable code reported with a rejection.
type Reason string

const (
	ReasonInvalidCandidate       Reason = "invalid_candidate"
	ReasonDuplicateVote          Reason = "duplicate_vote"
	ReasonNotEligible            Reason = "not_eligible"
	ReasonNotStarted             Reason = "not_started"
	ReasonEnded                  Reason = "ended"
	ReasonSuspended              Reason = "suspended"
	ReasonResultsNotYetAvailable Reason = "results_not_yet_available"
	ReasonElectionNotFound       Reason = "election_not_found"
	ReasonCandidateNotFound      Reason = "candidate_not_found"
	ReasonVoterNotFound          Reason = "voter_not_found"
	ReasonStorageUnavailable     Reason = "storage_unavailable"
	ReasonUnknown                Reason = "unknown"
)

// Error is a rejection with a reason code.
type Error struct {
	Reason  Reason
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrInvalidCandidate       = &Error{ReasonInvalidCandidate, "invalid candidate for this election"}
	ErrDuplicateVote          = &Error{ReasonDuplicateVote, "you have already voted in this election"}
	ErrNotEligible            = &Error{ReasonNotEligible, "you are not eligible for this election"}
	ErrNotStarted             = &Error{ReasonNotStarted, "election has not started yet"}
	ErrEnded                  = &Error{ReasonEnded, "election has ended"}
	ErrSuspended              = &Error{ReasonSuspended, "election is not active"}
	ErrResultsNotYetAvailable = &Error{ReasonResultsNotYetAvailable, "results not available until election ends"}
	ErrElectionNotFound       = &Error{ReasonElectionNotFound, "election not found"}
	ErrCandidateNotFound      = &Error{ReasonCandidateNotFound, "candidate not found"}
	ErrVoterNotFound          = &Error{ReasonVoterNotFound, "voter not found"}

	// ErrStorageUnavailable marks transient storage failures. It is the only
	// error class that may be retried.
	ErrStorageUnavailable = &Error{ReasonStorageUnavailable, "storage unavailable"}
)

// ReasonOf returns the reason code carried by err, or ReasonUnknown.
func ReasonOf(err error) Reason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ReasonUnknown
}

// Retryable reports whether err is a transient storage failure.
func Retryable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}
