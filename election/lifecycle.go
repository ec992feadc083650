// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import "time"

// State is the lifecycle phase of an election at a given instant. It is
// always derived, never stored.
type State string

const (
	StateUpcoming State = "upcoming"
	StateActive   State = "active"
	StateEnded    State = "ended"
	StateInactive State = "inactive"
)

// IsEligible reports whether a voter in voterGroup may vote in an election
// restricted to electionGroup. Labels must match exactly.
func IsEligible(voterGroup, electionGroup string) bool {
	return voterGroup == electionGroup
}

// Evaluate derives the lifecycle state of e at now. The window is inclusive
// at both ends.
func Evaluate(e Election, now time.Time) State {
	switch {
	case !e.Active:
		return StateInactive
	case now.Before(e.Start):
		return StateUpcoming
	case now.After(e.End):
		return StateEnded
	default:
		return StateActive
	}
}

// admissionError maps a non-active state to its rejection.
func admissionError(s State) error {
	switch s {
	case StateActive:
		return nil
	case StateUpcoming:
		return ErrNotStarted
	case StateEnded:
		return ErrEnded
	default:
		return ErrSuspended
	}
}
