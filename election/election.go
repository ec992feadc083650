// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"time"
)

// DefaultGroup is the eligibility group assigned when none is given.
const DefaultGroup = "general"

// Voter is the slice of an account the core needs to admit a ballot.
type Voter struct {
	ID       string
	Group    string
	Approved bool
}

// Election is a voting window restricted to one eligibility group.
type Election struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Group        string    `json:"eligibility"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Active       bool      `json:"active"`
	CandidateIDs []string  `json:"candidate_ids"`
	CreatedAt    time.Time `json:"created_at"`
}

// Candidate stands in exactly one election. Pending candidates are not
// part of the election's candidate set.
type Candidate struct {
	ID         string    `json:"id"`
	ElectionID string    `json:"election_id"`
	Name       string    `json:"name"`
	Party      string    `json:"party"`
	Manifesto  string    `json:"manifesto"`
	Photo      string    `json:"photo"`
	Pending    bool      `json:"pending"`
	CreatedAt  time.Time `json:"created_at"`
}

// Ballot is one admitted vote. At most one exists per (ElectionID, VoterID).
type Ballot struct {
	ID          string    `json:"id"`
	ElectionID  string    `json:"election_id"`
	CandidateID string    `json:"candidate_id"`
	VoterID     string    `json:"-"`
	CastAt      time.Time `json:"cast_at"`
}

// CandidateCount is one row of the ledger grouped by candidate.
type CandidateCount struct {
	CandidateID string
	Votes       int
}

// Accounts is the registration subsystem as seen by the core.
type Accounts interface {
	GetVoter(ctx context.Context, voterID string) (Voter, error)
	CountApprovedVotersByGroup(ctx context.Context, group string) (int, error)
}

// Candidates is the nomination subsystem as seen by the core.
type Candidates interface {
	GetCandidate(ctx context.Context, candidateID string) (Candidate, error)
	CandidatesByID(ctx context.Context, candidateIDs []string) (map[string]Candidate, error)
}

// Elections is the election administration subsystem as seen by the core.
type Elections interface {
	GetElection(ctx context.Context, electionID string) (Election, error)
}

// Ledger is the append-only ballot store.
//
// Insert must be atomic and must fail with ErrDuplicateVote when a ballot
// for the same (ElectionID, VoterID) already exists. HasBallot is only a
// fast path and never a substitute for that constraint.
type Ledger interface {
	HasBallot(ctx context.Context, electionID, voterID string) (bool, error)
	Insert(ctx context.Context, b Ballot) error
	CountByCandidate(ctx context.Context, electionID string) ([]CandidateCount, error)
	CountBallots(ctx context.Context, electionID string) (int, error)
}
