// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Option configures an Admitter or a Tallier.
type Option func(*options)

type options struct {
	now   func() time.Time
	newID func() string
}

// WithClock overrides the wall clock used for lifecycle evaluation.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator overrides how ballot IDs are minted.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

func buildOptions(opts []Option) options {
	o := options{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Admitter decides whether a single vote request is admitted.
type Admitter struct {
	accounts   Accounts
	elections  Elections
	candidates Candidates
	ledger     Ledger
	opts       options
}

// NewAdmitter returns an Admitter over the given stores.
func NewAdmitter(accounts Accounts, elections Elections, candidates Candidates, ledger Ledger, opts ...Option) *Admitter {
	return &Admitter{
		accounts:   accounts,
		elections:  elections,
		candidates: candidates,
		ledger:     ledger,
		opts:       buildOptions(opts),
	}
}

// Admit records a ballot for voterID in electionID, or returns the reason
// it was rejected. Checks run in a fixed order and stop at the first
// failure. The ledger insert is the only step that guarantees uniqueness;
// every earlier check may pass for two concurrent requests.
func (a *Admitter) Admit(ctx context.Context, voterID, electionID, candidateID string) (Ballot, error) {
	// 1. candidate belongs to this election
	candidate, err := a.candidates.GetCandidate(ctx, candidateID)
	if errors.Is(err, ErrCandidateNotFound) {
		return Ballot{}, ErrInvalidCandidate
	}
	if err != nil {
		return Ballot{}, fmt.Errorf("load candidate: %w", err)
	}
	if candidate.ElectionID != electionID || candidate.Pending {
		return Ballot{}, ErrInvalidCandidate
	}

	// 2. fast-path duplicate check
	voted, err := a.ledger.HasBallot(ctx, electionID, voterID)
	if err != nil {
		return Ballot{}, fmt.Errorf("check existing ballot: %w", err)
	}
	if voted {
		return Ballot{}, ErrDuplicateVote
	}

	// 3. eligibility
	e, err := a.elections.GetElection(ctx, electionID)
	if err != nil {
		return Ballot{}, fmt.Errorf("load election: %w", err)
	}
	voter, err := a.accounts.GetVoter(ctx, voterID)
	if errors.Is(err, ErrVoterNotFound) {
		return Ballot{}, ErrNotEligible
	}
	if err != nil {
		return Ballot{}, fmt.Errorf("load voter: %w", err)
	}
	if !voter.Approved || !IsEligible(voter.Group, e.Group) {
		return Ballot{}, ErrNotEligible
	}

	// 4. lifecycle
	if err := admissionError(Evaluate(e, a.opts.now())); err != nil {
		return Ballot{}, err
	}

	// 5. authoritative insert
	b := Ballot{
		ID:          a.opts.newID(),
		ElectionID:  electionID,
		CandidateID: candidateID,
		VoterID:     voterID,
		CastAt:      a.opts.now().UTC(),
	}
	// Once issued the insert is not abandoned because the caller went away;
	// a retry must go through the duplicate check instead.
	if err := a.ledger.Insert(context.WithoutCancel(ctx), b); err != nil {
		if errors.Is(err, ErrDuplicateVote) {
			slog.Info("concurrent ballot rejected by ledger", "election_id", electionID)
			return Ballot{}, ErrDuplicateVote
		}
		return Ballot{}, fmt.Errorf("insert ballot: %w", err)
	}

	return b, nil
}
