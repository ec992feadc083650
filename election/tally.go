// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Standing is one ranked row of a tally.
type Standing struct {
	CandidateID string  `json:"candidate_id"`
	Name        string  `json:"name"`
	Party       string  `json:"party"`
	Manifesto   string  `json:"manifesto"`
	Photo       string  `json:"photo"`
	Votes       int     `json:"votes"`
	Percentage  float64 `json:"percentage"`
	Rank        int     `json:"rank"` // 1-indexed ranking
}

// Results is the ranked outcome of one election.
type Results struct {
	ElectionID     string     `json:"election_id"`
	State          State      `json:"state"`
	Standings      []Standing `json:"results"`
	TotalVotes     int        `json:"total_votes"`
	EligibleVoters int        `json:"eligible_voters"`
	Turnout        float64    `json:"turnout"`
}

// Turnout compares ballots cast with the eligible electorate.
type Turnout struct {
	TotalVotes     int     `json:"total_votes"`
	EligibleVoters int     `json:"eligible_voters"`
	Turnout        float64 `json:"turnout"`
}

// Tallier aggregates the ledger into ranked results.
type Tallier struct {
	accounts   Accounts
	elections  Elections
	candidates Candidates
	ledger     Ledger
	opts       options
}

// NewTallier returns a Tallier over the given stores.
func NewTallier(accounts Accounts, elections Elections, candidates Candidates, ledger Ledger, opts ...Option) *Tallier {
	return &Tallier{
		accounts:   accounts,
		elections:  elections,
		candidates: candidates,
		ledger:     ledger,
		opts:       buildOptions(opts),
	}
}

// Tally ranks the candidates of electionID. Non-admin requesters only see
// results once the election has ended.
func (t *Tallier) Tally(ctx context.Context, electionID string, requesterIsAdmin bool) (Results, error) {
	e, err := t.elections.GetElection(ctx, electionID)
	if err != nil {
		return Results{}, fmt.Errorf("load election: %w", err)
	}

	state := Evaluate(e, t.opts.now())
	if !requesterIsAdmin && state != StateEnded {
		return Results{}, ErrResultsNotYetAvailable
	}

	var (
		counts   []CandidateCount
		eligible int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = t.ledger.CountByCandidate(gctx, electionID)
		return err
	})
	g.Go(func() error {
		var err error
		eligible, err = t.accounts.CountApprovedVotersByGroup(gctx, e.Group)
		return err
	})
	if err := g.Wait(); err != nil {
		return Results{}, fmt.Errorf("aggregate ballots: %w", err)
	}

	ids := make([]string, 0, len(counts))
	for _, c := range counts {
		ids = append(ids, c.CandidateID)
	}
	display := map[string]Candidate{}
	if len(ids) > 0 {
		display, err = t.candidates.CandidatesByID(ctx, ids)
		if err != nil {
			return Results{}, fmt.Errorf("load candidates: %w", err)
		}
	}

	standings, total := Rank(counts, display)

	return Results{
		ElectionID:     electionID,
		State:          state,
		Standings:      standings,
		TotalVotes:     total,
		EligibleVoters: eligible,
		Turnout:        percentOf(total, eligible),
	}, nil
}

// Turnout reports ballots cast against approved voters in the election's
// group. Unlike Tally it is visible in every state.
func (t *Tallier) Turnout(ctx context.Context, electionID string) (Turnout, error) {
	e, err := t.elections.GetElection(ctx, electionID)
	if err != nil {
		return Turnout{}, fmt.Errorf("load election: %w", err)
	}

	var total, eligible int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = t.ledger.CountBallots(gctx, electionID)
		return err
	})
	g.Go(func() error {
		var err error
		eligible, err = t.accounts.CountApprovedVotersByGroup(gctx, e.Group)
		return err
	})
	if err := g.Wait(); err != nil {
		return Turnout{}, fmt.Errorf("count turnout: %w", err)
	}

	return Turnout{
		TotalVotes:     total,
		EligibleVoters: eligible,
		Turnout:        percentOf(total, eligible),
	}, nil
}

// Rank turns grouped counts into standings sorted by votes descending, then
// candidate ID ascending. Counts for candidates missing from display are
// included in the total but not listed. With no votes the result is empty.
func Rank(counts []CandidateCount, display map[string]Candidate) ([]Standing, int) {
	total := 0
	for _, c := range counts {
		total += c.Votes
	}

	standings := []Standing{}
	if total == 0 {
		return standings, 0
	}

	for _, c := range counts {
		if c.Votes == 0 {
			continue
		}
		cand, ok := display[c.CandidateID]
		if !ok {
			continue
		}
		standings = append(standings, Standing{
			CandidateID: c.CandidateID,
			Name:        cand.Name,
			Party:       cand.Party,
			Manifesto:   cand.Manifesto,
			Photo:       cand.Photo,
			Votes:       c.Votes,
			Percentage:  percentOf(c.Votes, total),
		})
	}

	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Votes != b.Votes {
			return a.Votes > b.Votes
		}
		return a.CandidateID < b.CandidateID
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}

	return standings, total
}

// percentOf returns part/whole as a percentage rounded to two decimals, or 0
// when whole is 0.
func percentOf(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*100*100) / 100
}
