// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"

	"github.com/danielhkuo/votesecure/election"
)

// Ledger is the append-only ballot table. Uniqueness of one ballot per
// voter per election is enforced by the UNIQUE (election_id, voter_id)
// constraint, not by any read.
type Ledger struct {
	db *sql.DB
}

func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) HasBallot(ctx context.Context, electionID, voterID string) (bool, error) {
	var exists bool
	err := l.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM ballot WHERE election_id = $1 AND voter_id = $2)
	`, electionID, voterID).Scan(&exists)
	if err != nil {
		return false, wrap("check ballot", err)
	}
	return exists, nil
}

// Insert appends b. Returns election.ErrDuplicateVote if the voter already
// has a ballot in the election.
func (l *Ledger) Insert(ctx context.Context, b election.Ballot) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO ballot (id, election_id, candidate_id, voter_id, cast_at)
		VALUES ($1, $2, $3, $4, $5)
	`, b.ID, b.ElectionID, b.CandidateID, b.VoterID, b.CastAt.UTC())
	switch {
	case isUniqueViolation(err):
		return election.ErrDuplicateVote
	case isForeignKeyViolation(err):
		return election.ErrElectionNotFound
	}
	return wrap("insert ballot", err)
}

// CountByCandidate returns the ballot count of every candidate that
// received at least one vote, ordered by candidate ID.
func (l *Ledger) CountByCandidate(ctx context.Context, electionID string) ([]election.CandidateCount, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT candidate_id, COUNT(*)
		FROM ballot
		WHERE election_id = $1
		GROUP BY candidate_id
		ORDER BY candidate_id
	`, electionID)
	if err != nil {
		return nil, wrap("count ballots by candidate", err)
	}
	defer rows.Close()

	counts := []election.CandidateCount{}
	for rows.Next() {
		var c election.CandidateCount
		if err := rows.Scan(&c.CandidateID, &c.Votes); err != nil {
			return nil, wrap("scan ballot count", err)
		}
		counts = append(counts, c)
	}
	return counts, wrap("iterate ballot counts", rows.Err())
}

func (l *Ledger) CountBallots(ctx context.Context, electionID string) (int, error) {
	var n int
	err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ballot WHERE election_id = $1`, electionID).Scan(&n)
	if err != nil {
		return 0, wrap("count ballots", err)
	}
	return n, nil
}
