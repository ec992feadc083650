// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danielhkuo/votesecure/election"
)

// Candidates stores candidates and keeps each election's admitted set in
// step with their approval. It serves as the core's election.Candidates
// collaborator.
type Candidates struct {
	db *sql.DB
}

func NewCandidates(db *sql.DB) *Candidates {
	return &Candidates{db: db}
}

// CandidatePatch lists the fields an administrator may edit. nil fields are
// left unchanged.
type CandidatePatch struct {
	Name      *string
	Party     *string
	Manifesto *string
	Photo     *string
}

func (p CandidatePatch) empty() bool {
	return p.Name == nil && p.Party == nil && p.Manifesto == nil && p.Photo == nil
}

const candidateColumns = `c.id, c.election_id, c.name, c.party, c.manifesto, c.photo, c.pending, c.created_at`

func scanCandidate(row interface{ Scan(...any) error }) (election.Candidate, error) {
	var c election.Candidate
	err := row.Scan(&c.ID, &c.ElectionID, &c.Name, &c.Party, &c.Manifesto, &c.Photo, &c.Pending, &c.CreatedAt)
	c.CreatedAt = c.CreatedAt.UTC()
	return c, err
}

func (s *Candidates) query(ctx context.Context, op, q string, args ...any) ([]election.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	candidates := []election.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, wrap("scan candidate", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, wrap(op, rows.Err())
}

// Create inserts a candidate. A candidate created without Pending is added
// to its election's candidate set in the same transaction.
func (s *Candidates) Create(ctx context.Context, c election.Candidate) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO candidate (id, election_id, name, party, manifesto, photo, pending, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.ID, c.ElectionID, c.Name, c.Party, c.Manifesto, c.Photo, c.Pending, c.CreatedAt)
	if isForeignKeyViolation(err) {
		return election.ErrElectionNotFound
	}
	if isUniqueViolation(err) {
		return ErrCandidateExists
	}
	if err != nil {
		return wrap("insert candidate", err)
	}

	if !c.Pending {
		if err := addToSet(ctx, tx, c.ElectionID, c.ID); err != nil {
			return err
		}
	}

	return wrap("commit transaction", tx.Commit())
}

// Nominate records a self-nomination as a pending candidate. A name may be
// nominated once per election; the unique index on (election_id, name)
// decides between concurrent nominations.
func (s *Candidates) Nominate(ctx context.Context, c election.Candidate) error {
	c.Pending = true
	err := s.Create(ctx, c)
	if errors.Is(err, ErrCandidateExists) {
		return ErrAlreadyNominated
	}
	return err
}

// GetCandidate implements election.Candidates.
func (s *Candidates) GetCandidate(ctx context.Context, id string) (election.Candidate, error) {
	c, err := scanCandidate(s.db.QueryRowContext(ctx,
		`SELECT `+candidateColumns+` FROM candidate c WHERE c.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return election.Candidate{}, election.ErrCandidateNotFound
	}
	if err != nil {
		return election.Candidate{}, wrap("query candidate", err)
	}
	return c, nil
}

// CandidatesByID implements election.Candidates. Unknown IDs are absent
// from the result.
func (s *Candidates) CandidatesByID(ctx context.Context, ids []string) (map[string]election.Candidate, error) {
	found := make(map[string]election.Candidate, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	candidates, err := s.query(ctx, "query candidates by id",
		`SELECT `+candidateColumns+` FROM candidate c WHERE c.id IN (`+strings.Join(placeholders, ", ")+`)`,
		args...)
	if err != nil {
		return nil, err
	}
	for _, c := range candidates {
		found[c.ID] = c
	}
	return found, nil
}

// ListByElection returns the admitted candidates of an election in the
// order they were added to its set.
func (s *Candidates) ListByElection(ctx context.Context, electionID string) ([]election.Candidate, error) {
	return s.query(ctx, "query election candidates", `
		SELECT `+candidateColumns+`
		FROM election_candidate ec
		JOIN candidate c ON c.id = ec.candidate_id
		WHERE ec.election_id = $1
		ORDER BY ec.added_at, c.id
	`, electionID)
}

// ListApproved returns every approved candidate across elections.
func (s *Candidates) ListApproved(ctx context.Context) ([]election.Candidate, error) {
	return s.query(ctx, "query candidates", `
		SELECT `+candidateColumns+` FROM candidate c
		WHERE c.pending = $1
		ORDER BY c.election_id, c.created_at, c.id
	`, false)
}

// ListPending returns nominations awaiting review, oldest first.
func (s *Candidates) ListPending(ctx context.Context) ([]election.Candidate, error) {
	return s.query(ctx, "query pending candidates", `
		SELECT `+candidateColumns+` FROM candidate c
		WHERE c.pending = $1
		ORDER BY c.created_at, c.id
	`, true)
}

// Approve clears the pending flag and adds the candidate to its election's
// set. Approving twice leaves a single set entry.
func (s *Candidates) Approve(ctx context.Context, id string) (election.Candidate, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return election.Candidate{}, wrap("begin transaction", err)
	}
	defer tx.Rollback()

	var electionID string
	err = tx.QueryRowContext(ctx, `SELECT election_id FROM candidate WHERE id = $1`, id).Scan(&electionID)
	if errors.Is(err, sql.ErrNoRows) {
		return election.Candidate{}, election.ErrCandidateNotFound
	}
	if err != nil {
		return election.Candidate{}, wrap("query candidate", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE candidate SET pending = $1 WHERE id = $2`, false, id); err != nil {
		return election.Candidate{}, wrap("approve candidate", err)
	}
	if err := addToSet(ctx, tx, electionID, id); err != nil {
		return election.Candidate{}, err
	}
	if err := tx.Commit(); err != nil {
		return election.Candidate{}, wrap("commit transaction", err)
	}

	return s.GetCandidate(ctx, id)
}

// Reject deletes a pending nomination. Returns ErrCandidateApproved if the
// candidate exists but was already approved.
func (s *Candidates) Reject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM candidate WHERE id = $1 AND pending = $2`, id, true)
	if err != nil {
		return wrap("reject candidate", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	if _, err := s.GetCandidate(ctx, id); err != nil {
		return err
	}
	return ErrCandidateApproved
}

// Update applies patch in a single statement and returns the result.
func (s *Candidates) Update(ctx context.Context, id string, patch CandidatePatch) (election.Candidate, error) {
	if patch.empty() {
		return election.Candidate{}, ErrNothingToUpdate
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE candidate SET
			name = COALESCE($2, name),
			party = COALESCE($3, party),
			manifesto = COALESCE($4, manifesto),
			photo = COALESCE($5, photo)
		WHERE id = $1
	`, id, patch.Name, patch.Party, patch.Manifesto, patch.Photo)
	if isUniqueViolation(err) {
		return election.Candidate{}, ErrCandidateExists
	}
	if err != nil {
		return election.Candidate{}, wrap("update candidate", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return election.Candidate{}, election.ErrCandidateNotFound
	}
	return s.GetCandidate(ctx, id)
}

// Delete removes a candidate and its set entry. Ballots already cast for it
// stay in the ledger.
func (s *Candidates) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM election_candidate WHERE candidate_id = $1`, id); err != nil {
		return wrap("remove from candidate set", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM candidate WHERE id = $1`, id)
	if err != nil {
		return wrap("delete candidate", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return election.ErrCandidateNotFound
	}

	return wrap("commit transaction", tx.Commit())
}

// addToSet is an idempotent set-add on election_candidate.
func addToSet(ctx context.Context, tx *sql.Tx, electionID, candidateID string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO election_candidate (election_id, candidate_id, added_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (election_id, candidate_id) DO NOTHING
	`, electionID, candidateID, time.Now().UTC())
	return wrap("add to candidate set", err)
}
