// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/danielhkuo/votesecure/election"
)

// Elections stores elections and their admitted candidate sets. It serves
// as the core's election.Elections collaborator.
type Elections struct {
	db *sql.DB
}

func NewElections(db *sql.DB) *Elections {
	return &Elections{db: db}
}

// ElectionPatch lists the fields an administrator may edit. nil fields are
// left unchanged.
type ElectionPatch struct {
	Title       *string
	Eligibility *string
	Start       *time.Time
	End         *time.Time
	Active      *bool
}

func (p ElectionPatch) empty() bool {
	return p.Title == nil && p.Eligibility == nil && p.Start == nil && p.End == nil && p.Active == nil
}

const electionColumns = `id, title, eligibility, starts_at, ends_at, active, created_at`

func scanElection(row interface{ Scan(...any) error }) (election.Election, error) {
	var e election.Election
	err := row.Scan(&e.ID, &e.Title, &e.Group, &e.Start, &e.End, &e.Active, &e.CreatedAt)
	e.Start, e.End, e.CreatedAt = e.Start.UTC(), e.End.UTC(), e.CreatedAt.UTC()
	return e, err
}

// Create inserts a new election. start < end is not checked.
func (s *Elections) Create(ctx context.Context, e election.Election) error {
	if e.Group == "" {
		e.Group = election.DefaultGroup
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO election (id, title, eligibility, starts_at, ends_at, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.ID, e.Title, e.Group, e.Start.UTC(), e.End.UTC(), e.Active, e.CreatedAt)
	return wrap("insert election", err)
}

// GetElection implements election.Elections. The candidate set is returned
// in the order candidates were admitted.
func (s *Elections) GetElection(ctx context.Context, id string) (election.Election, error) {
	e, err := scanElection(s.db.QueryRowContext(ctx,
		`SELECT `+electionColumns+` FROM election WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return election.Election{}, election.ErrElectionNotFound
	}
	if err != nil {
		return election.Election{}, wrap("query election", err)
	}

	sets, err := s.candidateSets(ctx, `WHERE election_id = $1`, id)
	if err != nil {
		return election.Election{}, err
	}
	e.CandidateIDs = sets[e.ID]
	if e.CandidateIDs == nil {
		e.CandidateIDs = []string{}
	}
	return e, nil
}

// List returns every election, latest start first.
func (s *Elections) List(ctx context.Context) ([]election.Election, error) {
	return s.list(ctx, `ORDER BY starts_at DESC, id`)
}

// ListActiveForGroup returns active elections open to group, latest start
// first.
func (s *Elections) ListActiveForGroup(ctx context.Context, group string) ([]election.Election, error) {
	return s.list(ctx, `WHERE active = $1 AND eligibility = $2 ORDER BY starts_at DESC, id`, true, group)
}

func (s *Elections) list(ctx context.Context, clause string, args ...any) ([]election.Election, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+electionColumns+` FROM election `+clause, args...)
	if err != nil {
		return nil, wrap("query elections", err)
	}
	defer rows.Close()

	elections := []election.Election{}
	for rows.Next() {
		e, err := scanElection(rows)
		if err != nil {
			return nil, wrap("scan election", err)
		}
		elections = append(elections, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate elections", err)
	}
	rows.Close()

	sets, err := s.candidateSets(ctx, ``)
	if err != nil {
		return nil, err
	}
	for i := range elections {
		elections[i].CandidateIDs = sets[elections[i].ID]
		if elections[i].CandidateIDs == nil {
			elections[i].CandidateIDs = []string{}
		}
	}
	return elections, nil
}

// candidateSets loads election_candidate rows grouped by election.
func (s *Elections) candidateSets(ctx context.Context, where string, args ...any) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT election_id, candidate_id FROM election_candidate `+where+`
		ORDER BY added_at, candidate_id
	`, args...)
	if err != nil {
		return nil, wrap("query candidate set", err)
	}
	defer rows.Close()

	sets := map[string][]string{}
	for rows.Next() {
		var electionID, candidateID string
		if err := rows.Scan(&electionID, &candidateID); err != nil {
			return nil, wrap("scan candidate set", err)
		}
		sets[electionID] = append(sets[electionID], candidateID)
	}
	return sets, wrap("iterate candidate set", rows.Err())
}

// Update applies patch in a single statement.
func (s *Elections) Update(ctx context.Context, id string, patch ElectionPatch) error {
	if patch.empty() {
		return ErrNothingToUpdate
	}

	var start, end *time.Time
	if patch.Start != nil {
		t := patch.Start.UTC()
		start = &t
	}
	if patch.End != nil {
		t := patch.End.UTC()
		end = &t
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE election SET
			title = COALESCE($2, title),
			eligibility = COALESCE($3, eligibility),
			starts_at = COALESCE($4, starts_at),
			ends_at = COALESCE($5, ends_at),
			active = COALESCE($6, active)
		WHERE id = $1
	`, id, patch.Title, patch.Eligibility, start, end, patch.Active)
	if err != nil {
		return wrap("update election", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return election.ErrElectionNotFound
	}
	return nil
}

// Delete removes an election together with its ballots, candidate set and
// candidates in one transaction, so no orphan survives a partial failure.
func (s *Elections) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("begin transaction", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM ballot WHERE election_id = $1`,
		`DELETE FROM election_candidate WHERE election_id = $1`,
		`DELETE FROM candidate WHERE election_id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return wrap("delete election dependents", err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM election WHERE id = $1`, id)
	if err != nil {
		return wrap("delete election", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return election.ErrElectionNotFound
	}

	return wrap("commit transaction", tx.Commit())
}
