// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/danielhkuo/votesecure/election"
	"github.com/danielhkuo/votesecure/models"
)

// Accounts stores registered users. It also serves as the core's
// election.Accounts collaborator.
type Accounts struct {
	db *sql.DB
}

func NewAccounts(db *sql.DB) *Accounts {
	return &Accounts{db: db}
}

const accountColumns = `id, name, email, password_hash, eligibility, approved, is_admin, created_at`

func scanAccount(row interface{ Scan(...any) error }) (models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Eligibility,
		&a.Approved, &a.IsAdmin, &a.CreatedAt)
	return a, err
}

// Create inserts a new account. Returns ErrEmailTaken if the email is
// already registered.
func (s *Accounts) Create(ctx context.Context, a models.Account) error {
	if a.Eligibility == "" {
		a.Eligibility = election.DefaultGroup
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO account (id, name, email, password_hash, eligibility, approved, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, a.ID, a.Name, a.Email, a.PasswordHash, a.Eligibility, a.Approved, a.IsAdmin, a.CreatedAt)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	return wrap("insert account", err)
}

// EnsureAdmin creates an approved administrator, or promotes the existing
// account with the same email.
func (s *Accounts) EnsureAdmin(ctx context.Context, a models.Account) error {
	if a.Eligibility == "" {
		a.Eligibility = election.DefaultGroup
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO account (id, name, email, password_hash, eligibility, approved, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6, $7)
		ON CONFLICT (email) DO UPDATE SET approved = excluded.approved, is_admin = excluded.is_admin
	`, a.ID, a.Name, a.Email, a.PasswordHash, a.Eligibility, true, time.Now().UTC())
	return wrap("upsert admin account", err)
}

// GetAccount loads an account by ID. Returns election.ErrVoterNotFound if
// it does not exist.
func (s *Accounts) GetAccount(ctx context.Context, id string) (models.Account, error) {
	a, err := scanAccount(s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM account WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, election.ErrVoterNotFound
	}
	if err != nil {
		return models.Account{}, wrap("query account", err)
	}
	return a, nil
}

func (s *Accounts) GetByEmail(ctx context.Context, email string) (models.Account, error) {
	a, err := scanAccount(s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM account WHERE email = $1`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, election.ErrVoterNotFound
	}
	if err != nil {
		return models.Account{}, wrap("query account by email", err)
	}
	return a, nil
}

// ListPending returns accounts awaiting approval, newest first.
func (s *Accounts) ListPending(ctx context.Context) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM account
		WHERE approved = $1
		ORDER BY created_at DESC, id
	`, false)
	if err != nil {
		return nil, wrap("query pending accounts", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, wrap("scan account", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, wrap("iterate accounts", rows.Err())
}

// Approve flips the approval flag and returns the updated account.
func (s *Accounts) Approve(ctx context.Context, id string) (models.Account, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE account SET approved = $1 WHERE id = $2`, true, id)
	if err != nil {
		return models.Account{}, wrap("approve account", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.Account{}, election.ErrVoterNotFound
	}
	return s.GetAccount(ctx, id)
}

// Delete removes an account. Ballots already cast are kept.
func (s *Accounts) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM account WHERE id = $1`, id)
	if err != nil {
		return wrap("delete account", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return election.ErrVoterNotFound
	}
	return nil
}

// GetVoter implements election.Accounts.
func (s *Accounts) GetVoter(ctx context.Context, voterID string) (election.Voter, error) {
	var v election.Voter
	err := s.db.QueryRowContext(ctx, `
		SELECT id, eligibility, approved FROM account WHERE id = $1
	`, voterID).Scan(&v.ID, &v.Group, &v.Approved)
	if errors.Is(err, sql.ErrNoRows) {
		return election.Voter{}, election.ErrVoterNotFound
	}
	if err != nil {
		return election.Voter{}, wrap("query voter", err)
	}
	return v, nil
}

// CountApprovedVotersByGroup implements election.Accounts.
func (s *Accounts) CountApprovedVotersByGroup(ctx context.Context, group string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM account WHERE approved = $1 AND eligibility = $2
	`, true, group).Scan(&n)
	if err != nil {
		return 0, wrap("count eligible voters", err)
	}
	return n, nil
}
