// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/danielhkuo/votesecure/models"
)

// Reports stores issue reports filed by voters.
type Reports struct {
	db *sql.DB
}

func NewReports(db *sql.DB) *Reports {
	return &Reports{db: db}
}

func (s *Reports) Create(ctx context.Context, r models.Report) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO report (id, account_id, subject, description, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, r.ID, r.AccountID, r.Subject, r.Description, r.CreatedAt)
	return wrap("insert report", err)
}

// List returns all reports, newest first.
func (s *Reports) List(ctx context.Context) ([]models.Report, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, subject, description, created_at
		FROM report
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, wrap("query reports", err)
	}
	defer rows.Close()

	reports := []models.Report{}
	for rows.Next() {
		var r models.Report
		if err := rows.Scan(&r.ID, &r.AccountID, &r.Subject, &r.Description, &r.CreatedAt); err != nil {
			return nil, wrap("scan report", err)
		}
		r.CreatedAt = r.CreatedAt.UTC()
		reports = append(reports, r)
	}
	return reports, wrap("iterate reports", rows.Err())
}
