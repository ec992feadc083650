// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"testing"

	"github.com/danielhkuo/votesecure/db"
	"github.com/danielhkuo/votesecure/middleware"
)

// asAccount attaches the stored account to req, as the authentication
// middleware would
func asAccount(t *testing.T, conn *sql.DB, req *http.Request, accountID string) *http.Request {
	t.Helper()

	acct, err := db.NewAccounts(conn).GetAccount(context.Background(), accountID)
	if err != nil {
		t.Fatalf("Failed to load account %s: %v", accountID, err)
	}
	return req.WithContext(middleware.WithAccount(req.Context(), acct))
}
