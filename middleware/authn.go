// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/votesecure/auth"
	"github.com/danielhkuo/votesecure/election"
	"github.com/danielhkuo/votesecure/models"
)

// AccountLoader loads the current state of an account.
type AccountLoader interface {
	GetAccount(ctx context.Context, id string) (models.Account, error)
}

// Authenticator resolves bearer tokens to accounts. The account is read
// fresh on every request; the token only names it.
type Authenticator struct {
	tokens   *auth.TokenIssuer
	accounts AccountLoader
}

func NewAuthenticator(tokens *auth.TokenIssuer, accounts AccountLoader) *Authenticator {
	return &Authenticator{tokens: tokens, accounts: accounts}
}

type accountKey struct{}

// WithAccount returns a copy of ctx carrying acct.
func WithAccount(ctx context.Context, acct models.Account) context.Context {
	return context.WithValue(ctx, accountKey{}, acct)
}

// AccountFromContext returns the account attached by Require.
func AccountFromContext(ctx context.Context) (models.Account, bool) {
	acct, ok := ctx.Value(accountKey{}).(models.Account)
	return acct, ok
}

// Require rejects requests without a valid token for an existing account.
func (a *Authenticator) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.BearerToken(r.Header.Get("Authorization"))
		if err != nil {
			ErrorResponse(w, http.StatusUnauthorized, "authentication required")
			return
		}

		accountID, err := a.tokens.Parse(token)
		if err != nil {
			ErrorResponse(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		acct, err := a.accounts.GetAccount(r.Context(), accountID)
		if errors.Is(err, election.ErrVoterNotFound) {
			ErrorResponse(w, http.StatusUnauthorized, "account no longer exists")
			return
		}
		if err != nil {
			slog.Error("failed to load account", "error", err, "account_id", accountID)
			if election.Retryable(err) {
				ErrorResponse(w, http.StatusServiceUnavailable, "service temporarily unavailable")
				return
			}
			ErrorResponse(w, http.StatusInternalServerError, "failed to load account")
			return
		}

		next(w, r.WithContext(WithAccount(r.Context(), acct)))
	}
}

// RequireApproved additionally rejects accounts an administrator has not
// approved.
func (a *Authenticator) RequireApproved(next http.HandlerFunc) http.HandlerFunc {
	return a.Require(func(w http.ResponseWriter, r *http.Request) {
		acct, _ := AccountFromContext(r.Context())
		if !acct.Approved {
			ErrorResponse(w, http.StatusForbidden, "account is awaiting approval")
			return
		}
		next(w, r)
	})
}

// RequireAdmin additionally rejects non-administrators.
func (a *Authenticator) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return a.Require(func(w http.ResponseWriter, r *http.Request) {
		acct, _ := AccountFromContext(r.Context())
		if !acct.IsAdmin {
			ErrorResponse(w, http.StatusForbidden, "administrator access required")
			return
		}
		next(w, r)
	})
}
