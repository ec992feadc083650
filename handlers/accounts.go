// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/votesecure/auth"
	"github.com/danielhkuo/votesecure/cliparse"
	"github.com/danielhkuo/votesecure/db"
	"github.com/danielhkuo/votesecure/election"
	"github.com/danielhkuo/votesecure/middleware"
	"github.com/danielhkuo/votesecure/models"
)

type AccountHandler struct {
	cfg      cliparse.Config
	accounts *db.Accounts
	tokens   *auth.TokenIssuer
}

func NewAccountHandler(conn *sql.DB, cfg cliparse.Config) *AccountHandler {
	return &AccountHandler{
		cfg:      cfg,
		accounts: db.NewAccounts(conn),
		tokens:   auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
	}
}

// Register handles POST /register
// New accounts wait for administrator approval before they can vote.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	acct := models.Account{
		ID:           auth.GenerateID(),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Eligibility:  req.Eligibility,
	}
	err = h.accounts.Create(r.Context(), acct)
	if errors.Is(err, db.ErrEmailTaken) {
		middleware.ErrorResponse(w, http.StatusConflict, "Email already registered")
		return
	}
	if err != nil {
		writeError(w, err, "Failed to register")
		return
	}

	slog.Info("account registered", "account_id", acct.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterResponse{
		ID:      acct.ID,
		Message: "Registration received. An administrator must approve your account.",
	})
}

// Login handles POST /login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	acct, err := h.accounts.GetByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, election.ErrVoterNotFound) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}
	if err != nil {
		writeError(w, err, "Failed to log in")
		return
	}

	if err := auth.CheckPassword(acct.PasswordHash, req.Password); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}

	if !acct.Approved {
		middleware.ErrorResponse(w, http.StatusForbidden, "Account is awaiting approval")
		return
	}

	token, expiresAt, err := h.tokens.Issue(acct.ID)
	if err != nil {
		slog.Error("failed to issue token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      acct,
	})
}

// PendingUsers handles GET /admin/pending-users
func (h *AccountHandler) PendingUsers(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.ListPending(r.Context())
	if err != nil {
		writeError(w, err, "Failed to list pending users")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, accounts)
}

// ApproveUser handles POST /admin/users/{id}/approve
func (h *AccountHandler) ApproveUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user id is required")
		return
	}

	acct, err := h.accounts.Approve(r.Context(), id)
	if err != nil {
		writeError(w, err, "Failed to approve user")
		return
	}

	slog.Info("account approved", "account_id", id)
	middleware.JSONResponse(w, http.StatusOK, acct)
}

// RejectUser handles POST /admin/users/{id}/reject
// The registration is deleted; the person may register again.
func (h *AccountHandler) RejectUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user id is required")
		return
	}

	if err := h.accounts.Delete(r.Context(), id); err != nil {
		writeError(w, err, "Failed to reject user")
		return
	}

	slog.Info("account rejected", "account_id", id)
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{
		Success: true,
		Message: "User rejected",
	})
}
