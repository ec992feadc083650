// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/votesecure/auth"
	"github.com/danielhkuo/votesecure/cliparse"
	"github.com/danielhkuo/votesecure/db"
	"github.com/danielhkuo/votesecure/election"
	"github.com/danielhkuo/votesecure/middleware"
	"github.com/danielhkuo/votesecure/models"
)

type ElectionHandler struct {
	cfg        cliparse.Config
	elections  *db.Elections
	candidates *db.Candidates
	ledger     *db.Ledger
}

func NewElectionHandler(conn *sql.DB, cfg cliparse.Config) *ElectionHandler {
	return &ElectionHandler{
		cfg:        cfg,
		elections:  db.NewElections(conn),
		candidates: db.NewCandidates(conn),
		ledger:     db.NewLedger(conn),
	}
}

// Dashboard handles GET /dashboard
// Lists active elections open to the caller's eligibility group.
func (h *ElectionHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	acct, _ := middleware.AccountFromContext(r.Context())

	elections, err := h.elections.ListActiveForGroup(r.Context(), acct.Eligibility)
	if err != nil {
		writeError(w, err, "Failed to load dashboard")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.DashboardResponse{Elections: elections})
}

// ListElections handles GET /elections
// Every election with its admitted candidates.
func (h *ElectionHandler) ListElections(w http.ResponseWriter, r *http.Request) {
	elections, err := h.elections.List(r.Context())
	if err != nil {
		writeError(w, err, "Failed to list elections")
		return
	}

	out := make([]models.ElectionWithCandidates, 0, len(elections))
	for _, e := range elections {
		candidates, err := h.candidates.ListByElection(r.Context(), e.ID)
		if err != nil {
			writeError(w, err, "Failed to list candidates")
			return
		}
		out = append(out, models.ElectionWithCandidates{Election: e, Candidates: candidates})
	}

	middleware.JSONResponse(w, http.StatusOK, out)
}

// ElectionCandidates handles GET /elections/{id}/candidates
// Includes whether the caller has already voted.
func (h *ElectionHandler) ElectionCandidates(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election id is required")
		return
	}
	acct, _ := middleware.AccountFromContext(r.Context())

	if _, err := h.elections.GetElection(r.Context(), electionID); err != nil {
		writeError(w, err, "Failed to load election")
		return
	}

	candidates, err := h.candidates.ListByElection(r.Context(), electionID)
	if err != nil {
		writeError(w, err, "Failed to list candidates")
		return
	}

	voted, err := h.ledger.HasBallot(r.Context(), electionID, acct.ID)
	if err != nil {
		writeError(w, err, "Failed to check ballot")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CandidatesResponse{
		Candidates: candidates,
		HasVoted:   voted,
	})
}

// CreateElection handles POST /admin/elections
// The window is not checked; an election whose end precedes its start is
// never active.
func (h *ElectionHandler) CreateElection(w http.ResponseWriter, r *http.Request) {
	var req models.CreateElectionRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	e := election.Election{
		ID:           auth.GenerateID(),
		Title:        strings.TrimSpace(req.Title),
		Group:        req.Eligibility,
		Start:        req.Start.UTC(),
		End:          req.End.UTC(),
		Active:       true,
		CandidateIDs: []string{},
		CreatedAt:    time.Now().UTC(),
	}
	if e.Group == "" {
		e.Group = election.DefaultGroup
	}

	if err := h.elections.Create(r.Context(), e); err != nil {
		writeError(w, err, "Failed to create election")
		return
	}

	slog.Info("election created", "election_id", e.ID, "eligibility", e.Group)
	middleware.JSONResponse(w, http.StatusCreated, e)
}

// UpdateElection handles PUT /admin/elections/{id}
func (h *ElectionHandler) UpdateElection(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election id is required")
		return
	}

	var req models.UpdateElectionRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.elections.Update(r.Context(), electionID, db.ElectionPatch{
		Title:       req.Title,
		Eligibility: req.Eligibility,
		Start:       req.Start,
		End:         req.End,
		Active:      req.Active,
	})
	if errors.Is(err, db.ErrNothingToUpdate) {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, err, "Failed to update election")
		return
	}

	e, err := h.elections.GetElection(r.Context(), electionID)
	if err != nil {
		writeError(w, err, "Failed to load election")
		return
	}

	slog.Info("election updated", "election_id", electionID, "active", e.Active)
	middleware.JSONResponse(w, http.StatusOK, e)
}

// DeleteElection handles DELETE /admin/elections/{id}
// Removes the election with its candidates and ballots.
func (h *ElectionHandler) DeleteElection(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election id is required")
		return
	}

	if err := h.elections.Delete(r.Context(), electionID); err != nil {
		writeError(w, err, "Failed to delete election")
		return
	}

	slog.Info("election deleted", "election_id", electionID)
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{
		Success: true,
		Message: "Election deleted",
	})
}
