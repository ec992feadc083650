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

type CandidateHandler struct {
	cfg        cliparse.Config
	candidates *db.Candidates
}

func NewCandidateHandler(conn *sql.DB, cfg cliparse.Config) *CandidateHandler {
	return &CandidateHandler{
		cfg:        cfg,
		candidates: db.NewCandidates(conn),
	}
}

// Nominate handles POST /nominate
// The caller nominates themselves; the nomination stays pending until an
// administrator approves it.
func (h *CandidateHandler) Nominate(w http.ResponseWriter, r *http.Request) {
	acct, _ := middleware.AccountFromContext(r.Context())

	var req models.NominateRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	c := election.Candidate{
		ID:         auth.GenerateID(),
		ElectionID: req.ElectionID,
		Name:       acct.Name,
		Party:      strings.TrimSpace(req.Party),
		Manifesto:  req.Manifesto,
		Photo:      req.Photo,
		Pending:    true,
	}
	err := h.candidates.Nominate(r.Context(), c)
	if errors.Is(err, db.ErrAlreadyNominated) {
		middleware.ErrorResponse(w, http.StatusConflict, "Already nominated for this election")
		return
	}
	if err != nil {
		writeError(w, err, "Failed to submit nomination")
		return
	}

	slog.Info("nomination submitted", "candidate_id", c.ID, "election_id", c.ElectionID)
	middleware.JSONResponse(w, http.StatusCreated, c)
}

// PendingCandidates handles GET /admin/pending-candidates
func (h *CandidateHandler) PendingCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.candidates.ListPending(r.Context())
	if err != nil {
		writeError(w, err, "Failed to list pending candidates")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, candidates)
}

// ApproveCandidate handles POST /admin/candidates/{id}/approve
// Adds the candidate to its election's candidate set.
func (h *CandidateHandler) ApproveCandidate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidate id is required")
		return
	}

	c, err := h.candidates.Approve(r.Context(), id)
	if err != nil {
		writeError(w, err, "Failed to approve candidate")
		return
	}

	slog.Info("candidate approved", "candidate_id", id, "election_id", c.ElectionID)
	middleware.JSONResponse(w, http.StatusOK, c)
}

// RejectCandidate handles POST /admin/candidates/{id}/reject
func (h *CandidateHandler) RejectCandidate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidate id is required")
		return
	}

	err := h.candidates.Reject(r.Context(), id)
	if errors.Is(err, db.ErrCandidateApproved) {
		middleware.ErrorResponse(w, http.StatusConflict, "Candidate is already approved; delete it instead")
		return
	}
	if err != nil {
		writeError(w, err, "Failed to reject candidate")
		return
	}

	slog.Info("candidate rejected", "candidate_id", id)
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{
		Success: true,
		Message: "Nomination rejected",
	})
}

// CreateCandidate handles POST /admin/candidates
// Candidates added by an administrator are admitted immediately.
func (h *CandidateHandler) CreateCandidate(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCandidateRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	c := election.Candidate{
		ID:         auth.GenerateID(),
		ElectionID: req.ElectionID,
		Name:       strings.TrimSpace(req.Name),
		Party:      strings.TrimSpace(req.Party),
		Manifesto:  req.Manifesto,
		Photo:      req.Photo,
	}
	err := h.candidates.Create(r.Context(), c)
	if errors.Is(err, db.ErrCandidateExists) {
		middleware.ErrorResponse(w, http.StatusConflict, "A candidate with this name already stands in this election")
		return
	}
	if err != nil {
		writeError(w, err, "Failed to create candidate")
		return
	}

	created, err := h.candidates.GetCandidate(r.Context(), c.ID)
	if err != nil {
		writeError(w, err, "Failed to load candidate")
		return
	}

	slog.Info("candidate created", "candidate_id", c.ID, "election_id", c.ElectionID)
	middleware.JSONResponse(w, http.StatusCreated, created)
}

// ListCandidates handles GET /admin/candidates
func (h *CandidateHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.candidates.ListApproved(r.Context())
	if err != nil {
		writeError(w, err, "Failed to list candidates")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, candidates)
}

// UpdateCandidate handles PUT /admin/candidates/{id}
func (h *CandidateHandler) UpdateCandidate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidate id is required")
		return
	}

	var req models.UpdateCandidateRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.candidates.Update(r.Context(), id, db.CandidatePatch{
		Name:      req.Name,
		Party:     req.Party,
		Manifesto: req.Manifesto,
		Photo:     req.Photo,
	})
	if errors.Is(err, db.ErrNothingToUpdate) {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if errors.Is(err, db.ErrCandidateExists) {
		middleware.ErrorResponse(w, http.StatusConflict, "A candidate with this name already stands in this election")
		return
	}
	if err != nil {
		writeError(w, err, "Failed to update candidate")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, c)
}

// DeleteCandidate handles DELETE /admin/candidates/{id}
// Ballots already cast for the candidate keep counting toward the total.
func (h *CandidateHandler) DeleteCandidate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidate id is required")
		return
	}

	if err := h.candidates.Delete(r.Context(), id); err != nil {
		writeError(w, err, "Failed to delete candidate")
		return
	}

	slog.Info("candidate deleted", "candidate_id", id)
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{
		Success: true,
		Message: "Candidate deleted",
	})
}
