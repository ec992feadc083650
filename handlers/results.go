// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/danielhkuo/votesecure/cliparse"
	"github.com/danielhkuo/votesecure/db"
	"github.com/danielhkuo/votesecure/election"
	"github.com/danielhkuo/votesecure/metrics"
	"github.com/danielhkuo/votesecure/middleware"
)

type ResultsHandler struct {
	cfg     cliparse.Config
	metrics *metrics.Metrics
	tallier *election.Tallier
}

func NewResultsHandler(conn *sql.DB, cfg cliparse.Config, m *metrics.Metrics, opts ...election.Option) *ResultsHandler {
	return &ResultsHandler{
		cfg:     cfg,
		metrics: m,
		tallier: election.NewTallier(
			db.NewAccounts(conn),
			db.NewElections(conn),
			db.NewCandidates(conn),
			db.NewLedger(conn),
			opts...,
		),
	}
}

// GetResults handles GET /results/{id}
// Results are sealed until the election ends, except for administrators.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election id is required")
		return
	}

	acct, _ := middleware.AccountFromContext(r.Context())

	start := time.Now()
	results, err := h.tallier.Tally(r.Context(), electionID, acct.IsAdmin)
	if err != nil {
		writeError(w, err, "Failed to compute results")
		return
	}
	h.metrics.ObserveTally(time.Since(start))

	middleware.JSONResponse(w, http.StatusOK, results)
}

// GetStats handles GET /stats/{id}
// Turnout only; available while voting is open.
func (h *ResultsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election id is required")
		return
	}

	turnout, err := h.tallier.Turnout(r.Context(), electionID)
	if err != nil {
		writeError(w, err, "Failed to compute turnout")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, turnout)
}
