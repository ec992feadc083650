// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/votesecure/auth"
	"github.com/danielhkuo/votesecure/cliparse"
	"github.com/danielhkuo/votesecure/db"
	"github.com/danielhkuo/votesecure/middleware"
	"github.com/danielhkuo/votesecure/models"
)

type ReportHandler struct {
	cfg     cliparse.Config
	reports *db.Reports
}

func NewReportHandler(conn *sql.DB, cfg cliparse.Config) *ReportHandler {
	return &ReportHandler{cfg: cfg, reports: db.NewReports(conn)}
}

// SubmitReport handles POST /report
func (h *ReportHandler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	acct, _ := middleware.AccountFromContext(r.Context())

	var req models.ReportRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	report := models.Report{
		ID:          auth.GenerateID(),
		AccountID:   acct.ID,
		Subject:     strings.TrimSpace(req.Subject),
		Description: req.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.reports.Create(r.Context(), report); err != nil {
		writeError(w, err, "Failed to submit report")
		return
	}

	slog.Info("report submitted", "report_id", report.ID)
	middleware.JSONResponse(w, http.StatusCreated, report)
}

// ListReports handles GET /admin/reports
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.List(r.Context())
	if err != nil {
		writeError(w, err, "Failed to list reports")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, reports)
}
