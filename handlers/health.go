// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/votesecure/middleware"
	"github.com/danielhkuo/votesecure/models"
)

const healthPingTimeout = 2 * time.Second

type HealthHandler struct {
	db      *sql.DB
	started time.Time
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db, started: time.Now()}
}

// Health handles GET /health
// Reports 503 when the database cannot be reached.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
	defer cancel()

	resp := models.HealthResponse{
		Status:        "ok",
		Timestamp:     time.Now().UTC(),
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	}

	if err := h.db.PingContext(ctx); err != nil {
		slog.Error("health check failed", "error", err)
		resp.Status = "unavailable"
		middleware.JSONResponse(w, http.StatusServiceUnavailable, resp)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}
