// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/votesecure/auth"
	"github.com/danielhkuo/votesecure/cliparse"
	"github.com/danielhkuo/votesecure/db"
	"github.com/danielhkuo/votesecure/handlers"
	"github.com/danielhkuo/votesecure/metrics"
	"github.com/danielhkuo/votesecure/middleware"
)

func NewRouter(conn *sql.DB, cfg cliparse.Config, m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	accountHandler := handlers.NewAccountHandler(conn, cfg)
	electionHandler := handlers.NewElectionHandler(conn, cfg)
	candidateHandler := handlers.NewCandidateHandler(conn, cfg)
	votingHandler := handlers.NewVotingHandler(conn, cfg, m)
	resultsHandler := handlers.NewResultsHandler(conn, cfg, m)
	reportHandler := handlers.NewReportHandler(conn, cfg)
	healthHandler := handlers.NewHealthHandler(conn)

	authn := middleware.NewAuthenticator(
		auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
		db.NewAccounts(conn),
	)
	loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow, cfg.TrustedProxies)

	// Health check and metrics
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.Handle("GET /metrics", m.Handler())

	// Accounts (public)
	mux.HandleFunc("POST /register", middleware.WithLogging(accountHandler.Register))
	mux.HandleFunc("POST /login", middleware.WithLogging(loginLimiter.Limit(accountHandler.Login)))

	// Voter operations
	mux.HandleFunc("GET /dashboard", middleware.WithLogging(authn.RequireApproved(electionHandler.Dashboard)))
	mux.HandleFunc("GET /elections", middleware.WithLogging(authn.Require(electionHandler.ListElections)))
	mux.HandleFunc("GET /elections/{id}/candidates", middleware.WithLogging(authn.Require(electionHandler.ElectionCandidates)))
	mux.HandleFunc("POST /nominate", middleware.WithLogging(authn.RequireApproved(candidateHandler.Nominate)))
	mux.HandleFunc("POST /report", middleware.WithLogging(authn.Require(reportHandler.SubmitReport)))

	// Voting (approval is checked by the admission core so the reason is reported)
	mux.HandleFunc("POST /vote", middleware.WithLogging(authn.Require(votingHandler.CastVote)))

	// Results retrieval (sealed until the election ends)
	mux.HandleFunc("GET /results/{id}", middleware.WithLogging(authn.Require(resultsHandler.GetResults)))
	mux.HandleFunc("GET /stats/{id}", middleware.WithLogging(authn.Require(resultsHandler.GetStats)))

	// Administration
	mux.HandleFunc("GET /admin/pending-users", middleware.WithLogging(authn.RequireAdmin(accountHandler.PendingUsers)))
	mux.HandleFunc("POST /admin/users/{id}/approve", middleware.WithLogging(authn.RequireAdmin(accountHandler.ApproveUser)))
	mux.HandleFunc("POST /admin/users/{id}/reject", middleware.WithLogging(authn.RequireAdmin(accountHandler.RejectUser)))

	mux.HandleFunc("GET /admin/pending-candidates", middleware.WithLogging(authn.RequireAdmin(candidateHandler.PendingCandidates)))
	mux.HandleFunc("POST /admin/candidates/{id}/approve", middleware.WithLogging(authn.RequireAdmin(candidateHandler.ApproveCandidate)))
	mux.HandleFunc("POST /admin/candidates/{id}/reject", middleware.WithLogging(authn.RequireAdmin(candidateHandler.RejectCandidate)))

	mux.HandleFunc("POST /admin/elections", middleware.WithLogging(authn.RequireAdmin(electionHandler.CreateElection)))
	mux.HandleFunc("PUT /admin/elections/{id}", middleware.WithLogging(authn.RequireAdmin(electionHandler.UpdateElection)))
	mux.HandleFunc("DELETE /admin/elections/{id}", middleware.WithLogging(authn.RequireAdmin(electionHandler.DeleteElection)))

	mux.HandleFunc("POST /admin/candidates", middleware.WithLogging(authn.RequireAdmin(candidateHandler.CreateCandidate)))
	mux.HandleFunc("GET /admin/candidates", middleware.WithLogging(authn.RequireAdmin(candidateHandler.ListCandidates)))
	mux.HandleFunc("PUT /admin/candidates/{id}", middleware.WithLogging(authn.RequireAdmin(candidateHandler.UpdateCandidate)))
	mux.HandleFunc("DELETE /admin/candidates/{id}", middleware.WithLogging(authn.RequireAdmin(candidateHandler.DeleteCandidate)))

	mux.HandleFunc("GET /admin/reports", middleware.WithLogging(authn.RequireAdmin(reportHandler.ListReports)))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("votesecure API v1"))
	})

	return mux
}
