package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/danielhkuo/votesecure/auth"
	"github.com/danielhkuo/votesecure/cliparse"
	"github.com/danielhkuo/votesecure/db"
	"github.com/danielhkuo/votesecure/metrics"
	"github.com/danielhkuo/votesecure/middleware"
	"github.com/danielhkuo/votesecure/models"
	"github.com/danielhkuo/votesecure/router"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var err error

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Connect to the database
	dbConn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err, "type", cfg.DatabaseType)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(ctx, dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		dbConn.Close()
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	if err := bootstrapAdmin(ctx, dbConn, cfg); err != nil {
		slog.Error("bootstrap admin failed", "error", err)
		dbConn.Close()
		os.Exit(1)
	}

	// Create router
	m := metrics.New()
	mux := router.NewRouter(dbConn, cfg, m)

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(cfg.CORSOrigins)(m.Instrument(mux)),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	done := make(chan error, 1)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		slog.Info("Shutting down")
		done <- shutdown(&server, dbConn)
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
		dbConn.Close()
		os.Exit(1)
	}

	if err := <-done; err != nil {
		slog.Error("Shutdown incomplete", "error", err)
		os.Exit(1)
	}
	slog.Info("Server closed")
}

// shutdown drains in-flight requests, then closes the database.
func shutdown(server *http.Server, conn *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var result error
	if err := server.Shutdown(ctx); err != nil {
		result = multierror.Append(result, err)
	}
	if err := conn.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	return result
}

// bootstrapAdmin creates or promotes the configured administrator account.
func bootstrapAdmin(ctx context.Context, conn *sql.DB, cfg cliparse.Config) error {
	if cfg.BootstrapAdminEmail == "" {
		return nil
	}

	hash, err := auth.HashPassword(cfg.BootstrapAdminPassword)
	if err != nil {
		return err
	}

	err = db.NewAccounts(conn).EnsureAdmin(ctx, models.Account{
		ID:           auth.GenerateID(),
		Name:         "Administrator",
		Email:        strings.ToLower(cfg.BootstrapAdminEmail),
		PasswordHash: hash,
	})
	if err != nil {
		return err
	}

	slog.Info("Bootstrap admin ready", "email", cfg.BootstrapAdminEmail)
	return nil
}
