// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/votesecure/auth"
	"github.com/danielhkuo/votesecure/cliparse"
	"github.com/danielhkuo/votesecure/db"
	"github.com/danielhkuo/votesecure/election"
	"github.com/danielhkuo/votesecure/models"
)

// TestPassword is the password of every account created by the fixtures
const TestPassword = "correct-horse-battery"

func init() {
	auth.PasswordCost = bcrypt.MinCost
}

// SetupTestDB creates a fresh SQLite database with the full schema. Each
// test gets its own file, removed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	// One writer at a time, like a busy production pool
	return openTestDB(t, 1)
}

// PooledConns is the pool size used by SetupPooledTestDB.
const PooledConns = 8

// SetupPooledTestDB is SetupTestDB with a pool of PooledConns connections,
// so concurrent requests really reach the database at the same time.
func SetupPooledTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return openTestDB(t, PooledConns)
}

func openTestDB(t *testing.T, maxConns int) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "votesecure-test.db")
	conn, err := db.Open(context.Background(), db.TypeSQLite, path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(maxConns)
	conn.SetMaxIdleConns(maxConns)

	if err := db.CreateSchema(context.Background(), conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:            3318,
		DatabaseURL:     "votesecure-test.db",
		DatabaseType:    db.TypeSQLite,
		JWTSecret:       "test-jwt-secret",
		TokenTTL:        time.Hour,
		VoteRetries:     2,
		VoteRetryBase:   time.Millisecond,
		LoginRateLimit:  20,
		LoginRateWindow: 15 * time.Minute,
	}
}

// CreateTestAccount registers an account and returns its ID
func CreateTestAccount(t *testing.T, conn *sql.DB, email, group string, approved, admin bool) string {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	id := auth.GenerateID()
	err = db.NewAccounts(conn).Create(context.Background(), models.Account{
		ID:           id,
		Name:         "Test " + email,
		Email:        email,
		PasswordHash: hash,
		Eligibility:  group,
		Approved:     approved,
		IsAdmin:      admin,
	})
	if err != nil {
		t.Fatalf("Failed to create test account: %v", err)
	}
	return id
}

// CreateTestVoter creates an approved voter in group and returns its ID
func CreateTestVoter(t *testing.T, conn *sql.DB, group string) string {
	t.Helper()
	return CreateTestAccount(t, conn, auth.GenerateID()+"@voter.test", group, true, false)
}

// CreateTestAdmin creates an approved administrator and returns its ID
func CreateTestAdmin(t *testing.T, conn *sql.DB) string {
	t.Helper()
	return CreateTestAccount(t, conn, auth.GenerateID()+"@admin.test", election.DefaultGroup, true, true)
}

// CreateTestElection creates an election for group and returns its ID.
// status should be "upcoming", "active", "ended", or "inactive"
func CreateTestElection(t *testing.T, conn *sql.DB, status, group string) string {
	t.Helper()

	now := time.Now().UTC()
	e := election.Election{
		ID:     auth.GenerateID(),
		Title:  "Test Election",
		Group:  group,
		Start:  now.Add(-time.Hour),
		End:    now.Add(time.Hour),
		Active: true,
	}
	switch status {
	case "upcoming":
		e.Start, e.End = now.Add(time.Hour), now.Add(2*time.Hour)
	case "ended":
		e.Start, e.End = now.Add(-2*time.Hour), now.Add(-time.Hour)
	case "inactive":
		e.Active = false
	case "active":
	default:
		t.Fatalf("unknown election status %q", status)
	}

	if err := db.NewElections(conn).Create(context.Background(), e); err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}
	return e.ID
}

// AddTestCandidate adds an approved candidate to an election's set and
// returns its ID
func AddTestCandidate(t *testing.T, conn *sql.DB, electionID, name string) string {
	t.Helper()
	return addCandidate(t, conn, electionID, name, false)
}

// AddPendingCandidate records a nomination awaiting approval and returns
// its ID
func AddPendingCandidate(t *testing.T, conn *sql.DB, electionID, name string) string {
	t.Helper()
	return addCandidate(t, conn, electionID, name, true)
}

func addCandidate(t *testing.T, conn *sql.DB, electionID, name string, pending bool) string {
	t.Helper()

	id := auth.GenerateID()
	err := db.NewCandidates(conn).Create(context.Background(), election.Candidate{
		ID:         id,
		ElectionID: electionID,
		Name:       name,
		Party:      "Test Party",
		Pending:    pending,
	})
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}
	return id
}

// CastTestBallot writes a ballot straight to the ledger, bypassing
// admission checks, and returns its ID
func CastTestBallot(t *testing.T, conn *sql.DB, electionID, candidateID, voterID string) string {
	t.Helper()

	id := auth.GenerateID()
	err := db.NewLedger(conn).Insert(context.Background(), election.Ballot{
		ID:          id,
		ElectionID:  electionID,
		CandidateID: candidateID,
		VoterID:     voterID,
		CastAt:      time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Failed to create test ballot: %v", err)
	}
	return id
}

// AuthHeader returns an Authorization header carrying a valid token for
// accountID
func AuthHeader(t *testing.T, cfg cliparse.Config, accountID string) map[string]string {
	t.Helper()

	token, _, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL).Issue(accountID)
	if err != nil {
		t.Fatalf("Failed to issue test token: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
