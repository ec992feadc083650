// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/votesecure/auth"
	"github.com/danielhkuo/votesecure/election"
	"github.com/danielhkuo/votesecure/models"
	"github.com/danielhkuo/votesecure/testutil"
)

func TestRegister(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAccountHandler(db, cfg)

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
	}{
		{
			name: "valid registration",
			body: models.RegisterRequest{
				Name:     "Ada Lovelace",
				Email:    "Ada@Example.com",
				Password: "analytical-engine",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "duplicate email differs only in case",
			body: models.RegisterRequest{
				Name:     "Ada Again",
				Email:    "ada@example.com",
				Password: "analytical-engine",
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "short password",
			body:           models.RegisterRequest{Name: "Bob", Email: "bob@example.com", Password: "short"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad email",
			body:           models.RegisterRequest{Name: "Bob", Email: "not-an-email", Password: "long-enough-pw"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing name",
			body:           map[string]string{"email": "c@example.com", "password": "long-enough-pw"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/register", tt.body, nil)
			w := httptest.NewRecorder()

			handler.Register(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusCreated {
				var resp models.RegisterResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.ID == "" {
					t.Error("Expected account ID in response")
				}
			}
		})
	}

	// New accounts land unapproved in the default group
	var approved bool
	var group string
	err := db.QueryRow(`SELECT approved, eligibility FROM account WHERE email = $1`, "ada@example.com").Scan(&approved, &group)
	if err != nil {
		t.Fatalf("Failed to load account: %v", err)
	}
	if approved {
		t.Error("Expected new account to await approval")
	}
	if group != election.DefaultGroup {
		t.Errorf("Expected group %q, got %q", election.DefaultGroup, group)
	}
}

func TestLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAccountHandler(db, cfg)

	approvedID := testutil.CreateTestAccount(t, db, "voter@example.com", election.DefaultGroup, true, false)
	testutil.CreateTestAccount(t, db, "waiting@example.com", election.DefaultGroup, false, false)

	tests := []struct {
		name           string
		email          string
		password       string
		expectedStatus int
	}{
		{"approved account", "voter@example.com", testutil.TestPassword, http.StatusOK},
		{"email is case insensitive", "VOTER@example.com", testutil.TestPassword, http.StatusOK},
		{"wrong password", "voter@example.com", "wrong-password", http.StatusUnauthorized},
		{"unknown email", "nobody@example.com", testutil.TestPassword, http.StatusUnauthorized},
		{"unapproved account", "waiting@example.com", testutil.TestPassword, http.StatusForbidden},
		{"missing password", "voter@example.com", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/login", models.LoginRequest{
				Email:    tt.email,
				Password: tt.password,
			}, nil)
			w := httptest.NewRecorder()

			handler.Login(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus != http.StatusOK {
				return
			}

			var resp models.LoginResponse
			testutil.AssertJSON(t, w, &resp)

			if resp.User.ID != approvedID {
				t.Errorf("Expected user %s, got %s", approvedID, resp.User.ID)
			}
			sub, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL).Parse(resp.Token)
			if err != nil {
				t.Fatalf("Issued token does not parse: %v", err)
			}
			if sub != approvedID {
				t.Errorf("Expected token subject %s, got %s", approvedID, sub)
			}
		})
	}
}

func TestUserApproval(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAccountHandler(db, cfg)

	first := testutil.CreateTestAccount(t, db, "first@example.com", election.DefaultGroup, false, false)
	second := testutil.CreateTestAccount(t, db, "second@example.com", election.DefaultGroup, false, false)
	testutil.CreateTestVoter(t, db, election.DefaultGroup)

	// Both unapproved accounts are pending
	req := httptest.NewRequest("GET", "/admin/pending-users", nil)
	w := httptest.NewRecorder()
	handler.PendingUsers(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var pending []models.Account
	testutil.AssertJSON(t, w, &pending)
	if len(pending) != 2 {
		t.Fatalf("Expected 2 pending accounts, got %d", len(pending))
	}

	// Approve the first
	req = httptest.NewRequest("POST", "/admin/users/"+first+"/approve", nil)
	req.SetPathValue("id", first)
	w = httptest.NewRecorder()
	handler.ApproveUser(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var approved models.Account
	testutil.AssertJSON(t, w, &approved)
	if !approved.Approved {
		t.Error("Expected account to be approved")
	}

	// Reject the second
	req = httptest.NewRequest("POST", "/admin/users/"+second+"/reject", nil)
	req.SetPathValue("id", second)
	w = httptest.NewRecorder()
	handler.RejectUser(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM account WHERE id = $1`, second).Scan(&count); err != nil {
		t.Fatalf("Failed to count accounts: %v", err)
	}
	if count != 0 {
		t.Error("Expected rejected account to be removed")
	}

	// Nothing left pending
	req = httptest.NewRequest("GET", "/admin/pending-users", nil)
	w = httptest.NewRecorder()
	handler.PendingUsers(w, req)

	pending = nil
	testutil.AssertJSON(t, w, &pending)
	if len(pending) != 0 {
		t.Errorf("Expected no pending accounts, got %d", len(pending))
	}

	t.Run("unknown user", func(t *testing.T) {
		for _, h := range []http.HandlerFunc{handler.ApproveUser, handler.RejectUser} {
			req := httptest.NewRequest("POST", "/admin/users/ghost/approve", nil)
			req.SetPathValue("id", "ghost")
			w := httptest.NewRecorder()
			h(w, req)

			testutil.AssertStatus(t, w, http.StatusNotFound)
		}
	})
}
