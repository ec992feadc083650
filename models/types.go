package models

import (
	"time"

	"github.com/danielhkuo/votesecure/election"
)

// Domain types

// Account is a registered user. Voters and administrators share the table.
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	Eligibility  string    `json:"eligibility"`
	Approved     bool      `json:"approved"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

type Report struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"account_id"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type ElectionWithCandidates struct {
	election.Election
	Candidates []election.Candidate `json:"candidates"`
}

// Request types

type RegisterRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	Eligibility string `json:"eligibility" validate:"omitempty,max=50"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CreateElectionRequest struct {
	Title       string    `json:"title" validate:"required"`
	Eligibility string    `json:"eligibility" validate:"omitempty,max=50"`
	Start       time.Time `json:"start" validate:"required"`
	End         time.Time `json:"end" validate:"required"`
}

// nil fields are left unchanged
type UpdateElectionRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1"`
	Eligibility *string    `json:"eligibility" validate:"omitempty,min=1,max=50"`
	Start       *time.Time `json:"start"`
	End         *time.Time `json:"end"`
	Active      *bool      `json:"active"`
}

type NominateRequest struct {
	ElectionID string `json:"election_id" validate:"required"`
	Party      string `json:"party"`
	Manifesto  string `json:"manifesto"`
	Photo      string `json:"photo" validate:"omitempty,url"`
}

type CreateCandidateRequest struct {
	Name       string `json:"name" validate:"required"`
	Party      string `json:"party"`
	ElectionID string `json:"election_id" validate:"required"`
	Manifesto  string `json:"manifesto"`
	Photo      string `json:"photo" validate:"omitempty,url"`
}

// nil fields are left unchanged
type UpdateCandidateRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1"`
	Party     *string `json:"party"`
	Manifesto *string `json:"manifesto"`
	Photo     *string `json:"photo" validate:"omitempty,url"`
}

type CastVoteRequest struct {
	ElectionID  string `json:"election_id" validate:"required"`
	CandidateID string `json:"candidate_id" validate:"required"`
}

type ReportRequest struct {
	Subject     string `json:"subject" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=5000"`
}

// Response types

type RegisterResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      Account   `json:"user"`
}

type CastVoteResponse struct {
	Accepted bool       `json:"accepted"`
	BallotID string     `json:"ballot_id,omitempty"`
	CastAt   *time.Time `json:"cast_at,omitempty"`
	Reason   string     `json:"reason,omitempty"`
	Message  string     `json:"message"`
}

type CandidatesResponse struct {
	Candidates []election.Candidate `json:"candidates"`
	HasVoted   bool                 `json:"has_voted"`
}

type DashboardResponse struct {
	Elections []election.Election `json:"elections"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	UptimeSeconds int64     `json:"uptime_seconds"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Reason  string `json:"reason,omitempty"`
}
