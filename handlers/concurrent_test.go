// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/votesecure/election"
	"github.com/danielhkuo/votesecure/models"
	"github.com/danielhkuo/votesecure/testutil"
)

// TestConcurrentVotesSameVoter verifies that simultaneous vote requests
// from one voter produce exactly one ballot
func TestConcurrentVotesSameVoter(t *testing.T) {
	db := testutil.SetupPooledTestDB(t)
	cfg := testutil.GetTestConfig()
	votingHandler := NewVotingHandler(db, cfg, nil)

	electionID := testutil.CreateTestElection(t, db, "active", election.DefaultGroup)
	candA := testutil.AddTestCandidate(t, db, electionID, "Option A")
	candB := testutil.AddTestCandidate(t, db, electionID, "Option B")
	voter := testutil.CreateTestVoter(t, db, election.DefaultGroup)

	const attempts = 20
	var accepted, duplicates atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			candidate := candA
			if i%2 == 1 {
				candidate = candB
			}
			req := testutil.MakeRequest("POST", "/vote", models.CastVoteRequest{
				ElectionID:  electionID,
				CandidateID: candidate,
			}, nil)
			req = asAccount(t, db, req, voter)
			w := httptest.NewRecorder()

			votingHandler.CastVote(w, req)

			switch w.Code {
			case http.StatusCreated:
				accepted.Add(1)
			case http.StatusConflict:
				duplicates.Add(1)
			default:
				t.Errorf("Unexpected status %d: %s", w.Code, w.Body.String())
			}
		}(i)
	}

	wg.Wait()

	if accepted.Load() != 1 {
		t.Errorf("Expected exactly 1 accepted vote, got %d", accepted.Load())
	}
	if duplicates.Load() != attempts-1 {
		t.Errorf("Expected %d duplicates, got %d", attempts-1, duplicates.Load())
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM ballot WHERE election_id = $1`, electionID).Scan(&count); err != nil {
		t.Fatalf("Failed to count ballots: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 ballot in ledger, got %d", count)
	}
}

// TestConcurrentVotesManyVoters verifies that simultaneous votes from
// different voters are all recorded
func TestConcurrentVotesManyVoters(t *testing.T) {
	db := testutil.SetupPooledTestDB(t)
	cfg := testutil.GetTestConfig()
	votingHandler := NewVotingHandler(db, cfg, nil)

	electionID := testutil.CreateTestElection(t, db, "active", election.DefaultGroup)
	candidates := []string{
		testutil.AddTestCandidate(t, db, electionID, "Option A"),
		testutil.AddTestCandidate(t, db, electionID, "Option B"),
		testutil.AddTestCandidate(t, db, electionID, "Option C"),
	}

	numVoters := 15
	voters := make([]string, numVoters)
	for i := range voters {
		voters[i] = testutil.CreateTestVoter(t, db, election.DefaultGroup)
	}

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(voterIdx int) {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/vote", models.CastVoteRequest{
				ElectionID:  electionID,
				CandidateID: candidates[voterIdx%len(candidates)],
			}, nil)
			req = asAccount(t, db, req, voters[voterIdx])
			w := httptest.NewRecorder()

			votingHandler.CastVote(w, req)

			if w.Code == http.StatusCreated {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if int(successCount.Load()) != numVoters {
		t.Errorf("Expected %d successful votes, got %d", numVoters, successCount.Load())
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM ballot WHERE election_id = $1`, electionID).Scan(&count); err != nil {
		t.Fatalf("Failed to count ballots: %v", err)
	}
	if count != numVoters {
		t.Errorf("Expected %d ballots in ledger, got %d", numVoters, count)
	}
}

// TestParallelElections verifies that one voter can vote once in each of
// several elections at the same time
func TestParallelElections(t *testing.T) {
	db := testutil.SetupPooledTestDB(t)
	cfg := testutil.GetTestConfig()
	votingHandler := NewVotingHandler(db, cfg, nil)

	voter := testutil.CreateTestVoter(t, db, election.DefaultGroup)

	numElections := 5
	electionIDs := make([]string, numElections)
	candidateIDs := make([]string, numElections)
	for i := range electionIDs {
		electionIDs[i] = testutil.CreateTestElection(t, db, "active", election.DefaultGroup)
		candidateIDs[i] = testutil.AddTestCandidate(t, db, electionIDs[i], "Candidate")
	}

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numElections; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/vote", models.CastVoteRequest{
				ElectionID:  electionIDs[idx],
				CandidateID: candidateIDs[idx],
			}, nil)
			req = asAccount(t, db, req, voter)
			w := httptest.NewRecorder()

			votingHandler.CastVote(w, req)

			if w.Code == http.StatusCreated {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if int(successCount.Load()) != numElections {
		t.Errorf("Expected %d successful votes, got %d", numElections, successCount.Load())
	}
}
