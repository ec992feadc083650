// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"sort"
	"sync"
)

// memStore is an in-memory stand-in for the SQL store. Its ballot map is
// keyed by (election, voter) so Insert behaves like the unique index.
type memStore struct {
	mu         sync.Mutex
	voters     map[string]Voter
	elections  map[string]Election
	candidates map[string]Candidate
	ballots    map[[2]string]Ballot

	// skipPrecheck makes HasBallot always report false, as if every
	// concurrent request read the ledger before any insert landed.
	skipPrecheck bool
	insertErr    error
}

func newMemStore() *memStore {
	return &memStore{
		voters:     map[string]Voter{},
		elections:  map[string]Election{},
		candidates: map[string]Candidate{},
		ballots:    map[[2]string]Ballot{},
	}
}

func (m *memStore) GetVoter(_ context.Context, id string) (Voter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.voters[id]
	if !ok {
		return Voter{}, ErrVoterNotFound
	}
	return v, nil
}

func (m *memStore) CountApprovedVotersByGroup(_ context.Context, group string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, v := range m.voters {
		if v.Approved && v.Group == group {
			n++
		}
	}
	return n, nil
}

func (m *memStore) GetElection(_ context.Context, id string) (Election, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.elections[id]
	if !ok {
		return Election{}, ErrElectionNotFound
	}
	return e, nil
}

func (m *memStore) GetCandidate(_ context.Context, id string) (Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.candidates[id]
	if !ok {
		return Candidate{}, ErrCandidateNotFound
	}
	return c, nil
}

func (m *memStore) CandidatesByID(_ context.Context, ids []string) (map[string]Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]Candidate{}
	for _, id := range ids {
		if c, ok := m.candidates[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (m *memStore) HasBallot(_ context.Context, electionID, voterID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.skipPrecheck {
		return false, nil
	}
	_, ok := m.ballots[[2]string{electionID, voterID}]
	return ok, nil
}

func (m *memStore) Insert(_ context.Context, b Ballot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	key := [2]string{b.ElectionID, b.VoterID}
	if _, ok := m.ballots[key]; ok {
		return ErrDuplicateVote
	}
	m.ballots[key] = b
	return nil
}

func (m *memStore) CountByCandidate(_ context.Context, electionID string) ([]CandidateCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byCandidate := map[string]int{}
	for _, b := range m.ballots {
		if b.ElectionID == electionID {
			byCandidate[b.CandidateID]++
		}
	}
	out := make([]CandidateCount, 0, len(byCandidate))
	for id, n := range byCandidate {
		out = append(out, CandidateCount{CandidateID: id, Votes: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CandidateID < out[j].CandidateID })
	return out, nil
}

func (m *memStore) CountBallots(_ context.Context, electionID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.ballots {
		if b.ElectionID == electionID {
			n++
		}
	}
	return n, nil
}

// seedBallots inserts count ballots for candidateID from freshly made voters.
func (m *memStore) seedBallots(electionID, candidateID string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < count; i++ {
		voterID := candidateID + "-voter-" + string(rune('a'+i))
		m.ballots[[2]string{electionID, voterID}] = Ballot{
			ID:          voterID,
			ElectionID:  electionID,
			CandidateID: candidateID,
			VoterID:     voterID,
		}
	}
}
