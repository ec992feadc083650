// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/votesecure/auth"
	"github.com/danielhkuo/votesecure/db"
	"github.com/danielhkuo/votesecure/election"
	"github.com/danielhkuo/votesecure/models"
	"github.com/danielhkuo/votesecure/testutil"
)

func ballot(electionID, candidateID, voterID string) election.Ballot {
	return election.Ballot{
		ID:          auth.GenerateID(),
		ElectionID:  electionID,
		CandidateID: candidateID,
		VoterID:     voterID,
		CastAt:      time.Now().UTC(),
	}
}

func TestCreateSchemaIdempotent(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateSchema(ctx, conn))
	require.NoError(t, db.DropSchema(ctx, conn))
	require.NoError(t, db.CreateSchema(ctx, conn))
}

func TestLedgerInsertDuplicate(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()
	ledger := db.NewLedger(conn)

	electionID := testutil.CreateTestElection(t, conn, "active", election.DefaultGroup)
	a := testutil.AddTestCandidate(t, conn, electionID, "Alice")
	b := testutil.AddTestCandidate(t, conn, electionID, "Bob")

	require.NoError(t, ledger.Insert(ctx, ballot(electionID, a, "voter-1")))

	// Second ballot for a different candidate is still a duplicate
	err := ledger.Insert(ctx, ballot(electionID, b, "voter-1"))
	assert.ErrorIs(t, err, election.ErrDuplicateVote)

	has, err := ledger.HasBallot(ctx, electionID, "voter-1")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = ledger.HasBallot(ctx, electionID, "voter-2")
	require.NoError(t, err)
	assert.False(t, has)

	total, err := ledger.CountBallots(ctx, electionID)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestLedgerSameVoterDifferentElections(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()
	ledger := db.NewLedger(conn)

	e1 := testutil.CreateTestElection(t, conn, "active", election.DefaultGroup)
	e2 := testutil.CreateTestElection(t, conn, "active", election.DefaultGroup)
	c1 := testutil.AddTestCandidate(t, conn, e1, "Alice")
	c2 := testutil.AddTestCandidate(t, conn, e2, "Bob")

	require.NoError(t, ledger.Insert(ctx, ballot(e1, c1, "voter-1")))
	require.NoError(t, ledger.Insert(ctx, ballot(e2, c2, "voter-1")))
}

func TestLedgerConcurrentInsert(t *testing.T) {
	conn := testutil.SetupPooledTestDB(t)
	require.Equal(t, testutil.PooledConns, conn.Stats().MaxOpenConnections)
	ledger := db.NewLedger(conn)

	electionID := testutil.CreateTestElection(t, conn, "active", election.DefaultGroup)
	candidateID := testutil.AddTestCandidate(t, conn, electionID, "Alice")

	const attempts = 25
	var accepted, duplicates atomic.Int32
	var wg sync.WaitGroup
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := ledger.Insert(context.Background(), ballot(electionID, candidateID, "voter-1"))
			switch {
			case err == nil:
				accepted.Add(1)
			case assert.ErrorIs(t, err, election.ErrDuplicateVote):
				duplicates.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), accepted.Load())
	assert.Equal(t, int32(attempts-1), duplicates.Load())
}

func TestLedgerUnknownElection(t *testing.T) {
	conn := testutil.SetupTestDB(t)

	err := db.NewLedger(conn).Insert(context.Background(), ballot("no-such-election", "c", "v"))
	assert.ErrorIs(t, err, election.ErrElectionNotFound)
}

func TestLedgerCountByCandidate(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()

	electionID := testutil.CreateTestElection(t, conn, "active", election.DefaultGroup)
	a := testutil.AddTestCandidate(t, conn, electionID, "Alice")
	b := testutil.AddTestCandidate(t, conn, electionID, "Bob")
	testutil.AddTestCandidate(t, conn, electionID, "Carol")

	for i := range 3 {
		testutil.CastTestBallot(t, conn, electionID, a, "a-voter-"+string(rune('0'+i)))
	}
	testutil.CastTestBallot(t, conn, electionID, b, "b-voter")

	counts, err := db.NewLedger(conn).CountByCandidate(ctx, electionID)
	require.NoError(t, err)

	got := map[string]int{}
	for _, c := range counts {
		got[c.CandidateID] = c.Votes
	}
	// Candidates without ballots are absent
	assert.Equal(t, map[string]int{a: 3, b: 1}, got)
}

func TestAccounts(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()
	accounts := db.NewAccounts(conn)

	id := testutil.CreateTestAccount(t, conn, "alice@example.com", "student", false, false)

	t.Run("duplicate email", func(t *testing.T) {
		err := accounts.Create(ctx, models.Account{
			ID: auth.GenerateID(), Name: "Other", Email: "alice@example.com", PasswordHash: "x",
		})
		assert.ErrorIs(t, err, db.ErrEmailTaken)
	})

	t.Run("pending voter", func(t *testing.T) {
		v, err := accounts.GetVoter(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "student", v.Group)
		assert.False(t, v.Approved)

		pending, err := accounts.ListPending(ctx)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, id, pending[0].ID)
	})

	t.Run("approve", func(t *testing.T) {
		a, err := accounts.Approve(ctx, id)
		require.NoError(t, err)
		assert.True(t, a.Approved)

		n, err := accounts.CountApprovedVotersByGroup(ctx, "student")
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		n, err = accounts.CountApprovedVotersByGroup(ctx, election.DefaultGroup)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := accounts.GetVoter(ctx, "ghost")
		assert.ErrorIs(t, err, election.ErrVoterNotFound)
		_, err = accounts.Approve(ctx, "ghost")
		assert.ErrorIs(t, err, election.ErrVoterNotFound)
		assert.ErrorIs(t, accounts.Delete(ctx, "ghost"), election.ErrVoterNotFound)
	})

	t.Run("ensure admin promotes existing", func(t *testing.T) {
		require.NoError(t, accounts.EnsureAdmin(ctx, models.Account{
			ID: auth.GenerateID(), Name: "Admin", Email: "alice@example.com", PasswordHash: "x",
		}))
		a, err := accounts.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, id, a.ID)
		assert.True(t, a.IsAdmin)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, accounts.Delete(ctx, id))
		_, err := accounts.GetAccount(ctx, id)
		assert.ErrorIs(t, err, election.ErrVoterNotFound)
	})
}

func TestElections(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()
	elections := db.NewElections(conn)

	general := testutil.CreateTestElection(t, conn, "active", election.DefaultGroup)
	student := testutil.CreateTestElection(t, conn, "active", "student")
	inactive := testutil.CreateTestElection(t, conn, "inactive", election.DefaultGroup)

	t.Run("get", func(t *testing.T) {
		e, err := elections.GetElection(ctx, general)
		require.NoError(t, err)
		assert.Equal(t, election.DefaultGroup, e.Group)
		assert.True(t, e.Active)
		assert.NotNil(t, e.CandidateIDs)
		assert.Empty(t, e.CandidateIDs)
		assert.Equal(t, election.StateActive, election.Evaluate(e, time.Now()))
	})

	t.Run("list active for group", func(t *testing.T) {
		list, err := elections.ListActiveForGroup(ctx, election.DefaultGroup)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, general, list[0].ID)

		all, err := elections.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("partial update", func(t *testing.T) {
		title := "Renamed"
		active := true
		require.NoError(t, elections.Update(ctx, inactive, db.ElectionPatch{Title: &title, Active: &active}))

		e, err := elections.GetElection(ctx, inactive)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", e.Title)
		assert.True(t, e.Active)
		assert.Equal(t, election.DefaultGroup, e.Group)
	})

	t.Run("update errors", func(t *testing.T) {
		assert.ErrorIs(t, elections.Update(ctx, student, db.ElectionPatch{}), db.ErrNothingToUpdate)
		title := "x"
		assert.ErrorIs(t, elections.Update(ctx, "ghost", db.ElectionPatch{Title: &title}), election.ErrElectionNotFound)
		_, err := elections.GetElection(ctx, "ghost")
		assert.ErrorIs(t, err, election.ErrElectionNotFound)
	})
}

func TestElectionDeleteCascades(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()

	electionID := testutil.CreateTestElection(t, conn, "active", election.DefaultGroup)
	candidateID := testutil.AddTestCandidate(t, conn, electionID, "Alice")
	testutil.AddPendingCandidate(t, conn, electionID, "Bob")
	testutil.CastTestBallot(t, conn, electionID, candidateID, "voter-1")

	require.NoError(t, db.NewElections(conn).Delete(ctx, electionID))

	for _, table := range []string{"ballot", "election_candidate", "candidate", "election"} {
		var n int
		require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
		assert.Zero(t, n, "rows left in %s", table)
	}

	assert.ErrorIs(t, db.NewElections(conn).Delete(ctx, electionID), election.ErrElectionNotFound)
}

func TestCandidateSet(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()
	candidates := db.NewCandidates(conn)
	elections := db.NewElections(conn)

	electionID := testutil.CreateTestElection(t, conn, "active", election.DefaultGroup)
	approved := testutil.AddTestCandidate(t, conn, electionID, "Alice")
	pending := testutil.AddPendingCandidate(t, conn, electionID, "Bob")

	setOf := func() []string {
		e, err := elections.GetElection(ctx, electionID)
		require.NoError(t, err)
		return e.CandidateIDs
	}

	assert.Equal(t, []string{approved}, setOf(), "pending candidates are not in the set")

	listed, err := candidates.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, pending, listed[0].ID)

	c, err := candidates.Approve(ctx, pending)
	require.NoError(t, err)
	assert.False(t, c.Pending)
	assert.ElementsMatch(t, []string{approved, pending}, setOf())

	// Approving again keeps one entry
	_, err = candidates.Approve(ctx, pending)
	require.NoError(t, err)
	assert.Len(t, setOf(), 2)

	byElection, err := candidates.ListByElection(ctx, electionID)
	require.NoError(t, err)
	assert.Len(t, byElection, 2)

	require.NoError(t, candidates.Delete(ctx, approved))
	assert.Equal(t, []string{pending}, setOf())

	_, err = candidates.GetCandidate(ctx, approved)
	assert.ErrorIs(t, err, election.ErrCandidateNotFound)
	assert.ErrorIs(t, candidates.Delete(ctx, approved), election.ErrCandidateNotFound)
}

func TestCandidateConcurrentApprovals(t *testing.T) {
	conn := testutil.SetupPooledTestDB(t)
	ctx := context.Background()
	candidates := db.NewCandidates(conn)

	electionID := testutil.CreateTestElection(t, conn, "active", election.DefaultGroup)
	ids := make([]string, 10)
	for i := range ids {
		ids[i] = testutil.AddPendingCandidate(t, conn, electionID, "Nominee "+string(rune('A'+i)))
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := candidates.Approve(ctx, id)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	e, err := db.NewElections(conn).GetElection(ctx, electionID)
	require.NoError(t, err)
	assert.ElementsMatch(t, ids, e.CandidateIDs)
}

func TestCandidateNominateAndReject(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()
	candidates := db.NewCandidates(conn)

	electionID := testutil.CreateTestElection(t, conn, "active", election.DefaultGroup)

	nominee := election.Candidate{ID: auth.GenerateID(), ElectionID: electionID, Name: "Dana"}
	require.NoError(t, candidates.Nominate(ctx, nominee))

	c, err := candidates.GetCandidate(ctx, nominee.ID)
	require.NoError(t, err)
	assert.True(t, c.Pending)

	again := election.Candidate{ID: auth.GenerateID(), ElectionID: electionID, Name: "Dana"}
	assert.ErrorIs(t, candidates.Nominate(ctx, again), db.ErrAlreadyNominated)

	elsewhere := election.Candidate{ID: auth.GenerateID(), ElectionID: "ghost", Name: "Eve"}
	assert.ErrorIs(t, candidates.Nominate(ctx, elsewhere), election.ErrElectionNotFound)

	require.NoError(t, candidates.Reject(ctx, nominee.ID))
	assert.ErrorIs(t, candidates.Reject(ctx, nominee.ID), election.ErrCandidateNotFound)

	approved := testutil.AddTestCandidate(t, conn, electionID, "Frank")
	assert.ErrorIs(t, candidates.Reject(ctx, approved), db.ErrCandidateApproved)
}

func TestCandidateConcurrentNominations(t *testing.T) {
	conn := testutil.SetupPooledTestDB(t)
	ctx := context.Background()
	candidates := db.NewCandidates(conn)

	electionID := testutil.CreateTestElection(t, conn, "upcoming", election.DefaultGroup)

	const attempts = 20
	var accepted, rejected atomic.Int32
	var wg sync.WaitGroup
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := candidates.Nominate(ctx, election.Candidate{ID: auth.GenerateID(), ElectionID: electionID, Name: "Dana"})
			switch {
			case err == nil:
				accepted.Add(1)
			case assert.ErrorIs(t, err, db.ErrAlreadyNominated):
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), accepted.Load())
	assert.Equal(t, int32(attempts-1), rejected.Load())

	var rows int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM candidate WHERE election_id = $1 AND name = $2`, electionID, "Dana").Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestCandidateNameUniquePerElection(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()
	candidates := db.NewCandidates(conn)

	first := testutil.CreateTestElection(t, conn, "upcoming", election.DefaultGroup)
	second := testutil.CreateTestElection(t, conn, "upcoming", election.DefaultGroup)
	alice := testutil.AddTestCandidate(t, conn, first, "Alice")
	bob := testutil.AddTestCandidate(t, conn, first, "Bob")

	err := candidates.Create(ctx, election.Candidate{ID: auth.GenerateID(), ElectionID: first, Name: "Alice"})
	assert.ErrorIs(t, err, db.ErrCandidateExists)

	// An approved candidate also blocks a nomination under the same name
	err = candidates.Nominate(ctx, election.Candidate{ID: auth.GenerateID(), ElectionID: first, Name: "Alice"})
	assert.ErrorIs(t, err, db.ErrAlreadyNominated)

	// The same name may stand in another election
	require.NoError(t, candidates.Create(ctx, election.Candidate{ID: auth.GenerateID(), ElectionID: second, Name: "Alice"}))

	name := "Alice"
	_, err = candidates.Update(ctx, bob, db.CandidatePatch{Name: &name})
	assert.ErrorIs(t, err, db.ErrCandidateExists)

	e, err := db.NewElections(conn).GetElection(ctx, first)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{alice, bob}, e.CandidateIDs)
}

func TestCandidateUpdateAndLookup(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()
	candidates := db.NewCandidates(conn)

	electionID := testutil.CreateTestElection(t, conn, "active", election.DefaultGroup)
	a := testutil.AddTestCandidate(t, conn, electionID, "Alice")
	b := testutil.AddTestCandidate(t, conn, electionID, "Bob")

	party := "Green"
	c, err := candidates.Update(ctx, a, db.CandidatePatch{Party: &party})
	require.NoError(t, err)
	assert.Equal(t, "Alice", c.Name)
	assert.Equal(t, "Green", c.Party)

	_, err = candidates.Update(ctx, a, db.CandidatePatch{})
	assert.ErrorIs(t, err, db.ErrNothingToUpdate)
	_, err = candidates.Update(ctx, "ghost", db.CandidatePatch{Party: &party})
	assert.ErrorIs(t, err, election.ErrCandidateNotFound)

	found, err := candidates.CandidatesByID(ctx, []string{a, b, "ghost"})
	require.NoError(t, err)
	assert.Len(t, found, 2)
	assert.Equal(t, "Bob", found[b].Name)

	empty, err := candidates.CandidatesByID(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	approvedList, err := candidates.ListApproved(ctx)
	require.NoError(t, err)
	assert.Len(t, approvedList, 2)
}

func TestReports(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()
	reports := db.NewReports(conn)

	older := models.Report{ID: "r1", AccountID: "a", Subject: "Login", Description: "cannot log in",
		CreatedAt: time.Now().UTC().Add(-time.Minute)}
	newer := models.Report{ID: "r2", AccountID: "b", Subject: "Ballot", Description: "page blank"}
	require.NoError(t, reports.Create(ctx, older))
	require.NoError(t, reports.Create(ctx, newer))

	list, err := reports.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "r2", list[0].ID)
	assert.Equal(t, "r1", list[1].ID)
}
