// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package election is the integrity core: it decides whether a vote is
admitted and turns admitted ballots into ranked results.

# Eligibility

	election.IsEligible(voter.Group, e.Group)

Groups are free-form labels compared byte for byte.

# Lifecycle

An election's state is derived from its window, its active flag and the
current time; it is never stored:

	inactive  active == false
	upcoming  now < start
	active    start <= now <= end
	ended     now > end

Only the active state admits ballots.

# Admission

	admitter := election.NewAdmitter(accounts, elections, candidates, ledger)
	ballot, err := admitter.Admit(ctx, voterID, electionID, candidateID)

Checks run in order: candidate belongs to the election, no ballot yet,
voter is approved and eligible, election is active, ledger insert. The
ledger's (election, voter) uniqueness constraint is what makes the result
exact under concurrency; the earlier duplicate check only saves a round
trip.

# Tally

	tallier := election.NewTallier(accounts, elections, candidates, ledger)
	results, err := tallier.Tally(ctx, electionID, isAdmin)

Standings are sorted by votes descending with candidate ID ascending as the
tie-break. Percentages and turnout are rounded to two decimals.

# Errors

Rejections are *Error values with a Reason code:

	if errors.Is(err, election.ErrDuplicateVote) { ... }
	reason := election.ReasonOf(err)

Only ErrStorageUnavailable is retryable.
*/
package election
