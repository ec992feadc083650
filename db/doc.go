// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db holds the schema and the SQL stores behind the election core.

# Connecting

Open accepts either backend and pings before returning:

	conn, err := db.Open(ctx, db.TypePostgres, "postgres://...")
	conn, err := db.Open(ctx, db.TypeSQLite, "votesecure.db")

SQLite connections get busy_timeout, WAL and foreign_keys pragmas, and
begin transactions IMMEDIATE, unless the URL already sets its own. Every
statement uses $N placeholders and CURRENT_TIMESTAMP so the same SQL runs
on both drivers.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(ctx, conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - account: voters and administrators, with eligibility group and approval
  - election: title, eligibility group, voting window and active flag
  - candidate: approved candidates and pending nominations
  - election_candidate: the admitted candidate set of each election
  - ballot: one row per voter per election
  - report: issue reports filed by voters

# Relationships

	election 1──* candidate
	election 1──* election_candidate *──1 candidate
	election 1──* ballot

ballot.candidate_id and ballot.voter_id carry no foreign key. Deleting a
candidate or an account never rewrites the ledger.

# Stores

Accounts, Elections, Candidates and Ledger implement the election package
interfaces. The candidate set is only changed through single-row
INSERT ... ON CONFLICT DO NOTHING and DELETE statements, so concurrent
approvals never lose an entry.

# Errors

Unique violations on ballot become election.ErrDuplicateVote. Connection
loss, lock contention and serialization failures are wrapped with
election.ErrStorageUnavailable so callers can tell retryable failures from
rejections.
*/
package db
