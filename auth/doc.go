// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides password hashing, session tokens and ID generation.

# Passwords

Passwords are stored as bcrypt hashes:

	hash, err := auth.HashPassword(password)
	err := auth.CheckPassword(hash, password) // ErrInvalidCredentials on mismatch

The work factor is PasswordCost (default 12). Test packages lower it.

# Session Tokens

TokenIssuer signs HS256 JWTs that carry only the account ID as subject:

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	token, expiresAt, err := issuer.Issue(accountID)
	accountID, err := issuer.Parse(token)

Parse pins the algorithm to HS256, requires an expiry and checks the
issuer. Approval and admin status are never read from the token; the
middleware reloads the account on every request so a revoked approval
takes effect immediately.

BearerToken pulls the token out of an Authorization header:

	token, err := auth.BearerToken(r.Header.Get("Authorization"))

# ID Generation

Random UUIDs for database records:

	id := auth.GenerateID()
*/
package auth
