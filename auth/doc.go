// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides credential hashing and token utilities.

# Access Tokens

Access tokens are short-lived HS256 JWTs carrying the account ID (sub)
and role:

	token, err := auth.NewAccessToken(accountID, models.RoleCitizen, secret, 15*time.Minute)
	claims, err := auth.ParseAccessToken(token, secret)

ParseAccessToken distinguishes expiry (ErrExpiredToken) from every other
failure mode (ErrInvalidToken). Both map to HTTP 401 in the middleware.

# Refresh Tokens

Refresh tokens are random 24-byte (192-bit) secrets:

	token, err := auth.GenerateRefreshToken()

Tokens are URL-safe base64 encoded. The server stores only an HMAC of the
token, so a database leak does not leak usable credentials:

	hash := auth.HashRefreshToken(token, secret)

# Passwords

Passwords are hashed with bcrypt at the default cost:

	hash, err := auth.HashPassword(password)
	ok := auth.CheckPasswordHash(password, hash)

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters

# Bearer Extraction

ExtractBearer parses an Authorization header value, accepting any case
for the "Bearer" scheme and returning "" for anything malformed.
*/
package auth
