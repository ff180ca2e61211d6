// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Civiclink is a citizen engagement service: residents report civic issues to
their local departments, discuss topics in threaded forums, and read official
announcements; community leaders triage and respond; administrators manage
departments and leader accounts.

The server exposes a REST+JSON API. Authentication is token based: a short
lived HS256 access token carried as a bearer header, paired with an opaque
refresh token that is rotated on every use. Citizen and leader sessions are
entirely separate namespaces with separate login endpoints.

Run the server with a database and signing secrets:

	civiclink -d civiclink.db -t sqlite --access-secret ... --refresh-secret ...

Configuration may also be supplied through environment variables (or a .env
file); see the cliparse package for the full set.

The repository also ships a Go client SDK under client/ and a command line
tool under cmd/civicctl for interacting with a running server.
*/
package main
