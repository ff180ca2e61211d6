// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package client is the Go SDK for the civiclink API.

The central piece is the authenticated transport: every guarded call goes
through Client.Do, which reads the active session from a Store, attaches
the bearer token without disturbing caller headers, and enforces the
session lifecycle:

  - An expired access token is detected locally, before any network
    traffic, by decoding the token's claims segment. Anything that fails
    to decode counts as expired.
  - A 401 from the server means the session is gone. The client tears the
    session down (tokens and cached profile, idempotently) and returns
    ErrSessionExpired. Callers short-circuit with errors.Is; they never
    see a half-valid session.
  - Citizen sessions get one refresh-token exchange and a single retry
    before tearing down. Admin sessions fail closed immediately.
  - Transport errors are returned unchanged and never destroy a session.

Citizen and admin sessions are separate namespaces in the Store and never
interfere with each other: clearing one leaves the other intact.

List endpoints are protected by a sequence guard: responses that arrive
after a newer request has already completed are discarded as stale rather
than overwriting fresher state.

The package also carries copy-on-path helpers (ReplaceComment,
AppendReply) for immutable comment-tree updates, and a MediaUploader for
pushing issue attachments to an external media host.
*/
package client
