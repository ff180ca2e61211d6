// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers implements the HTTP handlers for the civiclink API.

Handlers are grouped by resource, each with its own constructor taking the
shared database handle and parsed configuration:

  - AuthHandler: citizen registration, citizen and leader login, refresh
    token rotation, logout, and the /auth/me profile endpoint.
  - IssueHandler: issue reporting, role scoped listing, status transitions,
    official responses, and citizen escalation.
  - TopicHandler: discussion topics and threaded comments.
  - AnnouncementHandler: official announcements posted by leaders.
  - AdminHandler: department and leader account management.

Authorization is layered: the router wraps protected routes in
middleware.RequireAuth (and RequireLeader/RequireAdmin where a role is
required), so handlers can assume middleware.CurrentIdentity returns a
verified identity. Handlers still enforce per-row ownership themselves, for
example a citizen may only read or escalate their own issues.

All handlers respond through middleware.JSONResponse and
middleware.ErrorResponse so the wire format stays uniform.
*/
package handlers
