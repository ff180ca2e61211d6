// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (duration_ms).

# Authentication

RequireAuth verifies the Authorization bearer token and places an
Identity (account ID + role) in the request context:

	mux.HandleFunc("POST /issues",
		middleware.WithLogging(middleware.RequireAuth(cfg.AccessSecret, h.CreateIssue)))

Handlers read it back with middleware.CurrentIdentity(r).

Status code policy: 401 is reserved for authentication failure (missing,
malformed, expired, or forged token). Role mismatches are 403 via
RequireRole / RequireLeader / RequireAdmin. Clients rely on this split:
a 401 tears down their session, a 403 does not.

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, PUT, PATCH, DELETE, OPTIONS with headers
Content-Type and Authorization.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies:

	var req models.CreateIssueRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)
*/
package middleware
