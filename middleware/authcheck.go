// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"net/http"

	"github.com/danielhkuo/civiclink/auth"
	"github.com/danielhkuo/civiclink/models"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated principal attached to the request context.
type Identity struct {
	AccountID string
	Role      string
}

// CurrentIdentity returns the authenticated identity, or nil for
// unauthenticated requests (routes not wrapped in RequireAuth).
func CurrentIdentity(r *http.Request) *Identity {
	if id, ok := r.Context().Value(identityKey).(*Identity); ok {
		return id
	}
	return nil
}

// RequireAuth verifies the Authorization bearer token and attaches the
// identity to the request context. 401 is reserved for authentication
// failure only: missing header, malformed, expired, or bad signature.
func RequireAuth(secret string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := auth.ExtractBearer(r.Header.Get("Authorization"))
		if token == "" {
			ErrorResponse(w, http.StatusUnauthorized, "Authorization bearer token required")
			return
		}

		claims, err := auth.ParseAccessToken(token, secret)
		if err != nil {
			// Expired and invalid both mean "not authenticated"
			ErrorResponse(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		id := &Identity{AccountID: claims.Subject, Role: claims.Role}
		ctx := context.WithValue(r.Context(), identityKey, id)
		next(w, r.WithContext(ctx))
	}
}

// RequireRole rejects authenticated requests whose role is not one of the
// allowed roles. Authorization failure is 403, never 401.
func RequireRole(next http.HandlerFunc, roles ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := CurrentIdentity(r)
		if id == nil {
			ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		for _, role := range roles {
			if id.Role == role {
				next(w, r)
				return
			}
		}
		ErrorResponse(w, http.StatusForbidden, "Insufficient role")
	}
}

// RequireLeader allows leader and admin roles.
func RequireLeader(next http.HandlerFunc) http.HandlerFunc {
	return RequireRole(next, models.RoleLeader, models.RoleAdmin)
}

// RequireAdmin allows only the admin role.
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return RequireRole(next, models.RoleAdmin)
}
