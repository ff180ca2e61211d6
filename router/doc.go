// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the civiclink API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Authentication (public):

	POST /auth/register    - Citizen registration
	POST /auth/login       - Citizen login
	POST /admin/auth/login - Leader/admin login
	POST /auth/refresh     - Exchange refresh token for new pair
	POST /auth/logout      - Revoke refresh token

Session restore (guarded):

	GET /auth/me - Profile for the bearer token's account

Issues (guarded; role scopes visibility):

	POST  /issues                - File an issue (citizen)
	GET   /issues                - List (own / department / all by role)
	GET   /issues/{id}           - Issue with responses
	POST  /issues/{id}/escalate  - Escalate own issue (citizen)
	PATCH /issues/{id}/status    - Update status (leader/admin)
	POST  /issues/{id}/responses - Respond (leader/admin)

Topics (guarded):

	POST /topics               - Start a discussion
	GET  /topics               - Paginated list
	GET  /topics/{id}          - Topic with nested comment tree
	POST /topics/{id}/comments - Comment or reply (parent_id)

Announcements:

	GET    /announcements      - Public list
	POST   /announcements      - Publish (leader/admin)
	DELETE /announcements/{id} - Remove (own, or any for admin)

Departments and leaders:

	GET    /departments      - Public list
	POST   /departments      - Create (admin)
	DELETE /departments/{id} - Remove (admin)
	GET    /leaders          - List (admin)
	POST   /leaders          - Create (admin)
	DELETE /leaders/{id}     - Remove (admin)

# Guard Layers

Guarded routes are wrapped in middleware.RequireAuth; leader/admin routes
additionally in RequireLeader or RequireAdmin. Authentication failure is
always 401, authorization failure always 403.
*/
package router
