// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/civiclink/auth"
	"github.com/danielhkuo/civiclink/cliparse"
	"github.com/danielhkuo/civiclink/middleware"
	"github.com/danielhkuo/civiclink/models"
)

type AuthHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewAuthHandler(db *sql.DB, cfg cliparse.Config) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg}
}

// RegisterCitizen handles POST /auth/register
func (h *AuthHandler) RegisterCitizen(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterCitizenRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	// Validate input
	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		middleware.ErrorResponse(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if len(req.Password) < 8 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	// Reject duplicate emails up front
	var exists bool
	err := h.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)
	`, req.Email).Scan(&exists)
	if err != nil {
		slog.Error("failed to check email", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if exists {
		middleware.ErrorResponse(w, http.StatusConflict, "An account with that email already exists")
		return
	}

	userID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate user ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	now := time.Now()
	_, err = h.db.Exec(`
		INSERT INTO users (id, name, email, password_hash, ward, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, userID, req.Name, req.Email, hash, req.Ward, now)
	if err != nil {
		slog.Error("failed to insert user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	tokens, err := h.issueSession(userID, models.RoleCitizen)
	if err != nil {
		slog.Error("failed to issue session", "error", err, "user_id", userID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	slog.Info("citizen registered", "user_id", userID)

	middleware.JSONResponse(w, http.StatusCreated, models.LoginResponse{
		AccessToken:  tokens.access,
		RefreshToken: tokens.refresh,
		User: &models.User{
			ID:        userID,
			Name:      req.Name,
			Email:     req.Email,
			Ward:      req.Ward,
			CreatedAt: now,
		},
	})
}

// LoginCitizen handles POST /auth/login
func (h *AuthHandler) LoginCitizen(w http.ResponseWriter, r *http.Request) {
	req, ok := parseLogin(w, r)
	if !ok {
		return
	}

	var user models.User
	var hash string
	err := h.db.QueryRow(`
		SELECT id, name, email, password_hash, ward, created_at
		FROM users WHERE email = $1
	`, req.Email).Scan(&user.ID, &user.Name, &user.Email, &hash, &user.Ward, &user.CreatedAt)

	if err == sql.ErrNoRows || (err == nil && !auth.CheckPasswordHash(req.Password, hash)) {
		// Same answer for unknown email and wrong password
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		slog.Error("failed to query user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	tokens, err := h.issueSession(user.ID, models.RoleCitizen)
	if err != nil {
		slog.Error("failed to issue session", "error", err, "user_id", user.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	slog.Info("citizen logged in", "user_id", user.ID)

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{
		AccessToken:  tokens.access,
		RefreshToken: tokens.refresh,
		User:         &user,
	})
}

// LoginLeader handles POST /admin/auth/login
func (h *AuthHandler) LoginLeader(w http.ResponseWriter, r *http.Request) {
	req, ok := parseLogin(w, r)
	if !ok {
		return
	}

	var leader models.Leader
	var hash string
	err := h.db.QueryRow(`
		SELECT id, name, email, password_hash, title, department_id, is_admin, created_at
		FROM leaders WHERE email = $1
	`, req.Email).Scan(&leader.ID, &leader.Name, &leader.Email, &hash,
		&leader.Title, &leader.DepartmentID, &leader.Admin, &leader.CreatedAt)

	if err == sql.ErrNoRows || (err == nil && !auth.CheckPasswordHash(req.Password, hash)) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		slog.Error("failed to query leader", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	role := models.RoleLeader
	if leader.Admin {
		role = models.RoleAdmin
	}

	tokens, err := h.issueSession(leader.ID, role)
	if err != nil {
		slog.Error("failed to issue session", "error", err, "leader_id", leader.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	slog.Info("leader logged in", "leader_id", leader.ID, "role", role)

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{
		AccessToken:  tokens.access,
		RefreshToken: tokens.refresh,
		Leader:       &leader,
	})
}

// Refresh handles POST /auth/refresh
// Exchanges a valid refresh token for a rotated token pair. Any invalid,
// revoked, or expired refresh token answers 401 so clients tear down.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.RefreshToken == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	tokenHash := auth.HashRefreshToken(req.RefreshToken, h.cfg.RefreshSecret)

	var accountID, role string
	var expiresAt time.Time
	err := h.db.QueryRow(`
		SELECT account_id, role, expires_at FROM refresh_tokens WHERE token = $1
	`, tokenHash).Scan(&accountID, &role, &expiresAt)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Unknown refresh token")
		return
	}
	if err != nil {
		slog.Error("failed to query refresh token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if time.Now().After(expiresAt) {
		// Expired rows are useless; drop eagerly
		h.db.Exec(`DELETE FROM refresh_tokens WHERE token = $1`, tokenHash)
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Refresh token expired")
		return
	}

	tokens, err := h.issueSession(accountID, role)
	if err != nil {
		slog.Error("failed to rotate session", "error", err, "account_id", accountID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to refresh")
		return
	}

	slog.Info("session refreshed", "account_id", accountID, "role", role)

	middleware.JSONResponse(w, http.StatusOK, models.RefreshResponse{
		AccessToken:  tokens.access,
		RefreshToken: tokens.refresh,
	})
}

// Logout handles POST /auth/logout
// Revokes the submitted refresh token. Idempotent: revoking an unknown
// token is still a 204.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req models.LogoutRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.RefreshToken != "" {
		tokenHash := auth.HashRefreshToken(req.RefreshToken, h.cfg.RefreshSecret)
		if _, err := h.db.Exec(`DELETE FROM refresh_tokens WHERE token = $1`, tokenHash); err != nil {
			slog.Error("failed to delete refresh token", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /auth/me
// Returns the profile for the authenticated account, used by clients to
// restore a session after restart without a fresh login.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id := middleware.CurrentIdentity(r)

	if id.Role == models.RoleCitizen {
		var user models.User
		err := h.db.QueryRow(`
			SELECT id, name, email, ward, created_at FROM users WHERE id = $1
		`, id.AccountID).Scan(&user.ID, &user.Name, &user.Email, &user.Ward, &user.CreatedAt)
		if err == sql.ErrNoRows {
			// Token outlived the account
			middleware.ErrorResponse(w, http.StatusUnauthorized, "Account no longer exists")
			return
		}
		if err != nil {
			slog.Error("failed to query user", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{User: &user})
		return
	}

	var leader models.Leader
	err := h.db.QueryRow(`
		SELECT id, name, email, title, department_id, is_admin, created_at
		FROM leaders WHERE id = $1
	`, id.AccountID).Scan(&leader.ID, &leader.Name, &leader.Email, &leader.Title,
		&leader.DepartmentID, &leader.Admin, &leader.CreatedAt)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Account no longer exists")
		return
	}
	if err != nil {
		slog.Error("failed to query leader", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{Leader: &leader})
}

type sessionTokens struct {
	access  string
	refresh string
}

// issueSession mints an access token and rotates the account's refresh
// token: any previous refresh rows for the account are replaced.
func (h *AuthHandler) issueSession(accountID, role string) (sessionTokens, error) {
	access, err := auth.NewAccessToken(accountID, role, h.cfg.AccessSecret, h.cfg.AccessTokenTTL)
	if err != nil {
		return sessionTokens{}, err
	}

	refresh, err := auth.GenerateRefreshToken()
	if err != nil {
		return sessionTokens{}, err
	}

	tx, err := h.db.Begin()
	if err != nil {
		return sessionTokens{}, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM refresh_tokens WHERE account_id = $1`, accountID); err != nil {
		return sessionTokens{}, err
	}
	_, err = tx.Exec(`
		INSERT INTO refresh_tokens (token, account_id, role, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, auth.HashRefreshToken(refresh, h.cfg.RefreshSecret), accountID, role,
		time.Now().Add(h.cfg.RefreshTokenTTL), time.Now())
	if err != nil {
		return sessionTokens{}, err
	}

	if err := tx.Commit(); err != nil {
		return sessionTokens{}, err
	}
	return sessionTokens{access: access, refresh: refresh}, nil
}

func parseLogin(w http.ResponseWriter, r *http.Request) (models.LoginRequest, bool) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return req, false
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "email and password are required")
		return req, false
	}
	return req, true
}
