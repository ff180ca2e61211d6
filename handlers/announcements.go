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

type AnnouncementHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewAnnouncementHandler(db *sql.DB, cfg cliparse.Config) *AnnouncementHandler {
	return &AnnouncementHandler{db: db, cfg: cfg}
}

// ListAnnouncements handles GET /announcements (public)
func (h *AnnouncementHandler) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query(`
		SELECT id, leader_id, title, body, created_at
		FROM announcements
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		slog.Error("failed to query announcements", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	announcements := []models.Announcement{}
	for rows.Next() {
		var a models.Announcement
		if err := rows.Scan(&a.ID, &a.LeaderID, &a.Title, &a.Body, &a.CreatedAt); err != nil {
			slog.Error("failed to scan announcement", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		announcements = append(announcements, a)
	}

	middleware.JSONResponse(w, http.StatusOK, announcements)
}

// CreateAnnouncement handles POST /announcements (leader/admin)
func (h *AnnouncementHandler) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	identity := middleware.CurrentIdentity(r)

	var req models.CreateAnnouncementRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}

	announcementID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate announcement ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to publish")
		return
	}

	now := time.Now()
	_, err = h.db.Exec(`
		INSERT INTO announcements (id, leader_id, title, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, announcementID, identity.AccountID, req.Title, req.Body, now)
	if err != nil {
		slog.Error("failed to insert announcement", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to publish")
		return
	}

	slog.Info("announcement published", "announcement_id", announcementID, "leader_id", identity.AccountID)

	middleware.JSONResponse(w, http.StatusCreated, models.Announcement{
		ID:        announcementID,
		LeaderID:  identity.AccountID,
		Title:     req.Title,
		Body:      req.Body,
		CreatedAt: now,
	})
}

// DeleteAnnouncement handles DELETE /announcements/{id} (leader/admin)
// Leaders may delete only their own announcements; admins may delete any.
func (h *AnnouncementHandler) DeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	announcementID := r.PathValue("id")
	identity := middleware.CurrentIdentity(r)

	var leaderID string
	err := h.db.QueryRow(`SELECT leader_id FROM announcements WHERE id = $1`, announcementID).Scan(&leaderID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Announcement not found")
		return
	}
	if err != nil {
		slog.Error("failed to query announcement", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if identity.Role != models.RoleAdmin && leaderID != identity.AccountID {
		middleware.ErrorResponse(w, http.StatusForbidden, "Not your announcement")
		return
	}

	if _, err := h.db.Exec(`DELETE FROM announcements WHERE id = $1`, announcementID); err != nil {
		slog.Error("failed to delete announcement", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("announcement deleted", "announcement_id", announcementID)
	w.WriteHeader(http.StatusNoContent)
}
