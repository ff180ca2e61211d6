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

type TopicHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewTopicHandler(db *sql.DB, cfg cliparse.Config) *TopicHandler {
	return &TopicHandler{db: db, cfg: cfg}
}

// CreateTopic handles POST /topics
func (h *TopicHandler) CreateTopic(w http.ResponseWriter, r *http.Request) {
	identity := middleware.CurrentIdentity(r)

	var req models.CreateTopicRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if strings.TrimSpace(req.Title) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if len(req.Title) > 200 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title must be at most 200 characters")
		return
	}

	topicID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate topic ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create topic")
		return
	}

	now := time.Now()
	_, err = h.db.Exec(`
		INSERT INTO topics (id, author_id, title, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, topicID, identity.AccountID, req.Title, req.Body, now)
	if err != nil {
		slog.Error("failed to insert topic", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create topic")
		return
	}

	slog.Info("topic created", "topic_id", topicID, "author_id", identity.AccountID)

	middleware.JSONResponse(w, http.StatusCreated, models.Topic{
		ID:        topicID,
		AuthorID:  identity.AccountID,
		Title:     req.Title,
		Body:      req.Body,
		CreatedAt: now,
	})
}

// ListTopics handles GET /topics with limit/offset pagination
func (h *TopicHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := parsePage(w, r.URL.Query())
	if !ok {
		return
	}

	var total int
	if err := h.db.QueryRow(`SELECT COUNT(*) FROM topics`).Scan(&total); err != nil {
		slog.Error("failed to count topics", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	rows, err := h.db.Query(`
		SELECT t.id, t.author_id, COALESCE(u.name, ''), t.title, t.body, t.created_at,
		       (SELECT COUNT(*) FROM comments c WHERE c.topic_id = t.id)
		FROM topics t
		LEFT JOIN users u ON u.id = t.author_id
		ORDER BY t.created_at DESC, t.id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		slog.Error("failed to query topics", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	topics := []models.Topic{}
	for rows.Next() {
		var topic models.Topic
		if err := rows.Scan(&topic.ID, &topic.AuthorID, &topic.AuthorName,
			&topic.Title, &topic.Body, &topic.CreatedAt, &topic.CommentCount); err != nil {
			slog.Error("failed to scan topic", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		topics = append(topics, topic)
	}

	middleware.JSONResponse(w, http.StatusOK, models.TopicListResponse{
		Topics: topics,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// GetTopic handles GET /topics/{id}
// Returns the topic with its comments assembled into nested trees.
func (h *TopicHandler) GetTopic(w http.ResponseWriter, r *http.Request) {
	topicID := r.PathValue("id")

	var topic models.Topic
	err := h.db.QueryRow(`
		SELECT t.id, t.author_id, COALESCE(u.name, ''), t.title, t.body, t.created_at
		FROM topics t
		LEFT JOIN users u ON u.id = t.author_id
		WHERE t.id = $1
	`, topicID).Scan(&topic.ID, &topic.AuthorID, &topic.AuthorName,
		&topic.Title, &topic.Body, &topic.CreatedAt)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Topic not found")
		return
	}
	if err != nil {
		slog.Error("failed to query topic", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	rows, err := h.db.Query(`
		SELECT id, topic_id, parent_id, author_id, author_name, body, created_at
		FROM comments
		WHERE topic_id = $1
		ORDER BY created_at, id
	`, topicID)
	if err != nil {
		slog.Error("failed to query comments", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	flat := []*models.Comment{}
	for rows.Next() {
		c := &models.Comment{}
		if err := rows.Scan(&c.ID, &c.TopicID, &c.ParentID, &c.AuthorID,
			&c.AuthorName, &c.Body, &c.CreatedAt); err != nil {
			slog.Error("failed to scan comment", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		flat = append(flat, c)
	}

	topic.Comments = models.BuildCommentTree(flat)
	topic.CommentCount = len(flat)

	middleware.JSONResponse(w, http.StatusOK, topic)
}

// AddComment handles POST /topics/{id}/comments
// parent_id targets an existing comment for a nested reply; empty means
// a new top-level comment. Reply depth is unbounded.
func (h *TopicHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	topicID := r.PathValue("id")
	identity := middleware.CurrentIdentity(r)

	var req models.AddCommentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.Body) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "body is required")
		return
	}

	var exists bool
	err := h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM topics WHERE id = $1)`, topicID).Scan(&exists)
	if err != nil {
		slog.Error("failed to check topic", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Topic not found")
		return
	}

	var parent *string
	if req.ParentID != "" {
		// Parent must belong to the same topic
		var parentTopic string
		err := h.db.QueryRow(`SELECT topic_id FROM comments WHERE id = $1`, req.ParentID).Scan(&parentTopic)
		if err == sql.ErrNoRows || (err == nil && parentTopic != topicID) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Parent comment not found")
			return
		}
		if err != nil {
			slog.Error("failed to check parent comment", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		parent = &req.ParentID
	}

	// Resolve the author's display name once, at write time
	var authorName string
	err = h.db.QueryRow(`SELECT name FROM users WHERE id = $1`, identity.AccountID).Scan(&authorName)
	if err == sql.ErrNoRows {
		err = h.db.QueryRow(`SELECT name FROM leaders WHERE id = $1`, identity.AccountID).Scan(&authorName)
	}
	if err != nil && err != sql.ErrNoRows {
		slog.Error("failed to resolve author name", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	commentID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate comment ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to comment")
		return
	}

	_, err = h.db.Exec(`
		INSERT INTO comments (id, topic_id, parent_id, author_id, author_name, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, commentID, topicID, parent, identity.AccountID, authorName, req.Body, time.Now())
	if err != nil {
		slog.Error("failed to insert comment", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to comment")
		return
	}

	slog.Info("comment added", "topic_id", topicID, "comment_id", commentID, "nested", parent != nil)

	middleware.JSONResponse(w, http.StatusCreated, models.AddCommentResponse{
		CommentID: commentID,
	})
}
