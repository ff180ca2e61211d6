// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/civiclink/auth"
	"github.com/danielhkuo/civiclink/cliparse"
	"github.com/danielhkuo/civiclink/middleware"
	"github.com/danielhkuo/civiclink/models"
)

type IssueHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewIssueHandler(db *sql.DB, cfg cliparse.Config) *IssueHandler {
	return &IssueHandler{db: db, cfg: cfg}
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CreateIssue handles POST /issues
func (h *IssueHandler) CreateIssue(w http.ResponseWriter, r *http.Request) {
	id := middleware.CurrentIdentity(r)

	var req models.CreateIssueRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input
	if strings.TrimSpace(req.Title) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if len(req.Title) > 200 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title must be at most 200 characters")
		return
	}
	if req.DepartmentID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "department_id is required")
		return
	}
	if req.AttachmentURL != "" {
		u, err := url.Parse(req.AttachmentURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			middleware.ErrorResponse(w, http.StatusBadRequest, "attachment_url must be an http(s) URL")
			return
		}
	}

	// Department must exist
	var exists bool
	err := h.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM departments WHERE id = $1)
	`, req.DepartmentID).Scan(&exists)
	if err != nil {
		slog.Error("failed to check department", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Department not found")
		return
	}

	issueID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate issue ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create issue")
		return
	}

	var attachment *string
	if req.AttachmentURL != "" {
		attachment = &req.AttachmentURL
	}

	now := time.Now()
	_, err = h.db.Exec(`
		INSERT INTO issues (id, citizen_id, department_id, title, description, category, location, status, attachment_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, issueID, id.AccountID, req.DepartmentID, req.Title, req.Description,
		req.Category, req.Location, models.IssueSubmitted, attachment, now, now)
	if err != nil {
		slog.Error("failed to insert issue", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create issue")
		return
	}

	slog.Info("issue created", "issue_id", issueID, "citizen_id", id.AccountID, "department_id", req.DepartmentID)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateIssueResponse{
		IssueID: issueID,
	})
}

// ListIssues handles GET /issues
// Citizens see their own issues; leaders see their department's; admins see
// all. Supports ?status=, ?department_id=, ?limit=, ?offset=.
func (h *IssueHandler) ListIssues(w http.ResponseWriter, r *http.Request) {
	id := middleware.CurrentIdentity(r)
	q := r.URL.Query()

	limit, offset, ok := parsePage(w, q)
	if !ok {
		return
	}

	where := []string{}
	args := []any{}

	switch id.Role {
	case models.RoleCitizen:
		args = append(args, id.AccountID)
		where = append(where, "citizen_id = $"+strconv.Itoa(len(args)))
	case models.RoleLeader:
		var deptID string
		err := h.db.QueryRow(`SELECT department_id FROM leaders WHERE id = $1`, id.AccountID).Scan(&deptID)
		if err != nil {
			slog.Error("failed to resolve leader department", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		args = append(args, deptID)
		where = append(where, "department_id = $"+strconv.Itoa(len(args)))
	}

	if status := q.Get("status"); status != "" {
		if !isValidStatus(status) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "status must be one of: submitted, in_progress, resolved, escalated")
			return
		}
		args = append(args, status)
		where = append(where, "status = $"+strconv.Itoa(len(args)))
	}
	if dept := q.Get("department_id"); dept != "" && id.Role == models.RoleAdmin {
		args = append(args, dept)
		where = append(where, "department_id = $"+strconv.Itoa(len(args)))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := h.db.QueryRow("SELECT COUNT(*) FROM issues"+whereClause, args...).Scan(&total); err != nil {
		slog.Error("failed to count issues", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	args = append(args, limit, offset)
	rows, err := h.db.Query(`
		SELECT id, citizen_id, department_id, title, description, category, location,
		       status, attachment_url, escalated_at, created_at, updated_at
		FROM issues`+whereClause+`
		ORDER BY created_at DESC, id
		LIMIT $`+strconv.Itoa(len(args)-1)+` OFFSET $`+strconv.Itoa(len(args)), args...)
	if err != nil {
		slog.Error("failed to query issues", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	issues := []models.Issue{}
	for rows.Next() {
		var issue models.Issue
		if err := rows.Scan(&issue.ID, &issue.CitizenID, &issue.DepartmentID,
			&issue.Title, &issue.Description, &issue.Category, &issue.Location,
			&issue.Status, &issue.AttachmentURL, &issue.EscalatedAt,
			&issue.CreatedAt, &issue.UpdatedAt); err != nil {
			slog.Error("failed to scan issue", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		issues = append(issues, issue)
	}

	middleware.JSONResponse(w, http.StatusOK, models.IssueListResponse{
		Issues: issues,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// GetIssue handles GET /issues/{id}
// Returns the issue with its response thread.
func (h *IssueHandler) GetIssue(w http.ResponseWriter, r *http.Request) {
	issueID := r.PathValue("id")
	identity := middleware.CurrentIdentity(r)

	issue, ok := h.loadIssue(w, issueID)
	if !ok {
		return
	}

	// Citizens may only read their own issues
	if identity.Role == models.RoleCitizen && issue.CitizenID != identity.AccountID {
		middleware.ErrorResponse(w, http.StatusForbidden, "Not your issue")
		return
	}

	rows, err := h.db.Query(`
		SELECT id, issue_id, leader_id, message, created_at
		FROM issue_responses
		WHERE issue_id = $1
		ORDER BY created_at, id
	`, issueID)
	if err != nil {
		slog.Error("failed to query responses", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	issue.Responses = []models.IssueResponse{}
	for rows.Next() {
		var resp models.IssueResponse
		if err := rows.Scan(&resp.ID, &resp.IssueID, &resp.LeaderID, &resp.Message, &resp.CreatedAt); err != nil {
			slog.Error("failed to scan response", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		issue.Responses = append(issue.Responses, resp)
	}

	middleware.JSONResponse(w, http.StatusOK, issue)
}

// UpdateStatus handles PATCH /issues/{id}/status (leader/admin)
func (h *IssueHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	issueID := r.PathValue("id")

	var req models.UpdateIssueStatusRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if !isValidStatus(req.Status) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "status must be one of: submitted, in_progress, resolved, escalated")
		return
	}

	issue, ok := h.loadIssue(w, issueID)
	if !ok {
		return
	}

	if issue.Status == req.Status {
		middleware.JSONResponse(w, http.StatusOK, issue)
		return
	}

	now := time.Now()
	_, err := h.db.Exec(`
		UPDATE issues SET status = $1, updated_at = $2 WHERE id = $3
	`, req.Status, now, issueID)
	if err != nil {
		slog.Error("failed to update issue status", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("issue status updated", "issue_id", issueID, "from", issue.Status, "to", req.Status)

	issue.Status = req.Status
	issue.UpdatedAt = now
	middleware.JSONResponse(w, http.StatusOK, issue)
}

// AddResponse handles POST /issues/{id}/responses (leader/admin)
func (h *IssueHandler) AddResponse(w http.ResponseWriter, r *http.Request) {
	issueID := r.PathValue("id")
	identity := middleware.CurrentIdentity(r)

	var req models.AddResponseRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "message is required")
		return
	}

	issue, ok := h.loadIssue(w, issueID)
	if !ok {
		return
	}

	respID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate response ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to respond")
		return
	}

	now := time.Now()
	_, err = h.db.Exec(`
		INSERT INTO issue_responses (id, issue_id, leader_id, message, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, respID, issueID, identity.AccountID, req.Message, now)
	if err != nil {
		slog.Error("failed to insert response", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to respond")
		return
	}

	// First response moves a submitted issue into progress
	if issue.Status == models.IssueSubmitted {
		_, err = h.db.Exec(`
			UPDATE issues SET status = $1, updated_at = $2 WHERE id = $3
		`, models.IssueInProgress, now, issueID)
		if err != nil {
			slog.Warn("failed to advance issue status", "error", err, "issue_id", issueID)
		}
	}

	slog.Info("issue response added", "issue_id", issueID, "leader_id", identity.AccountID)

	middleware.JSONResponse(w, http.StatusCreated, models.IssueResponse{
		ID:        respID,
		IssueID:   issueID,
		LeaderID:  identity.AccountID,
		Message:   req.Message,
		CreatedAt: now,
	})
}

// Escalate handles POST /issues/{id}/escalate (citizen, own issue)
// An issue can be escalated once, and not after resolution.
func (h *IssueHandler) Escalate(w http.ResponseWriter, r *http.Request) {
	issueID := r.PathValue("id")
	identity := middleware.CurrentIdentity(r)

	issue, ok := h.loadIssue(w, issueID)
	if !ok {
		return
	}

	if issue.CitizenID != identity.AccountID {
		middleware.ErrorResponse(w, http.StatusForbidden, "Not your issue")
		return
	}
	if issue.Status == models.IssueResolved {
		middleware.ErrorResponse(w, http.StatusConflict, "Resolved issues cannot be escalated")
		return
	}
	if issue.Status == models.IssueEscalated {
		middleware.ErrorResponse(w, http.StatusConflict, "Issue is already escalated")
		return
	}

	now := time.Now()
	_, err := h.db.Exec(`
		UPDATE issues SET status = $1, escalated_at = $2, updated_at = $3 WHERE id = $4
	`, models.IssueEscalated, now, now, issueID)
	if err != nil {
		slog.Error("failed to escalate issue", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("issue escalated", "issue_id", issueID, "citizen_id", identity.AccountID)

	issue.Status = models.IssueEscalated
	issue.EscalatedAt = &now
	issue.UpdatedAt = now
	middleware.JSONResponse(w, http.StatusOK, issue)
}

// loadIssue fetches an issue or writes a 404/500 and returns ok=false.
func (h *IssueHandler) loadIssue(w http.ResponseWriter, issueID string) (models.Issue, bool) {
	var issue models.Issue
	err := h.db.QueryRow(`
		SELECT id, citizen_id, department_id, title, description, category, location,
		       status, attachment_url, escalated_at, created_at, updated_at
		FROM issues WHERE id = $1
	`, issueID).Scan(&issue.ID, &issue.CitizenID, &issue.DepartmentID,
		&issue.Title, &issue.Description, &issue.Category, &issue.Location,
		&issue.Status, &issue.AttachmentURL, &issue.EscalatedAt,
		&issue.CreatedAt, &issue.UpdatedAt)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Issue not found")
		return issue, false
	}
	if err != nil {
		slog.Error("failed to query issue", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return issue, false
	}
	return issue, true
}

func isValidStatus(status string) bool {
	switch status {
	case models.IssueSubmitted, models.IssueInProgress, models.IssueResolved, models.IssueEscalated:
		return true
	}
	return false
}

// parsePage reads limit/offset query params with defaults and bounds.
func parsePage(w http.ResponseWriter, q url.Values) (limit, offset int, ok bool) {
	limit = defaultPageSize
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return 0, 0, false
		}
		if n > maxPageSize {
			n = maxPageSize
		}
		limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return 0, 0, false
		}
		offset = n
	}
	return limit, offset, true
}
