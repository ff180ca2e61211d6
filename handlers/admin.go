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

// AdminHandler manages departments and leader accounts. All operations
// require the admin role; the router enforces that.
type AdminHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewAdminHandler(db *sql.DB, cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{db: db, cfg: cfg}
}

// ListDepartments handles GET /departments (public - citizens need the
// list to file an issue)
func (h *AdminHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query(`
		SELECT id, name, description, created_at
		FROM departments
		ORDER BY name
	`)
	if err != nil {
		slog.Error("failed to query departments", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	departments := []models.Department{}
	for rows.Next() {
		var d models.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.CreatedAt); err != nil {
			slog.Error("failed to scan department", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		departments = append(departments, d)
	}

	middleware.JSONResponse(w, http.StatusOK, departments)
}

// CreateDepartment handles POST /departments (admin)
func (h *AdminHandler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req models.CreateDepartmentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	var exists bool
	err := h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM departments WHERE name = $1)`, req.Name).Scan(&exists)
	if err != nil {
		slog.Error("failed to check department name", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if exists {
		middleware.ErrorResponse(w, http.StatusConflict, "A department with that name already exists")
		return
	}

	deptID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate department ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create department")
		return
	}

	now := time.Now()
	_, err = h.db.Exec(`
		INSERT INTO departments (id, name, description, created_at)
		VALUES ($1, $2, $3, $4)
	`, deptID, req.Name, req.Description, now)
	if err != nil {
		slog.Error("failed to insert department", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create department")
		return
	}

	slog.Info("department created", "department_id", deptID, "name", req.Name)

	middleware.JSONResponse(w, http.StatusCreated, models.Department{
		ID:          deptID,
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
	})
}

// DeleteDepartment handles DELETE /departments/{id} (admin)
// Refused while leaders are still assigned to it.
func (h *AdminHandler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	deptID := r.PathValue("id")

	var leaderCount int
	err := h.db.QueryRow(`SELECT COUNT(*) FROM leaders WHERE department_id = $1`, deptID).Scan(&leaderCount)
	if err != nil {
		slog.Error("failed to count leaders", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if leaderCount > 0 {
		middleware.ErrorResponse(w, http.StatusConflict, "Department still has leaders assigned")
		return
	}

	res, err := h.db.Exec(`DELETE FROM departments WHERE id = $1`, deptID)
	if err != nil {
		slog.Error("failed to delete department", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Department not found")
		return
	}

	slog.Info("department deleted", "department_id", deptID)
	w.WriteHeader(http.StatusNoContent)
}

// ListLeaders handles GET /leaders (admin)
func (h *AdminHandler) ListLeaders(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query(`
		SELECT id, name, email, title, department_id, is_admin, created_at
		FROM leaders
		ORDER BY name
	`)
	if err != nil {
		slog.Error("failed to query leaders", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	leaders := []models.Leader{}
	for rows.Next() {
		var l models.Leader
		if err := rows.Scan(&l.ID, &l.Name, &l.Email, &l.Title, &l.DepartmentID, &l.Admin, &l.CreatedAt); err != nil {
			slog.Error("failed to scan leader", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		leaders = append(leaders, l)
	}

	middleware.JSONResponse(w, http.StatusOK, leaders)
}

// CreateLeader handles POST /leaders (admin)
func (h *AdminHandler) CreateLeader(w http.ResponseWriter, r *http.Request) {
	var req models.CreateLeaderRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

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
	if req.DepartmentID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "department_id is required")
		return
	}

	var deptExists bool
	err := h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM departments WHERE id = $1)`, req.DepartmentID).Scan(&deptExists)
	if err != nil {
		slog.Error("failed to check department", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !deptExists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Department not found")
		return
	}

	var emailTaken bool
	err = h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM leaders WHERE email = $1)`, req.Email).Scan(&emailTaken)
	if err != nil {
		slog.Error("failed to check leader email", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if emailTaken {
		middleware.ErrorResponse(w, http.StatusConflict, "A leader with that email already exists")
		return
	}

	leaderID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate leader ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create leader")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create leader")
		return
	}

	now := time.Now()
	_, err = h.db.Exec(`
		INSERT INTO leaders (id, name, email, password_hash, title, department_id, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, leaderID, req.Name, req.Email, hash, req.Title, req.DepartmentID, req.Admin, now)
	if err != nil {
		slog.Error("failed to insert leader", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create leader")
		return
	}

	slog.Info("leader created", "leader_id", leaderID, "department_id", req.DepartmentID, "admin", req.Admin)

	middleware.JSONResponse(w, http.StatusCreated, models.Leader{
		ID:           leaderID,
		Name:         req.Name,
		Email:        req.Email,
		Title:        req.Title,
		DepartmentID: req.DepartmentID,
		Admin:        req.Admin,
		CreatedAt:    now,
	})
}

// DeleteLeader handles DELETE /leaders/{id} (admin)
// Also revokes any active session for the account, so its next guarded
// call or refresh fails with 401.
func (h *AdminHandler) DeleteLeader(w http.ResponseWriter, r *http.Request) {
	leaderID := r.PathValue("id")
	identity := middleware.CurrentIdentity(r)

	if leaderID == identity.AccountID {
		middleware.ErrorResponse(w, http.StatusConflict, "Cannot delete your own account")
		return
	}

	res, err := h.db.Exec(`DELETE FROM leaders WHERE id = $1`, leaderID)
	if err != nil {
		slog.Error("failed to delete leader", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Leader not found")
		return
	}

	if _, err := h.db.Exec(`DELETE FROM refresh_tokens WHERE account_id = $1`, leaderID); err != nil {
		slog.Warn("failed to revoke sessions of deleted leader", "error", err, "leader_id", leaderID)
	}

	slog.Info("leader deleted", "leader_id", leaderID)
	w.WriteHeader(http.StatusNoContent)
}
