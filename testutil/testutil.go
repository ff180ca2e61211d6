// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/civiclink/auth"
	"github.com/danielhkuo/civiclink/cliparse"
	dbschema "github.com/danielhkuo/civiclink/db"
	"github.com/danielhkuo/civiclink/models"
	_ "modernc.org/sqlite"
)

// SetupTestDB creates a fresh in-memory SQLite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// In-memory SQLite lives per-connection; keep the pool at one
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	if err := dbschema.CreateSchema(db); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:            4270,
		DatabaseURL:     ":memory:",
		DatabaseType:    "sqlite",
		BaseURL:         "http://localhost:4270",
		AccessSecret:    "test-access-secret",
		RefreshSecret:   "test-refresh-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 720 * time.Hour,
	}
}

// CreateTestCitizen inserts a citizen account and returns its ID
func CreateTestCitizen(t *testing.T, db *sql.DB, email string) string {
	t.Helper()

	id, _ := auth.GenerateID(16)
	hash, err := auth.HashPassword("test-password")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (id, name, email, password_hash, ward, created_at)
		VALUES ($1, 'Test Citizen', $2, $3, 'Ward 4', $4)
	`, id, email, hash, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test citizen: %v", err)
	}

	return id
}

// CreateTestDepartment inserts a department and returns its ID
func CreateTestDepartment(t *testing.T, db *sql.DB, name string) string {
	t.Helper()

	id, _ := auth.GenerateID(16)
	_, err := db.Exec(`
		INSERT INTO departments (id, name, description, created_at)
		VALUES ($1, $2, 'A test department', $3)
	`, id, name, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test department: %v", err)
	}

	return id
}

// CreateTestLeader inserts a leader account in the given department and
// returns its ID. Pass admin=true for an admin leader.
func CreateTestLeader(t *testing.T, db *sql.DB, email, departmentID string, admin bool) string {
	t.Helper()

	id, _ := auth.GenerateID(16)
	hash, err := auth.HashPassword("test-password")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	_, err = db.Exec(`
		INSERT INTO leaders (id, name, email, password_hash, title, department_id, is_admin, created_at)
		VALUES ($1, 'Test Leader', $2, $3, 'Commissioner', $4, $5, $6)
	`, id, email, hash, departmentID, admin, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test leader: %v", err)
	}

	return id
}

// CreateTestIssue inserts an issue and returns its ID
func CreateTestIssue(t *testing.T, db *sql.DB, citizenID, departmentID, status string) string {
	t.Helper()

	id, _ := auth.GenerateID(16)
	now := time.Now()
	_, err := db.Exec(`
		INSERT INTO issues (id, citizen_id, department_id, title, description, category, location, status, created_at, updated_at)
		VALUES ($1, $2, $3, 'Broken streetlight', 'The light on Elm St is out', 'infrastructure', 'Elm St', $4, $5, $6)
	`, id, citizenID, departmentID, status, now, now)
	if err != nil {
		t.Fatalf("Failed to create test issue: %v", err)
	}

	return id
}

// CreateTestTopic inserts a discussion topic and returns its ID
func CreateTestTopic(t *testing.T, db *sql.DB, authorID string) string {
	t.Helper()

	id, _ := auth.GenerateID(16)
	_, err := db.Exec(`
		INSERT INTO topics (id, author_id, title, body, created_at)
		VALUES ($1, $2, 'Park cleanup day', 'Who is in for Saturday?', $3)
	`, id, authorID, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test topic: %v", err)
	}

	return id
}

// CreateTestComment inserts a comment on a topic (parentID may be "" for
// top-level) and returns its ID
func CreateTestComment(t *testing.T, db *sql.DB, topicID, authorID, parentID, body string) string {
	t.Helper()

	id, _ := auth.GenerateID(16)
	var parent *string
	if parentID != "" {
		parent = &parentID
	}
	_, err := db.Exec(`
		INSERT INTO comments (id, topic_id, parent_id, author_id, author_name, body, created_at)
		VALUES ($1, $2, $3, $4, 'Test Citizen', $5, $6)
	`, id, topicID, parent, authorID, body, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test comment: %v", err)
	}

	return id
}

// CitizenToken issues a short-lived access token for a citizen account
func CitizenToken(t *testing.T, accountID string) string {
	t.Helper()
	return accessToken(t, accountID, models.RoleCitizen)
}

// LeaderToken issues a short-lived access token for a leader account
func LeaderToken(t *testing.T, accountID string) string {
	t.Helper()
	return accessToken(t, accountID, models.RoleLeader)
}

// AdminToken issues a short-lived access token for an admin account
func AdminToken(t *testing.T, accountID string) string {
	t.Helper()
	return accessToken(t, accountID, models.RoleAdmin)
}

func accessToken(t *testing.T, accountID, role string) string {
	t.Helper()
	token, err := auth.NewAccessToken(accountID, role, GetTestConfig().AccessSecret, 15*time.Minute)
	if err != nil {
		t.Fatalf("Failed to issue test token: %v", err)
	}
	return token
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// BearerHeader builds the header map for an authenticated request
func BearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
