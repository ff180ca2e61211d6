// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/civiclink/middleware"
	"github.com/danielhkuo/civiclink/models"
	"github.com/danielhkuo/civiclink/testutil"
)

func TestCreateDepartment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAdminHandler(db, cfg)

	tests := []struct {
		name           string
		requestBody    models.CreateDepartmentRequest
		expectedStatus int
	}{
		{
			name:           "valid department",
			requestBody:    models.CreateDepartmentRequest{Name: "Sanitation", Description: "Waste collection and recycling"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "duplicate name",
			requestBody:    models.CreateDepartmentRequest{Name: "Sanitation"},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "missing name",
			requestBody:    models.CreateDepartmentRequest{Description: "nameless"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/departments", tt.requestBody, nil)
			w := httptest.NewRecorder()
			handler.CreateDepartment(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}
}

func TestListDepartmentsOrdered(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewAdminHandler(db, testutil.GetTestConfig())

	testutil.CreateTestDepartment(t, db, "Water")
	testutil.CreateTestDepartment(t, db, "Animal Control")
	testutil.CreateTestDepartment(t, db, "Parks")

	req := testutil.MakeRequest("GET", "/departments", nil, nil)
	w := httptest.NewRecorder()
	handler.ListDepartments(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var list []models.Department
	testutil.AssertJSON(t, w, &list)
	if len(list) != 3 {
		t.Fatalf("Expected 3 departments, got %d", len(list))
	}
	if list[0].Name != "Animal Control" || list[1].Name != "Parks" || list[2].Name != "Water" {
		t.Errorf("Departments not sorted by name: %s, %s, %s", list[0].Name, list[1].Name, list[2].Name)
	}
}

func TestDeleteDepartment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAdminHandler(db, cfg)

	emptyID := testutil.CreateTestDepartment(t, db, "Empty")
	staffedID := testutil.CreateTestDepartment(t, db, "Staffed")
	testutil.CreateTestLeader(t, db, "staff@example.com", staffedID, false)

	tests := []struct {
		name           string
		deptID         string
		expectedStatus int
	}{
		{"empty department deletes", emptyID, http.StatusNoContent},
		{"staffed department refuses", staffedID, http.StatusConflict},
		{"unknown department", "missing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("DELETE", "/departments/"+tt.deptID, nil, nil)
			req.SetPathValue("id", tt.deptID)
			w := httptest.NewRecorder()
			handler.DeleteDepartment(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}
}

func TestCreateLeader(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAdminHandler(db, cfg)

	deptID := testutil.CreateTestDepartment(t, db, "Roads")
	testutil.CreateTestLeader(t, db, "taken@example.com", deptID, false)

	tests := []struct {
		name           string
		requestBody    models.CreateLeaderRequest
		expectedStatus int
		checkResponse  func(t *testing.T, resp *models.Leader)
	}{
		{
			name: "valid leader",
			requestBody: models.CreateLeaderRequest{
				Name:         "Hank Ito",
				Email:        "hank@example.com",
				Password:     "hunter2hunter2",
				Title:        "Director",
				DepartmentID: deptID,
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *models.Leader) {
				if resp.ID == "" || resp.Admin {
					t.Errorf("Unexpected leader: %+v", resp)
				}
			},
		},
		{
			name: "admin leader",
			requestBody: models.CreateLeaderRequest{
				Name:         "Ida Chu",
				Email:        "ida@example.com",
				Password:     "hunter2hunter2",
				DepartmentID: deptID,
				Admin:        true,
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *models.Leader) {
				if !resp.Admin {
					t.Error("Expected admin flag to persist")
				}
			},
		},
		{
			name: "duplicate email",
			requestBody: models.CreateLeaderRequest{
				Name:         "Dup",
				Email:        "taken@example.com",
				Password:     "hunter2hunter2",
				DepartmentID: deptID,
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "unknown department",
			requestBody: models.CreateLeaderRequest{
				Name:         "Lost",
				Email:        "lost@example.com",
				Password:     "hunter2hunter2",
				DepartmentID: "missing",
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "short password",
			requestBody: models.CreateLeaderRequest{
				Name:         "Weak",
				Email:        "weak@example.com",
				Password:     "short",
				DepartmentID: deptID,
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/leaders", tt.requestBody, nil)
			w := httptest.NewRecorder()
			handler.CreateLeader(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.checkResponse != nil && w.Code == http.StatusCreated {
				var resp models.Leader
				testutil.AssertJSON(t, w, &resp)
				tt.checkResponse(t, &resp)
			}
		})
	}
}

func TestDeleteLeader(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAdminHandler(db, cfg)
	del := middleware.RequireAuth(cfg.AccessSecret, middleware.RequireAdmin(handler.DeleteLeader))

	deptID := testutil.CreateTestDepartment(t, db, "Roads")
	adminID := testutil.CreateTestLeader(t, db, "admin@example.com", deptID, true)
	victimID := testutil.CreateTestLeader(t, db, "victim@example.com", deptID, false)
	adminToken := testutil.AdminToken(t, adminID)

	// Seed a session row for the leader being deleted
	_, err := db.Exec(`
		INSERT INTO refresh_tokens (token, account_id, role, expires_at, created_at)
		VALUES ('hash-of-token', $1, 'leader', $2, $3)
	`, victimID, time.Now().Add(24*time.Hour), time.Now())
	if err != nil {
		t.Fatalf("Failed to seed refresh token: %v", err)
	}

	// Self-deletion is refused
	req := testutil.MakeRequest("DELETE", "/leaders/"+adminID, nil, testutil.BearerHeader(adminToken))
	req.SetPathValue("id", adminID)
	w := httptest.NewRecorder()
	del(w, req)
	testutil.AssertStatus(t, w, http.StatusConflict)

	// Deleting another leader works and revokes their sessions
	req = testutil.MakeRequest("DELETE", "/leaders/"+victimID, nil, testutil.BearerHeader(adminToken))
	req.SetPathValue("id", victimID)
	w = httptest.NewRecorder()
	del(w, req)
	testutil.AssertStatus(t, w, http.StatusNoContent)

	var sessions int
	if err := db.QueryRow(`SELECT COUNT(*) FROM refresh_tokens WHERE account_id = $1`, victimID).Scan(&sessions); err != nil {
		t.Fatalf("Failed to count sessions: %v", err)
	}
	if sessions != 0 {
		t.Error("Deleted leader's sessions should be revoked")
	}

	// A plain leader is forbidden from the endpoint entirely
	leaderToken := testutil.LeaderToken(t, adminID)
	req = testutil.MakeRequest("DELETE", "/leaders/whoever", nil, testutil.BearerHeader(leaderToken))
	req.SetPathValue("id", "whoever")
	w = httptest.NewRecorder()
	del(w, req)
	testutil.AssertStatus(t, w, http.StatusForbidden)

	// Unknown leader
	req = testutil.MakeRequest("DELETE", "/leaders/missing", nil, testutil.BearerHeader(adminToken))
	req.SetPathValue("id", "missing")
	w = httptest.NewRecorder()
	del(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}
