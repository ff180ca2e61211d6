// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/civiclink/middleware"
	"github.com/danielhkuo/civiclink/models"
	"github.com/danielhkuo/civiclink/testutil"
)

func TestRegisterCitizen(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAuthHandler(db, cfg)

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
		checkResponse  func(t *testing.T, resp *models.LoginResponse)
	}{
		{
			name: "valid registration",
			requestBody: models.RegisterCitizenRequest{
				Name:     "Ada Park",
				Email:    "ada@example.com",
				Password: "hunter2hunter2",
				Ward:     "Ward 7",
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *models.LoginResponse) {
				if resp.AccessToken == "" {
					t.Error("Expected non-empty access_token")
				}
				if resp.RefreshToken == "" {
					t.Error("Expected non-empty refresh_token")
				}
				if resp.User == nil || resp.User.Email != "ada@example.com" {
					t.Errorf("Unexpected user in response: %+v", resp.User)
				}

				// Verify the account exists
				var count int
				if err := db.QueryRow(`SELECT COUNT(*) FROM users WHERE email = $1`, "ada@example.com").Scan(&count); err != nil {
					t.Fatalf("Failed to query users: %v", err)
				}
				if count != 1 {
					t.Errorf("Expected 1 user row, got %d", count)
				}
			},
		},
		{
			name: "email is normalized to lower case",
			requestBody: models.RegisterCitizenRequest{
				Name:     "Bea Lin",
				Email:    "  Bea@Example.COM ",
				Password: "hunter2hunter2",
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *models.LoginResponse) {
				if resp.User.Email != "bea@example.com" {
					t.Errorf("Expected normalized email, got %q", resp.User.Email)
				}
			},
		},
		{
			name: "missing name",
			requestBody: models.RegisterCitizenRequest{
				Email:    "no-name@example.com",
				Password: "hunter2hunter2",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "invalid email",
			requestBody: models.RegisterCitizenRequest{
				Name:     "No At",
				Email:    "not-an-email",
				Password: "hunter2hunter2",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "short password",
			requestBody: models.RegisterCitizenRequest{
				Name:     "Shorty",
				Email:    "shorty@example.com",
				Password: "short",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate email",
			requestBody: models.RegisterCitizenRequest{
				Name:     "Ada Again",
				Email:    "ada@example.com",
				Password: "hunter2hunter2",
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/auth/register", tt.requestBody, nil)
			w := httptest.NewRecorder()

			handler.RegisterCitizen(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.checkResponse != nil && w.Code == tt.expectedStatus {
				var resp models.LoginResponse
				testutil.AssertJSON(t, w, &resp)
				tt.checkResponse(t, &resp)
			}
		})
	}
}

func TestLoginCitizen(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAuthHandler(db, cfg)

	testutil.CreateTestCitizen(t, db, "carol@example.com")

	tests := []struct {
		name           string
		email          string
		password       string
		expectedStatus int
	}{
		{"valid credentials", "carol@example.com", "test-password", http.StatusOK},
		{"wrong password", "carol@example.com", "wrong-password", http.StatusUnauthorized},
		{"unknown email", "nobody@example.com", "test-password", http.StatusUnauthorized},
		{"missing password", "carol@example.com", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/auth/login", models.LoginRequest{
				Email:    tt.email,
				Password: tt.password,
			}, nil)
			w := httptest.NewRecorder()

			handler.LoginCitizen(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus == http.StatusOK {
				var resp models.LoginResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.AccessToken == "" || resp.RefreshToken == "" {
					t.Error("Expected a full token pair on login")
				}
				if resp.User == nil {
					t.Error("Expected citizen profile in login response")
				}
			}
		})
	}
}

func TestLoginLeaderRoles(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAuthHandler(db, cfg)

	deptID := testutil.CreateTestDepartment(t, db, "Public Works")
	testutil.CreateTestLeader(t, db, "lead@example.com", deptID, false)
	testutil.CreateTestLeader(t, db, "chief@example.com", deptID, true)

	// A plain leader logs in and gets a leader profile
	req := testutil.MakeRequest("POST", "/admin/auth/login", models.LoginRequest{
		Email:    "lead@example.com",
		Password: "test-password",
	}, nil)
	w := httptest.NewRecorder()
	handler.LoginLeader(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.LoginResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Leader == nil || resp.Leader.Admin {
		t.Errorf("Expected non-admin leader profile, got %+v", resp.Leader)
	}

	// An admin leader logs in with the admin flag set
	req = testutil.MakeRequest("POST", "/admin/auth/login", models.LoginRequest{
		Email:    "chief@example.com",
		Password: "test-password",
	}, nil)
	w = httptest.NewRecorder()
	handler.LoginLeader(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	testutil.AssertJSON(t, w, &resp)
	if resp.Leader == nil || !resp.Leader.Admin {
		t.Errorf("Expected admin leader profile, got %+v", resp.Leader)
	}

	// A citizen email never works against the leader endpoint
	req = testutil.MakeRequest("POST", "/admin/auth/login", models.LoginRequest{
		Email:    "carol@example.com",
		Password: "test-password",
	}, nil)
	w = httptest.NewRecorder()
	handler.LoginLeader(w, req)
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}

func TestRefreshRotation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAuthHandler(db, cfg)

	testutil.CreateTestCitizen(t, db, "dave@example.com")

	// Log in to obtain the initial pair
	req := testutil.MakeRequest("POST", "/auth/login", models.LoginRequest{
		Email:    "dave@example.com",
		Password: "test-password",
	}, nil)
	w := httptest.NewRecorder()
	handler.LoginCitizen(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var login models.LoginResponse
	testutil.AssertJSON(t, w, &login)

	// Exchange the refresh token
	req = testutil.MakeRequest("POST", "/auth/refresh", models.RefreshRequest{
		RefreshToken: login.RefreshToken,
	}, nil)
	w = httptest.NewRecorder()
	handler.Refresh(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var refreshed models.RefreshResponse
	testutil.AssertJSON(t, w, &refreshed)
	if refreshed.RefreshToken == login.RefreshToken {
		t.Error("Refresh must rotate the refresh token")
	}
	if refreshed.AccessToken == "" {
		t.Error("Expected a new access token")
	}

	// The old refresh token is now revoked
	req = testutil.MakeRequest("POST", "/auth/refresh", models.RefreshRequest{
		RefreshToken: login.RefreshToken,
	}, nil)
	w = httptest.NewRecorder()
	handler.Refresh(w, req)
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	// The rotated token still works
	req = testutil.MakeRequest("POST", "/auth/refresh", models.RefreshRequest{
		RefreshToken: refreshed.RefreshToken,
	}, nil)
	w = httptest.NewRecorder()
	handler.Refresh(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewAuthHandler(db, testutil.GetTestConfig())

	tests := []struct {
		name           string
		token          string
		expectedStatus int
	}{
		{"empty token", "", http.StatusBadRequest},
		{"unknown token", "not-a-real-token", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/auth/refresh", models.RefreshRequest{
				RefreshToken: tt.token,
			}, nil)
			w := httptest.NewRecorder()
			handler.Refresh(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAuthHandler(db, cfg)

	testutil.CreateTestCitizen(t, db, "eve@example.com")

	req := testutil.MakeRequest("POST", "/auth/login", models.LoginRequest{
		Email:    "eve@example.com",
		Password: "test-password",
	}, nil)
	w := httptest.NewRecorder()
	handler.LoginCitizen(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var login models.LoginResponse
	testutil.AssertJSON(t, w, &login)

	// First logout revokes, second is still a 204
	for i := 0; i < 2; i++ {
		req = testutil.MakeRequest("POST", "/auth/logout", models.LogoutRequest{
			RefreshToken: login.RefreshToken,
		}, nil)
		w = httptest.NewRecorder()
		handler.Logout(w, req)
		testutil.AssertStatus(t, w, http.StatusNoContent)
	}

	// Revoked token can no longer refresh
	req = testutil.MakeRequest("POST", "/auth/refresh", models.RefreshRequest{
		RefreshToken: login.RefreshToken,
	}, nil)
	w = httptest.NewRecorder()
	handler.Refresh(w, req)
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}

func TestMe(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAuthHandler(db, cfg)
	me := middleware.RequireAuth(cfg.AccessSecret, handler.Me)

	citizenID := testutil.CreateTestCitizen(t, db, "frank@example.com")
	deptID := testutil.CreateTestDepartment(t, db, "Sanitation")
	leaderID := testutil.CreateTestLeader(t, db, "gina@example.com", deptID, false)

	// Citizen profile
	req := testutil.MakeRequest("GET", "/auth/me", nil, testutil.BearerHeader(testutil.CitizenToken(t, citizenID)))
	w := httptest.NewRecorder()
	me(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.LoginResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.User == nil || resp.User.ID != citizenID {
		t.Errorf("Expected citizen profile for %s, got %+v", citizenID, resp.User)
	}

	// Leader profile
	req = testutil.MakeRequest("GET", "/auth/me", nil, testutil.BearerHeader(testutil.LeaderToken(t, leaderID)))
	w = httptest.NewRecorder()
	me(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	testutil.AssertJSON(t, w, &resp)
	if resp.Leader == nil || resp.Leader.ID != leaderID {
		t.Errorf("Expected leader profile for %s, got %+v", leaderID, resp.Leader)
	}

	// A valid token whose account was deleted answers 401
	if _, err := db.Exec(`DELETE FROM users WHERE id = $1`, citizenID); err != nil {
		t.Fatalf("Failed to delete citizen: %v", err)
	}
	req = testutil.MakeRequest("GET", "/auth/me", nil, testutil.BearerHeader(testutil.CitizenToken(t, citizenID)))
	w = httptest.NewRecorder()
	me(w, req)
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}
