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

func TestAnnouncementLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAnnouncementHandler(db, cfg)
	create := middleware.RequireAuth(cfg.AccessSecret, handler.CreateAnnouncement)
	del := middleware.RequireAuth(cfg.AccessSecret, handler.DeleteAnnouncement)

	deptID := testutil.CreateTestDepartment(t, db, "Parks")
	authorID := testutil.CreateTestLeader(t, db, "author@example.com", deptID, false)
	otherID := testutil.CreateTestLeader(t, db, "other@example.com", deptID, false)
	adminID := testutil.CreateTestLeader(t, db, "admin@example.com", deptID, true)

	// Publish
	req := testutil.MakeRequest("POST", "/announcements", models.CreateAnnouncementRequest{
		Title: "Pool opens Saturday",
		Body:  "The municipal pool opens for the season this weekend.",
	}, testutil.BearerHeader(testutil.LeaderToken(t, authorID)))
	w := httptest.NewRecorder()
	create(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var ann models.Announcement
	testutil.AssertJSON(t, w, &ann)
	if ann.LeaderID != authorID {
		t.Errorf("Announcement attributed to %s, expected %s", ann.LeaderID, authorID)
	}

	// Missing title is rejected
	req = testutil.MakeRequest("POST", "/announcements", models.CreateAnnouncementRequest{
		Body: "no title",
	}, testutil.BearerHeader(testutil.LeaderToken(t, authorID)))
	w = httptest.NewRecorder()
	create(w, req)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	// Public listing shows the announcement without a token
	req = testutil.MakeRequest("GET", "/announcements", nil, nil)
	w = httptest.NewRecorder()
	handler.ListAnnouncements(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var list []models.Announcement
	testutil.AssertJSON(t, w, &list)
	if len(list) != 1 || list[0].ID != ann.ID {
		t.Fatalf("Expected the published announcement in listing, got %+v", list)
	}

	// Another leader cannot delete it
	req = testutil.MakeRequest("DELETE", "/announcements/"+ann.ID, nil, testutil.BearerHeader(testutil.LeaderToken(t, otherID)))
	req.SetPathValue("id", ann.ID)
	w = httptest.NewRecorder()
	del(w, req)
	testutil.AssertStatus(t, w, http.StatusForbidden)

	// An admin can delete anyone's
	req = testutil.MakeRequest("DELETE", "/announcements/"+ann.ID, nil, testutil.BearerHeader(testutil.AdminToken(t, adminID)))
	req.SetPathValue("id", ann.ID)
	w = httptest.NewRecorder()
	del(w, req)
	testutil.AssertStatus(t, w, http.StatusNoContent)

	// Deleting a missing announcement is a 404
	req = testutil.MakeRequest("DELETE", "/announcements/"+ann.ID, nil, testutil.BearerHeader(testutil.AdminToken(t, adminID)))
	req.SetPathValue("id", ann.ID)
	w = httptest.NewRecorder()
	del(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestDeleteOwnAnnouncement(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAnnouncementHandler(db, cfg)
	create := middleware.RequireAuth(cfg.AccessSecret, handler.CreateAnnouncement)
	del := middleware.RequireAuth(cfg.AccessSecret, handler.DeleteAnnouncement)

	deptID := testutil.CreateTestDepartment(t, db, "Parks")
	authorID := testutil.CreateTestLeader(t, db, "author@example.com", deptID, false)
	token := testutil.LeaderToken(t, authorID)

	req := testutil.MakeRequest("POST", "/announcements", models.CreateAnnouncementRequest{
		Title: "Road closure",
	}, testutil.BearerHeader(token))
	w := httptest.NewRecorder()
	create(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var ann models.Announcement
	testutil.AssertJSON(t, w, &ann)

	req = testutil.MakeRequest("DELETE", "/announcements/"+ann.ID, nil, testutil.BearerHeader(token))
	req.SetPathValue("id", ann.ID)
	w = httptest.NewRecorder()
	del(w, req)
	testutil.AssertStatus(t, w, http.StatusNoContent)

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM announcements WHERE id = $1`, ann.ID).Scan(&count); err != nil {
		t.Fatalf("Failed to count announcements: %v", err)
	}
	if count != 0 {
		t.Error("Announcement row should be gone")
	}
}
