// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/civiclink/cliparse"
	"github.com/danielhkuo/civiclink/handlers"
	"github.com/danielhkuo/civiclink/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	issueHandler := handlers.NewIssueHandler(db, cfg)
	topicHandler := handlers.NewTopicHandler(db, cfg)
	announcementHandler := handlers.NewAnnouncementHandler(db, cfg)
	adminHandler := handlers.NewAdminHandler(db, cfg)

	// Shorthand for the two guard layers
	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAuth(cfg.AccessSecret, h))
	}
	leaderOnly := func(h http.HandlerFunc) http.HandlerFunc {
		return authed(middleware.RequireLeader(h))
	}
	adminOnly := func(h http.HandlerFunc) http.HandlerFunc {
		return authed(middleware.RequireAdmin(h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Authentication (public)
	mux.HandleFunc("POST /auth/register", middleware.WithLogging(authHandler.RegisterCitizen))
	mux.HandleFunc("POST /auth/login", middleware.WithLogging(authHandler.LoginCitizen))
	mux.HandleFunc("POST /admin/auth/login", middleware.WithLogging(authHandler.LoginLeader))
	mux.HandleFunc("POST /auth/refresh", middleware.WithLogging(authHandler.Refresh))
	mux.HandleFunc("POST /auth/logout", middleware.WithLogging(authHandler.Logout))
	mux.HandleFunc("GET /auth/me", authed(authHandler.Me))

	// Issues (guarded)
	mux.HandleFunc("POST /issues", authed(issueHandler.CreateIssue))
	mux.HandleFunc("GET /issues", authed(issueHandler.ListIssues))
	mux.HandleFunc("GET /issues/{id}", authed(issueHandler.GetIssue))
	mux.HandleFunc("POST /issues/{id}/escalate", authed(issueHandler.Escalate))
	mux.HandleFunc("PATCH /issues/{id}/status", leaderOnly(issueHandler.UpdateStatus))
	mux.HandleFunc("POST /issues/{id}/responses", leaderOnly(issueHandler.AddResponse))

	// Topics and comments (guarded)
	mux.HandleFunc("POST /topics", authed(topicHandler.CreateTopic))
	mux.HandleFunc("GET /topics", authed(topicHandler.ListTopics))
	mux.HandleFunc("GET /topics/{id}", authed(topicHandler.GetTopic))
	mux.HandleFunc("POST /topics/{id}/comments", authed(topicHandler.AddComment))

	// Announcements (list is public)
	mux.HandleFunc("GET /announcements", middleware.WithLogging(announcementHandler.ListAnnouncements))
	mux.HandleFunc("POST /announcements", leaderOnly(announcementHandler.CreateAnnouncement))
	mux.HandleFunc("DELETE /announcements/{id}", leaderOnly(announcementHandler.DeleteAnnouncement))

	// Departments (list is public - citizens need it to file issues)
	mux.HandleFunc("GET /departments", middleware.WithLogging(adminHandler.ListDepartments))
	mux.HandleFunc("POST /departments", adminOnly(adminHandler.CreateDepartment))
	mux.HandleFunc("DELETE /departments/{id}", adminOnly(adminHandler.DeleteDepartment))

	// Leader management (admin)
	mux.HandleFunc("GET /leaders", adminOnly(adminHandler.ListLeaders))
	mux.HandleFunc("POST /leaders", adminOnly(adminHandler.CreateLeader))
	mux.HandleFunc("DELETE /leaders/{id}", adminOnly(adminHandler.DeleteLeader))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("civiclink API v1"))
	})

	return mux
}
