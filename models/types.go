// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Account role constants
const (
	RoleCitizen = "citizen"
	RoleLeader  = "leader"
	RoleAdmin   = "admin"
)

// Issue status constants
const (
	IssueSubmitted  = "submitted"
	IssueInProgress = "in_progress"
	IssueResolved   = "resolved"
	IssueEscalated  = "escalated"
)

// Request types

type RegisterCitizenRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Ward     string `json:"ward"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type CreateIssueRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	DepartmentID  string `json:"department_id"`
	Location      string `json:"location"`
	AttachmentURL string `json:"attachment_url"`
}

type UpdateIssueStatusRequest struct {
	Status string `json:"status"`
}

type AddResponseRequest struct {
	Message string `json:"message"`
}

type CreateTopicRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type AddCommentRequest struct {
	Body     string `json:"body"`
	ParentID string `json:"parent_id,omitempty"`
}

type CreateAnnouncementRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type CreateDepartmentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CreateLeaderRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Title        string `json:"title"`
	DepartmentID string `json:"department_id"`
	Admin        bool   `json:"admin"`
}

// Response types

type LoginResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	User         *User   `json:"user,omitempty"`
	Leader       *Leader `json:"leader,omitempty"`
}

type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type CreateIssueResponse struct {
	IssueID string `json:"issue_id"`
}

type IssueListResponse struct {
	Issues []Issue `json:"issues"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

type TopicListResponse struct {
	Topics []Topic `json:"topics"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

type AddCommentResponse struct {
	CommentID string `json:"comment_id"`
}

// Domain types

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Ward      string    `json:"ward"`
	CreatedAt time.Time `json:"created_at"`
}

type Department struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type Leader struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Title        string    `json:"title"`
	DepartmentID string    `json:"department_id"`
	Admin        bool      `json:"admin"`
	CreatedAt    time.Time `json:"created_at"`
}

type Issue struct {
	ID            string          `json:"id"`
	CitizenID     string          `json:"citizen_id"`
	DepartmentID  string          `json:"department_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Location      string          `json:"location"`
	Status        string          `json:"status"`
	AttachmentURL *string         `json:"attachment_url,omitempty"`
	EscalatedAt   *time.Time      `json:"escalated_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Responses     []IssueResponse `json:"responses,omitempty"`
}

type IssueResponse struct {
	ID        string    `json:"id"`
	IssueID   string    `json:"issue_id"`
	LeaderID  string    `json:"leader_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type Topic struct {
	ID           string     `json:"id"`
	AuthorID     string     `json:"author_id"`
	AuthorName   string     `json:"author_name"`
	Title        string     `json:"title"`
	Body         string     `json:"body"`
	CommentCount int        `json:"comment_count"`
	CreatedAt    time.Time  `json:"created_at"`
	Comments     []*Comment `json:"comments,omitempty"`
}

// Comment is a node in a topic's discussion tree. Replies nest to
// unbounded depth; sibling order is insertion order.
type Comment struct {
	ID         string     `json:"id"`
	TopicID    string     `json:"topic_id"`
	ParentID   *string    `json:"parent_id,omitempty"`
	AuthorID   string     `json:"author_id"`
	AuthorName string     `json:"author_name"`
	Body       string     `json:"body"`
	CreatedAt  time.Time  `json:"created_at"`
	Replies    []*Comment `json:"replies,omitempty"`
}

type Announcement struct {
	ID        string    `json:"id"`
	LeaderID  string    `json:"leader_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
