// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/danielhkuo/civiclink/models"
)

// Register creates a citizen account and stores the resulting session.
func (c *Client) Register(ctx context.Context, req models.RegisterCitizenRequest) (*models.User, error) {
	var resp models.LoginResponse
	if err := c.postJSON(ctx, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	if err := c.storeSession(resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Login authenticates against the endpoint matching the client's
// namespace and stores the session. For the citizen namespace it returns
// the user profile; for the admin namespace the leader profile.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	path := "/auth/login"
	if c.ns == AdminNamespace {
		path = "/admin/auth/login"
	}

	var resp models.LoginResponse
	if err := c.postJSON(ctx, path, models.LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	if err := c.storeSession(resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) storeSession(resp models.LoginResponse) error {
	pair := TokenPair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}
	if err := c.store.SetTokens(c.ns, pair); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	var profile any = resp.User
	if c.ns == AdminNamespace {
		profile = resp.Leader
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	if err := c.store.SetProfile(c.ns, raw); err != nil {
		return fmt.Errorf("persist profile: %w", err)
	}

	c.logger.Info("logged in", "namespace", c.ns.name)
	return nil
}

// RestoreSession validates a previously stored session at startup. An
// expired or undecodable access token clears the whole namespace, refresh
// token included, and returns ErrSessionExpired; a fresh login is the
// only way back. On success the profile is re-fetched from the server and
// re-cached.
func (c *Client) RestoreSession(ctx context.Context) (*models.LoginResponse, error) {
	pair, err := c.store.Tokens(c.ns)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if pair == nil {
		return nil, ErrNotAuthenticated
	}

	if TokenExpired(pair.AccessToken, c.now()) {
		c.teardown("stored token expired at startup")
		return nil, ErrSessionExpired
	}

	var profile models.LoginResponse
	if err := c.doJSON(ctx, http.MethodGet, "/auth/me", nil, &profile); err != nil {
		return nil, err
	}

	var raw []byte
	if c.ns == AdminNamespace {
		raw, err = json.Marshal(profile.Leader)
	} else {
		raw, err = json.Marshal(profile.User)
	}
	if err == nil {
		err = c.store.SetProfile(c.ns, raw)
	}
	if err != nil {
		return nil, fmt.Errorf("cache profile: %w", err)
	}

	return &profile, nil
}

// Logout revokes the stored refresh token on the server and clears the
// namespace. Safe to call with no active session.
func (c *Client) Logout(ctx context.Context) error {
	pair, err := c.store.Tokens(c.ns)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	if pair == nil {
		return nil
	}

	// Best effort: the local session dies either way
	if err := c.postJSON(ctx, "/auth/logout", models.LogoutRequest{RefreshToken: pair.RefreshToken}, nil); err != nil {
		c.logger.Warn("server-side logout failed", "error", err)
	}

	if err := c.store.Clear(c.ns); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	c.logger.Info("logged out", "namespace", c.ns.name)
	return nil
}

// CachedProfile returns the locally cached profile JSON, or nil when no
// session is stored. It never touches the network.
func (c *Client) CachedProfile() ([]byte, error) {
	return c.store.Profile(c.ns)
}

// ListIssuesOptions filters and pages the issue listing.
type ListIssuesOptions struct {
	Status       string
	DepartmentID string
	Limit        int
	Offset       int
}

// ListIssues fetches the role-scoped issue list. Overlapping calls are
// sequence-guarded: if a newer call completes first, the older response
// comes back as ErrStaleResponse and must be dropped.
func (c *Client) ListIssues(ctx context.Context, opts ListIssuesOptions) (*models.IssueListResponse, error) {
	q := url.Values{}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	if opts.DepartmentID != "" {
		q.Set("department_id", opts.DepartmentID)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}
	path := "/issues"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	seq := c.issuesGuard.Next()
	var resp models.IssueListResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if !c.issuesGuard.Accept(seq) {
		return nil, ErrStaleResponse
	}
	return &resp, nil
}

// CreateIssue reports a new issue.
func (c *Client) CreateIssue(ctx context.Context, req models.CreateIssueRequest) (string, error) {
	var resp models.CreateIssueResponse
	if err := c.doJSON(ctx, http.MethodPost, "/issues", req, &resp); err != nil {
		return "", err
	}
	return resp.IssueID, nil
}

// GetIssue fetches one issue with its response thread.
func (c *Client) GetIssue(ctx context.Context, issueID string) (*models.Issue, error) {
	var issue models.Issue
	if err := c.doJSON(ctx, http.MethodGet, "/issues/"+issueID, nil, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// EscalateIssue escalates the caller's own issue.
func (c *Client) EscalateIssue(ctx context.Context, issueID string) (*models.Issue, error) {
	var issue models.Issue
	if err := c.doJSON(ctx, http.MethodPost, "/issues/"+issueID+"/escalate", nil, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// UpdateIssueStatus sets an issue's status (leader/admin).
func (c *Client) UpdateIssueStatus(ctx context.Context, issueID, status string) (*models.Issue, error) {
	var issue models.Issue
	err := c.doJSON(ctx, http.MethodPatch, "/issues/"+issueID+"/status",
		models.UpdateIssueStatusRequest{Status: status}, &issue)
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

// RespondToIssue posts an official response (leader/admin).
func (c *Client) RespondToIssue(ctx context.Context, issueID, message string) (*models.IssueResponse, error) {
	var resp models.IssueResponse
	err := c.doJSON(ctx, http.MethodPost, "/issues/"+issueID+"/responses",
		models.AddResponseRequest{Message: message}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListTopics fetches a page of discussion topics, sequence-guarded like
// ListIssues.
func (c *Client) ListTopics(ctx context.Context, limit, offset int) (*models.TopicListResponse, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	path := "/topics"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	seq := c.topicsGuard.Next()
	var resp models.TopicListResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if !c.topicsGuard.Accept(seq) {
		return nil, ErrStaleResponse
	}
	return &resp, nil
}

// GetTopic fetches a topic with its assembled comment tree.
func (c *Client) GetTopic(ctx context.Context, topicID string) (*models.Topic, error) {
	var topic models.Topic
	if err := c.doJSON(ctx, http.MethodGet, "/topics/"+topicID, nil, &topic); err != nil {
		return nil, err
	}
	return &topic, nil
}

// CreateTopic opens a new discussion topic.
func (c *Client) CreateTopic(ctx context.Context, title, body string) (*models.Topic, error) {
	var topic models.Topic
	err := c.doJSON(ctx, http.MethodPost, "/topics",
		models.CreateTopicRequest{Title: title, Body: body}, &topic)
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

// AddComment posts a comment; parentID selects the comment being replied
// to, empty for a new top-level comment.
func (c *Client) AddComment(ctx context.Context, topicID, parentID, body string) (string, error) {
	var resp models.AddCommentResponse
	err := c.doJSON(ctx, http.MethodPost, "/topics/"+topicID+"/comments",
		models.AddCommentRequest{Body: body, ParentID: parentID}, &resp)
	if err != nil {
		return "", err
	}
	return resp.CommentID, nil
}

// ListAnnouncements fetches the public announcement feed. No session
// required.
func (c *Client) ListAnnouncements(ctx context.Context) ([]models.Announcement, error) {
	var list []models.Announcement
	if err := c.getJSON(ctx, "/announcements", &list); err != nil {
		return nil, err
	}
	return list, nil
}

// CreateAnnouncement publishes an announcement (leader/admin).
func (c *Client) CreateAnnouncement(ctx context.Context, title, body string) (*models.Announcement, error) {
	var ann models.Announcement
	err := c.doJSON(ctx, http.MethodPost, "/announcements",
		models.CreateAnnouncementRequest{Title: title, Body: body}, &ann)
	if err != nil {
		return nil, err
	}
	return &ann, nil
}

// DeleteAnnouncement removes an announcement (own, or any as admin).
func (c *Client) DeleteAnnouncement(ctx context.Context, announcementID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/announcements/"+announcementID, nil, nil)
}

// ListDepartments fetches the public department directory.
func (c *Client) ListDepartments(ctx context.Context) ([]models.Department, error) {
	var list []models.Department
	if err := c.getJSON(ctx, "/departments", &list); err != nil {
		return nil, err
	}
	return list, nil
}

// CreateDepartment creates a department (admin).
func (c *Client) CreateDepartment(ctx context.Context, name, description string) (*models.Department, error) {
	var dept models.Department
	err := c.doJSON(ctx, http.MethodPost, "/departments",
		models.CreateDepartmentRequest{Name: name, Description: description}, &dept)
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

// DeleteDepartment removes an empty department (admin).
func (c *Client) DeleteDepartment(ctx context.Context, departmentID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/departments/"+departmentID, nil, nil)
}

// ListLeaders lists leader accounts (admin).
func (c *Client) ListLeaders(ctx context.Context) ([]models.Leader, error) {
	var list []models.Leader
	if err := c.doJSON(ctx, http.MethodGet, "/leaders", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// CreateLeader provisions a leader account (admin).
func (c *Client) CreateLeader(ctx context.Context, req models.CreateLeaderRequest) (*models.Leader, error) {
	var leader models.Leader
	if err := c.doJSON(ctx, http.MethodPost, "/leaders", req, &leader); err != nil {
		return nil, err
	}
	return &leader, nil
}

// DeleteLeader removes a leader account (admin).
func (c *Client) DeleteLeader(ctx context.Context, leaderID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/leaders/"+leaderID, nil, nil)
}
