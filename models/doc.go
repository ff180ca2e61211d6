// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - RegisterCitizenRequest: name, email, password, ward
  - LoginRequest: email, password
  - RefreshRequest / LogoutRequest: refresh_token
  - CreateIssueRequest: title, description, category, department_id, location, attachment_url
  - UpdateIssueStatusRequest: status
  - AddResponseRequest: message
  - CreateTopicRequest: title, body
  - AddCommentRequest: body, parent_id (empty for top-level)
  - CreateAnnouncementRequest: title, body
  - CreateDepartmentRequest / CreateLeaderRequest: admin management

# Response Types

Types for JSON responses:

  - LoginResponse: access_token, refresh_token, user or leader profile
  - RefreshResponse: rotated token pair
  - CreateIssueResponse: issue_id
  - IssueListResponse / TopicListResponse: page of records plus total/limit/offset
  - AddCommentResponse: comment_id
  - ErrorResponse: error, message

# Domain Types

  - User: citizen account
  - Leader: government account, optionally admin, tied to a department
  - Department: government department
  - Issue: citizen report with lifecycle status and leader responses
  - Topic / Comment: discussion thread with recursively nested replies
  - Announcement: leader-published notice

# Comment Trees

Comments are stored flat (self-referencing parent_id) and assembled into
trees with BuildCommentTree. Sibling order is insertion order.

# Constants

Roles:

	RoleCitizen = "citizen"
	RoleLeader  = "leader"
	RoleAdmin   = "admin"

Issue lifecycle:

	IssueSubmitted  = "submitted"
	IssueInProgress = "in_progress"
	IssueResolved   = "resolved"
	IssueEscalated  = "escalated"
*/
package models
