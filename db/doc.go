// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The schema is portable across SQLite and PostgreSQL (the two supported
database types).

# Tables

  - users: citizen accounts
  - departments: government departments
  - leaders: leader accounts (is_admin grants management access)
  - issues: citizen reports with lifecycle status
  - issue_responses: leader responses to issues
  - topics: discussion threads
  - comments: nested comments (self-referencing parent_id)
  - announcements: leader-published notices
  - refresh_tokens: server-side refresh token records

# Relationships

	users 1──* issues
	users 1──* topics
	departments 1──* leaders
	departments 1──* issues
	issues 1──* issue_responses
	topics 1──* comments
	comments 1──* comments (replies)
	leaders 1──* announcements

All foreign keys use ON DELETE CASCADE.

# Refresh Tokens

Refresh tokens are stored server-side so they can be revoked. Each login
or refresh rotates the account's token: the old row is deleted and a new
one inserted. A revoked or expired row makes the next refresh attempt fail
with 401, which is what forces clients to tear down their session.
*/
package db
