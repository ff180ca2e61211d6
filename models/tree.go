// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

// BuildCommentTree assembles a flat, creation-ordered comment list into
// nested trees. Top-level comments (nil ParentID) become roots; every other
// comment is appended to its parent's Replies. Sibling order follows the
// input order, so callers should pass rows ordered by created_at.
//
// Comments whose parent is missing from the input (e.g. a moderated-away
// parent) are promoted to roots rather than dropped.
func BuildCommentTree(flat []*Comment) []*Comment {
	byID := make(map[string]*Comment, len(flat))
	for _, c := range flat {
		byID[c.ID] = c
	}

	var roots []*Comment
	for _, c := range flat {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		parent, ok := byID[*c.ParentID]
		if !ok {
			roots = append(roots, c)
			continue
		}
		parent.Replies = append(parent.Replies, c)
	}
	return roots
}

// CountComments returns the total number of nodes in a comment forest.
func CountComments(roots []*Comment) int {
	n := 0
	for _, c := range roots {
		n += 1 + CountComments(c.Replies)
	}
	return n
}
