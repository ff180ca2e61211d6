// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import "github.com/danielhkuo/civiclink/models"

// ReplaceComment returns a new comment forest with the node whose ID
// matches updated swapped out. The input is never mutated: nodes on the
// path from a root to the target are shallow-copied, everything off the
// path keeps pointer identity with the original. When the ID is absent
// the original slice is returned unchanged.
func ReplaceComment(roots []*models.Comment, updated *models.Comment) []*models.Comment {
	out, found := replaceIn(roots, updated)
	if !found {
		return roots
	}
	return out
}

func replaceIn(nodes []*models.Comment, updated *models.Comment) ([]*models.Comment, bool) {
	for i, node := range nodes {
		if node.ID == updated.ID {
			out := copySiblings(nodes)
			out[i] = updated
			return out, true
		}
		if replies, found := replaceIn(node.Replies, updated); found {
			out := copySiblings(nodes)
			copied := *node
			copied.Replies = replies
			out[i] = &copied
			return out, true
		}
	}
	return nodes, false
}

// AppendReply returns a new forest with reply appended to the children of
// the comment with parentID, preserving sibling order. Same copy-on-path
// discipline as ReplaceComment; an unknown parentID returns the original
// forest unchanged.
func AppendReply(roots []*models.Comment, parentID string, reply *models.Comment) []*models.Comment {
	out, found := appendIn(roots, parentID, reply)
	if !found {
		return roots
	}
	return out
}

func appendIn(nodes []*models.Comment, parentID string, reply *models.Comment) ([]*models.Comment, bool) {
	for i, node := range nodes {
		if node.ID == parentID {
			out := copySiblings(nodes)
			copied := *node
			copied.Replies = append(copySiblings(node.Replies), reply)
			out[i] = &copied
			return out, true
		}
		if replies, found := appendIn(node.Replies, parentID, reply); found {
			out := copySiblings(nodes)
			copied := *node
			copied.Replies = replies
			out[i] = &copied
			return out, true
		}
	}
	return nodes, false
}

func copySiblings(nodes []*models.Comment) []*models.Comment {
	out := make([]*models.Comment, len(nodes))
	copy(out, nodes)
	return out
}
