// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/civiclink/models"
)

// buildForest returns:
//
//	rootA
//	  └─ replyA1
//	       └─ replyA1a
//	rootB
//	  └─ replyB1
func buildForest() []*models.Comment {
	replyA1a := &models.Comment{ID: "a1a", Body: "deep reply"}
	replyA1 := &models.Comment{ID: "a1", Body: "reply", Replies: []*models.Comment{replyA1a}}
	rootA := &models.Comment{ID: "a", Body: "root A", Replies: []*models.Comment{replyA1}}
	replyB1 := &models.Comment{ID: "b1", Body: "other reply"}
	rootB := &models.Comment{ID: "b", Body: "root B", Replies: []*models.Comment{replyB1}}
	return []*models.Comment{rootA, rootB}
}

func TestReplaceCommentCopiesOnlyThePath(t *testing.T) {
	forest := buildForest()
	updated := &models.Comment{ID: "a1a", Body: "edited"}

	out := ReplaceComment(forest, updated)

	// The replacement landed
	require.Len(t, out, 2)
	assert.Equal(t, "edited", out[0].Replies[0].Replies[0].Body)

	// Nodes on the path are fresh copies
	assert.NotSame(t, forest[0], out[0])
	assert.NotSame(t, forest[0].Replies[0], out[0].Replies[0])

	// The untouched sibling subtree keeps pointer identity
	assert.Same(t, forest[1], out[1])
	assert.Same(t, forest[1].Replies[0], out[1].Replies[0])

	// The original forest is unchanged
	assert.Equal(t, "deep reply", forest[0].Replies[0].Replies[0].Body)
}

func TestReplaceCommentAtRoot(t *testing.T) {
	forest := buildForest()
	updated := &models.Comment{ID: "b", Body: "new root B"}

	out := ReplaceComment(forest, updated)

	assert.Same(t, forest[0], out[0], "unrelated root must be shared")
	assert.Same(t, updated, out[1])
	assert.Equal(t, "root B", forest[1].Body, "original untouched")
}

func TestReplaceCommentUnknownIDReturnsInput(t *testing.T) {
	forest := buildForest()
	out := ReplaceComment(forest, &models.Comment{ID: "nope"})
	assert.Same(t, forest[0], out[0])
	assert.Same(t, forest[1], out[1])
}

func TestAppendReplyNested(t *testing.T) {
	forest := buildForest()
	reply := &models.Comment{ID: "a1b", Body: "second reply"}

	out := AppendReply(forest, "a1", reply)

	// Appended after existing siblings
	require.Len(t, out[0].Replies[0].Replies, 2)
	assert.Equal(t, "a1a", out[0].Replies[0].Replies[0].ID)
	assert.Same(t, reply, out[0].Replies[0].Replies[1])

	// Existing child of the parent is shared, not copied
	assert.Same(t, forest[0].Replies[0].Replies[0], out[0].Replies[0].Replies[0])

	// Path copied, sibling root shared, original unchanged
	assert.NotSame(t, forest[0], out[0])
	assert.Same(t, forest[1], out[1])
	assert.Len(t, forest[0].Replies[0].Replies, 1)
}

func TestAppendReplyToRoot(t *testing.T) {
	forest := buildForest()
	reply := &models.Comment{ID: "b2", Body: "reply to B"}

	out := AppendReply(forest, "b", reply)

	require.Len(t, out[1].Replies, 2)
	assert.Same(t, reply, out[1].Replies[1])
	assert.Same(t, forest[0], out[0])
}

func TestAppendReplyUnknownParentReturnsInput(t *testing.T) {
	forest := buildForest()
	out := AppendReply(forest, "missing", &models.Comment{ID: "x"})
	assert.Same(t, forest[0], out[0])
	assert.Same(t, forest[1], out[1])
	assert.Len(t, forest[0].Replies, 1)
}
