// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import "sync/atomic"

// SequenceGuard discards stale responses from overlapping list queries.
// Each request takes a sequence number with Next; when its response
// arrives, Accept reports whether it is still the newest. A response is
// stale once any request with a higher sequence number has been accepted,
// regardless of arrival order on the wire.
//
// The zero value is ready to use. Safe for concurrent use.
type SequenceGuard struct {
	issued   atomic.Uint64
	accepted atomic.Uint64
}

// Next reserves the sequence number for a new request.
func (g *SequenceGuard) Next() uint64 {
	return g.issued.Add(1)
}

// Accept records the response for seq. It returns false when a newer
// response has already been accepted, in which case the caller must drop
// the result instead of applying it.
func (g *SequenceGuard) Accept(seq uint64) bool {
	for {
		cur := g.accepted.Load()
		if seq <= cur {
			return false
		}
		if g.accepted.CompareAndSwap(cur, seq) {
			return true
		}
	}
}
