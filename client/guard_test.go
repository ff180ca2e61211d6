// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceGuardInOrder(t *testing.T) {
	var g SequenceGuard

	a := g.Next()
	b := g.Next()

	assert.True(t, g.Accept(a), "first response in order should apply")
	assert.True(t, g.Accept(b), "second response in order should apply")
}

func TestSequenceGuardDiscardsStale(t *testing.T) {
	var g SequenceGuard

	a := g.Next()
	b := g.Next()

	// The newer request's response arrives first
	assert.True(t, g.Accept(b))
	assert.False(t, g.Accept(a), "older response must be discarded")
}

func TestSequenceGuardAcceptIsSingleShot(t *testing.T) {
	var g SequenceGuard

	a := g.Next()
	assert.True(t, g.Accept(a))
	assert.False(t, g.Accept(a), "a sequence number can be accepted once")
}

func TestSequenceGuardConcurrent(t *testing.T) {
	var g SequenceGuard

	const n = 100
	seqs := make([]uint64, n)
	for i := range seqs {
		seqs[i] = g.Next()
	}

	var wg sync.WaitGroup
	accepted := make([]bool, n)
	for i := range seqs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			accepted[i] = g.Accept(seqs[i])
		}(i)
	}
	wg.Wait()

	// The highest sequence number always lands
	assert.True(t, accepted[n-1], "newest response must always apply")

	// Whatever raced in, acceptance never goes backwards: every accepted
	// sequence must be greater than all previously accepted ones, which
	// means the accepted set read in order is strictly increasing
	last := uint64(0)
	for i, ok := range accepted {
		if ok {
			assert.Greater(t, seqs[i], last)
			last = seqs[i]
		}
	}
}
