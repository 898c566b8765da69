// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rhi

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// ReleaseStats contains release queue counters.
type ReleaseStats struct {
	// Deferred is the number of resources handed to the queue.
	Deferred uint64

	// Destroyed is the number of resources destroyed by Drain.
	Destroyed uint64

	// Leaked is the number of resources handed over after Close.
	Leaked uint64

	// Pending is the number of resources waiting for the next Drain.
	Pending int
}

// String returns a human-readable string of release stats.
func (s ReleaseStats) String() string {
	return fmt.Sprintf("Release[%d deferred, %d destroyed, %d pending, %d leaked]",
		s.Deferred, s.Destroyed, s.Pending, s.Leaked)
}

// ReleaseQueue defers resource destruction to the goroutine that owns the
// graphics context.
//
// Any goroutine may call Defer. Only the render goroutine calls Drain,
// which destroys every pending resource exactly once. The pending list is
// double-buffered: Drain swaps it under the mutex and runs Destroy with the
// lock released, so producers handing over resources never wait on the GPU.
//
// ReleaseQueue is safe for concurrent use.
type ReleaseQueue struct {
	mu      sync.Mutex
	pending []Resource
	spare   []Resource
	closed  bool

	deferred  atomic.Uint64
	destroyed atomic.Uint64
	leaked    atomic.Uint64
}

// NewReleaseQueue creates an empty release queue.
func NewReleaseQueue() *ReleaseQueue {
	return &ReleaseQueue{}
}

// Defer schedules r for destruction on the next Drain.
// After Close the resource is logged and leaked rather than destroyed on
// the calling goroutine.
func (q *ReleaseQueue) Defer(r Resource) {
	if r == nil {
		return
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.leaked.Add(1)
		Logger().Warn("rhi: resource released after release queue closed",
			"kind", r.Kind(), "label", r.Label())
		return
	}
	q.pending = append(q.pending, r)
	q.mu.Unlock()
	q.deferred.Add(1)
}

// Drain destroys all pending resources and returns how many were destroyed.
// It must be called from the goroutine that owns the graphics context.
func (q *ReleaseQueue) Drain() int {
	q.mu.Lock()
	batch := q.pending
	q.pending = q.spare[:0]
	q.mu.Unlock()

	for i, r := range batch {
		r.Destroy()
		batch[i] = nil
	}
	n := len(batch)
	if n > 0 {
		q.destroyed.Add(uint64(n))
		Logger().Debug("rhi: released resources", "count", n)
	}

	q.mu.Lock()
	q.spare = batch[:0]
	q.mu.Unlock()
	return n
}

// Close drains the queue one last time. Resources deferred afterwards are
// leaked. Close must be called from the render goroutine.
func (q *ReleaseQueue) Close() int {
	n := q.Drain()
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	// A Defer may have slipped in between the drain and the flag.
	return n + q.Drain()
}

// Len returns the number of pending resources.
func (q *ReleaseQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Stats returns the queue counters.
func (q *ReleaseQueue) Stats() ReleaseStats {
	return ReleaseStats{
		Deferred:  q.deferred.Load(),
		Destroyed: q.destroyed.Load(),
		Leaked:    q.leaked.Load(),
		Pending:   q.Len(),
	}
}
