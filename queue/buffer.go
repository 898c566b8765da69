// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package queue

import (
	"math"
	"sort"
	"sync/atomic"

	"github.com/gogpu/rhi"
)

// bufferState is the handoff state of a buffer that is not the submit
// buffer. Guarded by Queue.mu.
type bufferState uint8

const (
	stateFree     bufferState = iota // empty, ready to become the submit buffer
	stateReady                       // swapped, waiting for Acquire
	stateDraining                    // acquired, owned by the consumer
)

// buffer is one side of the double buffer.
//
// nodes and seqs are parallel slices: seqs[i] is the submission index of
// nodes[i] within the frame. Both are allocated with physicalSize(capacity)
// slots so appends never reallocate between growths.
type buffer struct {
	nodes    []Node
	seqs     []uint64
	capacity int
	state    bufferState

	// logical capacity mirror, readable from any goroutine for Stats.
	capStat atomic.Int64
}

func newBuffer(cfg Config) *buffer {
	b := &buffer{}
	b.allocate(cfg.InitialCapacity, cfg.LoadFactor)
	return b
}

// physicalSize returns the number of slots that hold capacity nodes at the
// given load factor before growth triggers.
func physicalSize(capacity int, loadFactor float64) int {
	return int(math.Floor(float64(capacity)*loadFactor)) + 1
}

// grownCapacity returns ceil(capacity*expansion) and whether it fits into
// limit.
func grownCapacity(capacity int, expansion float64, limit int) (int, bool) {
	f := math.Ceil(float64(capacity) * expansion)
	if f > float64(limit) {
		if f >= math.MaxInt {
			return math.MaxInt, false
		}
		return int(f), false
	}
	return int(f), true
}

func (b *buffer) allocate(capacity int, loadFactor float64) {
	n := physicalSize(capacity, loadFactor)
	nodes := make([]Node, len(b.nodes), n)
	seqs := make([]uint64, len(b.seqs), n)
	copy(nodes, b.nodes)
	copy(seqs, b.seqs)
	b.nodes, b.seqs = nodes, seqs
	b.capacity = capacity
	b.capStat.Store(int64(capacity))
}

// push appends n and grows the buffer once count/capacity exceeds the load
// factor. It reports whether the buffer grew.
func (b *buffer) push(n Node, cfg Config) bool {
	b.seqs = append(b.seqs, uint64(len(b.nodes)))
	b.nodes = append(b.nodes, n)

	if float64(len(b.nodes)) <= float64(b.capacity)*cfg.LoadFactor {
		return false
	}
	next, ok := grownCapacity(b.capacity, cfg.ExpansionFactor, cfg.MaxCapacity)
	if !ok {
		panic(&AllocationError{Requested: next, Limit: cfg.MaxCapacity})
	}
	rhi.Logger().Debug("queue: buffer grown",
		"from", b.capacity, "to", next, "nodes", len(b.nodes))
	b.allocate(next, cfg.LoadFactor)
	return true
}

// sort orders the nodes by (Key, submission index).
func (b *buffer) sort() {
	if !sort.IsSorted(b) {
		sort.Sort(b)
	}
}

func (b *buffer) Len() int { return len(b.nodes) }

func (b *buffer) Less(i, j int) bool {
	if b.nodes[i].Key != b.nodes[j].Key {
		return b.nodes[i].Key < b.nodes[j].Key
	}
	return b.seqs[i] < b.seqs[j]
}

func (b *buffer) Swap(i, j int) {
	b.nodes[i], b.nodes[j] = b.nodes[j], b.nodes[i]
	b.seqs[i], b.seqs[j] = b.seqs[j], b.seqs[i]
}

// reset releases the handles of every node and empties the buffer without
// shrinking it. It returns the number of nodes dropped.
func (b *buffer) reset() int {
	n := len(b.nodes)
	for i := range b.nodes {
		release(&b.nodes[i])
	}
	clear(b.nodes)
	b.nodes = b.nodes[:0]
	b.seqs = b.seqs[:0]
	return n
}
