// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package queue

import "iter"

// Frame is a swapped frame owned by the consumer between Acquire and
// Done or Discard. Its nodes are sorted by Key, ties in submission order.
//
// A Frame is not safe for concurrent use.
type Frame struct {
	q        *Queue
	buf      *buffer
	seq      uint64
	finished bool
}

// Seq returns the frame number, starting at 1.
func (f *Frame) Seq() uint64 { return f.seq }

// Len returns the number of nodes.
func (f *Frame) Len() int {
	if f.finished {
		return 0
	}
	return len(f.buf.nodes)
}

// Nodes returns the sorted nodes. The slice is valid until Done or Discard
// and must not be retained.
func (f *Frame) Nodes() []Node {
	if f.finished {
		return nil
	}
	return f.buf.nodes
}

// All iterates over the nodes in execution order.
func (f *Frame) All() iter.Seq2[int, *Node] {
	return func(yield func(int, *Node) bool) {
		nodes := f.Nodes()
		for i := range nodes {
			if !yield(i, &nodes[i]) {
				return
			}
		}
	}
}

// Done marks the frame executed. It releases the queue's node handles,
// empties the buffer without shrinking it and lets the producer swap into
// it again. Calls after the first Done or Discard have no effect.
func (f *Frame) Done() {
	if f.finished {
		return
	}
	f.finished = true
	f.q.finish(f.buf, false)
}

// Discard drops the frame without executing the remaining nodes. It
// otherwise behaves like Done.
func (f *Frame) Discard() {
	if f.finished {
		return
	}
	f.finished = true
	f.q.finish(f.buf, true)
}
