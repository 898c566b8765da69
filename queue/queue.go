// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package queue

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/gogpu/rhi"
)

// Queue is a double-buffered render queue for one producer goroutine and
// one consumer goroutine.
//
// Submit and Swap are called only by the producer. Acquire, TryAcquire,
// Drain and the Frame methods are called only by the consumer. Close and
// Stats may be called from any goroutine.
type Queue struct {
	cfg Config

	// submit is touched only by the producer. Swap replaces it under mu.
	submit *buffer

	mu      sync.Mutex
	cond    *sync.Cond
	other   *buffer // free, ready or draining
	frames  uint64  // frames swapped so far, guarded by mu
	isReady bool    // other holds a swapped frame, guarded by mu
	closed  atomic.Bool

	submitted  atomic.Uint64
	swapped    atomic.Uint64
	drained    atomic.Uint64
	dropped    atomic.Uint64
	expansions atomic.Uint64

	bufs [2]*buffer
}

// New creates a queue. Zero or invalid config fields take their defaults.
func New(cfg Config) *Queue {
	cfg = cfg.normalize()
	q := &Queue{cfg: cfg}
	q.cond = sync.NewCond(&q.mu)
	q.bufs = [2]*buffer{newBuffer(cfg), newBuffer(cfg)}
	q.submit, q.other = q.bufs[0], q.bufs[1]
	return q
}

// Config returns the normalized configuration.
func (q *Queue) Config() Config { return q.cfg }

// Submit appends n to the frame being built. The queue clones every handle
// in n and owns those references until the node has executed or was
// dropped. Submit never blocks and never fails; it grows the buffer as
// needed and panics with *AllocationError only when growth exceeds
// Config.MaxCapacity. After Close, Submit discards n.
//
// n.VertexBuffer must be a valid handle.
func (q *Queue) Submit(n Node) {
	if q.closed.Load() {
		return
	}
	if q.submit.push(retain(n), q.cfg) {
		q.expansions.Add(1)
	}
	q.submitted.Add(1)
}

// Pending returns the number of nodes submitted since the last Swap.
// Producer only.
func (q *Queue) Pending() int { return len(q.submit.nodes) }

// Swap ends the frame being built and hands it to the consumer. The
// exchange itself is O(1). Swap blocks while the consumer is still
// draining the previous frame and, under BackpressureWait, while the
// previous frame has not been acquired. ctx cancels the wait; the frame
// being built is then kept and the next Swap retries.
//
// After Close, Swap releases the nodes being built and returns ErrClosed.
func (q *Queue) Swap(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if q.closed.Load() {
			q.submit.reset()
			return ErrClosed
		}
		if q.isReady && q.cfg.Backpressure == BackpressureDrop {
			q.dropLocked()
		}
		if q.other.state == stateFree {
			break
		}
		if err := q.wait(ctx); err != nil {
			return err
		}
	}

	q.submit, q.other = q.other, q.submit
	q.other.state = stateReady
	q.isReady = true
	q.frames++
	q.swapped.Add(1)
	q.cond.Broadcast()
	return nil
}

// dropLocked discards the un-acquired ready frame.
func (q *Queue) dropLocked() {
	n := q.other.reset()
	q.other.state = stateFree
	q.isReady = false
	q.dropped.Add(1)
	if n > 0 {
		rhi.Logger().Warn("queue: frame dropped", "frame", q.frames, "nodes", n)
	}
}

// Acquire waits for a swapped frame and returns it sorted by key. The
// consumer owns the frame until Done or Discard. Acquire returns ErrClosed
// after Close and ctx.Err() when ctx is done first.
func (q *Queue) Acquire(ctx context.Context) (*Frame, error) {
	q.mu.Lock()
	for !q.isReady {
		if q.closed.Load() {
			q.mu.Unlock()
			return nil, ErrClosed
		}
		if err := q.wait(ctx); err != nil {
			q.mu.Unlock()
			return nil, err
		}
	}
	f := q.takeLocked()
	q.mu.Unlock()

	f.buf.sort()
	return f, nil
}

// TryAcquire returns the swapped frame if one is ready, without blocking.
func (q *Queue) TryAcquire() (*Frame, bool) {
	q.mu.Lock()
	if !q.isReady {
		q.mu.Unlock()
		return nil, false
	}
	f := q.takeLocked()
	q.mu.Unlock()

	f.buf.sort()
	return f, true
}

func (q *Queue) takeLocked() *Frame {
	q.other.state = stateDraining
	q.isReady = false
	return &Frame{q: q, buf: q.other, seq: q.frames}
}

// Drain acquires the next frame, calls fn for each node in key order and
// finishes the frame. If fn panics the frame is discarded before the panic
// propagates.
func (q *Queue) Drain(ctx context.Context, fn func(n *Node)) error {
	f, err := q.Acquire(ctx)
	if err != nil {
		return err
	}
	ok := false
	defer func() {
		if !ok {
			f.Discard()
		}
	}()
	nodes := f.Nodes()
	for i := range nodes {
		fn(&nodes[i])
	}
	ok = true
	f.Done()
	return nil
}

// Close wakes every waiter and discards a frame that was swapped but not
// acquired. A frame being drained stays valid until Done. Later Swap and
// Acquire calls return ErrClosed. Close is idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed.Swap(true) {
		return
	}
	if q.isReady {
		q.dropLocked()
	}
	q.cond.Broadcast()
}

// Closed reports whether Close has been called.
func (q *Queue) Closed() bool { return q.closed.Load() }

// wait blocks on cond until woken or ctx is done. q.mu must be held.
func (q *Queue) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.cond.Broadcast()
		q.mu.Unlock()
	})
	q.cond.Wait()
	stop()
	return ctx.Err()
}

// finish returns a drained buffer to the free state.
func (q *Queue) finish(b *buffer, dropped bool) {
	b.reset()
	q.mu.Lock()
	b.state = stateFree
	if dropped {
		q.dropped.Add(1)
	} else {
		q.drained.Add(1)
	}
	q.cond.Broadcast()
	q.mu.Unlock()
}

// Stats returns a snapshot of the queue counters.
func (q *Queue) Stats() Stats {
	return Stats{
		Submitted:  q.submitted.Load(),
		Swapped:    q.swapped.Load(),
		Drained:    q.drained.Load(),
		Dropped:    q.dropped.Load(),
		Expansions: q.expansions.Load(),
		Capacity:   int(max(q.bufs[0].capStat.Load(), q.bufs[1].capStat.Load())),
	}
}
