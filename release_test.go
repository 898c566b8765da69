// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rhi

import (
	"sync"
	"testing"
)

func TestReleaseQueueDrain(t *testing.T) {
	q := NewReleaseQueue()
	if n := q.Drain(); n != 0 {
		t.Fatalf("Drain() on empty queue = %d", n)
	}

	res := []*mockResource{{kind: KindVertexBuffer}, {kind: KindTexture2D}, {kind: KindBlendState}}
	for _, r := range res {
		q.Defer(r)
	}
	q.Defer(nil)

	if q.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", q.Len())
	}
	if n := q.Drain(); n != 3 {
		t.Fatalf("Drain() = %d, want 3", n)
	}
	for i, r := range res {
		if r.destroyed.Load() != 1 {
			t.Errorf("resource %d destroyed %d times", i, r.destroyed.Load())
		}
	}
	if n := q.Drain(); n != 0 {
		t.Errorf("second Drain() = %d, want 0", n)
	}

	want := ReleaseStats{Deferred: 3, Destroyed: 3}
	if got := q.Stats(); got != want {
		t.Errorf("Stats() = %v, want %v", got, want)
	}
}

func TestReleaseQueueConcurrentDefer(t *testing.T) {
	q := NewReleaseQueue()
	const producers, per = 8, 200

	var wg sync.WaitGroup
	for range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range per {
				q.Defer(&mockResource{kind: KindVertexBuffer})
			}
		}()
	}

	total := 0
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for {
		select {
		case <-done:
			total += q.Drain()
			if total != producers*per {
				t.Fatalf("destroyed %d, want %d", total, producers*per)
			}
			return
		default:
			total += q.Drain()
		}
	}
}

func TestReleaseQueueClose(t *testing.T) {
	q := NewReleaseQueue()
	early := &mockResource{kind: KindVertexBuffer}
	q.Defer(early)

	if n := q.Close(); n != 1 {
		t.Fatalf("Close() = %d, want 1", n)
	}
	late := &mockResource{kind: KindVertexBuffer}
	q.Defer(late)

	if late.destroyed.Load() != 0 {
		t.Error("resource destroyed inline after Close")
	}
	if s := q.Stats(); s.Leaked != 1 || s.Pending != 0 {
		t.Errorf("Stats() = %v, want 1 leaked, 0 pending", s)
	}
}

func TestReleaseStatsString(t *testing.T) {
	s := ReleaseStats{Deferred: 5, Destroyed: 4, Leaked: 1, Pending: 1}
	want := "Release[5 deferred, 4 destroyed, 1 pending, 1 leaked]"
	if got := s.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
