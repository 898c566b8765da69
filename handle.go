// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rhi

import "sync/atomic"

// Releaser receives resources whose last handle was released.
// Implementations must not call Destroy inline; see ReleaseQueue.
type Releaser interface {
	Defer(r Resource)
}

// control is the shared state behind all copies of a handle.
type control struct {
	res      Resource
	refs     atomic.Int64
	releaser Releaser
}

// owner is one owning copy of a handle. Each Clone creates a new owner, so
// a copy can detect its own double release without touching the others.
type owner struct {
	ctl      *control
	released atomic.Bool
}

// Handle is a reference-counted owning reference to a Resource.
//
// A Handle is created by Device with a count of one. Clone increments the
// count and returns a new owning copy; Release decrements it. When the
// count reaches zero the resource is passed to the device's Releaser, which
// destroys it later on the render goroutine.
//
// Assigning a Handle to another variable does not create a new owner: both
// variables refer to the same owning copy and only one of them may call
// Release. Use Clone to share ownership.
//
// Different owning copies of one resource may be cloned and released
// concurrently. A single copy is not safe for concurrent use: calling
// Clone on a copy while another goroutine releases that same copy is a
// use after release. When such a Clone loses the race against the final
// Release it panics instead of reviving the resource.
type Handle[T Resource] struct {
	o *owner
}

func newHandle[T Resource](res Resource, rel Releaser) Handle[T] {
	ctl := &control{res: res, releaser: rel}
	ctl.refs.Store(1)
	return Handle[T]{o: &owner{ctl: ctl}}
}

// Valid reports whether h refers to a resource and has not been released.
func (h Handle[T]) Valid() bool {
	return h.o != nil && !h.o.released.Load()
}

// Get returns the resource. It panics with a *ProgrammingError when h is
// the zero Handle or was released.
func (h Handle[T]) Get() T {
	if !h.Valid() {
		Fatal("Handle.Get", ErrUninitialized, "")
	}
	return h.o.ctl.res.(T)
}

// Kind returns the kind of the referenced resource, or 0 for the zero Handle.
func (h Handle[T]) Kind() Kind {
	if h.o == nil {
		return 0
	}
	return h.o.ctl.res.Kind()
}

// RefCount returns the current number of live owners. Diagnostic only.
func (h Handle[T]) RefCount() int64 {
	if h.o == nil {
		return 0
	}
	return h.o.ctl.refs.Load()
}

// Clone returns a new owning copy of h, incrementing the reference count.
// Cloning a released or zero handle panics.
func (h Handle[T]) Clone() Handle[T] {
	if !h.Valid() {
		Fatal("Handle.Clone", ErrUninitialized, "")
	}
	refs := &h.o.ctl.refs
	for {
		n := refs.Load()
		if n <= 0 {
			Fatal("Handle.Clone", ErrUninitialized, "%s %q: reference count already zero", h.o.ctl.res.Kind(), h.o.ctl.res.Label())
		}
		if refs.CompareAndSwap(n, n+1) {
			break
		}
	}
	return Handle[T]{o: &owner{ctl: h.o.ctl}}
}

// Release gives up this copy's ownership. Releasing the last copy hands the
// resource to the Releaser. Releasing a copy twice panics with
// ErrDoubleRelease. Releasing the zero Handle is a no-op.
//
// A resource whose last copy is released after its device or release
// queue was closed is never destroyed. It is logged at Warn level and
// counted in ReleaseStats.Leaked.
func (h Handle[T]) Release() {
	if h.o == nil {
		return
	}
	if h.o.released.Swap(true) {
		Fatal("Handle.Release", ErrDoubleRelease, "%s %q", h.o.ctl.res.Kind(), h.o.ctl.res.Label())
	}
	n := h.o.ctl.refs.Add(-1)
	switch {
	case n == 0:
		h.o.ctl.releaser.Defer(h.o.ctl.res)
	case n < 0:
		Fatal("Handle.Release", ErrDoubleRelease, "negative reference count %d", n)
	}
}

// Resource returns an untyped owning copy of h (the count is incremented).
func (h Handle[T]) Resource() Handle[Resource] {
	c := h.Clone()
	return Handle[Resource]{o: c.o}
}

// As converts an untyped handle into a typed one, transferring ownership of
// this copy. ok is false, and h is left untouched, when the resource does
// not implement U.
func As[U Resource](h Handle[Resource]) (Handle[U], bool) {
	if !h.Valid() {
		return Handle[U]{}, false
	}
	if _, ok := h.o.ctl.res.(U); !ok {
		return Handle[U]{}, false
	}
	return Handle[U]{o: h.o}, true
}
