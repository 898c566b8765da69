// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rhi

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gogpu/gputypes"
)

// mockResource counts Destroy calls.
type mockResource struct {
	kind      Kind
	label     string
	destroyed atomic.Int32
}

func (r *mockResource) Kind() Kind         { return r.kind }
func (r *mockResource) Label() string      { return r.label }
func (r *mockResource) Destroy()           { r.destroyed.Add(1) }
func (r *mockResource) Enable()            { CheckLive("State.Enable", r.kind, r.destroyed.Load() == 0) }
func (r *mockResource) Size() int          { return 0 }
func (r *mockResource) Update(int, []byte) {}

type mockTexture struct {
	mockResource
	w, h   int
	format gputypes.TextureFormat
}

func (t *mockTexture) Width() int                     { return t.w }
func (t *mockTexture) Height() int                    { return t.h }
func (t *mockTexture) Format() gputypes.TextureFormat { return t.format }

// mockBackend creates mock resources. create, when set, replaces the
// default construction.
type mockBackend struct {
	mu      sync.Mutex
	created []*mockResource
	create  func(desc Descriptor) (Resource, error)
	closed  bool
}

func (b *mockBackend) Name() string { return "mock" }

func (b *mockBackend) CreateResource(desc Descriptor) (Resource, error) {
	if b.create != nil {
		return b.create(desc)
	}
	var r *mockResource
	var res Resource
	if desc.Kind == KindTexture2D {
		t := &mockTexture{w: desc.Width, h: desc.Height, format: desc.Format}
		t.kind, t.label = desc.Kind, desc.Label
		r, res = &t.mockResource, t
	} else {
		r = &mockResource{kind: desc.Kind, label: desc.Label}
		res = r
	}
	b.mu.Lock()
	b.created = append(b.created, r)
	b.mu.Unlock()
	return res, nil
}

func (b *mockBackend) BeginFrame() error             { return nil }
func (b *mockBackend) Draw(VertexBuffer, DrawParams) {}
func (b *mockBackend) EndFrame() error               { return nil }
func (b *mockBackend) Close() error {
	b.closed = true
	return nil
}

// programmingPanic runs fn and returns the *ProgrammingError it panics with.
func programmingPanic(t *testing.T, fn func()) (pe *ProgrammingError) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		var ok bool
		if pe, ok = r.(*ProgrammingError); !ok {
			t.Fatalf("panic value = %T (%v), want *ProgrammingError", r, r)
		}
	}()
	fn()
	return nil
}
