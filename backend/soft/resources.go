// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package soft

import (
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/rhi"
)

// resource holds the fields shared by every soft resource.
type resource struct {
	b         *Backend
	kind      rhi.Kind
	label     string
	destroyed atomic.Bool
}

func (r *resource) init(b *Backend, desc rhi.Descriptor) {
	r.b, r.kind, r.label = b, desc.Kind, desc.Label
}

func (r *resource) Kind() rhi.Kind { return r.kind }
func (r *resource) Label() string  { return r.label }
func (r *resource) live() bool     { return !r.destroyed.Load() }

// Destroy releases the resource. A second Destroy panics.
func (r *resource) Destroy() {
	if r.destroyed.Swap(true) {
		rhi.Fatal("Resource.Destroy", rhi.ErrUninitialized, "%s %q destroyed twice", r.kind, r.label)
	}
	r.b.destroyed.Add(1)
	r.b.record(Event{Op: OpDestroy, Kind: r.kind, Label: r.label})
}

type state struct {
	resource
}

func (s *state) Enable() {
	rhi.CheckLive("State.Enable", s.kind, s.live())
	s.b.enable(s.kind, s.label)
}

type vertexBuffer struct {
	resource
	data []byte
}

func (v *vertexBuffer) Update(size int, data []byte) {
	rhi.CheckLive("VertexBuffer.Update", v.kind, v.live())
	rhi.CheckUpdate(len(v.data), size, data)
	copy(v.data, data[:size])
	v.b.record(Event{Op: OpUpdate, Kind: v.kind, Label: v.label, Size: size})
}

func (v *vertexBuffer) Size() int { return len(v.data) }

type texture2D struct {
	resource
	width, height int
	format        gputypes.TextureFormat
	pixels        []byte
}

func (t *texture2D) Width() int                     { return t.width }
func (t *texture2D) Height() int                    { return t.height }
func (t *texture2D) Format() gputypes.TextureFormat { return t.format }

type textureCube struct {
	resource
	size   int
	format gputypes.TextureFormat
	pixels []byte
}

func (t *textureCube) Size() int                      { return t.size }
func (t *textureCube) Format() gputypes.TextureFormat { return t.format }

// Pixels returns the host copy of a soft texture, or nil when r is not a
// soft texture.
func Pixels(r rhi.Resource) []byte {
	switch t := r.(type) {
	case *texture2D:
		return t.pixels
	case *textureCube:
		return t.pixels
	}
	return nil
}

// Contents returns the host copy of a soft vertex buffer, or nil.
func Contents(vb rhi.VertexBuffer) []byte {
	if v, ok := vb.(*vertexBuffer); ok {
		return v.data
	}
	return nil
}

var (
	_ rhi.State        = (*state)(nil)
	_ rhi.VertexBuffer = (*vertexBuffer)(nil)
	_ rhi.Texture2D    = (*texture2D)(nil)
	_ rhi.TextureCube  = (*textureCube)(nil)
)
