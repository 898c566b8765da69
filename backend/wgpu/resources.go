// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/rhi"
	"github.com/gogpu/wgpu/hal"
)

// resource holds the fields shared by every wgpu resource.
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

// markDestroyed flips the destroyed flag and panics on a second call.
func (r *resource) markDestroyed() {
	if r.destroyed.Swap(true) {
		rhi.Fatal("Resource.Destroy", rhi.ErrUninitialized, "%s %q destroyed twice", r.kind, r.label)
	}
	r.b.live.Add(-1)
}

// state is a pipeline key bit. It owns no GPU object.
type state struct {
	resource
	bit stateKey
}

func (s *state) Enable() {
	rhi.CheckLive("State.Enable", s.kind, s.live())
	s.b.active |= s.bit
}

func (s *state) Destroy() { s.markDestroyed() }

type vertexBuffer struct {
	resource
	buf      hal.Buffer
	capacity int
	scratch  []byte
}

// newVertexBuffer allocates capacity bytes rounded up to the 4-byte copy
// alignment.
func (b *Backend) newVertexBuffer(desc rhi.Descriptor) (*vertexBuffer, error) {
	buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  uint64(align4(desc.Capacity)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create vertex buffer: %w", err)
	}
	v := &vertexBuffer{buf: buf, capacity: desc.Capacity}
	v.init(b, desc)
	return v, nil
}

// Update writes data[:size] at offset 0. The write is padded with zeros to
// a multiple of 4 bytes; the padding never passes the allocation. Inside a
// frame the write is ordered with the frame's draws. A failed write fails
// the current frame, or the next one when no frame is in progress.
func (v *vertexBuffer) Update(size int, data []byte) {
	rhi.CheckLive("VertexBuffer.Update", v.kind, v.live())
	rhi.CheckUpdate(v.capacity, size, data)
	if size == 0 {
		return
	}
	payload := data[:size]
	if n := align4(size); n != size {
		if cap(v.scratch) < n {
			v.scratch = make([]byte, n)
		}
		v.scratch = v.scratch[:n]
		copy(v.scratch, payload)
		clear(v.scratch[size:])
		payload = v.scratch
	}
	if err := v.b.upload(v.buf, payload); err != nil {
		v.b.fail(err)
	}
}

func (v *vertexBuffer) Size() int { return v.capacity }

func (v *vertexBuffer) Destroy() {
	v.markDestroyed()
	v.b.device.DestroyBuffer(v.buf)
	v.buf = nil
}

// texture is a sampled texture with its default view.
type texture struct {
	resource
	tex    hal.Texture
	view   hal.TextureView
	width  int
	height int
	format gputypes.TextureFormat
}

func (t *texture) Format() gputypes.TextureFormat { return t.format }

func (t *texture) Destroy() {
	t.markDestroyed()
	if t.view != nil {
		t.b.device.DestroyTextureView(t.view)
		t.view = nil
	}
	t.b.device.DestroyTexture(t.tex)
	t.tex = nil
}

type texture2D struct {
	texture
}

func (t *texture2D) Width() int  { return t.width }
func (t *texture2D) Height() int { return t.height }

type textureCube struct {
	texture
}

func (t *textureCube) Size() int { return t.width }

// newTexture creates a 2D texture or a six-layer cube and uploads the
// initial pixels in a single write.
func (b *Backend) newTexture(desc rhi.Descriptor) (rhi.Resource, error) {
	bpp := rhi.FormatBytesPerPixel(desc.Format)
	if bpp == 0 {
		return nil, fmt.Errorf("%w: %v", rhi.ErrUnsupportedFormat, desc.Format)
	}
	w, h, layers := desc.Extent()
	size := hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: uint32(layers)}

	tex, err := b.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create texture: %w", err)
	}

	viewDim := gputypes.TextureViewDimension2D
	if desc.Kind == rhi.KindTextureCube {
		viewDim = gputypes.TextureViewDimensionCube
	}
	view, err := b.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:           desc.Label + "_view",
		Format:          desc.Format,
		Dimension:       viewDim,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: uint32(layers),
	})
	if err != nil {
		b.device.DestroyTexture(tex)
		return nil, fmt.Errorf("wgpu: create texture view: %w", err)
	}

	if desc.Pixels != nil {
		err := b.queue.WriteTexture(
			&hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
			desc.Pixels,
			&hal.ImageDataLayout{
				Offset:       0,
				BytesPerRow:  uint32(w * bpp),
				RowsPerImage: uint32(h),
			},
			&size,
		)
		if err != nil {
			b.device.DestroyTextureView(view)
			b.device.DestroyTexture(tex)
			return nil, fmt.Errorf("wgpu: upload texture pixels: %w", err)
		}
	}

	fill := func(t *texture) {
		t.tex, t.view = tex, view
		t.width, t.height, t.format = w, h, desc.Format
		t.init(b, desc)
	}
	if desc.Kind == rhi.KindTexture2D {
		t := &texture2D{}
		fill(&t.texture)
		return t, nil
	}
	t := &textureCube{}
	fill(&t.texture)
	return t, nil
}

func align4(n int) int { return (n + 3) &^ 3 }

var (
	_ rhi.State        = (*state)(nil)
	_ rhi.VertexBuffer = (*vertexBuffer)(nil)
	_ rhi.Texture2D    = (*texture2D)(nil)
	_ rhi.TextureCube  = (*textureCube)(nil)
)
