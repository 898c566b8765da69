// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rhi

import "github.com/gogpu/gputypes"

// Resource is the common contract of every GPU resource.
//
// Resources are created only by a Backend through Device and are always
// wrapped in a Handle immediately; no API hands out a bare Resource.
// Destroy releases the backend handle. It is called exactly once by the
// release machinery, on the goroutine that owns the graphics context.
type Resource interface {
	// Kind returns the resource kind.
	Kind() Kind

	// Label returns the debug label given at creation.
	Label() string

	// Destroy releases the backend storage.
	Destroy()
}

// State is a fixed-function pipeline toggle (blend, depth test, face
// culling, stencil test).
type State interface {
	Resource

	// Enable makes this state active for subsequent draws.
	// Calling Enable on a destroyed state panics with a *ProgrammingError.
	Enable()
}

// VertexBuffer is a GPU buffer with a capacity fixed at creation.
type VertexBuffer interface {
	Resource

	// Update replaces the first size bytes of the buffer with data[:size].
	// A size larger than Size() panics with a *ProgrammingError wrapping
	// ErrCapacityExceeded.
	Update(size int, data []byte)

	// Size returns the capacity declared at creation, in bytes.
	// Partial updates do not change it.
	Size() int
}

// Texture2D is an immutable two-dimensional texture.
type Texture2D interface {
	Resource
	Width() int
	Height() int
	Format() gputypes.TextureFormat
}

// TextureCube is an immutable cube map; Size is the edge length of a face.
type TextureCube interface {
	Resource
	Size() int
	Format() gputypes.TextureFormat
}

// DrawParams are the draw call arguments carried by a render queue node.
type DrawParams struct {
	// FirstVertex is the index of the first vertex to draw.
	FirstVertex uint32

	// VertexCount is the number of vertices to draw.
	VertexCount uint32

	// InstanceCount is the number of instances. Zero is treated as one.
	InstanceCount uint32
}

// Instances returns InstanceCount, or 1 when it is zero.
func (p DrawParams) Instances() uint32 {
	if p.InstanceCount == 0 {
		return 1
	}
	return p.InstanceCount
}
