// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rhi

import (
	"sync/atomic"

	"github.com/gogpu/gputypes"
)

// Device is the resource factory boundary. It validates descriptors, asks
// the Backend to create resources and wraps every result in a Handle whose
// final release is deferred to the device's ReleaseQueue.
//
// Create methods are safe for concurrent use. CollectGarbage and Close
// must be called from the render goroutine.
type Device struct {
	backend  Backend
	releases *ReleaseQueue
	closed   atomic.Bool
}

// DeviceOption configures a Device.
type DeviceOption func(*Device)

// WithReleaseQueue makes the device defer destruction to q instead of a
// queue of its own.
func WithReleaseQueue(q *ReleaseQueue) DeviceOption {
	return func(d *Device) {
		if q != nil {
			d.releases = q
		}
	}
}

// NewDevice wraps backend. It panics if backend is nil.
func NewDevice(backend Backend, opts ...DeviceOption) *Device {
	if backend == nil {
		panic("rhi: NewDevice backend is nil")
	}
	d := &Device{backend: backend}
	for _, opt := range opts {
		opt(d)
	}
	if d.releases == nil {
		d.releases = NewReleaseQueue()
	}
	return d
}

// Backend returns the wrapped backend.
func (d *Device) Backend() Backend { return d.backend }

// Releases returns the device's release queue.
func (d *Device) Releases() *ReleaseQueue { return d.releases }

// Create creates a resource for desc and returns an owning handle with a
// reference count of one. On failure it returns a *CreationError and no
// handle.
func (d *Device) Create(desc Descriptor) (Handle[Resource], error) {
	if d.closed.Load() {
		return Handle[Resource]{}, &CreationError{Kind: desc.Kind, Label: desc.Label, Err: ErrBackendClosed}
	}
	if err := desc.Validate(); err != nil {
		return Handle[Resource]{}, err
	}
	res, err := d.backend.CreateResource(desc)
	if err != nil {
		return Handle[Resource]{}, newCreationError(desc, err)
	}
	if res == nil || res.Kind() != desc.Kind || !implements(desc.Kind, res) {
		if res != nil {
			// Never wrapped, so no handle can reach it: hand it straight to
			// the render goroutine.
			d.releases.Defer(res)
		}
		return Handle[Resource]{}, &CreationError{Kind: desc.Kind, Label: desc.Label, Err: ErrKindMismatch}
	}
	return newHandle[Resource](res, d.releases), nil
}

// implements reports whether res satisfies the contract of kind.
func implements(kind Kind, res Resource) bool {
	var ok bool
	switch {
	case kind.IsState():
		_, ok = res.(State)
	case kind == KindVertexBuffer:
		_, ok = res.(VertexBuffer)
	case kind == KindTexture2D:
		_, ok = res.(Texture2D)
	case kind == KindTextureCube:
		_, ok = res.(TextureCube)
	}
	return ok
}

// create is the typed form of Create.
func create[T Resource](d *Device, desc Descriptor) (Handle[T], error) {
	h, err := d.Create(desc)
	if err != nil {
		return Handle[T]{}, err
	}
	t, _ := As[T](h)
	return t, nil
}

// CreateVertexBuffer creates a vertex buffer of capacity bytes.
func (d *Device) CreateVertexBuffer(capacity int) (Handle[VertexBuffer], error) {
	return create[VertexBuffer](d, VertexBufferDescriptor(capacity))
}

// CreateTexture2D creates a width x height texture.
func (d *Device) CreateTexture2D(width, height int, format gputypes.TextureFormat) (Handle[Texture2D], error) {
	return create[Texture2D](d, Texture2DDescriptor(width, height, format))
}

// CreateTextureCube creates a cube map with size x size faces.
func (d *Device) CreateTextureCube(size int, format gputypes.TextureFormat) (Handle[TextureCube], error) {
	return create[TextureCube](d, TextureCubeDescriptor(size, format))
}

// CreateState creates a fixed-function state of the given kind.
func (d *Device) CreateState(kind Kind) (Handle[State], error) {
	if !kind.IsState() {
		return Handle[State]{}, &CreationError{Kind: kind, Err: ErrUnsupportedKind}
	}
	return create[State](d, StateDescriptor(kind))
}

// CollectGarbage destroys resources whose last handle was released.
// It must be called from the render goroutine.
func (d *Device) CollectGarbage() int {
	return d.releases.Drain()
}

// Close stops resource creation, destroys all released resources and
// closes the backend. Handles still alive at this point leak; their later
// release is logged. Close must be called from the render goroutine.
func (d *Device) Close() error {
	if d.closed.Swap(true) {
		return nil
	}
	d.releases.Close()
	return d.backend.Close()
}
