// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package soft

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/gogpu/rhi"
)

// Name is the registry name of the software backend.
const Name = "soft"

// errNoFrame is raised when drawing outside BeginFrame/EndFrame.
var errNoFrame = errors.New("soft: no frame in progress")

// init registers the software backend on package import.
func init() {
	rhi.Register(Name, func() (rhi.Backend, error) {
		return New(), nil
	})
}

// Backend is the CPU reference backend.
//
// CreateResource and the inspection methods are safe for concurrent use.
// Frame methods and resource capabilities belong to the render goroutine.
type Backend struct {
	mu        sync.Mutex
	events    []Event
	active    []rhi.Kind
	inFrame   bool
	closed    bool
	frameErr  error
	frames    uint64
	created   atomic.Uint64
	destroyed atomic.Uint64
}

// New creates a software backend.
func New() *Backend {
	return &Backend{}
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return Name }

// CreateResource creates a host-memory resource for desc.
func (b *Backend) CreateResource(desc rhi.Descriptor) (rhi.Resource, error) {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return nil, rhi.ErrBackendClosed
	}

	var (
		res  rhi.Resource
		size int
	)
	switch {
	case desc.Kind.IsState():
		s := &state{}
		s.init(b, desc)
		res = s
	case desc.Kind == rhi.KindVertexBuffer:
		size = desc.Capacity
		v := &vertexBuffer{data: make([]byte, desc.Capacity)}
		v.init(b, desc)
		res = v
	case desc.Kind.IsTexture():
		bpp := rhi.FormatBytesPerPixel(desc.Format)
		if bpp == 0 {
			return nil, fmt.Errorf("%w: %v", rhi.ErrUnsupportedFormat, desc.Format)
		}
		w, h, layers := desc.Extent()
		size = w * h * layers * bpp
		pixels := make([]byte, size)
		copy(pixels, desc.Pixels)
		if desc.Kind == rhi.KindTexture2D {
			t := &texture2D{width: w, height: h, format: desc.Format, pixels: pixels}
			t.init(b, desc)
			res = t
		} else {
			t := &textureCube{size: w, format: desc.Format, pixels: pixels}
			t.init(b, desc)
			res = t
		}
	default:
		return nil, rhi.ErrUnsupportedKind
	}

	b.created.Add(1)
	b.record(Event{Op: OpCreate, Kind: desc.Kind, Label: desc.Label, Size: size})
	return res, nil
}

// BeginFrame starts a frame with every state disabled.
func (b *Backend) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return rhi.ErrBackendClosed
	}
	if err := b.frameErr; err != nil {
		b.frameErr = nil
		return err
	}
	b.inFrame = true
	b.active = b.active[:0]
	b.events = append(b.events, Event{Op: OpBeginFrame})
	return nil
}

// Draw records a draw of vb with the states enabled so far.
func (b *Backend) Draw(vb rhi.VertexBuffer, params rhi.DrawParams) {
	v, ok := vb.(*vertexBuffer)
	if !ok || v.b != b {
		rhi.Fatal("Backend.Draw", rhi.ErrUninitialized, "vertex buffer from another backend")
	}
	rhi.CheckLive("Backend.Draw", v.kind, v.live())

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.inFrame {
		rhi.Fatal("Backend.Draw", errNoFrame, "")
	}
	b.events = append(b.events, Event{
		Op:     OpDraw,
		Kind:   v.kind,
		Label:  v.label,
		Size:   len(v.data),
		Params: params,
		States: slices.Clone(b.active),
	})
}

// EndFrame finishes the frame.
func (b *Backend) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.inFrame {
		return errNoFrame
	}
	b.inFrame = false
	b.frames++
	b.events = append(b.events, Event{Op: OpEndFrame})
	return nil
}

// Close marks the backend closed. Later creations fail with
// rhi.ErrBackendClosed.
func (b *Backend) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	return nil
}

// FailNextFrame makes the next BeginFrame return err.
func (b *Backend) FailNextFrame(err error) {
	b.mu.Lock()
	b.frameErr = err
	b.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (b *Backend) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.events)
}

// Reset clears the recorded events.
func (b *Backend) Reset() {
	b.mu.Lock()
	b.events = b.events[:0]
	b.mu.Unlock()
}

// Frames returns the number of completed frames.
func (b *Backend) Frames() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frames
}

// Created returns the number of resources created.
func (b *Backend) Created() uint64 { return b.created.Load() }

// Destroyed returns the number of resources destroyed.
func (b *Backend) Destroyed() uint64 { return b.destroyed.Load() }

// Live returns the number of resources created and not yet destroyed.
func (b *Backend) Live() int { return int(b.created.Load() - b.destroyed.Load()) }

func (b *Backend) record(e Event) {
	b.mu.Lock()
	b.events = append(b.events, e)
	b.mu.Unlock()
}

// enable adds kind to the active set once per frame.
func (b *Backend) enable(kind rhi.Kind, label string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !slices.Contains(b.active, kind) {
		b.active = append(b.active, kind)
	}
	b.events = append(b.events, Event{Op: OpEnable, Kind: kind, Label: label})
}

var _ rhi.Backend = (*Backend)(nil)
