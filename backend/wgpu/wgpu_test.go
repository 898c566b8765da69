// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/rhi"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

// newTestBackend creates a 64x64 backend on a noop device.
func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	b, err := NewWithDevice(device, queue, Config{Width: 64, Height: 64})
	if err != nil {
		cleanup()
		t.Fatalf("NewWithDevice failed: %v", err)
	}
	t.Cleanup(func() {
		_ = b.Close()
		cleanup()
	})
	return b
}

func programmingPanic(t *testing.T, fn func()) *rhi.ProgrammingError {
	t.Helper()
	var pe *rhi.ProgrammingError
	func() {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			var ok bool
			if pe, ok = r.(*rhi.ProgrammingError); !ok {
				t.Fatalf("panic value = %T (%v), want *rhi.ProgrammingError", r, r)
			}
		}()
		fn()
	}()
	if pe == nil {
		t.Fatal("expected panic")
	}
	return pe
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Config
		want Config
	}{
		{"zero", Config{}, DefaultConfig()},
		{
			"custom",
			Config{Width: 32, Height: 16, Format: gputypes.TextureFormatRGBA8Unorm, FenceTimeout: time.Second},
			Config{Width: 32, Height: 16, Format: gputypes.TextureFormatRGBA8Unorm, FenceTimeout: time.Second},
		},
		{
			"negative timeout",
			Config{Width: 8, Height: 8, FenceTimeout: -time.Second},
			Config{Width: 8, Height: 8, Format: gputypes.TextureFormatBGRA8Unorm, FenceTimeout: DefaultFenceTimeout},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.normalize(); got != tt.want {
				t.Errorf("normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStateKey(t *testing.T) {
	tests := []struct {
		kind rhi.Kind
		want stateKey
	}{
		{rhi.KindBlendState, keyBlend},
		{rhi.KindDepthTestState, keyDepth},
		{rhi.KindFaceCullingState, keyCull},
		{rhi.KindStencilTestState, keyStencil},
		{rhi.KindVertexBuffer, 0},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := keyFor(tt.kind); got != tt.want {
				t.Errorf("keyFor(%v) = %v, want %v", tt.kind, got, tt.want)
			}
		})
	}

	if got := stateKey(0).String(); got != "none" {
		t.Errorf("String() = %q, want none", got)
	}
	if got := (keyBlend | keyStencil).String(); got != "blend|stencil" {
		t.Errorf("String() = %q, want blend|stencil", got)
	}
}

func TestCompileSPIRV(t *testing.T) {
	words, err := compileSPIRV(drawShaderSource)
	if err != nil {
		t.Fatalf("compileSPIRV failed: %v", err)
	}
	if words[0] != spirvMagic {
		t.Errorf("magic = %#x, want %#x", words[0], spirvMagic)
	}

	if _, err := compileSPIRV("fn broken("); err == nil {
		t.Error("expected error for invalid WGSL")
	}
}

func TestDrawVertexLayout(t *testing.T) {
	layout := drawVertexLayout()
	if len(layout) != 1 {
		t.Fatalf("len(layout) = %d, want 1", len(layout))
	}
	if layout[0].ArrayStride != VertexStride {
		t.Errorf("ArrayStride = %d, want %d", layout[0].ArrayStride, VertexStride)
	}
	attrs := layout[0].Attributes
	last := attrs[len(attrs)-1]
	if end := last.Offset + 16; end != VertexStride {
		t.Errorf("attributes end at %d, want %d", end, VertexStride)
	}
}

func TestPipelineCache(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	c, err := newPipelineCache(device, gputypes.TextureFormatBGRA8Unorm)
	if err != nil {
		t.Fatalf("newPipelineCache failed: %v", err)
	}
	defer c.destroy()

	p1, err := c.get(keyBlend | keyDepth)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	p2, err := c.get(keyBlend | keyDepth)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if p1 != p2 {
		t.Error("same key returned different pipelines")
	}

	for k := range stateKey(keyCount) {
		if _, err := c.get(k); err != nil {
			t.Fatalf("get(%v) failed: %v", k, err)
		}
	}
	stats := c.stats()
	if stats.Entries != keyCount {
		t.Errorf("Entries = %d, want %d", stats.Entries, keyCount)
	}
	if stats.Misses != keyCount {
		t.Errorf("Misses = %d, want %d", stats.Misses, keyCount)
	}
	if stats.Hits != 2 {
		t.Errorf("Hits = %d, want 2", stats.Hits)
	}
	if !strings.Contains(stats.String(), "16 entries") {
		t.Errorf("String() = %q", stats.String())
	}
}

func TestPipelineCacheDestroyed(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	c, err := newPipelineCache(device, gputypes.TextureFormatBGRA8Unorm)
	if err != nil {
		t.Fatalf("newPipelineCache failed: %v", err)
	}
	c.destroy()
	if _, err := c.get(keyCull); !errors.Is(err, errCacheDestroyed) {
		t.Errorf("get after destroy: err = %v, want %v", err, errCacheDestroyed)
	}
}

func TestPipelineDescriptor(t *testing.T) {
	c := &pipelineCache{format: gputypes.TextureFormatRGBA8Unorm}

	tests := []struct {
		name        string
		key         stateKey
		blend       bool
		depthWrite  bool
		depth       gputypes.CompareFunction
		cull        gputypes.CullMode
		stencilMask uint32
	}{
		{"none", 0, false, false, gputypes.CompareFunctionAlways, gputypes.CullModeNone, 0},
		{"blend", keyBlend, true, false, gputypes.CompareFunctionAlways, gputypes.CullModeNone, 0},
		{"depth", keyDepth, false, true, gputypes.CompareFunctionLess, gputypes.CullModeNone, 0},
		{"cull", keyCull, false, false, gputypes.CompareFunctionAlways, gputypes.CullModeBack, 0},
		{"stencil", keyStencil, false, false, gputypes.CompareFunctionAlways, gputypes.CullModeNone, 0xFF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := c.describe(tt.key)
			target := d.Fragment.Targets[0]
			if (target.Blend != nil) != tt.blend {
				t.Errorf("blend set = %v, want %v", target.Blend != nil, tt.blend)
			}
			if target.Format != gputypes.TextureFormatRGBA8Unorm {
				t.Errorf("target format = %v", target.Format)
			}
			ds := d.DepthStencil
			if ds.DepthWriteEnabled != tt.depthWrite || ds.DepthCompare != tt.depth {
				t.Errorf("depth = (%v, %v), want (%v, %v)", ds.DepthWriteEnabled, ds.DepthCompare, tt.depthWrite, tt.depth)
			}
			if uint32(ds.StencilWriteMask) != tt.stencilMask {
				t.Errorf("StencilWriteMask = %#x, want %#x", ds.StencilWriteMask, tt.stencilMask)
			}
			if d.Primitive.CullMode != tt.cull {
				t.Errorf("CullMode = %v, want %v", d.Primitive.CullMode, tt.cull)
			}
		})
	}
}

func TestBackendFrame(t *testing.T) {
	b := newTestBackend(t)
	dev := rhi.NewDevice(b)

	vb, err := dev.CreateVertexBuffer(3 * VertexStride)
	if err != nil {
		t.Fatalf("CreateVertexBuffer failed: %v", err)
	}
	blend, err := dev.CreateState(rhi.KindBlendState)
	if err != nil {
		t.Fatalf("CreateState failed: %v", err)
	}

	if err := b.BeginFrame(); err != nil {
		t.Fatalf("BeginFrame failed: %v", err)
	}
	if err := b.BeginFrame(); !errors.Is(err, errFrameInProgress) {
		t.Errorf("second BeginFrame: err = %v, want %v", err, errFrameInProgress)
	}
	blend.Get().Enable()
	if b.active != keyBlend {
		t.Errorf("active = %v, want blend", b.active)
	}
	vb.Get().Update(3*VertexStride, make([]byte, 3*VertexStride))
	b.Draw(vb.Get(), rhi.DrawParams{VertexCount: 3})
	b.Draw(vb.Get(), rhi.DrawParams{VertexCount: 3})
	if err := b.EndFrame(); err != nil {
		t.Fatalf("EndFrame failed: %v", err)
	}

	stats := b.Stats()
	if stats.Frames != 1 || stats.Draws != 2 {
		t.Errorf("Stats = %v, want 1 frame and 2 draws", stats)
	}
	if stats.Pipelines.Misses != 1 || stats.Pipelines.Hits != 1 {
		t.Errorf("Pipelines = %v, want 1 miss and 1 hit", stats.Pipelines)
	}
	if stats.Live != 2 {
		t.Errorf("Live = %d, want 2", stats.Live)
	}

	// A new frame starts with every state disabled.
	if err := b.BeginFrame(); err != nil {
		t.Fatalf("BeginFrame failed: %v", err)
	}
	if b.active != 0 {
		t.Errorf("active = %v after BeginFrame, want none", b.active)
	}
	if err := b.EndFrame(); err != nil {
		t.Fatalf("EndFrame failed: %v", err)
	}

	vb.Release()
	blend.Release()
	if n := dev.CollectGarbage(); n != 2 {
		t.Errorf("CollectGarbage() = %d, want 2", n)
	}
	if live := b.Stats().Live; live != 0 {
		t.Errorf("Live = %d after collect, want 0", live)
	}
}

func TestBackendSnapshot(t *testing.T) {
	b := newTestBackend(t)

	if err := b.BeginFrame(); err != nil {
		t.Fatalf("BeginFrame failed: %v", err)
	}
	if _, err := b.Snapshot(); !errors.Is(err, errFrameInProgress) {
		t.Errorf("Snapshot during frame: err = %v, want %v", err, errFrameInProgress)
	}
	if err := b.EndFrame(); err != nil {
		t.Fatalf("EndFrame failed: %v", err)
	}

	img, err := b.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if got := img.Bounds().Dx(); got != 64 {
		t.Errorf("width = %d, want 64", got)
	}
	if got := img.Bounds().Dy(); got != 64 {
		t.Errorf("height = %d, want 64", got)
	}
}

func TestBackendTextures(t *testing.T) {
	b := newTestBackend(t)
	dev := rhi.NewDevice(b)
	defer dev.Close()

	tex, err := dev.CreateTexture2D(8, 4, gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		t.Fatalf("CreateTexture2D failed: %v", err)
	}
	if w, h := tex.Get().Width(), tex.Get().Height(); w != 8 || h != 4 {
		t.Errorf("size = %dx%d, want 8x4", w, h)
	}
	tex.Release()

	pixels := make([]byte, 6*2*2*4)
	cube, err := dev.Create(rhi.TextureCubeDescriptor(2, gputypes.TextureFormatBGRA8Unorm).WithPixels(pixels))
	if err != nil {
		t.Fatalf("create cube failed: %v", err)
	}
	tc, ok := rhi.As[rhi.TextureCube](cube)
	if !ok {
		t.Fatal("cube does not implement TextureCube")
	}
	if tc.Get().Size() != 2 {
		t.Errorf("Size() = %d, want 2", tc.Get().Size())
	}
	tc.Release()

	_, err = dev.CreateTexture2D(4, 4, gputypes.TextureFormatDepth24PlusStencil8)
	if !errors.Is(err, rhi.ErrUnsupportedFormat) {
		t.Errorf("depth format: err = %v, want %v", err, rhi.ErrUnsupportedFormat)
	}
}

func TestVertexBufferUpdatePadding(t *testing.T) {
	b := newTestBackend(t)
	res, err := b.CreateResource(rhi.VertexBufferDescriptor(5))
	if err != nil {
		t.Fatalf("CreateResource failed: %v", err)
	}
	v := res.(*vertexBuffer)
	defer v.Destroy()

	v.Update(5, []byte{1, 2, 3, 4, 5})
	if len(v.scratch) != 8 {
		t.Errorf("padded write = %d bytes, want 8", len(v.scratch))
	}
	if v.Size() != 5 {
		t.Errorf("Size() = %d, want declared capacity 5", v.Size())
	}

	pe := programmingPanic(t, func() { v.Update(6, make([]byte, 6)) })
	if !errors.Is(pe, rhi.ErrCapacityExceeded) {
		t.Errorf("err = %v, want %v", pe, rhi.ErrCapacityExceeded)
	}
}

func TestBackendDrawMisuse(t *testing.T) {
	b := newTestBackend(t)
	res, err := b.CreateResource(rhi.VertexBufferDescriptor(VertexStride))
	if err != nil {
		t.Fatalf("CreateResource failed: %v", err)
	}
	vb := res.(rhi.VertexBuffer)

	pe := programmingPanic(t, func() { b.Draw(vb, rhi.DrawParams{VertexCount: 1}) })
	if !errors.Is(pe, errNoFrame) {
		t.Errorf("outside frame: err = %v, want %v", pe, errNoFrame)
	}

	if err := b.BeginFrame(); err != nil {
		t.Fatalf("BeginFrame failed: %v", err)
	}
	pe = programmingPanic(t, func() { b.Draw(vb, rhi.DrawParams{VertexCount: 2}) })
	if !errors.Is(pe, rhi.ErrCapacityExceeded) {
		t.Errorf("past capacity: err = %v, want %v", pe, rhi.ErrCapacityExceeded)
	}

	vb.Destroy()
	pe = programmingPanic(t, func() { b.Draw(vb, rhi.DrawParams{VertexCount: 1}) })
	if !errors.Is(pe, rhi.ErrUninitialized) {
		t.Errorf("destroyed buffer: err = %v, want %v", pe, rhi.ErrUninitialized)
	}
	if err := b.EndFrame(); err != nil {
		t.Fatalf("EndFrame failed: %v", err)
	}
	if err := b.EndFrame(); !errors.Is(err, errNoFrame) {
		t.Errorf("EndFrame without frame: err = %v, want %v", err, errNoFrame)
	}
}

func TestBackendClose(t *testing.T) {
	b := newTestBackend(t)
	if err := b.BeginFrame(); err != nil {
		t.Fatalf("BeginFrame failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if _, err := b.CreateResource(rhi.StateDescriptor(rhi.KindBlendState)); !errors.Is(err, rhi.ErrBackendClosed) {
		t.Errorf("CreateResource after Close: err = %v, want %v", err, rhi.ErrBackendClosed)
	}
	if err := b.BeginFrame(); !errors.Is(err, rhi.ErrBackendClosed) {
		t.Errorf("BeginFrame after Close: err = %v, want %v", err, rhi.ErrBackendClosed)
	}
}

func TestNewWithDeviceNil(t *testing.T) {
	if _, err := NewWithDevice(nil, nil, DefaultConfig()); !errors.Is(err, ErrNoDevice) {
		t.Errorf("err = %v, want %v", err, ErrNoDevice)
	}
}

// halDeviceProvider is a device provider exposing HAL types.
type halDeviceProvider struct {
	device hal.Device
	queue  hal.Queue
	format gputypes.TextureFormat
}

func (p halDeviceProvider) Device() gpucontext.Device   { return nil }
func (p halDeviceProvider) Queue() gpucontext.Queue     { return nil }
func (p halDeviceProvider) Adapter() gpucontext.Adapter { return nil }
func (p halDeviceProvider) HalDevice() any              { return p.device }
func (p halDeviceProvider) HalQueue() any               { return p.queue }

func (p halDeviceProvider) SurfaceFormat() gputypes.TextureFormat { return p.format }

func (p halDeviceProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "noop", Type: gpucontext.AdapterTypeSoftware}
}

// plainProvider has no HAL accessors.
type plainProvider struct{}

func (plainProvider) Device() gpucontext.Device             { return nil }
func (plainProvider) Queue() gpucontext.Queue               { return nil }
func (plainProvider) Adapter() gpucontext.Adapter           { return nil }
func (plainProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatUndefined }

func (plainProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Type: gpucontext.AdapterTypeUnknown}
}

func TestNewFromProvider(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p := halDeviceProvider{device: device, queue: queue, format: gputypes.TextureFormatRGBA8Unorm}
	b, err := NewFromProvider(p, Config{Width: 16, Height: 16})
	if err != nil {
		t.Fatalf("NewFromProvider failed: %v", err)
	}
	defer b.Close()
	if got := b.Config().Format; got != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("Format = %v, want surface format RGBA8Unorm", got)
	}

	if _, err := NewFromProvider(plainProvider{}, DefaultConfig()); !errors.Is(err, ErrNoDevice) {
		t.Errorf("plain provider: err = %v, want %v", err, ErrNoDevice)
	}
}

func TestRegistered(t *testing.T) {
	if !rhi.IsRegistered(Name) {
		t.Errorf("backend %q not registered", Name)
	}
}
