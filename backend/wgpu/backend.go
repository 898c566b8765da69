// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"
	"image"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/rhi"
	"github.com/gogpu/wgpu/hal"

	// Register the Vulkan HAL backend used by New.
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Name is the registry name of the wgpu backend.
const Name = "wgpu"

var (
	// ErrNoDevice is returned when no usable GPU device is available.
	ErrNoDevice = errors.New("wgpu: no GPU device")

	// ErrFenceTimeout is returned when a submission does not complete
	// within Config.FenceTimeout.
	ErrFenceTimeout = errors.New("wgpu: timed out waiting for frame")

	errNoFrame         = errors.New("wgpu: no frame in progress")
	errFrameInProgress = errors.New("wgpu: frame already in progress")
	errSnapshotFormat  = errors.New("wgpu: snapshot needs a 4-byte color format")
)

// init registers the backend with a device of its own on package import.
func init() {
	rhi.Register(Name, func() (rhi.Backend, error) {
		b, err := New(DefaultConfig())
		if err != nil {
			return nil, err
		}
		return b, nil
	})
}

// pollInterval is the sleep between submission completion checks.
const pollInterval = 100 * time.Microsecond

// BackendStats contains backend counters.
type BackendStats struct {
	Frames    uint64
	Draws     uint64
	Uploads   uint64 // vertex uploads recorded inside frames
	Passes    uint64 // render passes begun
	Live      int
	Staging   uint64 // staging bytes held for uploads
	Pipelines CacheStats
}

// String returns a human-readable string of backend stats.
func (s BackendStats) String() string {
	return fmt.Sprintf("Backend[%d frames, %d draws, %d uploads, %d passes, %d live resources, %s]",
		s.Frames, s.Draws, s.Uploads, s.Passes, s.Live, s.Pipelines)
}

// Backend renders rhi frames with a wgpu HAL device.
//
// A vertex buffer update inside a frame is recorded in the frame's command
// stream: the render pass is ended, a copy from a staging region is
// recorded, and the next draw resumes the pass. Each draw therefore reads
// the contents written by the last update before it. Updates outside a
// frame are written to the buffer directly.
//
// CreateResource is safe for concurrent use. Frame methods, Snapshot and
// resource capabilities belong to the render goroutine.
type Backend struct {
	cfg      Config
	instance hal.Instance // nil when the device is borrowed
	device   hal.Device
	queue    hal.Queue
	owned    bool

	target    *target
	pipelines *pipelineCache
	staging   stagingArena

	// Frame state. pass is nil between an in-frame upload and the next draw.
	encoder  hal.CommandEncoder
	pass     hal.RenderPassEncoder
	bound    hal.RenderPipeline
	active   stateKey
	frameErr error

	// pendingErr is a failed update made outside a frame. The next frame
	// fails with it.
	pendingErr error

	frames  atomic.Uint64
	draws   atomic.Uint64
	uploads atomic.Uint64
	passes  atomic.Uint64
	live    atomic.Int64
	closed  atomic.Bool
}

// New opens a Vulkan device of its own, preferring a discrete or
// integrated GPU, and creates a backend on it.
func New(cfg Config) (*Backend, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not available", ErrNoDevice)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: no adapters found", ErrNoDevice)
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open device: %w", err)
	}

	b, err := newBackend(openDev.Device, openDev.Queue, cfg)
	if err != nil {
		openDev.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	b.instance = instance
	b.owned = true
	rhi.Logger().Info("wgpu: device opened", "adapter", selected.Info.Name)
	return b, nil
}

// NewWithDevice creates a backend on a device owned by the caller.
// Close leaves the device open.
func NewWithDevice(device hal.Device, queue hal.Queue, cfg Config) (*Backend, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("%w: nil device or queue", ErrNoDevice)
	}
	return newBackend(device, queue, cfg)
}

// NewFromProvider creates a backend on the device shared by a host
// application. The provider must also expose HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue. When cfg.Format is
// undefined the provider's surface format is used.
func NewFromProvider(provider gpucontext.DeviceProvider, cfg Config) (*Backend, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("%w: provider does not expose HAL types", ErrNoDevice)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: provider HalDevice is not hal.Device", ErrNoDevice)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: provider HalQueue is not hal.Queue", ErrNoDevice)
	}
	if cfg.Format == gputypes.TextureFormatUndefined {
		cfg.Format = provider.SurfaceFormat()
	}
	return newBackend(device, queue, cfg)
}

func newBackend(device hal.Device, queue hal.Queue, cfg Config) (*Backend, error) {
	cfg = cfg.normalize()
	b := &Backend{cfg: cfg, device: device, queue: queue}

	var err error
	if b.target, err = newTarget(device, cfg); err != nil {
		return nil, err
	}
	if b.pipelines, err = newPipelineCache(device, cfg.Format); err != nil {
		b.target.destroy(device)
		return nil, err
	}
	return b, nil
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return Name }

// Config returns the normalized configuration.
func (b *Backend) Config() Config { return b.cfg }

// CreateResource creates a GPU resource for desc.
func (b *Backend) CreateResource(desc rhi.Descriptor) (rhi.Resource, error) {
	if b.closed.Load() {
		return nil, rhi.ErrBackendClosed
	}

	var (
		res rhi.Resource
		err error
	)
	switch {
	case desc.Kind.IsState():
		s := &state{bit: keyFor(desc.Kind)}
		s.init(b, desc)
		res = s
	case desc.Kind == rhi.KindVertexBuffer:
		res, err = b.newVertexBuffer(desc)
	case desc.Kind.IsTexture():
		res, err = b.newTexture(desc)
	default:
		err = rhi.ErrUnsupportedKind
	}
	if err != nil {
		return nil, err
	}
	b.live.Add(1)
	return res, nil
}

// BeginFrame starts a render pass with every state disabled.
func (b *Backend) BeginFrame() error {
	if b.closed.Load() {
		return rhi.ErrBackendClosed
	}
	if b.encoder != nil {
		return errFrameInProgress
	}

	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "rhi_frame_encoder",
	})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("rhi_frame"); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	b.staging.reset()
	b.encoder = encoder
	b.active = 0
	b.frameErr, b.pendingErr = b.pendingErr, nil
	b.beginPass(false)
	return nil
}

func (b *Backend) beginPass(resume bool) {
	b.pass = b.encoder.BeginRenderPass(b.target.passDescriptor(resume))
	b.bound = nil
	b.passes.Add(1)
}

func (b *Backend) endPass() {
	if b.pass != nil {
		b.pass.End()
		b.pass = nil
	}
}

// Draw records a draw of vb with the pipeline for the enabled states.
// A pipeline that cannot be built fails the frame at EndFrame.
func (b *Backend) Draw(vb rhi.VertexBuffer, params rhi.DrawParams) {
	v, ok := vb.(*vertexBuffer)
	if !ok || v.b != b {
		rhi.Fatal("Backend.Draw", rhi.ErrUninitialized, "vertex buffer from another backend")
	}
	rhi.CheckLive("Backend.Draw", v.kind, v.live())
	if b.encoder == nil {
		rhi.Fatal("Backend.Draw", errNoFrame, "")
	}
	if end := (uint64(params.FirstVertex) + uint64(params.VertexCount)) * VertexStride; end > uint64(v.capacity) {
		rhi.Fatal("Backend.Draw", rhi.ErrCapacityExceeded, "vertices end at byte %d > capacity %d", end, v.capacity)
	}
	if b.frameErr != nil {
		return
	}

	pipeline, err := b.pipelines.get(b.active)
	if err != nil {
		b.frameErr = err
		return
	}
	if b.pass == nil {
		b.beginPass(true)
	}
	if pipeline != b.bound {
		b.pass.SetPipeline(pipeline)
		b.bound = pipeline
	}
	b.pass.SetVertexBuffer(0, v.buf, 0)
	b.pass.Draw(params.VertexCount, params.Instances(), params.FirstVertex, 0)
	b.draws.Add(1)
}

// upload writes payload to the start of dst. len(payload) must be a
// multiple of 4. Inside a frame the write becomes a copy in the command
// stream, so draws recorded before it keep reading the previous contents.
func (b *Backend) upload(dst hal.Buffer, payload []byte) error {
	if b.encoder == nil {
		if err := b.queue.WriteBuffer(dst, 0, payload); err != nil {
			return fmt.Errorf("wgpu: write vertex buffer: %w", err)
		}
		return nil
	}
	if b.frameErr != nil {
		return nil
	}

	n := uint64(len(payload))
	src, off, err := b.staging.alloc(b.device, n)
	if err != nil {
		return err
	}
	if err := b.queue.WriteBuffer(src, off, payload); err != nil {
		return fmt.Errorf("wgpu: write staging buffer: %w", err)
	}

	// Copies are not allowed inside a render pass.
	b.endPass()
	b.encoder.TransitionBuffers([]hal.BufferBarrier{{
		Buffer: dst,
		Usage: hal.BufferUsageTransition{
			OldUsage: gputypes.BufferUsageVertex,
			NewUsage: gputypes.BufferUsageCopyDst,
		},
	}})
	b.encoder.CopyBufferToBuffer(src, dst, []hal.BufferCopy{{SrcOffset: off, DstOffset: 0, Size: n}})
	b.encoder.TransitionBuffers([]hal.BufferBarrier{{
		Buffer: dst,
		Usage: hal.BufferUsageTransition{
			OldUsage: gputypes.BufferUsageCopyDst,
			NewUsage: gputypes.BufferUsageVertex,
		},
	}})
	b.uploads.Add(1)
	return nil
}

// fail records err against the current frame, or against the next one
// when no frame is in progress. The first error wins.
func (b *Backend) fail(err error) {
	rhi.Logger().Warn("wgpu: update failed", "err", err)
	if b.encoder != nil {
		if b.frameErr == nil {
			b.frameErr = err
		}
		return
	}
	if b.pendingErr == nil {
		b.pendingErr = err
	}
}

// EndFrame submits the frame and waits for the GPU to finish it.
func (b *Backend) EndFrame() error {
	if b.encoder == nil {
		return errNoFrame
	}
	b.endPass()
	encoder := b.encoder
	b.encoder, b.bound = nil, nil

	if err := b.frameErr; err != nil {
		b.frameErr = nil
		encoder.DiscardEncoding()
		return err
	}
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer b.device.FreeCommandBuffer(cmdBuf)

	if err := b.submit(cmdBuf); err != nil {
		return err
	}
	b.frames.Add(1)
	return nil
}

// submit submits cmdBuf and blocks until the queue reports it complete.
func (b *Backend) submit(cmdBuf hal.CommandBuffer) error {
	idx, err := b.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	deadline := time.Now().Add(b.cfg.FenceTimeout)
	for b.queue.PollCompleted() < idx {
		if time.Now().After(deadline) {
			return ErrFenceTimeout
		}
		time.Sleep(pollInterval)
	}
	return nil
}

// Snapshot reads the color target of the last frame back to host memory.
// It must not be called while a frame is in progress.
func (b *Backend) Snapshot() (*image.RGBA, error) {
	if b.closed.Load() {
		return nil, rhi.ErrBackendClosed
	}
	if b.encoder != nil {
		return nil, errFrameInProgress
	}
	if rhi.FormatBytesPerPixel(b.cfg.Format) != 4 {
		return nil, fmt.Errorf("%w: %v", errSnapshotFormat, b.cfg.Format)
	}

	t := b.target
	_, aligned := t.rowPitch()
	size := uint64(aligned) * uint64(t.height)
	staging, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "rhi_snapshot_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	defer b.device.DestroyBuffer(staging)

	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "rhi_snapshot_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("rhi_snapshot"); err != nil {
		return nil, fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.color,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(t.color, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: aligned, RowsPerImage: t.height},
		TextureBase:  hal.ImageCopyTexture{Texture: t.color, MipLevel: 0},
		Size:         hal.Extent3D{Width: t.width, Height: t.height, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.color,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer b.device.FreeCommandBuffer(cmdBuf)

	if err := b.submit(cmdBuf); err != nil {
		return nil, err
	}
	mapping, err := b.device.MapBuffer(staging, 0, size)
	if err != nil {
		return nil, fmt.Errorf("wgpu: map staging buffer: %w", err)
	}
	img := t.toRGBA(unsafe.Slice((*byte)(mapping.Ptr), size))
	if err := b.device.UnmapBuffer(staging); err != nil {
		return nil, fmt.Errorf("wgpu: unmap staging buffer: %w", err)
	}
	return img, nil
}

// Stats returns the backend counters.
func (b *Backend) Stats() BackendStats {
	return BackendStats{
		Frames:    b.frames.Load(),
		Draws:     b.draws.Load(),
		Uploads:   b.uploads.Load(),
		Passes:    b.passes.Load(),
		Live:      int(b.live.Load()),
		Staging:   b.staging.capacity(),
		Pipelines: b.pipelines.stats(),
	}
}

// Close releases the pipelines, the frame target and the staging
// buffers. A device opened by New is destroyed as well. Close is
// idempotent.
func (b *Backend) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	if b.encoder != nil {
		b.endPass()
		b.encoder.DiscardEncoding()
		b.encoder, b.bound = nil, nil
	}
	if n := b.live.Load(); n > 0 {
		rhi.Logger().Warn("wgpu: closing with live resources", "count", n)
	}

	b.pipelines.destroy()
	b.target.destroy(b.device)
	b.staging.destroy(b.device)

	if b.owned {
		b.device.Destroy()
		b.instance.Destroy()
		b.instance = nil
	}
	rhi.Logger().Info("wgpu: backend closed", "frames", b.frames.Load())
	return nil
}

var _ rhi.Backend = (*Backend)(nil)
