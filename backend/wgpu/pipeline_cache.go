// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/rhi"
	"github.com/gogpu/wgpu/hal"
)

// errCacheDestroyed is returned by a pipeline lookup after destroy.
var errCacheDestroyed = errors.New("wgpu: pipeline cache destroyed")

// stateKey is the set of enabled fixed-function states.
type stateKey uint8

const (
	keyBlend stateKey = 1 << iota
	keyDepth
	keyCull
	keyStencil

	keyCount = 1 << 4
)

// keyFor returns the key bit of a state kind, or 0 for other kinds.
func keyFor(kind rhi.Kind) stateKey {
	switch kind {
	case rhi.KindBlendState:
		return keyBlend
	case rhi.KindDepthTestState:
		return keyDepth
	case rhi.KindFaceCullingState:
		return keyCull
	case rhi.KindStencilTestState:
		return keyStencil
	default:
		return 0
	}
}

func (k stateKey) String() string {
	if k == 0 {
		return "none"
	}
	var parts []string
	for _, p := range [...]struct {
		bit  stateKey
		name string
	}{
		{keyBlend, "blend"},
		{keyDepth, "depth"},
		{keyCull, "cull"},
		{keyStencil, "stencil"},
	} {
		if k&p.bit != 0 {
			parts = append(parts, p.name)
		}
	}
	return strings.Join(parts, "|")
}

// CacheStats contains pipeline cache counters.
type CacheStats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// String returns a human-readable string of cache stats.
func (s CacheStats) String() string {
	return fmt.Sprintf("PipelineCache[%d entries, %d hits, %d misses]", s.Entries, s.Hits, s.Misses)
}

// pipelineCache holds one render pipeline per state key. Pipelines share
// the draw shader and an empty pipeline layout.
//
// pipelineCache is safe for concurrent use. Lookups take a read lock and
// fall back to a write lock with a second check before creating.
type pipelineCache struct {
	mu        sync.RWMutex
	device    hal.Device
	format    gputypes.TextureFormat
	shader    hal.ShaderModule
	layout    hal.PipelineLayout
	pipelines map[stateKey]hal.RenderPipeline

	hits   atomic.Uint64
	misses atomic.Uint64
}

// newPipelineCache compiles the draw shader and creates the shared layout.
func newPipelineCache(device hal.Device, format gputypes.TextureFormat) (*pipelineCache, error) {
	words, err := compileSPIRV(drawShaderSource)
	if err != nil {
		return nil, err
	}
	shader, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "rhi_draw_shader",
		Source: hal.ShaderSource{SPIRV: words},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create shader module: %w", err)
	}
	layout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "rhi_draw_layout",
	})
	if err != nil {
		device.DestroyShaderModule(shader)
		return nil, fmt.Errorf("wgpu: create pipeline layout: %w", err)
	}
	return &pipelineCache{
		device:    device,
		format:    format,
		shader:    shader,
		layout:    layout,
		pipelines: make(map[stateKey]hal.RenderPipeline, keyCount),
	}, nil
}

// get returns the pipeline for key, creating it on first use.
func (c *pipelineCache) get(key stateKey) (hal.RenderPipeline, error) {
	c.mu.RLock()
	if p, ok := c.pipelines[key]; ok {
		c.mu.RUnlock()
		c.hits.Add(1)
		return p, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.pipelines[key]; ok {
		c.hits.Add(1)
		return p, nil
	}
	if c.pipelines == nil {
		return nil, errCacheDestroyed
	}

	p, err := c.device.CreateRenderPipeline(c.describe(key))
	if err != nil {
		return nil, fmt.Errorf("wgpu: create pipeline %s: %w", key, err)
	}
	c.pipelines[key] = p
	c.misses.Add(1)
	rhi.Logger().Debug("wgpu: pipeline created", "states", key.String())
	return p, nil
}

// describe returns the pipeline descriptor for key.
func (c *pipelineCache) describe(key stateKey) *hal.RenderPipelineDescriptor {
	var blend *gputypes.BlendState
	if key&keyBlend != 0 {
		premul := gputypes.BlendStatePremultiplied()
		blend = &premul
	}

	depthCompare := gputypes.CompareFunctionAlways
	depthWrite := false
	if key&keyDepth != 0 {
		depthCompare = gputypes.CompareFunctionLess
		depthWrite = true
	}

	stencil := hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationKeep,
	}
	if key&keyStencil != 0 {
		stencil.PassOp = hal.StencilOperationIncrementWrap
	}

	cull := gputypes.CullModeNone
	if key&keyCull != 0 {
		cull = gputypes.CullModeBack
	}

	ds := &hal.DepthStencilState{
		Format:            depthStencilFormat,
		DepthWriteEnabled: depthWrite,
		DepthCompare:      depthCompare,
		StencilFront:      stencil,
		StencilBack:       stencil,
	}
	if key&keyStencil != 0 {
		ds.StencilReadMask = 0xFF
		ds.StencilWriteMask = 0xFF
	}

	return &hal.RenderPipelineDescriptor{
		Label:  "rhi_draw_" + key.String(),
		Layout: c.layout,
		Vertex: hal.VertexState{
			Module:     c.shader,
			EntryPoint: "vs_main",
			Buffers:    drawVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     c.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    c.format,
					Blend:     blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		DepthStencil: ds,
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: cull,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}
}

// stats returns the cache counters.
func (c *pipelineCache) stats() CacheStats {
	c.mu.RLock()
	n := len(c.pipelines)
	c.mu.RUnlock()
	return CacheStats{Hits: c.hits.Load(), Misses: c.misses.Load(), Entries: n}
}

// destroy releases all pipelines, the layout and the shader.
func (c *pipelineCache) destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.pipelines {
		c.device.DestroyRenderPipeline(p)
	}
	c.pipelines = nil
	if c.layout != nil {
		c.device.DestroyPipelineLayout(c.layout)
		c.layout = nil
	}
	if c.shader != nil {
		c.device.DestroyShaderModule(c.shader)
		c.shader = nil
	}
}
