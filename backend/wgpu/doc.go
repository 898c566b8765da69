// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu implements the rhi backend on top of the gogpu/wgpu HAL.
//
// The backend either opens its own Vulkan device ([New]) or adopts a
// device owned by a host application ([NewWithDevice], [NewFromProvider]).
// Importing the package registers it under the name "wgpu":
//
//	import _ "github.com/gogpu/rhi/backend/wgpu"
//
// # Frames
//
// Each frame records render passes into an offscreen color target with a
// Depth24PlusStencil8 attachment, then submits them and waits until the
// queue reports the submission complete. A vertex buffer update made
// during a frame ends the current pass and records a copy from a staging
// buffer; the next draw resumes the pass without clearing. Draws and
// updates therefore take effect in the order they were issued.
// Vertex buffers hold interleaved vertices of [VertexStride] bytes: a
// vec2<f32> position in normalized device coordinates followed by a
// vec4<f32> color. Drawing past the end of a buffer panics.
// [Backend.Snapshot] reads the color target back after a frame.
//
// # Fixed-function state
//
// WebGPU has no mutable fixed-function state, so the enabled rhi states
// form a 4-bit key that selects a render pipeline from a cache. Pipelines
// are built lazily from one WGSL shader that is compiled to SPIR-V with
// naga once per backend. The state kinds map to:
//
//   - BlendState: premultiplied alpha blending
//   - DepthTestState: depth compare Less with depth writes
//   - FaceCullingState: back-face culling
//   - StencilTestState: stencil compare Always, pass op IncrementWrap
package wgpu
