// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package rhi is a render hardware interface: a backend-agnostic model of
// GPU resources with reference-counted lifetimes.
//
// # Overview
//
// A [Backend] creates resources from a [Descriptor]. A [Device] wraps the
// backend, validates descriptors and returns every resource inside a
// [Handle]. Handles are shared with Clone and given up with Release; the
// last Release hands the resource to a [ReleaseQueue], and the render
// goroutine destroys it on its next [Device.CollectGarbage].
//
//	dev := rhi.NewDevice(backend)
//	vb, err := dev.CreateVertexBuffer(1024)
//	if err != nil {
//	    // *rhi.CreationError: no handle was produced
//	}
//	defer vb.Release()
//
// # Resource contracts
//
// The resource model is one level deep. Every kind implements [Resource];
// the four fixed-function kinds (blend, depth test, face culling, stencil
// test) implement [State], buffers implement [VertexBuffer] and textures
// implement [Texture2D] or [TextureCube].
//
// # Errors
//
// Recoverable failures are returned as *[CreationError]. Caller defects,
// such as using a released handle or overflowing a vertex buffer, panic
// with a *[ProgrammingError].
//
// # Threading
//
// Backend handles are only valid on the goroutine that owns the graphics
// context. Reference counts are atomic and may be touched from anywhere,
// but destruction always goes through the ReleaseQueue and never runs on
// the goroutine that dropped the last reference.
//
// The deferred render queue lives in package [github.com/gogpu/rhi/queue]
// and the consumer loop in [github.com/gogpu/rhi/render].
package rhi
