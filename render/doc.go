// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render is the consumer side of the render queue: it executes
// swapped frames against a backend on a dedicated render goroutine.
//
// A [Context] bundles the resource device and the queue and is passed
// explicitly to the producer and to the [Loop]:
//
//	rc := render.NewContext(device, queue.DefaultConfig())
//
//	go func() { // producer
//	    rc.Queue.Submit(queue.Node{Key: key, VertexBuffer: vb, Params: p})
//	    _ = rc.Queue.Swap(ctx)
//	}()
//
//	err := render.NewLoop(rc).Run(ctx) // render goroutine
//
// The loop locks its goroutine to an OS thread, because graphics contexts
// are bound to the thread that created them, and collects released
// resources after every frame so that destruction happens on that thread.
package render
