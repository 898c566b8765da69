// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/queue"
)

// ExecutorStats contains executor counters.
type ExecutorStats struct {
	// Frames is the number of frames executed successfully.
	Frames uint64

	// Draws is the number of draw calls issued.
	Draws uint64

	// Updates is the number of vertex buffer uploads.
	Updates uint64

	// Failed is the number of frames discarded after a backend error.
	Failed uint64
}

// String returns a human-readable string of executor stats.
func (s ExecutorStats) String() string {
	return fmt.Sprintf("Executor[%d frames, %d draws, %d updates, %d failed]",
		s.Frames, s.Draws, s.Updates, s.Failed)
}

// Executor translates queue frames into backend calls.
// It is used only from the render goroutine.
type Executor struct {
	device  *rhi.Device
	backend rhi.Backend

	frames  atomic.Uint64
	draws   atomic.Uint64
	updates atomic.Uint64
	failed  atomic.Uint64
}

// NewExecutor creates an executor drawing through device's backend.
func NewExecutor(device *rhi.Device) *Executor {
	return &Executor{device: device, backend: device.Backend()}
}

// Execute runs f: BeginFrame, then for each node in key order its states
// are enabled, its data uploaded and its draw issued, then EndFrame. The
// frame is finished and released resources are collected whether or not
// the backend succeeded. A backend error discards the frame; it is never
// retried.
func (e *Executor) Execute(f *queue.Frame) error {
	// No-op once Done has run; discards the frame if a node panics.
	defer f.Discard()

	if err := e.backend.BeginFrame(); err != nil {
		return e.fail(f, "begin", err)
	}
	for i, n := range f.All() {
		e.executeNode(i, n)
	}
	if err := e.backend.EndFrame(); err != nil {
		return e.fail(f, "end", err)
	}

	f.Done()
	e.device.CollectGarbage()
	e.frames.Add(1)
	return nil
}

func (e *Executor) executeNode(i int, n *queue.Node) {
	if !n.VertexBuffer.Valid() {
		rhi.Fatal("Executor.Execute", rhi.ErrUninitialized, "node %d has no vertex buffer", i)
	}
	for _, s := range n.States {
		s.Get().Enable()
	}
	vb := n.VertexBuffer.Get()
	if n.Data != nil {
		vb.Update(len(n.Data), n.Data)
		e.updates.Add(1)
	}
	e.backend.Draw(vb, n.Params)
	e.draws.Add(1)
}

func (e *Executor) fail(f *queue.Frame, phase string, err error) error {
	f.Discard()
	e.device.CollectGarbage()
	e.failed.Add(1)
	return fmt.Errorf("render: %s frame %d on %s: %w", phase, f.Seq(), e.backend.Name(), err)
}

// Stats returns a snapshot of the executor counters.
func (e *Executor) Stats() ExecutorStats {
	return ExecutorStats{
		Frames:  e.frames.Load(),
		Draws:   e.draws.Load(),
		Updates: e.updates.Load(),
		Failed:  e.failed.Load(),
	}
}
