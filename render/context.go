// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/queue"
)

// Context is the rendering context shared by the producer and the render
// goroutine. It replaces process-wide singletons: create one per device and
// pass it to whoever needs it.
type Context struct {
	// Device creates resources and owns their deferred destruction.
	Device *rhi.Device

	// Queue carries frames from the producer to the render goroutine.
	Queue *queue.Queue
}

// NewContext creates a context for device with a new queue configured by
// cfg. It panics if device is nil.
func NewContext(device *rhi.Device, cfg queue.Config) *Context {
	if device == nil {
		panic("render: NewContext device is nil")
	}
	return &Context{Device: device, Queue: queue.New(cfg)}
}

// Close closes the queue and the device. Call it from the render goroutine
// after the loop has returned.
func (c *Context) Close() error {
	c.Queue.Close()
	return c.Device.Close()
}
