// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync/atomic"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/queue"
)

// Loop is the render goroutine: it acquires swapped frames and executes
// them until the queue is closed or the context is done.
type Loop struct {
	// Context holds the device and the queue.
	Context *Context

	// Executor runs each frame. NewLoop sets it.
	Executor *Executor

	// Logger overrides rhi.Logger for loop messages when non-nil.
	Logger *slog.Logger

	frames atomic.Uint64
}

// NewLoop creates a loop for rc with a new executor.
func NewLoop(rc *Context) *Loop {
	return &Loop{Context: rc, Executor: NewExecutor(rc.Device)}
}

func (l *Loop) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return rhi.Logger()
}

// Run executes frames on the calling goroutine, which it locks to its OS
// thread. Run returns nil once the queue is closed and ctx.Err() when ctx
// is done. Backend frame errors are logged and the loop moves on to the
// next frame. Before returning, Run destroys every released resource.
func (l *Loop) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer l.Context.Device.CollectGarbage()

	log := l.logger()
	log.Debug("render: loop started", "backend", l.Context.Device.Backend().Name())
	for {
		f, err := l.Context.Queue.Acquire(ctx)
		if errors.Is(err, queue.ErrClosed) {
			log.Debug("render: loop stopped", "frames", l.frames.Load())
			return nil
		}
		if err != nil {
			return err
		}
		if err := l.Executor.Execute(f); err != nil {
			log.Warn("render: frame failed", "err", err)
			continue
		}
		l.frames.Add(1)
	}
}

// Frames returns the number of frames executed successfully.
func (l *Loop) Frames() uint64 { return l.frames.Load() }
