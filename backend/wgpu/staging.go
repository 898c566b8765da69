// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// stagingChunkSize is the minimum size of a staging chunk.
const stagingChunkSize = 64 << 10

// stagingArena suballocates per-frame upload space from a list of staging
// buffers. Regions handed out within one frame never overlap, so every
// upload keeps its own bytes until the frame's copies execute. Chunks are
// reused once the frame that filled them has completed.
type stagingArena struct {
	chunks []stagingChunk
	cur    int
}

type stagingChunk struct {
	buf  hal.Buffer
	size uint64
	used uint64
}

// alloc returns a buffer and offset with n free bytes. n must be a
// multiple of 4.
func (a *stagingArena) alloc(device hal.Device, n uint64) (hal.Buffer, uint64, error) {
	for ; a.cur < len(a.chunks); a.cur++ {
		c := &a.chunks[a.cur]
		if c.size-c.used >= n {
			off := c.used
			c.used += n
			return c.buf, off, nil
		}
	}

	size := max(n, stagingChunkSize)
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "rhi_upload_staging",
		Size:  size,
		Usage: gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	a.chunks = append(a.chunks, stagingChunk{buf: buf, size: size, used: n})
	a.cur = len(a.chunks) - 1
	return buf, 0, nil
}

// reset makes every chunk available again.
func (a *stagingArena) reset() {
	for i := range a.chunks {
		a.chunks[i].used = 0
	}
	a.cur = 0
}

// capacity returns the total staging bytes held.
func (a *stagingArena) capacity() uint64 {
	var n uint64
	for _, c := range a.chunks {
		n += c.size
	}
	return n
}

func (a *stagingArena) destroy(device hal.Device) {
	for _, c := range a.chunks {
		device.DestroyBuffer(c.buf)
	}
	a.chunks, a.cur = nil, 0
}
