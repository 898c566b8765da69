// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"time"

	"github.com/gogpu/gputypes"
)

// Default configuration values.
const (
	DefaultWidth        = 256
	DefaultHeight       = 256
	DefaultFenceTimeout = 5 * time.Second
)

// Config configures the offscreen frame target.
type Config struct {
	// Width and Height are the render target size in pixels.
	// Default: 256x256.
	Width, Height uint32

	// Format is the color target format. Default: BGRA8Unorm, or the
	// surface format when created from a device provider.
	Format gputypes.TextureFormat

	// FenceTimeout bounds the wait for a submitted frame. Default: 5s.
	FenceTimeout time.Duration
}

// DefaultConfig returns the default backend configuration.
func DefaultConfig() Config {
	return Config{
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		Format:       gputypes.TextureFormatBGRA8Unorm,
		FenceTimeout: DefaultFenceTimeout,
	}
}

func (c Config) normalize() Config {
	if c.Width == 0 {
		c.Width = DefaultWidth
	}
	if c.Height == 0 {
		c.Height = DefaultHeight
	}
	if c.Format == gputypes.TextureFormatUndefined {
		c.Format = gputypes.TextureFormatBGRA8Unorm
	}
	if c.FenceTimeout <= 0 {
		c.FenceTimeout = DefaultFenceTimeout
	}
	return c
}
