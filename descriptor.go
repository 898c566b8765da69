// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rhi

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// Descriptor describes a resource to create.
// Only the fields relevant to Kind are read.
type Descriptor struct {
	// Kind selects the resource contract.
	Kind Kind

	// Label is an optional debug name.
	Label string

	// Width and Height are the dimensions of a Texture2D, in pixels.
	Width, Height int

	// Size is the edge length of a TextureCube face, in pixels.
	Size int

	// Capacity is the size of a VertexBuffer, in bytes.
	Capacity int

	// Format is the pixel format of a texture.
	Format gputypes.TextureFormat

	// Pixels is optional initial texture data, tightly packed rows.
	// For a TextureCube it holds the six faces back to back.
	Pixels []byte
}

// Texture2DDescriptor returns a descriptor for a width x height texture.
func Texture2DDescriptor(width, height int, format gputypes.TextureFormat) Descriptor {
	return Descriptor{Kind: KindTexture2D, Width: width, Height: height, Format: format}
}

// TextureCubeDescriptor returns a descriptor for a cube map with size x size faces.
func TextureCubeDescriptor(size int, format gputypes.TextureFormat) Descriptor {
	return Descriptor{Kind: KindTextureCube, Size: size, Format: format}
}

// VertexBufferDescriptor returns a descriptor for a buffer of capacity bytes.
func VertexBufferDescriptor(capacity int) Descriptor {
	return Descriptor{Kind: KindVertexBuffer, Capacity: capacity}
}

// StateDescriptor returns a descriptor for a fixed-function state kind.
func StateDescriptor(kind Kind) Descriptor {
	return Descriptor{Kind: kind}
}

// WithLabel returns a copy of d with the given label.
func (d Descriptor) WithLabel(label string) Descriptor {
	d.Label = label
	return d
}

// WithPixels returns a copy of d with initial pixel data.
func (d Descriptor) WithPixels(pixels []byte) Descriptor {
	d.Pixels = pixels
	return d
}

// Validate checks the kind-specific parameters that do not depend on the
// backend. It returns a *CreationError or nil.
func (d Descriptor) Validate() error {
	err := d.validate()
	if err != nil {
		return &CreationError{Kind: d.Kind, Label: d.Label, Err: err}
	}
	return nil
}

func (d Descriptor) validate() error {
	switch {
	case !d.Kind.Valid():
		return ErrUnknownKind
	case d.Kind.IsState():
		return nil
	case d.Kind == KindVertexBuffer:
		if d.Capacity <= 0 {
			return fmt.Errorf("%w: capacity %d", ErrZeroSize, d.Capacity)
		}
		return nil
	}

	w, h, layers := d.Extent()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrZeroSize, w, h)
	}
	if d.Pixels == nil {
		return nil
	}
	bpp := FormatBytesPerPixel(d.Format)
	if bpp == 0 {
		// Unknown to the core; the backend decides whether it supports it.
		return nil
	}
	if want := w * h * layers * bpp; len(d.Pixels) != want {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrPixelSize, len(d.Pixels), want)
	}
	return nil
}

// Extent returns the texture width, height and layer count for texture
// kinds, and zeros otherwise.
func (d Descriptor) Extent() (width, height, layers int) {
	switch d.Kind {
	case KindTexture2D:
		return d.Width, d.Height, 1
	case KindTextureCube:
		return d.Size, d.Size, 6
	default:
		return 0, 0, 0
	}
}

// FormatBytesPerPixel returns the size of one pixel in bytes for the
// uncompressed color formats the core knows about, or 0 otherwise.
func FormatBytesPerPixel(f gputypes.TextureFormat) int {
	switch f {
	case gputypes.TextureFormatR8Unorm:
		return 1
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatBGRA8Unorm:
		return 4
	default:
		return 0
	}
}
