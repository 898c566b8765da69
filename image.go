// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rhi

import (
	"image"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"
)

// PixelsFromImage converts img into tightly packed RGBA8 rows suitable for
// Descriptor.Pixels with gputypes.TextureFormatRGBA8Unorm.
func PixelsFromImage(img image.Image) (pixels []byte, width, height int) {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == 4*b.Dx() {
		out := make([]byte, len(rgba.Pix))
		copy(out, rgba.Pix)
		return out, b.Dx(), b.Dy()
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst.Pix, b.Dx(), b.Dy()
}

// ScaledPixelsFromImage resamples img to width x height with bilinear
// filtering and returns RGBA8 rows. Importers use it to fit source images
// into fixed-size textures such as cube faces.
func ScaledPixelsFromImage(img image.Image, width, height int) []byte {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst.Pix
}

// TextureDescriptorFromImage returns a Texture2D descriptor holding the
// pixels of img in RGBA8Unorm.
func TextureDescriptorFromImage(img image.Image) Descriptor {
	pixels, w, h := PixelsFromImage(img)
	return Texture2DDescriptor(w, h, gputypes.TextureFormatRGBA8Unorm).WithPixels(pixels)
}

// CubeDescriptorFromImages returns a TextureCube descriptor whose six faces
// are resampled from faces to size x size, in +X, -X, +Y, -Y, +Z, -Z order.
func CubeDescriptorFromImages(size int, faces [6]image.Image) Descriptor {
	face := size * size * 4
	pixels := make([]byte, 0, 6*face)
	for _, img := range faces {
		pixels = append(pixels, ScaledPixelsFromImage(img, size, size)...)
	}
	return TextureCubeDescriptor(size, gputypes.TextureFormatRGBA8Unorm).WithPixels(pixels)
}
