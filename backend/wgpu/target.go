// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// depthStencilFormat is the format of the frame depth/stencil attachment.
const depthStencilFormat = gputypes.TextureFormatDepth24PlusStencil8

// copyPitchAlignment is the required BytesPerRow alignment for
// texture-to-buffer copies.
const copyPitchAlignment = 256

// target is the offscreen attachment set every frame renders into.
type target struct {
	width, height uint32
	format        gputypes.TextureFormat

	color     hal.Texture
	colorView hal.TextureView
	depth     hal.Texture
	depthView hal.TextureView
}

// newTarget creates the color and depth/stencil attachments.
// On failure everything created so far is destroyed.
func newTarget(device hal.Device, cfg Config) (*target, error) {
	t := &target{width: cfg.Width, height: cfg.Height, format: cfg.Format}
	size := hal.Extent3D{Width: cfg.Width, Height: cfg.Height, DepthOrArrayLayers: 1}

	var err error
	t.color, err = device.CreateTexture(&hal.TextureDescriptor{
		Label:         "rhi_frame_color",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        cfg.Format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create color target: %w", err)
	}
	t.colorView, err = device.CreateTextureView(t.color, &hal.TextureViewDescriptor{
		Label: "rhi_frame_color_view",
	})
	if err != nil {
		t.destroy(device)
		return nil, fmt.Errorf("wgpu: create color view: %w", err)
	}

	t.depth, err = device.CreateTexture(&hal.TextureDescriptor{
		Label:         "rhi_frame_depth_stencil",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        depthStencilFormat,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		t.destroy(device)
		return nil, fmt.Errorf("wgpu: create depth/stencil target: %w", err)
	}
	t.depthView, err = device.CreateTextureView(t.depth, &hal.TextureViewDescriptor{
		Label: "rhi_frame_depth_stencil_view",
	})
	if err != nil {
		t.destroy(device)
		return nil, fmt.Errorf("wgpu: create depth/stencil view: %w", err)
	}
	return t, nil
}

// passDescriptor returns the frame's render pass. The first pass of a
// frame clears both attachments; a resumed pass loads them. Depth and
// stencil are stored so a resumed pass keeps testing against them.
func (t *target) passDescriptor(resume bool) *hal.RenderPassDescriptor {
	load := gputypes.LoadOpClear
	if resume {
		load = gputypes.LoadOpLoad
	}
	return &hal.RenderPassDescriptor{
		Label: "rhi_frame_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       t.colorView,
				LoadOp:     load,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: gputypes.Color{},
			},
		},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:              t.depthView,
			DepthLoadOp:       load,
			DepthStoreOp:      gputypes.StoreOpStore,
			DepthClearValue:   1.0,
			StencilLoadOp:     load,
			StencilStoreOp:    gputypes.StoreOpStore,
			StencilClearValue: 0,
		},
	}
}

// rowPitch returns the tight and the copy-aligned row sizes in bytes.
func (t *target) rowPitch() (tight, aligned uint32) {
	tight = t.width * 4
	aligned = (tight + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	return tight, aligned
}

// toRGBA strips row padding from a readback and converts it to RGBA.
func (t *target) toRGBA(readback []byte) *image.RGBA {
	tight, aligned := t.rowPitch()
	img := image.NewRGBA(image.Rect(0, 0, int(t.width), int(t.height)))
	for y := 0; y < int(t.height); y++ {
		src := readback[y*int(aligned) : y*int(aligned)+int(tight)]
		dst := img.Pix[y*img.Stride : y*img.Stride+int(tight)]
		copy(dst, src)
		if t.format == gputypes.TextureFormatBGRA8Unorm {
			for i := 0; i < len(dst); i += 4 {
				dst[i], dst[i+2] = dst[i+2], dst[i]
			}
		}
	}
	return img
}

func (t *target) destroy(device hal.Device) {
	if t.depthView != nil {
		device.DestroyTextureView(t.depthView)
		t.depthView = nil
	}
	if t.depth != nil {
		device.DestroyTexture(t.depth)
		t.depth = nil
	}
	if t.colorView != nil {
		device.DestroyTextureView(t.colorView)
		t.colorView = nil
	}
	if t.color != nil {
		device.DestroyTexture(t.color)
		t.color = nil
	}
}
