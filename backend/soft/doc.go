// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package soft provides a CPU reference backend for rhi.
//
// Resources keep their contents in host memory and every backend call is
// recorded as an Event, which makes the backend useful for tests and for
// checking the order in which a frame executes:
//
//	import _ "github.com/gogpu/rhi/backend/soft"
//
//	b, err := rhi.Open("soft")
//
// Supported texture formats are RGBA8Unorm, BGRA8Unorm and R8Unorm.
package soft
