// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package queue

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by Swap and Acquire after Close.
var ErrClosed = errors.New("queue: closed")

// AllocationError is the panic value raised when a buffer cannot grow.
// There is no recovery path: the renderer cannot run without queue memory.
type AllocationError struct {
	// Requested is the logical capacity the buffer tried to grow to.
	Requested int

	// Limit is the configured maximum capacity.
	Limit int
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("queue: cannot grow buffer to %d nodes (limit %d)", e.Requested, e.Limit)
}
