// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rhi

import (
	"errors"
	"fmt"
)

// Creation errors. These are wrapped in a *CreationError.
var (
	// ErrZeroSize is returned when a descriptor requests a zero or negative size.
	ErrZeroSize = errors.New("rhi: zero-size resource")

	// ErrUnknownKind is returned when a descriptor kind is not a defined Kind.
	ErrUnknownKind = errors.New("rhi: unknown resource kind")

	// ErrUnsupportedFormat is returned when the backend cannot create a texture
	// with the requested format.
	ErrUnsupportedFormat = errors.New("rhi: unsupported texture format")

	// ErrUnsupportedKind is returned when the backend does not implement a kind.
	ErrUnsupportedKind = errors.New("rhi: unsupported resource kind")

	// ErrPixelSize is returned when initial pixel data does not match the
	// texture dimensions and format.
	ErrPixelSize = errors.New("rhi: pixel data size mismatch")

	// ErrKindMismatch is returned when a backend produces a resource whose
	// kind differs from the descriptor.
	ErrKindMismatch = errors.New("rhi: backend returned wrong resource kind")

	// ErrBackendClosed is returned when creating resources on a closed device.
	ErrBackendClosed = errors.New("rhi: backend closed")
)

// Programming errors. These are wrapped in a *ProgrammingError and raised
// with panic; they indicate a caller defect.
var (
	// ErrUninitialized is raised when a zero, released, or destroyed
	// resource is used.
	ErrUninitialized = errors.New("rhi: resource is not initialized")

	// ErrCapacityExceeded is raised when a vertex buffer update is larger
	// than the capacity declared at creation.
	ErrCapacityExceeded = errors.New("rhi: update exceeds buffer capacity")

	// ErrDoubleRelease is raised when the same handle is released twice.
	ErrDoubleRelease = errors.New("rhi: handle released twice")
)

// ErrUnknownBackend is returned by Open for names that were never registered.
var ErrUnknownBackend = errors.New("rhi: unknown backend")

// CreationError reports that a backend could not satisfy a descriptor.
// No resource and no handle exist when a CreationError is returned.
type CreationError struct {
	Kind  Kind
	Label string
	Err   error
}

func (e *CreationError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("rhi: create %s %q: %v", e.Kind, e.Label, e.Err)
	}
	return fmt.Sprintf("rhi: create %s: %v", e.Kind, e.Err)
}

func (e *CreationError) Unwrap() error { return e.Err }

// newCreationError wraps err for desc unless it already is a *CreationError.
func newCreationError(desc Descriptor, err error) error {
	var ce *CreationError
	if errors.As(err, &ce) {
		return err
	}
	return &CreationError{Kind: desc.Kind, Label: desc.Label, Err: err}
}

// ProgrammingError is the panic value for caller defects such as using a
// destroyed resource or overflowing a vertex buffer. It is never returned
// as an error value.
type ProgrammingError struct {
	Op  string
	Err error
}

func (e *ProgrammingError) Error() string {
	return "rhi: " + e.Op + ": " + e.Err.Error()
}

func (e *ProgrammingError) Unwrap() error { return e.Err }

// Fatal panics with a *ProgrammingError for op. The detail is formatted
// and wrapped together with err so that errors.Is still matches err.
func Fatal(op string, err error, format string, args ...any) {
	if format != "" {
		err = fmt.Errorf("%w: "+format, append([]any{err}, args...)...)
	}
	panic(&ProgrammingError{Op: op, Err: err})
}

// CheckLive panics with ErrUninitialized when live is false.
// Backends call it at the top of every capability method.
func CheckLive(op string, kind Kind, live bool) {
	if !live {
		Fatal(op, ErrUninitialized, "%s", kind)
	}
}

// CheckUpdate validates a vertex buffer update against its capacity.
// Exceeding the capacity, or claiming more bytes than data holds, panics.
func CheckUpdate(capacity, size int, data []byte) {
	switch {
	case size < 0:
		Fatal("VertexBuffer.Update", ErrCapacityExceeded, "negative size %d", size)
	case size > capacity:
		Fatal("VertexBuffer.Update", ErrCapacityExceeded, "size %d > capacity %d", size, capacity)
	case size > len(data):
		Fatal("VertexBuffer.Update", ErrCapacityExceeded, "size %d > len(data) %d", size, len(data))
	}
}
