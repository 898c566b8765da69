// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rhi

import (
	"fmt"
	"sort"
	"sync"
)

// Backend is the graphics API implementation behind a Device.
//
// CreateResource may be called from any goroutine. BeginFrame, Draw,
// EndFrame and every Resource capability method are called only from the
// render goroutine, which owns the graphics context.
type Backend interface {
	// Name returns the backend identifier (e.g., "soft", "wgpu").
	Name() string

	// CreateResource creates a resource for desc. The descriptor has
	// already passed Descriptor.Validate. On failure no resource exists.
	CreateResource(desc Descriptor) (Resource, error)

	// BeginFrame starts recording a frame. Fixed-function states are reset
	// to disabled.
	BeginFrame() error

	// Draw draws from vb with the states enabled so far in this frame.
	Draw(vb VertexBuffer, params DrawParams)

	// EndFrame submits the recorded frame.
	EndFrame() error

	// Close releases all backend resources.
	Close() error
}

// BackendFactory opens a new backend instance.
type BackendFactory func() (Backend, error)

var (
	registryMu sync.RWMutex
	backends   = make(map[string]BackendFactory)
)

// Register registers a backend factory with the given name.
// It is typically called from init() in backend packages, following the
// database/sql driver pattern:
//
//	import _ "github.com/gogpu/rhi/backend/soft"
//
// Register panics if factory is nil or name is already registered.
func Register(name string, factory BackendFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("rhi: Register factory is nil")
	}
	if _, dup := backends[name]; dup {
		panic("rhi: Register called twice for " + name)
	}
	backends[name] = factory
}

// Unregister removes a backend from the registry.
// This is primarily useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Open opens a registered backend by name.
func Open(name string) (Backend, error) {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q (forgotten import?)", ErrUnknownBackend, name)
	}
	b, err := factory()
	if err != nil {
		return nil, fmt.Errorf("rhi: open backend %q: %w", name, err)
	}
	Logger().Info("rhi: backend opened", "backend", name)
	return b, nil
}

// Backends returns the sorted names of registered backends.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered reports whether a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}
