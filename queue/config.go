// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package queue

import "math"

// Default configuration values.
const (
	DefaultInitialCapacity = 64
	DefaultLoadFactor      = 1.7
	DefaultExpansionFactor = 4.0
	DefaultMaxCapacity     = 1 << 24
)

// Backpressure selects what Swap does when the consumer has not yet
// acquired the previous frame.
type Backpressure uint8

const (
	// BackpressureWait blocks Swap until the consumer has finished the
	// previous frame. No frame is ever lost.
	BackpressureWait Backpressure = iota

	// BackpressureDrop discards the un-acquired frame, releasing its
	// handles, so the producer never waits on a slow consumer. Swap still
	// waits for a frame that is being drained.
	BackpressureDrop
)

// String returns the policy name.
func (b Backpressure) String() string {
	switch b {
	case BackpressureWait:
		return "wait"
	case BackpressureDrop:
		return "drop"
	default:
		return "unknown"
	}
}

// Config configures a Queue.
type Config struct {
	// InitialCapacity is the logical node capacity of each buffer.
	// Default: 64.
	InitialCapacity int

	// LoadFactor is the count/capacity ratio above which a buffer grows.
	// Default: 1.7.
	LoadFactor float64

	// ExpansionFactor multiplies the capacity on growth. Must be > 1.
	// Default: 4.0.
	ExpansionFactor float64

	// MaxCapacity bounds the logical capacity. Growing past it panics
	// with *AllocationError. Default: 1<<24.
	MaxCapacity int

	// Backpressure is the Swap policy for a frame the consumer has not
	// acquired yet. Default: BackpressureWait.
	Backpressure Backpressure
}

// DefaultConfig returns the default queue configuration.
func DefaultConfig() Config {
	return Config{
		InitialCapacity: DefaultInitialCapacity,
		LoadFactor:      DefaultLoadFactor,
		ExpansionFactor: DefaultExpansionFactor,
		MaxCapacity:     DefaultMaxCapacity,
		Backpressure:    BackpressureWait,
	}
}

// normalize replaces zero or invalid fields with defaults.
func (c Config) normalize() Config {
	if c.MaxCapacity <= 0 {
		c.MaxCapacity = DefaultMaxCapacity
	}
	if c.InitialCapacity <= 0 {
		c.InitialCapacity = DefaultInitialCapacity
	}
	if c.InitialCapacity > c.MaxCapacity {
		c.InitialCapacity = c.MaxCapacity
	}
	if !(c.LoadFactor > 0) || math.IsInf(c.LoadFactor, 0) {
		c.LoadFactor = DefaultLoadFactor
	}
	if !(c.ExpansionFactor > 1) || math.IsInf(c.ExpansionFactor, 0) {
		c.ExpansionFactor = DefaultExpansionFactor
	}
	if c.Backpressure > BackpressureDrop {
		c.Backpressure = BackpressureWait
	}
	return c
}
