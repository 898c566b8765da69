// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package queue provides the double-buffered render queue that decouples
// scene submission from GPU command execution.
//
// # Frame cycle
//
// One producer goroutine appends nodes with [Queue.Submit] and ends each
// frame with [Queue.Swap]. One consumer goroutine (the render goroutine)
// takes the swapped frame with [Queue.Acquire], executes its nodes and
// hands the buffer back with [Frame.Done]:
//
//	Accepting --Swap--> Swapping --Acquire--> Draining --Done--> Accepting
//
// Submit and iteration over a frame take no lock: the producer only ever
// touches the submit buffer and the consumer only the render buffer. The
// mutex guards nothing but the exchange of the two buffer identities, which
// is O(1).
//
// # Ordering
//
// A drained frame is sorted by [Node.Key] ascending. Nodes with equal keys
// keep their submission order; the sort compares (key, submission index)
// pairs so the tie-break does not depend on the sort algorithm.
//
// # Growth
//
// Each buffer tracks a logical capacity. When count/capacity exceeds
// [Config.LoadFactor] (1.7 by default) the capacity is multiplied by
// [Config.ExpansionFactor] (4.0 by default). Buffers never shrink.
package queue
