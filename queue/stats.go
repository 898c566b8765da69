// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package queue

import "fmt"

// Stats contains queue counters.
type Stats struct {
	// Submitted is the number of nodes accepted by Submit.
	Submitted uint64

	// Swapped is the number of frames handed to the consumer.
	Swapped uint64

	// Drained is the number of frames finished with Done.
	Drained uint64

	// Dropped is the number of frames discarded by Discard, Close or
	// BackpressureDrop.
	Dropped uint64

	// Expansions is the number of buffer growths.
	Expansions uint64

	// Capacity is the largest logical buffer capacity.
	Capacity int
}

// String returns a human-readable string of queue stats.
func (s Stats) String() string {
	return fmt.Sprintf("Queue[%d submitted, %d swapped, %d drained, %d dropped, %d expansions, capacity %d]",
		s.Submitted, s.Swapped, s.Drained, s.Dropped, s.Expansions, s.Capacity)
}
