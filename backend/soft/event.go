// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package soft

import (
	"fmt"

	"github.com/gogpu/rhi"
)

// Op identifies a recorded backend operation.
type Op uint8

const (
	OpCreate Op = iota + 1
	OpDestroy
	OpBeginFrame
	OpEnable
	OpUpdate
	OpDraw
	OpEndFrame
)

var opNames = [...]string{
	OpCreate:     "Create",
	OpDestroy:    "Destroy",
	OpBeginFrame: "BeginFrame",
	OpEnable:     "Enable",
	OpUpdate:     "Update",
	OpDraw:       "Draw",
	OpEndFrame:   "EndFrame",
}

func (o Op) String() string {
	if o >= OpCreate && o <= OpEndFrame {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// Event is one recorded backend call.
type Event struct {
	Op    Op
	Kind  rhi.Kind
	Label string

	// Size is the buffer capacity for Create and Draw, the update size for
	// Update, and the pixel byte count for texture creation.
	Size int

	// Params are the draw arguments of a Draw event.
	Params rhi.DrawParams

	// States are the state kinds enabled at a Draw event, in enable order.
	States []rhi.Kind
}

func (e Event) String() string {
	switch e.Op {
	case OpDraw:
		return fmt.Sprintf("%s(%d+%d x%d) %v", e.Op, e.Params.FirstVertex, e.Params.VertexCount, e.Params.Instances(), e.States)
	case OpBeginFrame, OpEndFrame:
		return e.Op.String()
	default:
		return fmt.Sprintf("%s %s %q", e.Op, e.Kind, e.Label)
	}
}
