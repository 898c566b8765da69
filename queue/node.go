// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package queue

import "github.com/gogpu/rhi"

// Node is one unit of render work: the resources a draw uses, its sort key
// and its draw parameters.
//
// Submit copies the node and clones every handle in it, so the queue owns
// its own references until the node has executed. The caller keeps its
// handles and may release them right after Submit. Data is not copied and
// must not be modified after Submit.
type Node struct {
	// Key orders nodes within a frame, ascending. Nodes sharing a key keep
	// their submission order, so callers group draws that share state
	// under one key.
	Key uint64

	// VertexBuffer is the buffer to draw from. It must be valid.
	VertexBuffer rhi.Handle[rhi.VertexBuffer]

	// States are enabled in order before the draw.
	States []rhi.Handle[rhi.State]

	// Data, when non-nil, is uploaded with VertexBuffer.Update(len(Data), Data)
	// before the draw.
	Data []byte

	// Params are the draw call arguments.
	Params rhi.DrawParams
}

// retain returns a copy of n holding its own handle references.
func retain(n Node) Node {
	out := n
	out.VertexBuffer = n.VertexBuffer.Clone()
	if len(n.States) > 0 {
		out.States = make([]rhi.Handle[rhi.State], len(n.States))
		for i, s := range n.States {
			out.States[i] = s.Clone()
		}
	}
	return out
}

// release gives up the references taken by retain.
func release(n *Node) {
	n.VertexBuffer.Release()
	for _, s := range n.States {
		s.Release()
	}
}
