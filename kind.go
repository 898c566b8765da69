// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rhi

import "strconv"

// Kind identifies the type of a GPU resource.
// The set is closed: backends implement exactly one contract per kind.
type Kind uint8

const (
	// KindTexture2D is a two-dimensional texture with fixed width and height.
	KindTexture2D Kind = iota + 1

	// KindTextureCube is a cube map texture with six square faces.
	KindTextureCube

	// KindVertexBuffer is a vertex buffer with a fixed byte capacity.
	KindVertexBuffer

	// KindBlendState toggles color blending.
	KindBlendState

	// KindDepthTestState toggles depth testing.
	KindDepthTestState

	// KindFaceCullingState toggles back-face culling.
	KindFaceCullingState

	// KindStencilTestState toggles stencil testing.
	KindStencilTestState
)

// kindNames maps Kind values to their string representation.
var kindNames = [...]string{
	KindTexture2D:        "Texture2D",
	KindTextureCube:      "TextureCube",
	KindVertexBuffer:     "VertexBuffer",
	KindBlendState:       "BlendState",
	KindDepthTestState:   "DepthTestState",
	KindFaceCullingState: "FaceCullingState",
	KindStencilTestState: "StencilTestState",
}

// String returns the string representation of a Kind.
func (k Kind) String() string {
	if k.Valid() {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	return k >= KindTexture2D && k <= KindStencilTestState
}

// IsState reports whether k is a fixed-function state kind.
func (k Kind) IsState() bool {
	return k >= KindBlendState && k <= KindStencilTestState
}

// IsTexture reports whether k is a texture kind.
func (k Kind) IsTexture() bool {
	return k == KindTexture2D || k == KindTextureCube
}

// StateKinds returns the fixed-function state kinds in declaration order.
func StateKinds() []Kind {
	return []Kind{KindBlendState, KindDepthTestState, KindFaceCullingState, KindStencilTestState}
}
