// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rhi

import "testing"

func TestKind(t *testing.T) {
	tests := []struct {
		kind      Kind
		name      string
		valid     bool
		isState   bool
		isTexture bool
	}{
		{KindTexture2D, "Texture2D", true, false, true},
		{KindTextureCube, "TextureCube", true, false, true},
		{KindVertexBuffer, "VertexBuffer", true, false, false},
		{KindBlendState, "BlendState", true, true, false},
		{KindDepthTestState, "DepthTestState", true, true, false},
		{KindFaceCullingState, "FaceCullingState", true, true, false},
		{KindStencilTestState, "StencilTestState", true, true, false},
		{0, "Kind(0)", false, false, false},
		{99, "Kind(99)", false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
			if got := tt.kind.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
			if got := tt.kind.IsState(); got != tt.isState {
				t.Errorf("IsState() = %v, want %v", got, tt.isState)
			}
			if got := tt.kind.IsTexture(); got != tt.isTexture {
				t.Errorf("IsTexture() = %v, want %v", got, tt.isTexture)
			}
		})
	}
}

func TestStateKinds(t *testing.T) {
	kinds := StateKinds()
	if len(kinds) != 4 {
		t.Fatalf("len(StateKinds()) = %d, want 4", len(kinds))
	}
	for _, k := range kinds {
		if !k.IsState() {
			t.Errorf("%v is not a state kind", k)
		}
	}
}

func TestDrawParamsInstances(t *testing.T) {
	if got := (DrawParams{}).Instances(); got != 1 {
		t.Errorf("Instances() = %d for zero InstanceCount, want 1", got)
	}
	if got := (DrawParams{InstanceCount: 4}).Instances(); got != 4 {
		t.Errorf("Instances() = %d, want 4", got)
	}
}
