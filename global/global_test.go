// Copyright 2025 The Wasmfoundry Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package global

import (
	"errors"
	"testing"

	"github.com/wasmfoundry/wasmfoundry/types"
)

func TestImmutableGlobal(t *testing.T) {
	g := New(types.I32(42))
	if g.Descriptor().Mutable {
		t.Fatal("expected immutable descriptor")
	}
	if got := g.Get(); got != types.I32(42) {
		t.Fatalf("get: %v", got)
	}
	if err := g.Set(types.I32(1)); !errors.Is(err, ErrImmutableGlobal) {
		t.Fatalf("expected immutability error, got %v", err)
	}
	if got := g.Get(); got != types.I32(42) {
		t.Fatalf("value changed after rejected set: %v", got)
	}
}

func TestMutableGlobal(t *testing.T) {
	g := NewMutable(types.I64(-1))
	if err := g.Set(types.I64(7)); err != nil {
		t.Fatal(err)
	}
	if got := g.Get(); got != types.I64(7) {
		t.Fatalf("get after set: %v", got)
	}

	if err := g.Set(types.F64(1.0)); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected type mismatch, got %v", err)
	}
	if got := g.Get(); got != types.I64(7) {
		t.Fatalf("value changed after rejected set: %v", got)
	}
}

func TestFloatGlobals(t *testing.T) {
	f32 := NewMutable(types.F32(1.5))
	if got := f32.Get(); got.F32() != 1.5 {
		t.Fatalf("f32: %v", got)
	}
	f64 := New(types.F64(-2.25))
	if got := f64.Get(); got.F64() != -2.25 {
		t.Fatalf("f64: %v", got)
	}
}

func TestVMLocalGlobal(t *testing.T) {
	g := NewMutable(types.I32(3))
	cell := g.VMLocalGlobal()
	if cell.Data != 3 {
		t.Fatalf("cell: %d", cell.Data)
	}
	if err := g.Set(types.I32(9)); err != nil {
		t.Fatal(err)
	}
	if cell.Data != 9 {
		t.Fatal("published cell not updated in place")
	}
	if g.VMLocalGlobal() != cell {
		t.Fatal("cell address must be stable")
	}
}
