// Copyright 2025 The Wasmfoundry Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package sigregistry

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wasmfoundry/wasmfoundry/types"
	"github.com/wasmfoundry/wasmfoundry/vm"
)

func TestRegisterInterns(t *testing.T) {
	r := New()

	a := types.FuncSig{Params: []types.Type{types.TypeI32}, Returns: []types.Type{types.TypeI32}}
	b := types.FuncSig{Params: []types.Type{types.TypeI64}}

	ia := r.Register(a)
	ib := r.Register(b)
	if ia == ib {
		t.Fatal("distinct signatures share an index")
	}
	if again := r.Register(types.FuncSig{Params: []types.Type{types.TypeI32}, Returns: []types.Type{types.TypeI32}}); again != ia {
		t.Fatalf("equal signature re-registered: %d != %d", again, ia)
	}
	if r.Len() != 2 {
		t.Fatalf("registry length: %d", r.Len())
	}
}

func TestLookupSignature(t *testing.T) {
	r := New()
	sig := types.FuncSig{Params: []types.Type{types.TypeF32, types.TypeF64}}
	idx := r.Register(sig)

	if diff := cmp.Diff(sig, r.LookupSignature(idx)); diff != "" {
		t.Fatalf("unexpected signature (-want, +got):\n%s", diff)
	}
}

func TestLookupSigID(t *testing.T) {
	r := New()
	idx := r.Register(types.FuncSig{})
	if id := r.LookupSigID(idx); id == vm.SigIDInvalid {
		t.Fatal("registered signature must not carry the invalid id")
	}
	if r.LookupSigID(idx) != r.LookupSigID(idx) {
		t.Fatal("sig id must be deterministic")
	}
}
