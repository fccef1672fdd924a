// Copyright 2025 The Wasmfoundry Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package module

import (
	"testing"

	"github.com/wasmfoundry/wasmfoundry/sigregistry"
	"github.com/wasmfoundry/wasmfoundry/types"
)

func TestCombinedIndexResolution(t *testing.T) {
	m := &Module{
		Memories: []types.MemoryDescriptor{{Minimum: 1}},
		ImportedMemories: []ImportedMemory{
			{Name: types.ImportName{Namespace: "env", Name: "a"}},
			{Name: types.ImportName{Namespace: "env", Name: "b"}},
		},
	}

	// Imported entities occupy the front of the combined space.
	if _, imported, isLocal, ok := m.LocalOrImportMemory(1); !ok || isLocal || imported != 1 {
		t.Fatalf("index 1: imported=%d isLocal=%v ok=%v", imported, isLocal, ok)
	}
	if local, _, isLocal, ok := m.LocalOrImportMemory(2); !ok || !isLocal || local != 0 {
		t.Fatalf("index 2: local=%d isLocal=%v ok=%v", local, isLocal, ok)
	}
	if _, _, _, ok := m.LocalOrImportMemory(3); ok {
		t.Fatal("index 3 resolved but only 3 memories exist")
	}
}

func TestFuncIndexResolution(t *testing.T) {
	reg := sigregistry.New()
	sig := reg.Register(types.FuncSig{Params: []types.Type{types.TypeI32}})
	m := &Module{
		ImportedFunctions: []types.ImportName{{Namespace: "env", Name: "f"}},
		FuncAssoc:         []types.SigIndex{sig, sig},
		SigRegistry:       reg,
	}

	if _, imported, isLocal, ok := m.LocalOrImportFunc(0); !ok || isLocal || imported != 0 {
		t.Fatalf("index 0: imported=%d isLocal=%v ok=%v", imported, isLocal, ok)
	}
	if local, _, isLocal, ok := m.LocalOrImportFunc(1); !ok || !isLocal || local != 0 {
		t.Fatalf("index 1: local=%d isLocal=%v ok=%v", local, isLocal, ok)
	}
	if _, _, _, ok := m.LocalOrImportFunc(2); ok {
		t.Fatal("index 2 resolved past the function space")
	}

	got := m.ImportedFuncSig(0)
	if !got.Equal(types.FuncSig{Params: []types.Type{types.TypeI32}}) {
		t.Fatalf("imported signature: %s", got)
	}
}

func TestEmptyModuleResolution(t *testing.T) {
	m := &Module{}
	if _, _, _, ok := m.LocalOrImportTable(0); ok {
		t.Fatal("empty module resolved a table index")
	}
	if _, _, _, ok := m.LocalOrImportGlobal(0); ok {
		t.Fatal("empty module resolved a global index")
	}
}
