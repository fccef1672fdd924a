// Copyright 2025 The Wasmfoundry Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package imports

import (
	"testing"

	"github.com/wasmfoundry/wasmfoundry/global"
	"github.com/wasmfoundry/wasmfoundry/memory"
	"github.com/wasmfoundry/wasmfoundry/types"
	"github.com/wasmfoundry/wasmfoundry/vm"
)

func TestObjectLookup(t *testing.T) {
	obj := NewObject()
	ns := NewNamespace()
	ns.Insert("g", ExportGlobal(global.New(types.I32(1))))
	obj.Register("env", ns)

	if _, ok := obj.Lookup(types.ImportName{Namespace: "env", Name: "g"}); !ok {
		t.Fatal("registered export not found")
	}
	if _, ok := obj.Lookup(types.ImportName{Namespace: "env", Name: "missing"}); ok {
		t.Fatal("missing name resolved")
	}
	if _, ok := obj.Lookup(types.ImportName{Namespace: "missing", Name: "g"}); ok {
		t.Fatal("missing namespace resolved")
	}
}

func TestExportKinds(t *testing.T) {
	mem, err := memory.New(types.MemoryDescriptor{Minimum: 0})
	if err != nil {
		t.Fatal(err)
	}
	defer mem.Close()

	e := ExportMemory(mem)
	if e.Kind() != KindMemory {
		t.Fatalf("kind: %s", e.Kind())
	}
	if got, ok := e.Memory(); !ok || got != mem {
		t.Fatal("memory accessor failed")
	}
	if _, ok := e.Global(); ok {
		t.Fatal("wrong-kind accessor succeeded")
	}

	f := ExportFunction(Function{Func: 0x100, Signature: types.FuncSig{}})
	if f.Kind() != KindFunction {
		t.Fatalf("kind: %s", f.Kind())
	}
}

func TestFuncCtxResolve(t *testing.T) {
	own := &vm.Ctx{}
	other := &vm.Ctx{}

	if got := Internal().Resolve(own); got != own {
		t.Fatal("internal context must resolve to the importer's context")
	}
	if got := External(other).Resolve(own); got != other {
		t.Fatal("external context must be used verbatim")
	}
}

func TestRegisterReplaces(t *testing.T) {
	obj := NewObject()
	first := NewNamespace()
	obj.Register("env", first)

	second := NewNamespace()
	prev, had := obj.Register("env", second)
	if !had || prev != first {
		t.Fatal("previous namespace not returned")
	}
	if got, _ := obj.Namespace("env"); got != second {
		t.Fatal("namespace not replaced")
	}
}
