// Copyright 2025 The Wasmfoundry Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package vm

import (
	"testing"
	"unsafe"
)

// The context layout is part of the calling convention with generated
// code. These tests pin the offsets so an accidental field change fails
// loudly.
func TestCtxOffsets(t *testing.T) {
	var ctx Ctx
	tests := []struct {
		field  string
		offset uintptr
		want   uintptr
	}{
		{"Memories", unsafe.Offsetof(ctx.Memories), CtxOffsetMemories},
		{"Tables", unsafe.Offsetof(ctx.Tables), CtxOffsetTables},
		{"Globals", unsafe.Offsetof(ctx.Globals), CtxOffsetGlobals},
		{"ImportedMemories", unsafe.Offsetof(ctx.ImportedMemories), CtxOffsetImportedMemories},
		{"ImportedTables", unsafe.Offsetof(ctx.ImportedTables), CtxOffsetImportedTables},
		{"ImportedGlobals", unsafe.Offsetof(ctx.ImportedGlobals), CtxOffsetImportedGlobals},
		{"ImportedFuncs", unsafe.Offsetof(ctx.ImportedFuncs), CtxOffsetImportedFuncs},
	}
	for _, tc := range tests {
		if tc.offset != tc.want {
			t.Errorf("Ctx.%s at offset %d, ABI requires %d", tc.field, tc.offset, tc.want)
		}
	}
}

func TestRecordOffsets(t *testing.T) {
	var m LocalMemory
	if unsafe.Offsetof(m.Base) != 0 || unsafe.Offsetof(m.Bound) != 8 || unsafe.Offsetof(m.Storage) != 16 {
		t.Fatal("LocalMemory layout changed")
	}
	var tbl LocalTable
	if unsafe.Offsetof(tbl.Base) != 0 || unsafe.Offsetof(tbl.Count) != 8 || unsafe.Offsetof(tbl.Storage) != 16 {
		t.Fatal("LocalTable layout changed")
	}
	var f ImportedFunc
	if unsafe.Offsetof(f.Func) != 0 || unsafe.Offsetof(f.Vmctx) != 8 {
		t.Fatal("ImportedFunc layout changed")
	}
	var a Anyfunc
	if unsafe.Offsetof(a.Func) != 0 || unsafe.Offsetof(a.Ctx) != 8 || unsafe.Offsetof(a.SigID) != 16 {
		t.Fatal("Anyfunc layout changed")
	}
}

func TestEmptyAnyfunc(t *testing.T) {
	if EmptyAnyfunc.Func != 0 || EmptyAnyfunc.Ctx != nil {
		t.Fatal("empty entry must carry no function")
	}
	if EmptyAnyfunc.SigID != SigIDInvalid {
		t.Fatal("empty entry must never pass an indirect-call type check")
	}
}

func TestCtxArrayAccessors(t *testing.T) {
	memRecs := []*LocalMemory{{Bound: 1}, {Bound: 2}, {Bound: 3}}
	funcRecs := []ImportedFunc{{Func: 0x10}, {Func: 0x20}}

	ctx := &Ctx{
		Memories:      &memRecs[0],
		ImportedFuncs: &funcRecs[0],
	}

	for i, want := range memRecs {
		if got := ctx.LocalMemoryAt(uint32(i)); got != want {
			t.Fatalf("memory %d: got %p, want %p", i, got, want)
		}
	}
	if got := ctx.ImportedFuncAt(1).Func; got != 0x20 {
		t.Fatalf("imported func 1: got %#x", got)
	}
}

func TestLocalMemoryBytes(t *testing.T) {
	var empty LocalMemory
	if empty.Bytes() != nil {
		t.Fatal("empty record must expose no bytes")
	}

	buf := make([]byte, 16)
	buf[3] = 0x7f
	rec := LocalMemory{Base: &buf[0], Bound: uintptr(len(buf))}
	view := rec.Bytes()
	if len(view) != 16 || view[3] != 0x7f {
		t.Fatalf("unexpected view: len=%d", len(view))
	}
	view[4] = 0x11
	if buf[4] != 0x11 {
		t.Fatal("view must alias the underlying bytes")
	}
}
