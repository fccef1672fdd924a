// Copyright 2025 The Wasmfoundry Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package vm defines the per-instance context structure dereferenced by
// generated machine code. The field layouts here are ABI: generated code
// addresses them by the byte offsets documented below, so any change to a
// struct in this package is a calling-convention change.
package vm

import (
	"math"
	"unsafe"
)

// SigID is the compact signature identifier compared at indirect call
// sites against the callee entry's id.
type SigID uint32

// SigIDInvalid marks an uninitialized table entry. No registered
// signature ever receives this id, so an indirect call through an empty
// slot always fails its type check.
const SigIDInvalid SigID = math.MaxUint32

// LocalMemory is the record generated code reads to access one linear
// memory without synchronization. Base and Bound always describe the
// current accessible region; the owning storage updates them in place on
// grow.
//
// Offsets: Base +0, Bound +8, Storage +16.
type LocalMemory struct {
	// Base is the start of the accessible byte region.
	Base *byte
	// Bound is the length of the accessible region in bytes.
	Bound uintptr
	// Storage points back at the owning memory storage. Opaque to
	// generated code.
	Storage unsafe.Pointer
}

// Bytes returns the accessible region described by the record.
func (m *LocalMemory) Bytes() []byte {
	if m.Base == nil || m.Bound == 0 {
		return nil
	}
	return unsafe.Slice(m.Base, m.Bound)
}

// LocalTable is the record generated code reads to perform an indirect
// call through one table.
//
// Offsets: Base +0, Count +8, Storage +16.
type LocalTable struct {
	// Base is the start of the dense Anyfunc entry array.
	Base *Anyfunc
	// Count is the current number of entries.
	Count uintptr
	// Storage points back at the owning table storage. Opaque to
	// generated code.
	Storage unsafe.Pointer
}

// LocalGlobal is the backing cell of one global. Values of every wasm
// type are held in the low bits of a single 64-bit word.
//
// Offsets: Data +0.
type LocalGlobal struct {
	Data uint64
}

// ImportedFunc pairs the code pointer of an imported function with the
// context it must be called with.
//
// Offsets: Func +0, Vmctx +8.
type ImportedFunc struct {
	Func  uintptr
	Vmctx *Ctx
}

// Anyfunc is one table entry: a callable function as seen by
// call_indirect.
//
// Offsets: Func +0, Ctx +8, SigID +16 (struct size 24 after padding).
type Anyfunc struct {
	Func  uintptr
	Ctx   *Ctx
	SigID SigID
}

// EmptyAnyfunc is the value held by table slots that have no function
// assigned.
var EmptyAnyfunc = Anyfunc{SigID: SigIDInvalid}

// Ctx is the per-instance context. Generated code receives a *Ctx as its
// hidden first argument and reaches all instance state through the
// pointer arrays below, each dense and indexed by the matching local or
// imported index space.
type Ctx struct {
	// Memories points at the first element of the local-memory record
	// array. Offset +0.
	Memories **LocalMemory
	// Tables points at the first element of the local-table record
	// array. Offset +8.
	Tables **LocalTable
	// Globals points at the first element of the local-global record
	// array. Offset +16.
	Globals **LocalGlobal
	// ImportedMemories points at the first imported-memory record
	// pointer. Offset +24.
	ImportedMemories **LocalMemory
	// ImportedTables points at the first imported-table record pointer.
	// Offset +32.
	ImportedTables **LocalTable
	// ImportedGlobals points at the first imported-global record
	// pointer. Offset +40.
	ImportedGlobals **LocalGlobal
	// ImportedFuncs points at the first imported-function record.
	// Offset +48.
	ImportedFuncs *ImportedFunc
}

// Byte offsets of the Ctx fields, fixed by the calling convention with
// generated code. vm_test.go asserts they match the struct layout.
const (
	CtxOffsetMemories         = 0
	CtxOffsetTables           = 8
	CtxOffsetGlobals          = 16
	CtxOffsetImportedMemories = 24
	CtxOffsetImportedTables   = 32
	CtxOffsetImportedGlobals  = 40
	CtxOffsetImportedFuncs    = 48
)

// LocalMemoryAt returns the i-th local memory record.
func (c *Ctx) LocalMemoryAt(i uint32) *LocalMemory {
	return *ptrArrayAt(c.Memories, i)
}

// LocalTableAt returns the i-th local table record.
func (c *Ctx) LocalTableAt(i uint32) *LocalTable {
	return *ptrArrayAt(c.Tables, i)
}

// LocalGlobalAt returns the i-th local global cell.
func (c *Ctx) LocalGlobalAt(i uint32) *LocalGlobal {
	return *ptrArrayAt(c.Globals, i)
}

// ImportedMemoryAt returns the i-th imported memory record.
func (c *Ctx) ImportedMemoryAt(i uint32) *LocalMemory {
	return *ptrArrayAt(c.ImportedMemories, i)
}

// ImportedTableAt returns the i-th imported table record.
func (c *Ctx) ImportedTableAt(i uint32) *LocalTable {
	return *ptrArrayAt(c.ImportedTables, i)
}

// ImportedGlobalAt returns the i-th imported global cell.
func (c *Ctx) ImportedGlobalAt(i uint32) *LocalGlobal {
	return *ptrArrayAt(c.ImportedGlobals, i)
}

// ImportedFuncAt returns the i-th imported function record.
func (c *Ctx) ImportedFuncAt(i uint32) ImportedFunc {
	return unsafe.Slice(c.ImportedFuncs, i+1)[i]
}

func ptrArrayAt[T any](base **T, i uint32) **T {
	return &unsafe.Slice(base, i+1)[i]
}
