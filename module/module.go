// Copyright 2025 The Wasmfoundry Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package module defines the compiled-module view consumed by the
// backing subsystem: entity declarations, import declarations, data and
// element initializers, and the function-pointer resolver supplied by the
// code generator.
package module

import (
	"github.com/wasmfoundry/wasmfoundry/sigregistry"
	"github.com/wasmfoundry/wasmfoundry/types"
)

// FuncResolver resolves a locally-defined function to its generated code
// pointer. Implemented by the code generator.
type FuncResolver interface {
	// Get returns the non-null code pointer for the given local function,
	// or false if the function is unknown.
	Get(m *Module, idx types.LocalFuncIndex) (uintptr, bool)
}

// DataInitializer is an active data segment: bytes written into a memory
// at instantiation time.
type DataInitializer struct {
	MemoryIndex types.MemoryIndex
	Base        types.Initializer
	Data        []byte
}

// ElemInitializer is an active element segment: function references
// written into a table at instantiation time.
type ElemInitializer struct {
	TableIndex types.TableIndex
	Base       types.Initializer
	Elements   []types.FuncIndex
}

// Module is the producer contract between the parser/code generator and
// the backing subsystem. Local declarations are indexed by their local
// index space; declared imports by their imported index space. In each
// combined index space, imported entities precede local definitions.
type Module struct {
	Memories []types.MemoryDescriptor
	Tables   []types.TableDescriptor
	Globals  []types.GlobalInit

	ImportedFunctions []types.ImportName
	ImportedMemories  []ImportedMemory
	ImportedTables    []ImportedTable
	ImportedGlobals   []ImportedGlobal

	DataInitializers []DataInitializer
	ElemInitializers []ElemInitializer

	// FuncAssoc maps every function in the combined index space to its
	// signature.
	FuncAssoc []types.SigIndex

	SigRegistry  *sigregistry.Registry
	FuncResolver FuncResolver
}

// ImportedMemory is a declared memory import and the descriptor the
// supplied memory must fit in.
type ImportedMemory struct {
	Name       types.ImportName
	Descriptor types.MemoryDescriptor
}

// ImportedTable is a declared table import and the descriptor the
// supplied table must fit in.
type ImportedTable struct {
	Name       types.ImportName
	Descriptor types.TableDescriptor
}

// ImportedGlobal is a declared global import and the descriptor the
// supplied global must match exactly.
type ImportedGlobal struct {
	Name       types.ImportName
	Descriptor types.GlobalDescriptor
}

// LocalOrImportFunc resolves a combined function index. ok is false when
// the index is out of range; otherwise isLocal selects whether local or
// imported holds the resolved index.
func (m *Module) LocalOrImportFunc(idx types.FuncIndex) (local types.LocalFuncIndex, imported types.ImportedFuncIndex, isLocal, ok bool) {
	n := uint32(len(m.ImportedFunctions))
	if uint32(idx) < n {
		return 0, types.ImportedFuncIndex(idx), false, true
	}
	if int(uint32(idx)-n) < len(m.FuncAssoc)-len(m.ImportedFunctions) {
		return types.LocalFuncIndex(uint32(idx) - n), 0, true, true
	}
	return 0, 0, false, false
}

// LocalOrImportMemory resolves a combined memory index.
func (m *Module) LocalOrImportMemory(idx types.MemoryIndex) (local types.LocalMemoryIndex, imported types.ImportedMemoryIndex, isLocal, ok bool) {
	n := uint32(len(m.ImportedMemories))
	if uint32(idx) < n {
		return 0, types.ImportedMemoryIndex(idx), false, true
	}
	if int(uint32(idx)-n) < len(m.Memories) {
		return types.LocalMemoryIndex(uint32(idx) - n), 0, true, true
	}
	return 0, 0, false, false
}

// LocalOrImportTable resolves a combined table index.
func (m *Module) LocalOrImportTable(idx types.TableIndex) (local types.LocalTableIndex, imported types.ImportedTableIndex, isLocal, ok bool) {
	n := uint32(len(m.ImportedTables))
	if uint32(idx) < n {
		return 0, types.ImportedTableIndex(idx), false, true
	}
	if int(uint32(idx)-n) < len(m.Tables) {
		return types.LocalTableIndex(uint32(idx) - n), 0, true, true
	}
	return 0, 0, false, false
}

// LocalOrImportGlobal resolves a combined global index.
func (m *Module) LocalOrImportGlobal(idx types.GlobalIndex) (local types.LocalGlobalIndex, imported types.ImportedGlobalIndex, isLocal, ok bool) {
	n := uint32(len(m.ImportedGlobals))
	if uint32(idx) < n {
		return 0, types.ImportedGlobalIndex(idx), false, true
	}
	if int(uint32(idx)-n) < len(m.Globals) {
		return types.LocalGlobalIndex(uint32(idx) - n), 0, true, true
	}
	return 0, 0, false, false
}

// ImportedFuncSig returns the expected signature of a declared function
// import. Imported functions occupy the front of the combined function
// index space, so FuncAssoc is addressed directly.
func (m *Module) ImportedFuncSig(idx types.ImportedFuncIndex) types.FuncSig {
	return m.SigRegistry.LookupSignature(m.FuncAssoc[idx])
}
