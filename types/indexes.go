// Copyright 2025 The Wasmfoundry Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package types

// Each entity kind has three index spaces. The combined ("logical") space
// is the one wasm instructions use: imported entities come first, local
// definitions follow. The module view resolves a combined index to one
// side or the other.

// FuncIndex is a combined function index.
type FuncIndex uint32

// LocalFuncIndex names a function defined in the current module.
type LocalFuncIndex uint32

// ImportedFuncIndex names a declared function import.
type ImportedFuncIndex uint32

// MemoryIndex is a combined memory index.
type MemoryIndex uint32

// LocalMemoryIndex names a memory defined in the current module.
type LocalMemoryIndex uint32

// ImportedMemoryIndex names a declared memory import.
type ImportedMemoryIndex uint32

// TableIndex is a combined table index.
type TableIndex uint32

// LocalTableIndex names a table defined in the current module.
type LocalTableIndex uint32

// ImportedTableIndex names a declared table import.
type ImportedTableIndex uint32

// GlobalIndex is a combined global index.
type GlobalIndex uint32

// LocalGlobalIndex names a global defined in the current module.
type LocalGlobalIndex uint32

// ImportedGlobalIndex names a declared global import.
type ImportedGlobalIndex uint32

// SigIndex names an interned function signature.
type SigIndex uint32
