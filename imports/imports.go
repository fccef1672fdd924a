// Copyright 2025 The Wasmfoundry Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package imports defines the import object an embedder supplies at
// instantiation: namespaces of named exports. An export is a host
// function, or a memory/table/global handle — possibly one owned by
// another instance, which is how entities are shared between instances.
package imports

import (
	"github.com/wasmfoundry/wasmfoundry/global"
	"github.com/wasmfoundry/wasmfoundry/memory"
	"github.com/wasmfoundry/wasmfoundry/table"
	"github.com/wasmfoundry/wasmfoundry/types"
	"github.com/wasmfoundry/wasmfoundry/vm"
)

// Kind discriminates the export variants.
type Kind int

const (
	KindFunction Kind = iota
	KindMemory
	KindTable
	KindGlobal
)

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindMemory:
		return "memory"
	case KindTable:
		return "table"
	case KindGlobal:
		return "global"
	}
	return "invalid"
}

// FuncCtx selects the VM context an imported function is called with.
// The zero value is Internal: the linker substitutes the importing
// instance's own context.
type FuncCtx struct {
	external *vm.Ctx
}

// Internal marks a function as running against the importing instance's
// context.
func Internal() FuncCtx {
	return FuncCtx{}
}

// External marks a function as running against the supplier's context.
func External(ctx *vm.Ctx) FuncCtx {
	return FuncCtx{external: ctx}
}

// Resolve returns the context pointer to store for an importing instance
// whose own context is vmctx.
func (c FuncCtx) Resolve(vmctx *vm.Ctx) *vm.Ctx {
	if c.external != nil {
		return c.external
	}
	return vmctx
}

// Function is an importable function: a raw code pointer, the context it
// expects, and its signature.
type Function struct {
	Func      uintptr
	Ctx       FuncCtx
	Signature types.FuncSig
}

// Export is one entry of a namespace. Exactly one of the variants is set;
// use the accessor matching Kind.
type Export struct {
	kind Kind
	fn   Function
	mem  *memory.Memory
	tbl  *table.Table
	glb  *global.Global
}

// ExportFunction wraps a host function as an export.
func ExportFunction(f Function) Export {
	return Export{kind: KindFunction, fn: f}
}

// ExportMemory wraps a memory handle as an export.
func ExportMemory(m *memory.Memory) Export {
	return Export{kind: KindMemory, mem: m}
}

// ExportTable wraps a table handle as an export.
func ExportTable(t *table.Table) Export {
	return Export{kind: KindTable, tbl: t}
}

// ExportGlobal wraps a global handle as an export.
func ExportGlobal(g *global.Global) Export {
	return Export{kind: KindGlobal, glb: g}
}

// Kind returns the variant held by the export.
func (e Export) Kind() Kind { return e.kind }

// Function returns the function variant.
func (e Export) Function() (Function, bool) {
	return e.fn, e.kind == KindFunction
}

// Memory returns the memory variant.
func (e Export) Memory() (*memory.Memory, bool) {
	return e.mem, e.kind == KindMemory
}

// Table returns the table variant.
func (e Export) Table() (*table.Table, bool) {
	return e.tbl, e.kind == KindTable
}

// Global returns the global variant.
func (e Export) Global() (*global.Global, bool) {
	return e.glb, e.kind == KindGlobal
}

// Namespace is a map of named exports.
type Namespace struct {
	exports map[string]Export
}

// NewNamespace returns an empty namespace.
func NewNamespace() *Namespace {
	return &Namespace{exports: map[string]Export{}}
}

// Insert adds or replaces the export stored under name.
func (n *Namespace) Insert(name string, e Export) {
	n.exports[name] = e
}

// Get returns the export stored under name.
func (n *Namespace) Get(name string) (Export, bool) {
	e, ok := n.exports[name]
	return e, ok
}

// Object is the set of namespaces supplied at instantiation.
type Object struct {
	namespaces map[string]*Namespace
}

// NewObject returns an empty import object.
func NewObject() *Object {
	return &Object{namespaces: map[string]*Namespace{}}
}

// Register adds or replaces a namespace, returning the previous one if
// present.
func (o *Object) Register(name string, ns *Namespace) (*Namespace, bool) {
	prev, ok := o.namespaces[name]
	o.namespaces[name] = ns
	return prev, ok
}

// Namespace returns the namespace registered under name.
func (o *Object) Namespace(name string) (*Namespace, bool) {
	ns, ok := o.namespaces[name]
	return ns, ok
}

// Lookup resolves a declared import name to its export.
func (o *Object) Lookup(name types.ImportName) (Export, bool) {
	ns, ok := o.namespaces[name.Namespace]
	if !ok {
		return Export{}, false
	}
	return ns.Get(name.Name)
}
