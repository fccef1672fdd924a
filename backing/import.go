// Copyright 2025 The Wasmfoundry Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package backing materializes the per-instance state of a compiled
// module: it links declared imports against an import object, constructs
// locally-defined memories, tables and globals, applies data and element
// initializers, and publishes the pointer arrays generated code reads
// through the VM context.
package backing

import (
	"github.com/wasmfoundry/wasmfoundry/global"
	"github.com/wasmfoundry/wasmfoundry/imports"
	"github.com/wasmfoundry/wasmfoundry/memory"
	"github.com/wasmfoundry/wasmfoundry/metrics"
	"github.com/wasmfoundry/wasmfoundry/module"
	"github.com/wasmfoundry/wasmfoundry/table"
	"github.com/wasmfoundry/wasmfoundry/types"
	"github.com/wasmfoundry/wasmfoundry/vm"
)

// ImportBacking holds the resolved imports of one instance: shared
// handles over the suppliers' storage plus the raw records generated
// code reads. Each slice is dense, indexed by the matching imported
// index space.
type ImportBacking struct {
	Memories []*memory.Memory
	Tables   []*table.Table
	Globals  []*global.Global

	VMFunctions []vm.ImportedFunc
	VMMemories  []*vm.LocalMemory
	VMTables    []*vm.LocalTable
	VMGlobals   []*vm.LocalGlobal
}

// NewImportBacking resolves and type-checks every declared import of m
// against obj. vmctx is the importing instance's context; host functions
// marked internal are bound to it.
//
// All four import passes run to completion: on failure the returned
// error is the complete LinkErrors list and no backing is returned.
func NewImportBacking(m *module.Module, obj *imports.Object, vmctx *vm.Ctx, opts ...Option) (*ImportBacking, error) {
	o := applyOptions(opts)
	o.Metrics.Timer(metrics.LinkTimer).Start()
	defer o.Metrics.Timer(metrics.LinkTimer).Stop()

	b := &ImportBacking{}
	var errs LinkErrors

	b.importFunctions(m, obj, vmctx, &errs)
	b.importMemories(m, obj, &errs)
	b.importTables(m, obj, &errs)
	b.importGlobals(m, obj, &errs)

	if len(errs) > 0 {
		o.Logger.Debug("import linking failed with %d errors", len(errs))
		return nil, errs
	}

	o.Logger.Debug("linked imports: %d functions, %d memories, %d tables, %d globals",
		len(b.VMFunctions), len(b.Memories), len(b.Tables), len(b.Globals))
	return b, nil
}

func (b *ImportBacking) importFunctions(m *module.Module, obj *imports.Object, vmctx *vm.Ctx, errs *LinkErrors) {
	b.VMFunctions = make([]vm.ImportedFunc, 0, len(m.ImportedFunctions))

	for i, name := range m.ImportedFunctions {
		expected := m.ImportedFuncSig(types.ImportedFuncIndex(i))

		export, found := obj.Lookup(name)
		if !found {
			*errs = append(*errs, &ImportNotFoundError{Namespace: name.Namespace, Name: name.Name})
			continue
		}
		fn, ok := export.Function()
		if !ok {
			*errs = append(*errs, &IncorrectImportTypeError{
				Namespace: name.Namespace,
				Name:      name.Name,
				Expected:  imports.KindFunction.String(),
				Found:     export.Kind().String(),
			})
			continue
		}
		if !expected.Equal(fn.Signature) {
			*errs = append(*errs, &IncorrectImportSignatureError{
				Namespace: name.Namespace,
				Name:      name.Name,
				Expected:  expected,
				Found:     fn.Signature,
			})
			continue
		}

		b.VMFunctions = append(b.VMFunctions, vm.ImportedFunc{
			Func:  fn.Func,
			Vmctx: fn.Ctx.Resolve(vmctx),
		})
	}
}

func (b *ImportBacking) importMemories(m *module.Module, obj *imports.Object, errs *LinkErrors) {
	b.Memories = make([]*memory.Memory, 0, len(m.ImportedMemories))
	b.VMMemories = make([]*vm.LocalMemory, 0, len(m.ImportedMemories))

	for _, decl := range m.ImportedMemories {
		export, found := obj.Lookup(decl.Name)
		if !found {
			*errs = append(*errs, &ImportNotFoundError{Namespace: decl.Name.Namespace, Name: decl.Name.Name})
			continue
		}
		mem, ok := export.Memory()
		if !ok {
			*errs = append(*errs, &IncorrectImportTypeError{
				Namespace: decl.Name.Namespace,
				Name:      decl.Name.Name,
				Expected:  imports.KindMemory.String(),
				Found:     export.Kind().String(),
			})
			continue
		}
		if !mem.Descriptor().FitsIn(decl.Descriptor) {
			*errs = append(*errs, &IncorrectMemoryDescriptorError{
				Namespace: decl.Name.Namespace,
				Name:      decl.Name.Name,
				Expected:  decl.Descriptor,
				Found:     mem.Descriptor(),
			})
			continue
		}

		b.Memories = append(b.Memories, mem)
		b.VMMemories = append(b.VMMemories, mem.VMLocalMemory())
	}
}

func (b *ImportBacking) importTables(m *module.Module, obj *imports.Object, errs *LinkErrors) {
	b.Tables = make([]*table.Table, 0, len(m.ImportedTables))
	b.VMTables = make([]*vm.LocalTable, 0, len(m.ImportedTables))

	for _, decl := range m.ImportedTables {
		export, found := obj.Lookup(decl.Name)
		if !found {
			*errs = append(*errs, &ImportNotFoundError{Namespace: decl.Name.Namespace, Name: decl.Name.Name})
			continue
		}
		tbl, ok := export.Table()
		if !ok {
			*errs = append(*errs, &IncorrectImportTypeError{
				Namespace: decl.Name.Namespace,
				Name:      decl.Name.Name,
				Expected:  imports.KindTable.String(),
				Found:     export.Kind().String(),
			})
			continue
		}
		if !tbl.Descriptor().FitsIn(decl.Descriptor) {
			*errs = append(*errs, &IncorrectTableDescriptorError{
				Namespace: decl.Name.Namespace,
				Name:      decl.Name.Name,
				Expected:  decl.Descriptor,
				Found:     tbl.Descriptor(),
			})
			continue
		}

		b.Tables = append(b.Tables, tbl)
		b.VMTables = append(b.VMTables, tbl.VMLocalTable())
	}
}

func (b *ImportBacking) importGlobals(m *module.Module, obj *imports.Object, errs *LinkErrors) {
	b.Globals = make([]*global.Global, 0, len(m.ImportedGlobals))
	b.VMGlobals = make([]*vm.LocalGlobal, 0, len(m.ImportedGlobals))

	for _, decl := range m.ImportedGlobals {
		export, found := obj.Lookup(decl.Name)
		if !found {
			*errs = append(*errs, &ImportNotFoundError{Namespace: decl.Name.Namespace, Name: decl.Name.Name})
			continue
		}
		glb, ok := export.Global()
		if !ok {
			*errs = append(*errs, &IncorrectImportTypeError{
				Namespace: decl.Name.Namespace,
				Name:      decl.Name.Name,
				Expected:  imports.KindGlobal.String(),
				Found:     export.Kind().String(),
			})
			continue
		}
		if glb.Descriptor() != decl.Descriptor {
			*errs = append(*errs, &IncorrectGlobalDescriptorError{
				Namespace: decl.Name.Namespace,
				Name:      decl.Name.Name,
				Expected:  decl.Descriptor,
				Found:     glb.Descriptor(),
			})
			continue
		}

		b.Globals = append(b.Globals, glb)
		b.VMGlobals = append(b.VMGlobals, glb.VMLocalGlobal())
	}
}

// ImportedFunc returns the resolved record of one declared function
// import.
func (b *ImportBacking) ImportedFunc(idx types.ImportedFuncIndex) vm.ImportedFunc {
	return b.VMFunctions[idx]
}
