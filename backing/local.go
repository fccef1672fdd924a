// Copyright 2025 The Wasmfoundry Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package backing

import (
	"github.com/wasmfoundry/wasmfoundry/global"
	"github.com/wasmfoundry/wasmfoundry/memory"
	"github.com/wasmfoundry/wasmfoundry/metrics"
	"github.com/wasmfoundry/wasmfoundry/module"
	"github.com/wasmfoundry/wasmfoundry/table"
	"github.com/wasmfoundry/wasmfoundry/types"
	"github.com/wasmfoundry/wasmfoundry/units"
	"github.com/wasmfoundry/wasmfoundry/vm"
)

// LocalBacking owns the locally-defined memories, tables and globals of
// one instance, together with the record arrays generated code reads.
// Each slice is dense, indexed by the matching local index space.
type LocalBacking struct {
	Memories []*memory.Memory
	Tables   []*table.Table
	Globals  []*global.Global

	VMMemories []*vm.LocalMemory
	VMTables   []*vm.LocalTable
	VMGlobals  []*vm.LocalGlobal
}

// NewLocalBacking constructs the local entities of m, applies every data
// and element initializer (into local or imported storage), and
// publishes the pointer arrays of both backings into vmctx. Construction
// proceeds in declaration order; the first failing initializer aborts
// instantiation.
//
// Element initializers that target an imported table write entries
// carrying this instance's context and code pointers into the supplier's
// storage. Nothing in this package removes those entries when the
// instance is discarded.
func NewLocalBacking(m *module.Module, imp *ImportBacking, vmctx *vm.Ctx, opts ...Option) (*LocalBacking, error) {
	o := applyOptions(opts)

	b := &LocalBacking{}

	o.Metrics.Timer(metrics.BackingMemoriesTimer).Start()
	if err := b.generateMemories(m); err != nil {
		return nil, err
	}
	o.Metrics.Timer(metrics.BackingMemoriesTimer).Stop()

	o.Metrics.Timer(metrics.BackingTablesTimer).Start()
	if err := b.generateTables(m); err != nil {
		return nil, err
	}
	o.Metrics.Timer(metrics.BackingTablesTimer).Stop()

	o.Metrics.Timer(metrics.BackingGlobalsTimer).Start()
	if err := b.generateGlobals(m, imp); err != nil {
		return nil, err
	}
	o.Metrics.Timer(metrics.BackingGlobalsTimer).Stop()

	if err := b.finalizeMemories(m, imp); err != nil {
		return nil, err
	}
	if err := b.finalizeTables(m, imp, vmctx); err != nil {
		return nil, err
	}
	b.finalizeGlobals()

	b.publish(vmctx, imp)

	o.Logger.Debug("local backing ready: %d memories, %d tables, %d globals",
		len(b.Memories), len(b.Tables), len(b.Globals))
	return b, nil
}

func (b *LocalBacking) generateMemories(m *module.Module) error {
	b.Memories = make([]*memory.Memory, 0, len(m.Memories))
	for _, desc := range m.Memories {
		mem, err := memory.New(desc)
		if err != nil {
			return err
		}
		b.Memories = append(b.Memories, mem)
	}
	return nil
}

func (b *LocalBacking) generateTables(m *module.Module) error {
	b.Tables = make([]*table.Table, 0, len(m.Tables))
	for _, desc := range m.Tables {
		tbl, err := table.New(desc)
		if err != nil {
			return err
		}
		b.Tables = append(b.Tables, tbl)
	}
	return nil
}

func (b *LocalBacking) generateGlobals(m *module.Module, imp *ImportBacking) error {
	b.Globals = make([]*global.Global, 0, len(m.Globals))
	for i, init := range m.Globals {
		var value types.Value
		switch expr := init.Init.(type) {
		case types.Const:
			value = expr.Value
		case types.GetGlobal:
			if int(expr.Index) >= len(imp.Globals) {
				return validationErrorf("global %d initializer references unknown imported global %d", i, expr.Index)
			}
			value = imp.Globals[expr.Index].Get()
		default:
			return validationErrorf("global %d has an unsupported initializer", i)
		}
		if value.Type() != init.Desc.Ty {
			return validationErrorf("global %d initializer type %s does not match declared %s", i, value.Type(), init.Desc.Ty)
		}

		if init.Desc.Mutable {
			b.Globals = append(b.Globals, global.NewMutable(value))
		} else {
			b.Globals = append(b.Globals, global.New(value))
		}
	}
	return nil
}

// initBase evaluates the base expression of a data or element
// initializer. Only i32 constants and i32-typed imported globals are
// accepted.
func initBase(init types.Initializer, imp *ImportBacking) (uint32, error) {
	switch expr := init.(type) {
	case types.Const:
		if expr.Value.Type() != types.TypeI32 {
			return 0, validationErrorf("initializer base constant must be i32, have %s", expr.Value.Type())
		}
		return uint32(expr.Value.I32()), nil
	case types.GetGlobal:
		if int(expr.Index) >= len(imp.Globals) {
			return 0, validationErrorf("initializer base references unknown imported global %d", expr.Index)
		}
		value := imp.Globals[expr.Index].Get()
		if value.Type() != types.TypeI32 {
			return 0, validationErrorf("initializer base global must be i32, have %s", value.Type())
		}
		return uint32(value.I32()), nil
	default:
		return 0, validationErrorf("unsupported initializer base expression")
	}
}

func (b *LocalBacking) finalizeMemories(m *module.Module, imp *ImportBacking) error {
	for _, init := range m.DataInitializers {
		if len(init.Data) == 0 {
			continue
		}

		base, err := initBase(init.Base, imp)
		if err != nil {
			return err
		}
		top := uint64(base) + uint64(len(init.Data))

		local, imported, isLocal, ok := m.LocalOrImportMemory(init.MemoryIndex)
		if !ok {
			return validationErrorf("data initializer targets unknown memory %d", init.MemoryIndex)
		}

		if isLocal {
			desc := m.Memories[local]
			if top > uint64(desc.Minimum.Bytes()) {
				return validationErrorf("data initializer [%d, %d) exceeds memory %d minimum of %s",
					base, top, init.MemoryIndex, desc.Minimum)
			}
			if err := b.Memories[local].Write(base, init.Data); err != nil {
				return validationErrorf("data initializer write failed: %v", err)
			}
		} else {
			// Write straight through the supplier's published record, the
			// same view generated code uses.
			rec := imp.VMMemories[imported]
			bytes := rec.Bytes()
			if top > uint64(len(bytes)) {
				return validationErrorf("data initializer [%d, %d) exceeds imported memory %d bound of %d",
					base, top, imported, len(bytes))
			}
			copy(bytes[base:top], init.Data)
		}
	}
	return nil
}

func (b *LocalBacking) finalizeTables(m *module.Module, imp *ImportBacking, vmctx *vm.Ctx) error {
	for _, init := range m.ElemInitializers {
		base, err := initBase(init.Base, imp)
		if err != nil {
			return err
		}
		top := uint64(base) + uint64(len(init.Elements))

		local, imported, isLocal, ok := m.LocalOrImportTable(init.TableIndex)
		if !ok {
			return validationErrorf("element initializer targets unknown table %d", init.TableIndex)
		}

		var tbl *table.Table
		if isLocal {
			tbl = b.Tables[local]
		} else {
			tbl = imp.Tables[imported]
		}

		if uint64(tbl.Size()) < top {
			delta := uint32(top - uint64(tbl.Size()))
			if _, ok := tbl.Grow(delta); !ok {
				return validationErrorf("element initializer [%d, %d) cannot grow table %d past its maximum",
					base, top, init.TableIndex)
			}
		}

		entries := make([]vm.Anyfunc, len(init.Elements))
		for i, funcIdx := range init.Elements {
			entry, err := b.resolveAnyfunc(m, imp, vmctx, funcIdx)
			if err != nil {
				return err
			}
			entries[i] = entry
		}

		tbl.AnyfuncDirectAccessMut(func(slots []vm.Anyfunc) {
			copy(slots[base:top], entries)
		})
	}
	return nil
}

// resolveAnyfunc builds the table entry for a combined function index:
// the code pointer, the context the function runs against, and its
// interned signature id.
func (b *LocalBacking) resolveAnyfunc(m *module.Module, imp *ImportBacking, vmctx *vm.Ctx, funcIdx types.FuncIndex) (vm.Anyfunc, error) {
	if int(funcIdx) >= len(m.FuncAssoc) {
		return vm.Anyfunc{}, validationErrorf("element initializer references unknown function %d", funcIdx)
	}
	sigID := m.SigRegistry.LookupSigID(m.FuncAssoc[funcIdx])

	local, imported, isLocal, ok := m.LocalOrImportFunc(funcIdx)
	if !ok {
		return vm.Anyfunc{}, validationErrorf("element initializer references unknown function %d", funcIdx)
	}

	if isLocal {
		ptr, found := m.FuncResolver.Get(m, local)
		if !found {
			return vm.Anyfunc{}, validationErrorf("no code pointer for local function %d", local)
		}
		return vm.Anyfunc{Func: ptr, Ctx: vmctx, SigID: sigID}, nil
	}

	rec := imp.VMFunctions[imported]
	return vm.Anyfunc{Func: rec.Func, Ctx: rec.Vmctx, SigID: sigID}, nil
}

func (b *LocalBacking) finalizeGlobals() {
	b.VMGlobals = make([]*vm.LocalGlobal, len(b.Globals))
	for i, g := range b.Globals {
		b.VMGlobals[i] = g.VMLocalGlobal()
	}
}

// publish writes the pointer arrays of both backings into the context.
// Empty arrays leave the corresponding field nil.
func (b *LocalBacking) publish(vmctx *vm.Ctx, imp *ImportBacking) {
	b.VMMemories = make([]*vm.LocalMemory, len(b.Memories))
	for i, mem := range b.Memories {
		b.VMMemories[i] = mem.VMLocalMemory()
	}
	b.VMTables = make([]*vm.LocalTable, len(b.Tables))
	for i, tbl := range b.Tables {
		b.VMTables[i] = tbl.VMLocalTable()
	}

	if len(b.VMMemories) > 0 {
		vmctx.Memories = &b.VMMemories[0]
	}
	if len(b.VMTables) > 0 {
		vmctx.Tables = &b.VMTables[0]
	}
	if len(b.VMGlobals) > 0 {
		vmctx.Globals = &b.VMGlobals[0]
	}
	if len(imp.VMMemories) > 0 {
		vmctx.ImportedMemories = &imp.VMMemories[0]
	}
	if len(imp.VMTables) > 0 {
		vmctx.ImportedTables = &imp.VMTables[0]
	}
	if len(imp.VMGlobals) > 0 {
		vmctx.ImportedGlobals = &imp.VMGlobals[0]
	}
	if len(imp.VMFunctions) > 0 {
		vmctx.ImportedFuncs = &imp.VMFunctions[0]
	}
}

// GrowMemory grows the i-th local memory and keeps the published record
// coherent, counting the event.
func (b *LocalBacking) GrowMemory(idx types.LocalMemoryIndex, delta units.Pages, opts ...Option) (units.Pages, bool) {
	o := applyOptions(opts)
	prev, ok := b.Memories[idx].Grow(delta)
	if ok {
		o.Metrics.Counter(metrics.MemoryGrowCounter).Incr()
		o.Logger.Debug("memory %d grown by %s (was %s)", idx, delta, prev)
	}
	return prev, ok
}
