// Copyright 2025 The Wasmfoundry Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package table implements wasm tables of indirect-callable functions.
//
// A Table is a handle over reference-shared storage, like memory.Memory:
// all handles over the same storage observe the same entries.
package table

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/wasmfoundry/wasmfoundry/types"
	"github.com/wasmfoundry/wasmfoundry/vm"
)

var (
	// ErrUnsupportedElementType is returned for descriptors whose
	// element type is not anyfunc, the only type WebAssembly 1.0 defines.
	ErrUnsupportedElementType = errors.New("unsupported table element type")
	// ErrIndexOutOfBounds is returned for entry accesses past the
	// current size.
	ErrIndexOutOfBounds = errors.New("table index out of bounds")
)

type tableStorage struct {
	mu      sync.RWMutex
	entries []vm.Anyfunc
	max     *uint32
	local   *vm.LocalTable
}

// Table is a growable vector of anyfunc entries.
type Table struct {
	desc    types.TableDescriptor
	storage *tableStorage
}

// New creates a table with desc.Minimum empty entries.
func New(desc types.TableDescriptor) (*Table, error) {
	if desc.Element != types.ElementAnyfunc {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedElementType, desc.Element)
	}

	entries := make([]vm.Anyfunc, desc.Minimum)
	for i := range entries {
		entries[i] = vm.EmptyAnyfunc
	}

	storage := &tableStorage{entries: entries, max: desc.Maximum, local: &vm.LocalTable{}}
	storage.publish()
	storage.local.Storage = unsafe.Pointer(storage)
	return &Table{desc: desc, storage: storage}, nil
}

// Descriptor returns the descriptor the table was created with.
func (t *Table) Descriptor() types.TableDescriptor {
	return t.desc
}

// Size returns the current number of entries.
func (t *Table) Size() uint32 {
	t.storage.mu.RLock()
	defer t.storage.mu.RUnlock()
	return uint32(len(t.storage.entries))
}

// Grow appends delta empty entries and returns the previous size. ok is
// false, with no state change, when delta would exceed the maximum.
// Growing reallocates the entry array; the published record is updated
// before Grow returns.
func (t *Table) Grow(delta uint32) (prev uint32, ok bool) {
	t.storage.mu.Lock()
	defer t.storage.mu.Unlock()

	cur := uint32(len(t.storage.entries))
	if delta == 0 {
		return cur, true
	}
	newSize := uint64(cur) + uint64(delta)
	if t.storage.max != nil && newSize > uint64(*t.storage.max) {
		return 0, false
	}

	grown := make([]vm.Anyfunc, newSize)
	copy(grown, t.storage.entries)
	for i := cur; i < uint32(newSize); i++ {
		grown[i] = vm.EmptyAnyfunc
	}
	t.storage.entries = grown
	t.storage.publish()
	return cur, true
}

// Entry returns the entry at index i.
func (t *Table) Entry(i uint32) (vm.Anyfunc, error) {
	t.storage.mu.RLock()
	defer t.storage.mu.RUnlock()
	if i >= uint32(len(t.storage.entries)) {
		return vm.Anyfunc{}, fmt.Errorf("%w: %d >= %d", ErrIndexOutOfBounds, i, len(t.storage.entries))
	}
	return t.storage.entries[i], nil
}

// Set assigns the entry at index i.
func (t *Table) Set(i uint32, entry vm.Anyfunc) error {
	t.storage.mu.Lock()
	defer t.storage.mu.Unlock()
	if i >= uint32(len(t.storage.entries)) {
		return fmt.Errorf("%w: %d >= %d", ErrIndexOutOfBounds, i, len(t.storage.entries))
	}
	t.storage.entries[i] = entry
	return nil
}

// AnyfuncDirectAccessMut calls f with the full entry array for bulk
// initialization. The slice is only valid for the duration of the call
// and must not be held across a Grow.
func (t *Table) AnyfuncDirectAccessMut(f func([]vm.Anyfunc)) {
	t.storage.mu.Lock()
	defer t.storage.mu.Unlock()
	f(t.storage.entries)
}

// VMLocalTable returns the stable record published to generated code.
func (t *Table) VMLocalTable() *vm.LocalTable {
	return t.storage.local
}

func (t *Table) String() string {
	return fmt.Sprintf("Table{%s, size: %d}", t.desc, t.Size())
}

// publish refreshes the record read by generated code. Callers hold the
// write lock.
func (s *tableStorage) publish() {
	if len(s.entries) == 0 {
		s.local.Base = nil
		s.local.Count = 0
		return
	}
	s.local.Base = &s.entries[0]
	s.local.Count = uintptr(len(s.entries))
}
