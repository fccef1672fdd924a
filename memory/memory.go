// Copyright 2025 The Wasmfoundry Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package memory implements wasm linear memories on top of reserved OS
// mappings with trailing guard regions.
//
// A Memory is a handle over reference-shared storage: passing the same
// *Memory to several instances makes them observe the same bytes. All
// access goes through a reader/writer lock; raw slices obtained through
// the bulk accessors must not be held across a Grow.
package memory

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"unsafe"

	"github.com/wasmfoundry/wasmfoundry/types"
	"github.com/wasmfoundry/wasmfoundry/units"
	"github.com/wasmfoundry/wasmfoundry/vm"
)

var (
	// ErrUnableToCreateMemory is the creation-failure class: the OS
	// mapping or a protection change failed.
	ErrUnableToCreateMemory = errors.New("unable to create memory")
	// ErrSharedMemoryUnsupported is returned for descriptors with the
	// shared flag; shared memories are an acknowledged gap.
	ErrSharedMemoryUnsupported = errors.New("shared memories are not supported")
	// ErrOutOfBounds is returned by typed reads and writes whose range
	// exceeds the accessible region.
	ErrOutOfBounds = errors.New("out of bounds memory access")
)

// Kind selects the storage strategy for a descriptor.
type Kind int

const (
	// KindDynamic reserves only the minimum and reallocates on grow.
	KindDynamic Kind = iota
	// KindStatic pre-reserves the maximum and grows in place.
	KindStatic
	// KindSharedStatic is declared but unimplemented.
	KindSharedStatic
)

func (k Kind) String() string {
	switch k {
	case KindDynamic:
		return "dynamic"
	case KindStatic:
		return "static"
	case KindSharedStatic:
		return "shared-static"
	}
	return "invalid"
}

// KindFor returns the storage kind a descriptor selects: shared
// descriptors are shared-static, bounded ones static, unbounded ones
// dynamic.
func KindFor(desc types.MemoryDescriptor) Kind {
	switch {
	case desc.Shared:
		return KindSharedStatic
	case desc.Maximum != nil:
		return KindStatic
	default:
		return KindDynamic
	}
}

type backingStore interface {
	size() units.Pages
	// grow extends the memory by delta pages, updating the published
	// record, and returns the previous page count. ok is false when the
	// maximum would be exceeded or allocation fails.
	grow(delta units.Pages, local *vm.LocalMemory) (prev units.Pages, ok bool)
	// slice returns the accessible region.
	slice() []byte
	free() error
}

type sharedStorage struct {
	mu    sync.RWMutex
	store backingStore
	local *vm.LocalMemory
}

// Memory is a linear memory handle. Handles created from the same Memory
// (by copying the pointer) share one storage.
type Memory struct {
	desc    types.MemoryDescriptor
	storage *sharedStorage
}

// New creates a linear memory for the given descriptor. The accessible
// region starts at desc.Minimum pages, followed by a guard region that
// faults on access.
func New(desc types.MemoryDescriptor) (*Memory, error) {
	local := &vm.LocalMemory{}

	var store backingStore
	var err error
	switch KindFor(desc) {
	case KindDynamic:
		store, err = newDynamicStore(desc, local)
	case KindStatic:
		store, err = newStaticStore(desc, local)
	case KindSharedStatic:
		return nil, fmt.Errorf("%w: %w", ErrUnableToCreateMemory, ErrSharedMemoryUnsupported)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnableToCreateMemory, err)
	}

	storage := &sharedStorage{store: store, local: local}
	local.Storage = unsafe.Pointer(storage)
	return &Memory{desc: desc, storage: storage}, nil
}

// Descriptor returns the descriptor the memory was created with.
func (m *Memory) Descriptor() types.MemoryDescriptor {
	return m.desc
}

// Kind returns the storage kind in use.
func (m *Memory) Kind() Kind {
	return KindFor(m.desc)
}

// Size returns the current size in wasm pages.
func (m *Memory) Size() units.Pages {
	m.storage.mu.RLock()
	defer m.storage.mu.RUnlock()
	return m.storage.store.size()
}

// Grow extends the memory by delta pages and returns the previous page
// count. ok is false, with no state change, when delta would exceed the
// maximum or the allocation fails. Growing by zero returns the current
// size.
func (m *Memory) Grow(delta units.Pages) (prev units.Pages, ok bool) {
	m.storage.mu.Lock()
	defer m.storage.mu.Unlock()
	return m.storage.store.grow(delta, m.storage.local)
}

// VMLocalMemory returns the stable record published to generated code.
// The record's address never changes for the life of the memory; its Base
// and Bound fields track the current accessible region.
func (m *Memory) VMLocalMemory() *vm.LocalMemory {
	return m.storage.local
}

// Close releases the OS mapping backing this memory. All handles over the
// same storage become invalid.
func (m *Memory) Close() error {
	m.storage.mu.Lock()
	defer m.storage.mu.Unlock()
	return m.storage.store.free()
}

func (m *Memory) String() string {
	return fmt.Sprintf("Memory{%s, %s, size: %s}", m.desc, m.Kind(), m.Size())
}

// ReadByte reads the byte at offset.
func (m *Memory) ReadByte(offset uint32) (byte, error) {
	m.storage.mu.RLock()
	defer m.storage.mu.RUnlock()
	buf, err := m.view(offset, 1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadUint16Le reads a little-endian uint16 at offset.
func (m *Memory) ReadUint16Le(offset uint32) (uint16, error) {
	m.storage.mu.RLock()
	defer m.storage.mu.RUnlock()
	buf, err := m.view(offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

// ReadUint32Le reads a little-endian uint32 at offset.
func (m *Memory) ReadUint32Le(offset uint32) (uint32, error) {
	m.storage.mu.RLock()
	defer m.storage.mu.RUnlock()
	buf, err := m.view(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// ReadUint64Le reads a little-endian uint64 at offset.
func (m *Memory) ReadUint64Le(offset uint32) (uint64, error) {
	m.storage.mu.RLock()
	defer m.storage.mu.RUnlock()
	buf, err := m.view(offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf), nil
}

// ReadFloat32Le reads a little-endian float32 at offset.
func (m *Memory) ReadFloat32Le(offset uint32) (float32, error) {
	v, err := m.ReadUint32Le(offset)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadFloat64Le reads a little-endian float64 at offset.
func (m *Memory) ReadFloat64Le(offset uint32) (float64, error) {
	v, err := m.ReadUint64Le(offset)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// WriteByte writes a byte at offset.
func (m *Memory) WriteByte(offset uint32, v byte) error {
	m.storage.mu.Lock()
	defer m.storage.mu.Unlock()
	buf, err := m.view(offset, 1)
	if err != nil {
		return err
	}
	buf[0] = v
	return nil
}

// WriteUint16Le writes a little-endian uint16 at offset.
func (m *Memory) WriteUint16Le(offset uint32, v uint16) error {
	m.storage.mu.Lock()
	defer m.storage.mu.Unlock()
	buf, err := m.view(offset, 2)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(buf, v)
	return nil
}

// WriteUint32Le writes a little-endian uint32 at offset.
func (m *Memory) WriteUint32Le(offset uint32, v uint32) error {
	m.storage.mu.Lock()
	defer m.storage.mu.Unlock()
	buf, err := m.view(offset, 4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(buf, v)
	return nil
}

// WriteUint64Le writes a little-endian uint64 at offset.
func (m *Memory) WriteUint64Le(offset uint32, v uint64) error {
	m.storage.mu.Lock()
	defer m.storage.mu.Unlock()
	buf, err := m.view(offset, 8)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(buf, v)
	return nil
}

// WriteFloat32Le writes a little-endian float32 at offset.
func (m *Memory) WriteFloat32Le(offset uint32, v float32) error {
	return m.WriteUint32Le(offset, math.Float32bits(v))
}

// WriteFloat64Le writes a little-endian float64 at offset.
func (m *Memory) WriteFloat64Le(offset uint32, v float64) error {
	return m.WriteUint64Le(offset, math.Float64bits(v))
}

// Read copies len(p) bytes starting at offset into p.
func (m *Memory) Read(offset uint32, p []byte) error {
	m.storage.mu.RLock()
	defer m.storage.mu.RUnlock()
	buf, err := m.view(offset, len(p))
	if err != nil {
		return err
	}
	copy(p, buf)
	return nil
}

// Write copies p into the memory starting at offset.
func (m *Memory) Write(offset uint32, p []byte) error {
	m.storage.mu.Lock()
	defer m.storage.mu.Unlock()
	buf, err := m.view(offset, len(p))
	if err != nil {
		return err
	}
	copy(buf, p)
	return nil
}

// view returns the accessible byte range [offset, offset+size), or
// ErrOutOfBounds. Callers hold the storage lock.
func (m *Memory) view(offset uint32, size int) ([]byte, error) {
	mem := m.storage.store.slice()
	if uint64(offset)+uint64(size) > uint64(len(mem)) {
		return nil, ErrOutOfBounds
	}
	return mem[offset : uint64(offset)+uint64(size)], nil
}
