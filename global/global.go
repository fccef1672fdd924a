// Copyright 2025 The Wasmfoundry Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package global implements typed global cells.
package global

import (
	"errors"
	"fmt"
	"sync"

	"github.com/wasmfoundry/wasmfoundry/types"
	"github.com/wasmfoundry/wasmfoundry/vm"
)

var (
	// ErrImmutableGlobal is returned by Set on a global created without
	// the mutable flag.
	ErrImmutableGlobal = errors.New("global is immutable")
	// ErrTypeMismatch is returned by Set when the value's type differs
	// from the declared one.
	ErrTypeMismatch = errors.New("global type mismatch")
)

type globalStorage struct {
	mu    sync.RWMutex
	local *vm.LocalGlobal
}

// Global is a handle to a typed value cell, optionally mutable.
type Global struct {
	desc    types.GlobalDescriptor
	storage *globalStorage
}

// New creates an immutable global holding value.
func New(value types.Value) *Global {
	return newGlobal(value, false)
}

// NewMutable creates a mutable global holding value.
func NewMutable(value types.Value) *Global {
	return newGlobal(value, true)
}

func newGlobal(value types.Value, mutable bool) *Global {
	g := &Global{
		desc:    types.GlobalDescriptor{Mutable: mutable, Ty: value.Type()},
		storage: &globalStorage{local: &vm.LocalGlobal{Data: value.Bits()}},
	}
	return g
}

// Descriptor returns the global's declared type and mutability.
func (g *Global) Descriptor() types.GlobalDescriptor {
	return g.desc
}

// Get returns the current value.
func (g *Global) Get() types.Value {
	g.storage.mu.RLock()
	defer g.storage.mu.RUnlock()
	return types.ValueFromBits(g.desc.Ty, g.storage.local.Data)
}

// Set assigns a new value. It fails unless the global is mutable and the
// value has the declared type.
func (g *Global) Set(value types.Value) error {
	if !g.desc.Mutable {
		return ErrImmutableGlobal
	}
	if value.Type() != g.desc.Ty {
		return fmt.Errorf("%w: have %s, want %s", ErrTypeMismatch, value.Type(), g.desc.Ty)
	}
	g.storage.mu.Lock()
	defer g.storage.mu.Unlock()
	g.storage.local.Data = value.Bits()
	return nil
}

// VMLocalGlobal returns the stable cell published to generated code.
func (g *Global) VMLocalGlobal() *vm.LocalGlobal {
	return g.storage.local
}

func (g *Global) String() string {
	return fmt.Sprintf("Global{%s, %s}", g.desc, g.Get())
}
