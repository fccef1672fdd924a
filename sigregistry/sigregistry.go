// Copyright 2025 The Wasmfoundry Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package sigregistry interns function signatures to dense indices.
// Indirect calls compare the resulting compact ids instead of structural
// signatures.
package sigregistry

import (
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/wasmfoundry/wasmfoundry/types"
	"github.com/wasmfoundry/wasmfoundry/vm"
)

type entry struct {
	sig types.FuncSig
	idx types.SigIndex
}

// Registry deduplicates signatures: structurally equal signatures map to
// the same SigIndex, and distinct signatures to distinct indices.
type Registry struct {
	mu     sync.RWMutex
	byHash map[uint64][]entry
	sigs   []types.FuncSig
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{byHash: map[uint64][]entry{}}
}

// Register interns sig and returns its index. Registering a signature
// equal to one seen before returns the original index.
func (r *Registry) Register(sig types.FuncSig) types.SigIndex {
	key := xxhash.Sum64String(sig.String())

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.byHash[key] {
		if e.sig.Equal(sig) {
			return e.idx
		}
	}

	idx := types.SigIndex(len(r.sigs))
	r.sigs = append(r.sigs, sig)
	r.byHash[key] = append(r.byHash[key], entry{sig: sig, idx: idx})
	return idx
}

// LookupSignature returns the signature interned at idx.
func (r *Registry) LookupSignature(idx types.SigIndex) types.FuncSig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(idx) >= len(r.sigs) {
		panic(fmt.Sprintf("signature index %d out of range (%d registered)", idx, len(r.sigs)))
	}
	return r.sigs[idx]
}

// LookupSigID returns the runtime id compared at indirect call sites.
// Ids are the interned indices themselves, so they are dense and never
// collide with vm.SigIDInvalid.
func (r *Registry) LookupSigID(idx types.SigIndex) vm.SigID {
	return vm.SigID(idx)
}

// Len returns the number of distinct signatures registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sigs)
}
