// Copyright 2025 The Wasmfoundry Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package memory

import (
	"github.com/wasmfoundry/wasmfoundry/sys"
	"github.com/wasmfoundry/wasmfoundry/types"
	"github.com/wasmfoundry/wasmfoundry/units"
	"github.com/wasmfoundry/wasmfoundry/vm"
)

// dynamicGuardSize is the trailing guard region of a dynamic memory.
const dynamicGuardSize = 4096

// dynamicStore allocates only the minimum at creation time. Growing
// reallocates: a fresh reservation is populated with a copy of the old
// contents and the published base pointer moves. Cheap to create and
// frugal with address space, at the cost of requiring generated code to
// bounds-check accesses.
type dynamicStore struct {
	region  *sys.Region
	current units.Pages
	max     *units.Pages
}

func newDynamicStore(desc types.MemoryDescriptor, local *vm.LocalMemory) (*dynamicStore, error) {
	minBytes := int(desc.Minimum.Bytes())
	region, err := sys.Allocate(minBytes + dynamicGuardSize)
	if err != nil {
		return nil, err
	}
	if desc.Minimum > 0 {
		if err := region.Protect(0, minBytes, sys.ProtectReadWrite); err != nil {
			_ = region.Free()
			return nil, err
		}
	}

	s := &dynamicStore{region: region, current: desc.Minimum, max: desc.Maximum}
	local.Base = region.Ptr()
	local.Bound = uintptr(minBytes)
	return s, nil
}

func (s *dynamicStore) size() units.Pages {
	return s.current
}

func (s *dynamicStore) grow(delta units.Pages, local *vm.LocalMemory) (units.Pages, bool) {
	if delta == 0 {
		return s.current, true
	}

	newPages, ok := s.current.Checked(delta)
	if !ok {
		return 0, false
	}
	if s.max != nil && newPages > *s.max {
		return 0, false
	}

	newBytes := int(newPages.Bytes())
	newRegion, err := sys.Allocate(newBytes + dynamicGuardSize)
	if err != nil {
		return 0, false
	}
	if err := newRegion.Protect(0, newBytes, sys.ProtectReadWrite); err != nil {
		_ = newRegion.Free()
		return 0, false
	}

	oldBytes := int(s.current.Bytes())
	copy(newRegion.Slice()[:oldBytes], s.region.Slice()[:oldBytes])

	old := s.region
	s.region = newRegion
	_ = old.Free()

	local.Base = s.region.Ptr()
	local.Bound = uintptr(newBytes)

	prev := s.current
	s.current = newPages
	return prev, true
}

func (s *dynamicStore) slice() []byte {
	return s.region.Slice()[:s.current.Bytes()]
}

func (s *dynamicStore) free() error {
	return s.region.Free()
}
