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

// staticGuardSize is the trailing guard region of a static memory. It is
// larger than the dynamic guard so generated code can elide bounds checks
// for accesses with moderate static offsets.
const staticGuardSize = 2 << 20

// staticStore reserves the declared maximum up front and commits only the
// minimum. Growing is an in-place protection change: the base pointer
// never moves, only the published bound advances.
type staticStore struct {
	region  *sys.Region
	current units.Pages
	max     units.Pages
}

func newStaticStore(desc types.MemoryDescriptor, local *vm.LocalMemory) (*staticStore, error) {
	max := *desc.Maximum
	region, err := sys.Allocate(int(max.Bytes()) + staticGuardSize)
	if err != nil {
		return nil, err
	}
	minBytes := int(desc.Minimum.Bytes())
	if desc.Minimum > 0 {
		if err := region.Protect(0, minBytes, sys.ProtectReadWrite); err != nil {
			_ = region.Free()
			return nil, err
		}
	}

	s := &staticStore{region: region, current: desc.Minimum, max: max}
	local.Base = region.Ptr()
	local.Bound = uintptr(minBytes)
	return s, nil
}

func (s *staticStore) size() units.Pages {
	return s.current
}

func (s *staticStore) grow(delta units.Pages, local *vm.LocalMemory) (units.Pages, bool) {
	if delta == 0 {
		return s.current, true
	}

	newPages, ok := s.current.Checked(delta)
	if !ok || newPages > s.max {
		return 0, false
	}

	if err := s.region.Protect(int(s.current.Bytes()), int(newPages.Bytes()), sys.ProtectReadWrite); err != nil {
		return 0, false
	}

	local.Bound = uintptr(newPages.Bytes())

	prev := s.current
	s.current = newPages
	return prev, true
}

func (s *staticStore) slice() []byte {
	return s.region.Slice()[:s.current.Bytes()]
}

func (s *staticStore) free() error {
	return s.region.Free()
}
