// Copyright 2025 The Wasmfoundry Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package units provides the sizing units used throughout the runtime:
// wasm pages and raw byte counts.
package units

import "fmt"

// PageSize is the size of a wasm page in bytes.
const PageSize = 65536

// MaxPages is the largest page count addressable by a 32-bit linear
// memory (4 GiB).
const MaxPages = Pages(65536)

// Pages is a count of wasm pages.
type Pages uint32

// Bytes is a count of bytes.
type Bytes uint64

// Bytes converts a page count to its size in bytes.
func (p Pages) Bytes() Bytes {
	return Bytes(uint64(p) * PageSize)
}

// Checked adds delta to p, reporting false on overflow past MaxPages.
func (p Pages) Checked(delta Pages) (Pages, bool) {
	sum := uint64(p) + uint64(delta)
	if sum > uint64(MaxPages) {
		return 0, false
	}
	return Pages(sum), true
}

func (p Pages) String() string {
	return fmt.Sprintf("%d pages", uint32(p))
}

// Pages converts a byte count to whole pages, rounding down.
func (b Bytes) Pages() Pages {
	return Pages(b / PageSize)
}

func (b Bytes) String() string {
	return fmt.Sprintf("%d bytes", uint64(b))
}
