// Copyright 2025 The Wasmfoundry Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

//go:build unix

package sys

import (
	"testing"
)

func TestAllocateRoundsToPageSize(t *testing.T) {
	r, err := Allocate(1)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Free()

	if r.Len() != pageSize() {
		t.Fatalf("expected one page (%d bytes), got %d", pageSize(), r.Len())
	}
}

func TestProtectThenAccess(t *testing.T) {
	r, err := Allocate(4 * pageSize())
	if err != nil {
		t.Fatal(err)
	}
	defer r.Free()

	if err := r.Protect(0, 2*pageSize(), ProtectReadWrite); err != nil {
		t.Fatal(err)
	}

	buf := r.Slice()
	buf[0] = 0xaa
	buf[2*pageSize()-1] = 0xbb
	if buf[0] != 0xaa || buf[2*pageSize()-1] != 0xbb {
		t.Fatal("write to committed prefix not observed")
	}
}

func TestProtectRangeValidation(t *testing.T) {
	r, err := Allocate(pageSize())
	if err != nil {
		t.Fatal(err)
	}
	defer r.Free()

	if err := r.Protect(0, r.Len()+1, ProtectReadWrite); err == nil {
		t.Fatal("expected error for range past the reservation")
	}
	if err := r.Protect(-1, 0, ProtectReadWrite); err == nil {
		t.Fatal("expected error for negative start")
	}
	if err := r.Protect(10, 10, ProtectReadWrite); err != nil {
		t.Fatalf("empty range should be a no-op, got %v", err)
	}
}

func TestFreeIsIdempotent(t *testing.T) {
	r, err := Allocate(pageSize())
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Free(); err != nil {
		t.Fatal(err)
	}
	if err := r.Free(); err != nil {
		t.Fatalf("second free should be a no-op, got %v", err)
	}
}
