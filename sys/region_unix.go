// Copyright 2025 The Wasmfoundry Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

//go:build unix

// Package sys provides the OS page-mapping primitive underneath linear
// memories: a reserved anonymous mapping whose sub-ranges can be committed
// by changing protection. Reservations start fully inaccessible, which is
// what gives trailing guard regions their faulting behavior for free.
package sys

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Protect is a memory protection mode.
type Protect int

const (
	// ProtectNone makes a range inaccessible.
	ProtectNone Protect = iota
	// ProtectRead makes a range read-only.
	ProtectRead
	// ProtectReadWrite makes a range readable and writable.
	ProtectReadWrite
	// ProtectReadExec makes a range readable and executable.
	ProtectReadExec
)

func (p Protect) String() string {
	switch p {
	case ProtectNone:
		return "none"
	case ProtectRead:
		return "read"
	case ProtectReadWrite:
		return "read-write"
	case ProtectReadExec:
		return "read-exec"
	}
	return "invalid"
}

func (p Protect) flags() (int, error) {
	switch p {
	case ProtectNone:
		return unix.PROT_NONE, nil
	case ProtectRead:
		return unix.PROT_READ, nil
	case ProtectReadWrite:
		return unix.PROT_READ | unix.PROT_WRITE, nil
	case ProtectReadExec:
		return unix.PROT_READ | unix.PROT_EXEC, nil
	}
	return 0, fmt.Errorf("invalid protection mode: %d", int(p))
}

// Region is a page-aligned reserved mapping. The zero value is not valid;
// use Allocate.
type Region struct {
	data []byte
}

// Allocate reserves size bytes of address space, rounded up to the OS page
// size. The pages are reserved, not committed: every byte faults until a
// sub-range is protected ReadWrite via Protect.
func Allocate(size int) (*Region, error) {
	if size < 0 {
		return nil, fmt.Errorf("negative region size: %d", size)
	}
	size = roundUpToPage(size)
	if size == 0 {
		size = pageSize()
	}
	data, err := unix.Mmap(-1, 0, size, unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("mmap failed: %w", err)
	}
	return &Region{data: data}, nil
}

// Protect changes the protection of the byte range [start, end) to mode.
// The range is widened to page boundaries.
func (r *Region) Protect(start, end int, mode Protect) error {
	if start < 0 || end < start || end > len(r.data) {
		return fmt.Errorf("protect range [%d, %d) outside region of %d bytes", start, end, len(r.data))
	}
	if start == end {
		return nil
	}
	flags, err := mode.flags()
	if err != nil {
		return err
	}
	start = roundDownToPage(start)
	end = roundUpToPage(end)
	if err := unix.Mprotect(r.data[start:end], flags); err != nil {
		return fmt.Errorf("mprotect failed: %w", err)
	}
	return nil
}

// Ptr returns the base address of the reservation.
func (r *Region) Ptr() *byte {
	return &r.data[0]
}

// Len returns the size of the reservation in bytes.
func (r *Region) Len() int {
	return len(r.data)
}

// Slice returns the full reserved range as a byte slice. Accessing bytes
// outside the committed prefix faults; callers are expected to respect the
// protection they have applied.
func (r *Region) Slice() []byte {
	return r.data
}

// Free releases the reservation. The region must not be used afterwards.
func (r *Region) Free() error {
	if r.data == nil {
		return nil
	}
	data := r.data
	r.data = nil
	if err := unix.Munmap(data); err != nil {
		return fmt.Errorf("munmap failed: %w", err)
	}
	return nil
}

func pageSize() int {
	return os.Getpagesize()
}

func roundUpToPage(n int) int {
	ps := pageSize()
	return (n + ps - 1) &^ (ps - 1)
}

func roundDownToPage(n int) int {
	return n &^ (pageSize() - 1)
}
