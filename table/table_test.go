// Copyright 2025 The Wasmfoundry Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package table

import (
	"errors"
	"testing"

	"github.com/wasmfoundry/wasmfoundry/types"
	"github.com/wasmfoundry/wasmfoundry/vm"
)

func u32(n uint32) *uint32 {
	return &n
}

func TestNewFillsEmptyEntries(t *testing.T) {
	tbl, err := New(types.TableDescriptor{Element: types.ElementAnyfunc, Minimum: 3})
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Size() != 3 {
		t.Fatalf("size: %d", tbl.Size())
	}
	for i := uint32(0); i < 3; i++ {
		entry, err := tbl.Entry(i)
		if err != nil {
			t.Fatal(err)
		}
		if entry != vm.EmptyAnyfunc {
			t.Fatalf("slot %d not empty: %+v", i, entry)
		}
	}
}

func TestNewRejectsUnknownElementType(t *testing.T) {
	_, err := New(types.TableDescriptor{Element: types.ElementType(0x6f), Minimum: 1})
	if !errors.Is(err, ErrUnsupportedElementType) {
		t.Fatalf("expected element type error, got %v", err)
	}
}

func TestGrow(t *testing.T) {
	tbl, err := New(types.TableDescriptor{Element: types.ElementAnyfunc, Minimum: 2, Maximum: u32(4)})
	if err != nil {
		t.Fatal(err)
	}

	prev, ok := tbl.Grow(2)
	if !ok || prev != 2 {
		t.Fatalf("grow: prev=%d ok=%v", prev, ok)
	}
	if tbl.Size() != 4 {
		t.Fatalf("size after grow: %d", tbl.Size())
	}
	if entry, _ := tbl.Entry(3); entry != vm.EmptyAnyfunc {
		t.Fatal("appended slot not empty")
	}

	if _, ok := tbl.Grow(1); ok {
		t.Fatal("grow past maximum succeeded")
	}
	if tbl.Size() != 4 {
		t.Fatalf("size changed after failed grow: %d", tbl.Size())
	}

	if prev, ok := tbl.Grow(0); !ok || prev != 4 {
		t.Fatalf("grow(0): prev=%d ok=%v", prev, ok)
	}
}

func TestGrowUpdatesRecord(t *testing.T) {
	tbl, err := New(types.TableDescriptor{Element: types.ElementAnyfunc, Minimum: 1})
	if err != nil {
		t.Fatal(err)
	}
	rec := tbl.VMLocalTable()
	if rec.Count != 1 || rec.Base == nil {
		t.Fatalf("initial record: count=%d", rec.Count)
	}

	if _, ok := tbl.Grow(5); !ok {
		t.Fatal("grow failed")
	}
	if rec.Count != 6 {
		t.Fatalf("record count not updated: %d", rec.Count)
	}
}

func TestSetEntryAndBounds(t *testing.T) {
	tbl, err := New(types.TableDescriptor{Element: types.ElementAnyfunc, Minimum: 2})
	if err != nil {
		t.Fatal(err)
	}

	want := vm.Anyfunc{Func: 0x1000, SigID: 7}
	if err := tbl.Set(1, want); err != nil {
		t.Fatal(err)
	}
	if got, _ := tbl.Entry(1); got != want {
		t.Fatalf("entry: %+v", got)
	}

	if err := tbl.Set(2, want); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Fatalf("expected out of bounds, got %v", err)
	}
	if _, err := tbl.Entry(2); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Fatalf("expected out of bounds, got %v", err)
	}
}

func TestAnyfuncDirectAccessMut(t *testing.T) {
	tbl, err := New(types.TableDescriptor{Element: types.ElementAnyfunc, Minimum: 4})
	if err != nil {
		t.Fatal(err)
	}

	tbl.AnyfuncDirectAccessMut(func(entries []vm.Anyfunc) {
		if len(entries) != 4 {
			t.Fatalf("entry array length %d", len(entries))
		}
		entries[2] = vm.Anyfunc{Func: 0x2000, SigID: 1}
	})

	if got, _ := tbl.Entry(2); got.Func != 0x2000 {
		t.Fatalf("bulk write not visible: %+v", got)
	}
}
