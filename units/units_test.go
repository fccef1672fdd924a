// Copyright 2025 The Wasmfoundry Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package units

import "testing"

func TestPagesBytes(t *testing.T) {
	if Pages(0).Bytes() != 0 {
		t.Fatalf("expected 0 bytes, got %v", Pages(0).Bytes())
	}
	if Pages(1).Bytes() != 65536 {
		t.Fatalf("expected 65536 bytes, got %v", Pages(1).Bytes())
	}
	if MaxPages.Bytes() != 1<<32 {
		t.Fatalf("expected 4 GiB, got %v", MaxPages.Bytes())
	}
}

func TestBytesPages(t *testing.T) {
	tests := []struct {
		bytes Bytes
		pages Pages
	}{
		{0, 0},
		{65535, 0},
		{65536, 1},
		{65537, 1},
		{131072, 2},
	}
	for _, tc := range tests {
		if got := tc.bytes.Pages(); got != tc.pages {
			t.Errorf("%v: expected %v, got %v", tc.bytes, tc.pages, got)
		}
	}
}

func TestPagesChecked(t *testing.T) {
	if _, ok := MaxPages.Checked(1); ok {
		t.Fatal("expected overflow past MaxPages")
	}
	sum, ok := Pages(2).Checked(3)
	if !ok || sum != 5 {
		t.Fatalf("expected 5 pages, got %v (ok=%v)", sum, ok)
	}
	sum, ok = Pages(0).Checked(MaxPages)
	if !ok || sum != MaxPages {
		t.Fatalf("expected MaxPages, got %v (ok=%v)", sum, ok)
	}
}
