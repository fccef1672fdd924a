// Copyright 2025 The Wasmfoundry Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package types defines the value types, descriptors and index spaces
// shared by the module view, the backing subsystem and the embedder API.
package types

import (
	"fmt"
	"math"
	"strings"

	"github.com/wasmfoundry/wasmfoundry/units"
)

// Type is a wasm value type.
type Type uint8

const (
	TypeI32 Type = iota
	TypeI64
	TypeF32
	TypeF64
)

func (t Type) String() string {
	switch t {
	case TypeI32:
		return "i32"
	case TypeI64:
		return "i64"
	case TypeF32:
		return "f32"
	case TypeF64:
		return "f64"
	}
	return fmt.Sprintf("unknown(0x%x)", uint8(t))
}

// Value is a typed wasm value. The payload is held as raw bits so that a
// Value is comparable and fits in two words.
type Value struct {
	ty   Type
	bits uint64
}

// I32 returns an i32 value.
func I32(v int32) Value { return Value{ty: TypeI32, bits: uint64(uint32(v))} }

// I64 returns an i64 value.
func I64(v int64) Value { return Value{ty: TypeI64, bits: uint64(v)} }

// F32 returns an f32 value.
func F32(v float32) Value { return Value{ty: TypeF32, bits: uint64(math.Float32bits(v))} }

// F64 returns an f64 value.
func F64(v float64) Value { return Value{ty: TypeF64, bits: math.Float64bits(v)} }

// ValueFromBits reconstructs a value of type ty from its raw 64-bit
// representation, the inverse of Bits.
func ValueFromBits(ty Type, bits uint64) Value { return Value{ty: ty, bits: bits} }

// Type returns the value type tag.
func (v Value) Type() Type { return v.ty }

// Bits returns the raw 64-bit representation of the payload. Narrower
// types occupy the low bits.
func (v Value) Bits() uint64 { return v.bits }

// I32 returns the payload as an int32. Only meaningful when Type is TypeI32.
func (v Value) I32() int32 { return int32(uint32(v.bits)) }

// I64 returns the payload as an int64. Only meaningful when Type is TypeI64.
func (v Value) I64() int64 { return int64(v.bits) }

// F32 returns the payload as a float32. Only meaningful when Type is TypeF32.
func (v Value) F32() float32 { return math.Float32frombits(uint32(v.bits)) }

// F64 returns the payload as a float64. Only meaningful when Type is TypeF64.
func (v Value) F64() float64 { return math.Float64frombits(v.bits) }

func (v Value) String() string {
	switch v.ty {
	case TypeI32:
		return fmt.Sprintf("i32(%d)", v.I32())
	case TypeI64:
		return fmt.Sprintf("i64(%d)", v.I64())
	case TypeF32:
		return fmt.Sprintf("f32(%g)", v.F32())
	case TypeF64:
		return fmt.Sprintf("f64(%g)", v.F64())
	}
	return "unknown"
}

// ElementType is the type of entries held by a table. WebAssembly 1.0
// defines only anyfunc.
type ElementType uint8

// ElementAnyfunc is the anyfunc element type.
const ElementAnyfunc ElementType = 0x70

func (e ElementType) String() string {
	if e == ElementAnyfunc {
		return "anyfunc"
	}
	return fmt.Sprintf("unknown(0x%x)", uint8(e))
}

// ImportName identifies one declared import as a (namespace, name) pair.
type ImportName struct {
	Namespace string
	Name      string
}

func (n ImportName) String() string {
	return n.Namespace + "." + n.Name
}

// MemoryDescriptor declares the limits of a linear memory.
type MemoryDescriptor struct {
	Minimum units.Pages
	Maximum *units.Pages
	Shared  bool
}

// FitsIn reports whether a memory with descriptor d satisfies the
// expectations of expected: the supplied minimum is at least as large, the
// supplied maximum is present and no larger whenever the expected maximum
// is present, and the shared flag matches exactly.
func (d MemoryDescriptor) FitsIn(expected MemoryDescriptor) bool {
	if d.Shared != expected.Shared {
		return false
	}
	if d.Minimum < expected.Minimum {
		return false
	}
	if expected.Maximum != nil {
		if d.Maximum == nil || *d.Maximum > *expected.Maximum {
			return false
		}
	}
	return true
}

func (d MemoryDescriptor) String() string {
	max := "inf"
	if d.Maximum != nil {
		max = fmt.Sprintf("%d", uint32(*d.Maximum))
	}
	shared := ""
	if d.Shared {
		shared = " shared"
	}
	return fmt.Sprintf("memory[%d..%s]%s", uint32(d.Minimum), max, shared)
}

// TableDescriptor declares the element type and limits of a table.
type TableDescriptor struct {
	Element ElementType
	Minimum uint32
	Maximum *uint32
}

// FitsIn reports whether a table with descriptor d satisfies the
// expectations of expected. The compatibility relation mirrors the memory
// one, with the element type matching exactly.
func (d TableDescriptor) FitsIn(expected TableDescriptor) bool {
	if d.Element != expected.Element {
		return false
	}
	if d.Minimum < expected.Minimum {
		return false
	}
	if expected.Maximum != nil {
		if d.Maximum == nil || *d.Maximum > *expected.Maximum {
			return false
		}
	}
	return true
}

func (d TableDescriptor) String() string {
	max := "inf"
	if d.Maximum != nil {
		max = fmt.Sprintf("%d", *d.Maximum)
	}
	return fmt.Sprintf("table[%s %d..%s]", d.Element, d.Minimum, max)
}

// GlobalDescriptor declares the value type and mutability of a global.
type GlobalDescriptor struct {
	Mutable bool
	Ty      Type
}

func (d GlobalDescriptor) String() string {
	if d.Mutable {
		return fmt.Sprintf("global[mut %s]", d.Ty)
	}
	return fmt.Sprintf("global[%s]", d.Ty)
}

// GlobalInit pairs a global declaration with its initializer.
type GlobalInit struct {
	Desc GlobalDescriptor
	Init Initializer
}

// Initializer is the base expression of a data, element or global
// initializer: either a constant value or a read of an imported global.
type Initializer interface {
	isInitializer()
}

// Const is a constant-valued initializer.
type Const struct {
	Value Value
}

func (Const) isInitializer() {}

// GetGlobal is an initializer reading the current value of an imported
// global at instantiation time.
type GetGlobal struct {
	Index ImportedGlobalIndex
}

func (GetGlobal) isInitializer() {}

// FuncSig is a function signature: the parameter and result type
// sequences. Equality is structural.
type FuncSig struct {
	Params  []Type
	Returns []Type
}

// Equal reports structural equality of two signatures.
func (s FuncSig) Equal(other FuncSig) bool {
	if len(s.Params) != len(other.Params) || len(s.Returns) != len(other.Returns) {
		return false
	}
	for i, p := range s.Params {
		if p != other.Params[i] {
			return false
		}
	}
	for i, r := range s.Returns {
		if r != other.Returns[i] {
			return false
		}
	}
	return true
}

// String returns the canonical rendering of the signature, used as the
// interning key by the signature registry.
func (s FuncSig) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, p := range s.Params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.String())
	}
	b.WriteString(")->(")
	for i, r := range s.Returns {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(r.String())
	}
	b.WriteByte(')')
	return b.String()
}
