// Copyright 2025 The Wasmfoundry Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package memory

import (
	"unsafe"
)

// Scalar enumerates the element types the bulk accessors can view a
// memory through. The in-memory representation is the raw little-endian
// byte content reinterpreted at the host's native layout.
type Scalar interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 |
		~int64 | ~uint64 | ~float32 | ~float64
}

// ReadMany reads count consecutive values of type T starting at byte
// offset. Fails with ErrOutOfBounds when the range exceeds the accessible
// region.
func ReadMany[T Scalar](m *Memory, offset uint32, count int) ([]T, error) {
	m.storage.mu.RLock()
	defer m.storage.mu.RUnlock()

	var zero T
	size := int(unsafe.Sizeof(zero))
	buf, err := m.view(offset, count*size)
	if err != nil {
		return nil, err
	}
	out := make([]T, count)
	copy(out, unsafe.Slice((*T)(unsafe.Pointer(&buf[0])), count))
	return out, nil
}

// WriteMany writes the given values of type T consecutively starting at
// byte offset.
func WriteMany[T Scalar](m *Memory, offset uint32, values []T) error {
	m.storage.mu.Lock()
	defer m.storage.mu.Unlock()

	if len(values) == 0 {
		return nil
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	buf, err := m.view(offset, len(values)*size)
	if err != nil {
		return err
	}
	copy(unsafe.Slice((*T)(unsafe.Pointer(&buf[0])), len(values)), values)
	return nil
}

// DirectAccess calls f with a read view of the entire accessible region
// as values of type T, bound/sizeof(T) elements long. The slice is only
// valid for the duration of the call and must not escape f.
func DirectAccess[T Scalar](m *Memory, f func([]T)) {
	m.storage.mu.RLock()
	defer m.storage.mu.RUnlock()
	f(typedView[T](m.storage.store.slice()))
}

// DirectAccessMut calls f with a writable view of the entire accessible
// region as values of type T. The slice is only valid for the duration of
// the call and must not escape f.
func DirectAccessMut[T Scalar](m *Memory, f func([]T)) {
	m.storage.mu.Lock()
	defer m.storage.mu.Unlock()
	f(typedView[T](m.storage.store.slice()))
}

func typedView[T Scalar](buf []byte) []T {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if len(buf) < size {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&buf[0])), len(buf)/size)
}
