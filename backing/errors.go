// Copyright 2025 The Wasmfoundry Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package backing

import (
	"fmt"
	"strings"

	"github.com/wasmfoundry/wasmfoundry/types"
)

// LinkError is one import resolution failure. The concrete types below
// carry the diagnostic detail; errors of all four import passes are
// accumulated into a single LinkErrors value.
type LinkError interface {
	error
	isLinkError()
}

// LinkErrors is the complete list of link failures of one instantiation
// attempt.
type LinkErrors []LinkError

func (e LinkErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d link errors:", len(e))
	for _, le := range e {
		b.WriteString(" [")
		b.WriteString(le.Error())
		b.WriteString("]")
	}
	return b.String()
}

// ImportNotFoundError reports an import with no export under the
// declared namespace and name.
type ImportNotFoundError struct {
	Namespace string
	Name      string
}

func (e *ImportNotFoundError) isLinkError() {}

func (e *ImportNotFoundError) Error() string {
	return fmt.Sprintf("import not found: %s.%s", e.Namespace, e.Name)
}

// IncorrectImportTypeError reports an export of the wrong kind, e.g. a
// global supplied where a memory was declared.
type IncorrectImportTypeError struct {
	Namespace string
	Name      string
	Expected  string
	Found     string
}

func (e *IncorrectImportTypeError) isLinkError() {}

func (e *IncorrectImportTypeError) Error() string {
	return fmt.Sprintf("incorrect import type for %s.%s: expected %s, found %s",
		e.Namespace, e.Name, e.Expected, e.Found)
}

// IncorrectImportSignatureError reports a function import whose supplied
// signature is not structurally equal to the declared one.
type IncorrectImportSignatureError struct {
	Namespace string
	Name      string
	Expected  types.FuncSig
	Found     types.FuncSig
}

func (e *IncorrectImportSignatureError) isLinkError() {}

func (e *IncorrectImportSignatureError) Error() string {
	return fmt.Sprintf("incorrect import signature for %s.%s: expected %s, found %s",
		e.Namespace, e.Name, e.Expected, e.Found)
}

// IncorrectMemoryDescriptorError reports a memory import whose supplied
// descriptor does not fit in the declared one.
type IncorrectMemoryDescriptorError struct {
	Namespace string
	Name      string
	Expected  types.MemoryDescriptor
	Found     types.MemoryDescriptor
}

func (e *IncorrectMemoryDescriptorError) isLinkError() {}

func (e *IncorrectMemoryDescriptorError) Error() string {
	return fmt.Sprintf("incorrect memory descriptor for %s.%s: expected %s, found %s",
		e.Namespace, e.Name, e.Expected, e.Found)
}

// IncorrectTableDescriptorError reports a table import whose supplied
// descriptor does not fit in the declared one.
type IncorrectTableDescriptorError struct {
	Namespace string
	Name      string
	Expected  types.TableDescriptor
	Found     types.TableDescriptor
}

func (e *IncorrectTableDescriptorError) isLinkError() {}

func (e *IncorrectTableDescriptorError) Error() string {
	return fmt.Sprintf("incorrect table descriptor for %s.%s: expected %s, found %s",
		e.Namespace, e.Name, e.Expected, e.Found)
}

// IncorrectGlobalDescriptorError reports a global import whose supplied
// descriptor is not exactly the declared one.
type IncorrectGlobalDescriptorError struct {
	Namespace string
	Name      string
	Expected  types.GlobalDescriptor
	Found     types.GlobalDescriptor
}

func (e *IncorrectGlobalDescriptorError) isLinkError() {}

func (e *IncorrectGlobalDescriptorError) Error() string {
	return fmt.Sprintf("incorrect global descriptor for %s.%s: expected %s, found %s",
		e.Namespace, e.Name, e.Expected, e.Found)
}

// ValidationError reports a module whose initializers violate the
// constraints instantiation relies on: a non-i32 base expression, an
// out-of-bounds data or element segment, or a dangling function or
// global reference. These are module-validation failures and abort
// instantiation.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Reason
}

func validationErrorf(format string, a ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, a...)}
}
