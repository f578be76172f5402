package model

import "fmt"

// The eight named errors of spec §7. Each is a concrete struct type
// (rather than a sentinel value) so it can carry the offending name,
// following the teacher's *TableNotFoundError / *TableExistsError
// convention — callers recover the typed value with errors.As.

// UnknownTableError — referenced table does not exist.
type UnknownTableError struct{ Table string }

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("unknown table %q", e.Table)
}

// UnknownFieldError — referenced attribute does not exist in its table.
type UnknownFieldError struct {
	Table string
	Field Attribute
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q in table %q", e.Field, e.Table)
}

// CatalogTableError — operation attempted on the reserved FuncDep table.
type CatalogTableError struct{ Table string }

func (e *CatalogTableError) Error() string {
	return fmt.Sprintf("%q is the reserved catalog table", e.Table)
}

// FDNotSingularError — RHS contains more than one attribute.
type FDNotSingularError struct{ RHS string }

func (e *FDNotSingularError) Error() string {
	return fmt.Sprintf("right-hand side %q is not a single attribute", e.RHS)
}

// FDRHSInLHSError — RHS attribute also appears in LHS.
type FDRHSInLHSError struct {
	LHS string
	RHS Attribute
}

func (e *FDRHSInLHSError) Error() string {
	return fmt.Sprintf("right-hand side %q also appears in left-hand side %q", e.RHS, e.LHS)
}

// FDAddTwiceError — FD already in catalog.
type FDAddTwiceError struct{ FD FD }

func (e *FDAddTwiceError) Error() string {
	return fmt.Sprintf("FD %s.%s -> %s already in catalog", e.FD.Table, e.FD.LHSString(), e.FD.RHS)
}

// FDNotFoundError — FD to delete is not in catalog.
type FDNotFoundError struct{ FD FD }

func (e *FDNotFoundError) Error() string {
	return fmt.Sprintf("FD %s.%s -> %s not found in catalog", e.FD.Table, e.FD.LHSString(), e.FD.RHS)
}

// StoreError wraps an underlying I/O / SQL failure from the store. It is
// returned unchanged by the components that surface it (spec §7 policy)
// but wrapping it in this type lets shell-level code print a uniform
// "store error" message regardless of which driver raised it.
type StoreError struct{ Err error }

func (e *StoreError) Error() string { return fmt.Sprintf("store error: %v", e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }
