package domain

import "fmt"

// NotFoundError indicates an ID with no backing entity.
type NotFoundError struct {
	Entity EntityType
	ID     uint32
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// InUseError indicates a deletion blocked by a live reference.
type InUseError struct {
	Entity EntityType
	ID     uint32
	Reason string
}

func (e InUseError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s %d is still referenced", e.Entity, e.ID)
	}
	return fmt.Sprintf("%s %d is still referenced: %s", e.Entity, e.ID, e.Reason)
}

// InvalidReferenceError indicates a creation or update referencing a
// nonexistent or ineligible entity.
type InvalidReferenceError struct {
	Reason string
}

func (e InvalidReferenceError) Error() string {
	return "invalid reference: " + e.Reason
}

// StructuralViolationError indicates a staged mutation that would break a
// hard invariant. It is always fatal to the transaction in progress.
type StructuralViolationError struct {
	Reason string
}

func (e StructuralViolationError) Error() string {
	return "structural violation: " + e.Reason
}

// ImportError indicates a format translation failure on import. Imports
// never produce a partially populated site.
type ImportError struct {
	Format string
	Err    error
}

func (e ImportError) Error() string {
	return fmt.Sprintf("import %s: %v", e.Format, e.Err)
}

func (e ImportError) Unwrap() error { return e.Err }

// ExportError indicates a format translation failure on export.
type ExportError struct {
	Format string
	Err    error
}

func (e ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Format, e.Err)
}

func (e ExportError) Unwrap() error { return e.Err }
