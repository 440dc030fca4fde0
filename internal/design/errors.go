package design

import "errors"

// Allocation and codec failures. Callers wrap them with detail and test
// with errors.Is.
var (
	// ErrAddressExhausted is returned when no address is left below the cap.
	ErrAddressExhausted = errors.New("address exhausted")

	// ErrDuplicateAddress is returned when a network address, device id or
	// module channel is already held, or a circuit is already linked.
	ErrDuplicateAddress = errors.New("duplicate address")

	// ErrCapacityExceeded is returned when a channel lies outside the module
	// or the module has no free channel left.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrIncompatibleKind is returned when a module kind does not accept a
	// circuit kind.
	ErrIncompatibleKind = errors.New("incompatible kind")

	// ErrDanglingReference is returned when a document references an
	// identifier that is not defined in the same document.
	ErrDanglingReference = errors.New("dangling reference")

	// ErrMalformedDocument is returned when a document lacks a required
	// section or field.
	ErrMalformedDocument = errors.New("malformed document")
)

// Persistence failures.
var (
	// ErrNotFound is returned when an entity ID does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateName is returned when a name or identifier is already used
	// in its scope.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrModuleInUse is returned when deleting a module that still has links.
	ErrModuleInUse = errors.New("module has linked circuits: unlink them first")

	// ErrInvalid is returned when an entity fails field validation.
	ErrInvalid = errors.New("invalid")
)
