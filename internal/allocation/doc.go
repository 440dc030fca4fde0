// Package allocation assigns the addresses a design needs on the controller
// network: SAK ranges for circuits, network addresses and device ids for
// modules and keypads, and module channels for links.
//
// Every function is pure. Callers pass the current project state, read
// inside the same transaction that will store the result, so the check and
// the write cannot interleave with another editor.
//
// Rejections wrap the design package errors (ErrAddressExhausted,
// ErrDuplicateAddress, ErrCapacityExceeded, ErrIncompatibleKind). Nothing is
// ever clamped or overwritten.
package allocation
