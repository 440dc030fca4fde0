package roehn

import "errors"

// ErrRegistryConflict is returned when a design entity or a GUID is bound
// twice to different partners within one run.
var ErrRegistryConflict = errors.New("roehn: registry conflict")
