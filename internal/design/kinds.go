package design

import (
	"fmt"
	"strings"
)

// CircuitKind is the load type of a circuit.
type CircuitKind string

const (
	CircuitLight CircuitKind = "light"
	CircuitShade CircuitKind = "shade"
	CircuitHVAC  CircuitKind = "hvac"
)

// CircuitKinds lists every circuit kind.
var CircuitKinds = []CircuitKind{CircuitLight, CircuitShade, CircuitHVAC}

// ParseCircuitKind accepts the English kind names and the legacy names
// "luz" and "persiana", case-insensitively.
func ParseCircuitKind(s string) (CircuitKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "light", "luz":
		return CircuitLight, nil
	case "shade", "persiana":
		return CircuitShade, nil
	case "hvac":
		return CircuitHVAC, nil
	default:
		return "", fmt.Errorf("%w: unknown circuit kind %q", ErrInvalid, s)
	}
}

// Valid reports whether k is a known kind.
func (k CircuitKind) Valid() bool {
	switch k {
	case CircuitLight, CircuitShade, CircuitHVAC:
		return true
	}
	return false
}

// SAKWidth is the number of consecutive SAK addresses a circuit of this kind
// owns. HVAC circuits own none.
func (k CircuitKind) SAKWidth() int {
	switch k {
	case CircuitLight:
		return 1
	case CircuitShade:
		return 2
	case CircuitHVAC:
		return 0
	}
	panic(fmt.Sprintf("design: unhandled circuit kind %q", string(k)))
}

// ModuleKind is the hardware model of a control module.
type ModuleKind string

const (
	ModuleRL12 ModuleKind = "RL12"
	ModuleRL4  ModuleKind = "RL4"
	ModuleLX4  ModuleKind = "LX4"
	ModuleSA1  ModuleKind = "SA1"
	ModuleDIM8 ModuleKind = "DIM8"
)

// ModuleKinds lists every module kind in catalogue order.
var ModuleKinds = []ModuleKind{ModuleRL12, ModuleRL4, ModuleLX4, ModuleSA1, ModuleDIM8}

// ModuleSpec is the catalogue entry of a module kind.
type ModuleSpec struct {
	Kind     ModuleKind    `json:"kind"`
	FullName string        `json:"full_name"`
	Channels int           `json:"channels"`
	Accepts  []CircuitKind `json:"accepts"`
}

// Spec returns the catalogue entry for k.
func (k ModuleKind) Spec() ModuleSpec {
	switch k {
	case ModuleRL12:
		return ModuleSpec{Kind: k, FullName: "ADP-RL12", Channels: 12, Accepts: []CircuitKind{CircuitLight}}
	case ModuleRL4:
		return ModuleSpec{Kind: k, FullName: "AQL-GV-RL4", Channels: 4, Accepts: []CircuitKind{CircuitLight}}
	case ModuleLX4:
		return ModuleSpec{Kind: k, FullName: "ADP-LX4", Channels: 4, Accepts: []CircuitKind{CircuitShade}}
	case ModuleSA1:
		return ModuleSpec{Kind: k, FullName: "AQL-GV-SA1", Channels: 1, Accepts: []CircuitKind{CircuitHVAC}}
	case ModuleDIM8:
		return ModuleSpec{Kind: k, FullName: "ADP-DIM8", Channels: 8, Accepts: []CircuitKind{CircuitLight}}
	}
	panic(fmt.Sprintf("design: unhandled module kind %q", string(k)))
}

// Valid reports whether k is a known kind.
func (k ModuleKind) Valid() bool {
	for _, m := range ModuleKinds {
		if m == k {
			return true
		}
	}
	return false
}

// Channels is the fixed channel capacity of the kind.
func (k ModuleKind) Channels() int {
	return k.Spec().Channels
}

// Accepts reports whether a circuit of kind c may be linked to this module kind.
func (k ModuleKind) Accepts(c CircuitKind) bool {
	for _, a := range k.Spec().Accepts {
		if a == c {
			return true
		}
	}
	return false
}

// ParseModuleKind accepts a short kind ("RL12") or a full model name
// ("ADP-RL12", "AQL-GV-RL4"), case-insensitively.
func ParseModuleKind(s string) (ModuleKind, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	for _, k := range ModuleKinds {
		if key == string(k) || key == k.Spec().FullName {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown module kind %q", ErrInvalid, s)
}

// ActionKind selects what a scene action targets.
type ActionKind string

const (
	// ActionSingle targets one circuit.
	ActionSingle ActionKind = "single"
	// ActionGroup targets every light of a room.
	ActionGroup ActionKind = "group"
)

// Valid reports whether k is a known kind.
func (k ActionKind) Valid() bool {
	return k == ActionSingle || k == ActionGroup
}

// RockerStyle is the orientation printed on a rocker key.
type RockerStyle string

const (
	RockerUpDown       RockerStyle = "up-down"
	RockerLeftRight    RockerStyle = "left-right"
	RockerPreviousNext RockerStyle = "previous-next"
)

// Valid reports whether s is a known orientation.
func (s RockerStyle) Valid() bool {
	switch s {
	case RockerUpDown, RockerLeftRight, RockerPreviousNext:
		return true
	}
	return false
}

// Keypad button counts accepted by the RQR-K family.
var KeypadButtonCounts = []int{1, 2, 4}

// ValidButtonCount reports whether n is a supported keypad button count.
func ValidButtonCount(n int) bool {
	for _, c := range KeypadButtonCounts {
		if c == n {
			return true
		}
	}
	return false
}
