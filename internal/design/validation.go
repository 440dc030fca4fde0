package design

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	maxNameLength       = 100
	maxIdentifierLength = 50
	maxLevel            = 100
)

// ValidateName checks that a display name is present and bounded.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalid)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalid, maxNameLength)
	}
	return nil
}

// ValidateCircuit checks the fields a caller supplies for a new circuit.
func ValidateCircuit(c Circuit) error {
	if err := ValidateName(c.Name); err != nil {
		return err
	}
	id := strings.TrimSpace(c.Identifier)
	if id == "" {
		return fmt.Errorf("%w: circuit identifier cannot be empty", ErrInvalid)
	}
	if len(id) > maxIdentifierLength {
		return fmt.Errorf("%w: circuit identifier exceeds %d characters", ErrInvalid, maxIdentifierLength)
	}
	if !c.Kind.Valid() {
		return fmt.Errorf("%w: unknown circuit kind %q", ErrInvalid, c.Kind)
	}
	if c.Power < 0 {
		return fmt.Errorf("%w: power cannot be negative", ErrInvalid)
	}
	if c.Dimmable && c.Kind != CircuitLight {
		return fmt.Errorf("%w: only light circuits can be dimmable", ErrInvalid)
	}
	return nil
}

// ValidateModule checks the fields a caller supplies for a new module.
func ValidateModule(m Module) error {
	if err := ValidateName(m.Name); err != nil {
		return err
	}
	if !m.Kind.Valid() {
		return fmt.Errorf("%w: unknown module kind %q", ErrInvalid, m.Kind)
	}
	return nil
}

// ValidateKeypadButton checks the editable fields of a button.
func ValidateKeypadButton(b KeypadButton) error {
	if b.CircuitID != nil && b.SceneID != nil {
		return fmt.Errorf("%w: a button targets a circuit or a scene, not both", ErrInvalid)
	}
	if utf8.RuneCountInString(b.Engraving) > MaxEngravingLength {
		return fmt.Errorf("%w: engraving exceeds %d characters", ErrInvalid, MaxEngravingLength)
	}
	if !b.RockerStyle.Valid() {
		return fmt.Errorf("%w: unknown rocker style %q", ErrInvalid, b.RockerStyle)
	}
	return nil
}

// ValidateScene checks a scene and its actions.
func ValidateScene(s Scene) error {
	if err := ValidateName(s.Name); err != nil {
		return err
	}
	for i, a := range s.Actions {
		if err := validateAction(a); err != nil {
			return fmt.Errorf("action %d: %w", i+1, err)
		}
	}
	return nil
}

func validateAction(a Action) error {
	if a.Level < 0 || a.Level > maxLevel {
		return fmt.Errorf("%w: level must be between 0 and %d", ErrInvalid, maxLevel)
	}
	switch a.Kind {
	case ActionSingle:
		if a.CircuitID == nil || a.RoomID != nil {
			return fmt.Errorf("%w: single action needs a circuit and no room", ErrInvalid)
		}
		if len(a.Overrides) > 0 {
			return fmt.Errorf("%w: single action cannot carry overrides", ErrInvalid)
		}
	case ActionGroup:
		if a.RoomID == nil || a.CircuitID != nil {
			return fmt.Errorf("%w: group action needs a room and no circuit", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown action kind %q", ErrInvalid, a.Kind)
	}
	seen := make(map[int64]bool, len(a.Overrides))
	for _, o := range a.Overrides {
		if seen[o.CircuitID] {
			return fmt.Errorf("%w: circuit %d overridden twice", ErrInvalid, o.CircuitID)
		}
		seen[o.CircuitID] = true
		if o.Level < 0 || o.Level > maxLevel {
			return fmt.Errorf("%w: override level must be between 0 and %d", ErrInvalid, maxLevel)
		}
	}
	return nil
}
