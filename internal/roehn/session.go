package roehn

import (
	"fmt"

	"github.com/google/uuid"
)

// Entity names the kind of design entity a registry key belongs to.
type Entity int

const (
	EntityArea Entity = iota + 1
	EntityRoom
	EntityBoard
	EntityCircuit
	EntityModule
	EntityKeypad
	EntityScene
)

func (e Entity) String() string {
	switch e {
	case EntityArea:
		return "area"
	case EntityRoom:
		return "room"
	case EntityBoard:
		return "board"
	case EntityCircuit:
		return "circuit"
	case EntityModule:
		return "module"
	case EntityKeypad:
		return "keypad"
	case EntityScene:
		return "scene"
	default:
		return fmt.Sprintf("entity(%d)", int(e))
	}
}

type refKey struct {
	entity Entity
	id     int64
}

// Session is the state of one compile run: the reference registry, the
// unit-id counter and the document being built. Sessions are not safe for
// concurrent use and must not be reused across runs.
type Session struct {
	doc        *Project
	controller *Module

	registry map[refKey]uuid.UUID
	owners   map[uuid.UUID]refKey
	unit     int

	newGUID func() uuid.UUID
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{
		registry: make(map[refKey]uuid.UUID),
		owners:   make(map[uuid.UUID]refKey),
		newGUID:  uuid.New,
	}
}

// GUID returns the document GUID of a design entity, minting one the first
// time the entity is seen. Every later call for the same entity returns the
// same GUID.
func (s *Session) GUID(e Entity, id int64) uuid.UUID {
	key := refKey{e, id}
	if g, ok := s.registry[key]; ok {
		return g
	}
	g := s.newGUID()
	s.registry[key] = g
	s.owners[g] = key
	return g
}

// Bind records a GUID chosen outside the run, such as the stored GUID of a
// scene. Binding the same pair twice is a no-op.
func (s *Session) Bind(e Entity, id int64, g uuid.UUID) error {
	key := refKey{e, id}
	if g == uuid.Nil {
		return fmt.Errorf("%w: nil GUID for %s %d", ErrRegistryConflict, e, id)
	}
	if have, ok := s.registry[key]; ok && have != g {
		return fmt.Errorf("%w: %s %d already has GUID %s", ErrRegistryConflict, e, id, have)
	}
	if owner, ok := s.owners[g]; ok && owner != key {
		return fmt.Errorf("%w: GUID %s already belongs to %s %d", ErrRegistryConflict, g, owner.entity, owner.id)
	}
	s.registry[key] = g
	s.owners[g] = key
	return nil
}

// Lookup returns the reference of a registered entity, or an unset Ref.
func (s *Session) Lookup(e Entity, id int64) Ref {
	return RefTo(s.registry[refKey{e, id}])
}

// syncUnits raises the unit counter to the highest unit id already present
// in the document. Called before each batch of new units.
func (s *Session) syncUnits() {
	if s.doc == nil {
		return
	}
	if m := s.doc.maxUnitID(); m > s.unit {
		s.unit = m
	}
}

func (s *Session) newUnit() *Unit {
	s.unit++
	return &Unit{NodeType: TypeUnit, Id: s.unit}
}

func (s *Session) composer(c composerSpec) *UnitComposer {
	return &UnitComposer{
		NodeType:        TypeUnitComposer,
		Name:            c.name,
		Unit:            s.newUnit(),
		PortNumber:      c.port,
		PortType:        c.portType,
		NotProgrammable: c.notProgrammable,
		Kind:            c.kind,
		IO:              c.io,
	}
}

func (s *Session) composers(specs []composerSpec) []*UnitComposer {
	out := make([]*UnitComposer, 0, len(specs))
	for _, c := range specs {
		out = append(out, s.composer(c))
	}
	return out
}

// Register adds a module or keypad GUID to the controller's network
// roster. Registering a GUID already on the roster is a no-op. It reports
// false once the roster holds more devices than the controller supports;
// the GUID is enrolled anyway.
func (s *Session) Register(g uuid.UUID) bool {
	if s.controller == nil {
		return true
	}
	roster := s.controller.Slot(SlotRoster)
	if roster == nil {
		return true
	}
	roster.enroll(g)
	return !roster.overfull()
}

// RegisterScene places a scene GUID in the controller's scene slot. It
// reports false when the slot is full.
func (s *Session) RegisterScene(g uuid.UUID) bool {
	if s.controller == nil {
		return false
	}
	slot := s.controller.Slot(SlotScene)
	if slot == nil {
		return false
	}
	return slot.place(g)
}

// enroll adds g to a roster slot: the first unset entry is overwritten,
// otherwise g is appended, and the list always ends with an unset entry.
func (sl *Slot) enroll(g uuid.UUID) {
	if sl.contains(g) {
		return
	}
	placed := false
	for i, r := range sl.SubItemsGuid {
		if !r.IsSet() {
			sl.SubItemsGuid[i] = RefTo(g)
			placed = true
			break
		}
	}
	if !placed {
		sl.SubItemsGuid = append(sl.SubItemsGuid, RefTo(g))
	}
	if n := len(sl.SubItemsGuid); n == 0 || sl.SubItemsGuid[n-1].IsSet() {
		sl.SubItemsGuid = append(sl.SubItemsGuid, Ref{})
	}
}

// overfull reports whether a roster holds more entries than its capacity.
func (sl *Slot) overfull() bool {
	return sl.SlotCapacity > 0 && len(sl.Entries()) > sl.SlotCapacity
}

// place writes g into the first unset entry of a fixed-size slot.
func (sl *Slot) place(g uuid.UUID) bool {
	if sl.contains(g) {
		return true
	}
	for len(sl.SubItemsGuid) < sl.SlotCapacity {
		sl.SubItemsGuid = append(sl.SubItemsGuid, Ref{})
	}
	for i, r := range sl.SubItemsGuid {
		if !r.IsSet() {
			sl.SubItemsGuid[i] = RefTo(g)
			return true
		}
	}
	return false
}

func (sl *Slot) contains(g uuid.UUID) bool {
	for _, r := range sl.SubItemsGuid {
		if r.GUID() == g {
			return true
		}
	}
	return false
}

// Entries returns the set entries of a slot in order.
func (sl *Slot) Entries() []uuid.UUID {
	var out []uuid.UUID
	for _, r := range sl.SubItemsGuid {
		if r.IsSet() {
			out = append(out, r.GUID())
		}
	}
	return out
}
