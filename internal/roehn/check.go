package roehn

import (
	"errors"
	"fmt"

	"github.com/nerrad567/gray-logic-designer/internal/design"
)

// CheckReferences verifies that every set reference in the document names
// a node of the same document. All failures are returned, joined; each
// wraps design.ErrDanglingReference.
func CheckReferences(doc *Project) error {
	idx := doc.nodeIndex()
	var errs []error
	check := func(where string, r Ref) {
		if r.IsSet() {
			if _, ok := idx[r.GUID()]; !ok {
				errs = append(errs, fmt.Errorf("%w: %s -> %s", design.ErrDanglingReference, where, r))
			}
		}
	}

	doc.eachModule(func(m *Module) {
		check(fmt.Sprintf("module %q user interface", m.Name), m.UserInterfaceGuid)
		for _, sl := range m.Slots {
			for i, r := range sl.SubItemsGuid {
				check(fmt.Sprintf("module %q slot %q[%d]", m.Name, sl.Name, i), r)
			}
		}
	})
	doc.eachRoom(func(_ *Area, r *Room) {
		for _, k := range r.UserInterfaces {
			for i, b := range k.ListKeypadButtons {
				check(fmt.Sprintf("keypad %q button %d", k.Name, i+1), b.TargetObjectGuid)
				check(fmt.Sprintf("keypad %q button %d double press", k.Name, i+1), b.TargetDoubleObjectGuid)
			}
		}
	})
	doc.eachScene(func(s *Scene) {
		for i, a := range s.Actions {
			check(fmt.Sprintf("scene %q action %d", s.Name, i+1), a.TargetGuid)
			for j, ca := range a.CustomActions {
				check(fmt.Sprintf("scene %q action %d entry %d", s.Name, i+1, j+1), ca.TargetGuid)
			}
		}
	})
	return errors.Join(errs...)
}

// CheckInvariants verifies the structural rules an exported document keeps:
// every reference resolves, channel slots are exactly as long as their
// capacity and the roster fits the controller. Network addresses and device
// ids must be unique across modules and keypads.
func CheckInvariants(doc *Project) error {
	var errs []error
	if err := CheckReferences(doc); err != nil {
		errs = append(errs, err)
	}

	networks := make(map[int]string)
	devices := make(map[int]string)
	claim := func(what string, network, device int) {
		if other, ok := networks[network]; ok {
			errs = append(errs, fmt.Errorf("%w: %s and %s share network address %d", design.ErrDuplicateAddress, what, other, network))
		}
		if other, ok := devices[device]; ok {
			errs = append(errs, fmt.Errorf("%w: %s and %s share device id %d", design.ErrDuplicateAddress, what, other, device))
		}
		networks[network], devices[device] = what, what
	}

	doc.eachModule(func(m *Module) {
		what := fmt.Sprintf("module %q", m.Name)
		for _, sl := range m.Slots {
			if sl.Name == SlotRoster {
				if sl.overfull() {
					errs = append(errs, fmt.Errorf("%w: %s roster holds %d devices for capacity %d",
						design.ErrCapacityExceeded, what, len(sl.Entries()), sl.SlotCapacity))
				}
				continue
			}
			if len(sl.SubItemsGuid) != sl.SlotCapacity {
				errs = append(errs, fmt.Errorf("%w: %s slot %q has %d entries for capacity %d",
					design.ErrCapacityExceeded, what, sl.Name, len(sl.SubItemsGuid), sl.SlotCapacity))
			}
		}
		if m.Logicserver {
			// The controller's device id is configured, not allocated.
			if other, ok := networks[m.HsnetAddress]; ok {
				errs = append(errs, fmt.Errorf("%w: %s and %s share network address %d", design.ErrDuplicateAddress, what, other, m.HsnetAddress))
			}
			networks[m.HsnetAddress] = what
			return
		}
		claim(what, m.HsnetAddress, m.DevID)
	})
	doc.eachRoom(func(_ *Area, r *Room) {
		for _, k := range r.UserInterfaces {
			claim(fmt.Sprintf("keypad %q", k.Name), k.HsnetAddress, k.DevID)
		}
	})
	return errors.Join(errs...)
}
