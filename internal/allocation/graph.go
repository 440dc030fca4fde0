package allocation

import (
	"fmt"

	"github.com/nerrad567/gray-logic-designer/internal/design"
)

// CheckGraph verifies every allocation invariant of a whole graph: SAK
// ranges, network addresses and device ids, and links. Importers run it
// before storing anything.
func CheckGraph(g *design.Graph, reserved ...int) error {
	if err := CheckSAKRanges(g.Circuits); err != nil {
		return err
	}
	if err := CheckAddresses(g.Modules, g.Keypads, reserved...); err != nil {
		return err
	}

	var accepted []design.Link
	for _, l := range g.Links {
		circuit, ok := g.Circuit(l.CircuitID)
		if !ok {
			return fmt.Errorf("%w: link to unknown circuit %d", design.ErrDanglingReference, l.CircuitID)
		}
		module, ok := g.Module(l.ModuleID)
		if !ok {
			return fmt.Errorf("%w: link to unknown module %d", design.ErrDanglingReference, l.ModuleID)
		}
		if err := CheckLink(module, circuit, l.Channel, accepted); err != nil {
			return err
		}
		accepted = append(accepted, l)
	}
	return nil
}

// CompleteAddresses gives every module and keypad of g without a network
// address the next free one, keeping the addresses already present. A zero
// device id mirrors the network address. Importers run it before CheckGraph.
func CompleteAddresses(g *design.Graph, reserved ...int) error {
	var modules []design.Module
	var keypads []design.Keypad
	for i := range g.Modules {
		m := &g.Modules[i]
		if m.NetworkAddress > 0 {
			if m.DeviceID == 0 {
				m.DeviceID = m.NetworkAddress
			}
			modules = append(modules, *m)
		}
	}
	for i := range g.Keypads {
		k := &g.Keypads[i]
		if k.NetworkAddress > 0 {
			if k.DeviceID == 0 {
				k.DeviceID = k.NetworkAddress
			}
			keypads = append(keypads, *k)
		}
	}

	addrs := NewAddresses(modules, keypads, reserved...)
	for i := range g.Modules {
		m := &g.Modules[i]
		if m.NetworkAddress > 0 {
			continue
		}
		n, d, err := addrs.Assign(0, m.DeviceID, addrs.NextModuleAddress)
		if err != nil {
			return fmt.Errorf("module %q: %w", m.Name, err)
		}
		m.NetworkAddress, m.DeviceID = n, d
	}
	for i := range g.Keypads {
		k := &g.Keypads[i]
		if k.NetworkAddress > 0 {
			continue
		}
		n, d, err := addrs.Assign(0, k.DeviceID, addrs.NextKeypadAddress)
		if err != nil {
			return fmt.Errorf("keypad %q: %w", k.Name, err)
		}
		k.NetworkAddress, k.DeviceID = n, d
	}
	return nil
}
