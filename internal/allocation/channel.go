package allocation

import (
	"fmt"

	"github.com/nerrad567/gray-logic-designer/internal/design"
)

// CheckLink validates linking circuit to channel of module against the
// project's existing links. Checks run in order: kind compatibility,
// channel range, channel occupancy, circuit already linked.
func CheckLink(module design.Module, circuit design.Circuit, channel int, links []design.Link) error {
	if !module.Kind.Accepts(circuit.Kind) {
		return fmt.Errorf("%w: module %q (%s) does not accept %s circuit %q",
			design.ErrIncompatibleKind, module.Name, module.Kind, circuit.Kind, circuit.Identifier)
	}

	capacity := module.Kind.Channels()
	if channel < 1 || channel > capacity {
		return fmt.Errorf("%w: channel %d outside 1..%d of module %q",
			design.ErrCapacityExceeded, channel, capacity, module.Name)
	}

	for _, l := range links {
		if l.ModuleID == module.ID && l.Channel == channel && l.CircuitID != circuit.ID {
			return fmt.Errorf("%w: channel %d of module %q is taken", design.ErrDuplicateAddress, channel, module.Name)
		}
	}
	for _, l := range links {
		if l.CircuitID == circuit.ID {
			return fmt.Errorf("%w: circuit %q is already linked", design.ErrDuplicateAddress, circuit.Identifier)
		}
	}
	return nil
}

// NextFreeChannel returns the lowest unoccupied channel of a module.
func NextFreeChannel(module design.Module, links []design.Link) (int, error) {
	used := make(map[int]bool)
	for _, l := range links {
		if l.ModuleID == module.ID {
			used[l.Channel] = true
		}
	}
	for ch := 1; ch <= module.Kind.Channels(); ch++ {
		if !used[ch] {
			return ch, nil
		}
	}
	return 0, fmt.Errorf("%w: module %q has no free channel", design.ErrCapacityExceeded, module.Name)
}

// FreeChannels lists the unoccupied channels of a module in order.
func FreeChannels(module design.Module, links []design.Link) []int {
	used := make(map[int]bool)
	for _, l := range links {
		if l.ModuleID == module.ID {
			used[l.Channel] = true
		}
	}
	var out []int
	for ch := 1; ch <= module.Kind.Channels(); ch++ {
		if !used[ch] {
			out = append(out, ch)
		}
	}
	return out
}
