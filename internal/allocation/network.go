package allocation

import (
	"fmt"

	"github.com/nerrad567/gray-logic-designer/internal/design"
)

const (
	// MaxNetworkAddress is the highest HSNET address handed out.
	MaxNetworkAddress = 65535

	// ModuleNetworkBase is the address modules are allocated above.
	ModuleNetworkBase = 100
)

// Addresses is the set of network addresses and device ids held by the
// modules and keypads of one project, plus addresses reserved for devices
// outside the design (the logic-server controller).
type Addresses struct {
	network  map[int]bool
	device   map[int]bool
	reserved map[int]bool
	max      int
}

// NewAddresses collects the addresses held by modules and keypads.
// Reserved addresses are never allocated but do not count as the project maximum.
func NewAddresses(modules []design.Module, keypads []design.Keypad, reserved ...int) *Addresses {
	a := &Addresses{
		network:  make(map[int]bool),
		device:   make(map[int]bool),
		reserved: make(map[int]bool),
	}
	for _, m := range modules {
		a.hold(m.NetworkAddress, m.DeviceID)
	}
	for _, k := range keypads {
		a.hold(k.NetworkAddress, k.DeviceID)
	}
	for _, r := range reserved {
		a.reserved[r] = true
	}
	return a
}

func (a *Addresses) hold(network, device int) {
	a.network[network] = true
	a.device[device] = true
	if network > a.max {
		a.max = network
	}
}

// taken reports whether a network address is unavailable.
func (a *Addresses) taken(n int) bool {
	return a.network[n] || a.reserved[n]
}

// NextModuleAddress returns the network address for a new module: one above
// the larger of ModuleNetworkBase and the project maximum, skipping anything taken.
func (a *Addresses) NextModuleAddress() (int, error) {
	return a.next(max(ModuleNetworkBase, a.max) + 1)
}

// NextKeypadAddress returns the lowest free network address from the keypad floor.
func (a *Addresses) NextKeypadAddress() (int, error) {
	return a.next(design.KeypadNetworkFloor)
}

func (a *Addresses) next(candidate int) (int, error) {
	for ; candidate <= MaxNetworkAddress; candidate++ {
		// The device id defaults to the address, so skip held device ids too.
		if !a.taken(candidate) && !a.device[candidate] {
			return candidate, nil
		}
	}
	return 0, fmt.Errorf("%w: no network address left below %d", design.ErrAddressExhausted, MaxNetworkAddress)
}

// Assign resolves and claims the network address and device id of a new
// device. A zero network address is allocated from the given next function;
// a zero device id mirrors the network address. Explicit values must be
// positive and unused.
func (a *Addresses) Assign(network, device int, next func() (int, error)) (int, int, error) {
	if network < 0 || device < 0 {
		return 0, 0, fmt.Errorf("%w: network address and device id must be positive", design.ErrInvalid)
	}

	if network == 0 {
		n, err := next()
		if err != nil {
			return 0, 0, err
		}
		network = n
	} else if network > MaxNetworkAddress {
		return 0, 0, fmt.Errorf("%w: network address %d above %d", design.ErrInvalid, network, MaxNetworkAddress)
	} else if a.taken(network) {
		return 0, 0, fmt.Errorf("%w: network address %d is in use", design.ErrDuplicateAddress, network)
	}

	if device == 0 {
		device = network
	}
	if a.device[device] {
		return 0, 0, fmt.Errorf("%w: device id %d is in use", design.ErrDuplicateAddress, device)
	}

	a.hold(network, device)
	return network, device, nil
}

// CheckAddresses verifies that no two modules or keypads share a network
// address or a device id, and that none uses a reserved address.
func CheckAddresses(modules []design.Module, keypads []design.Keypad, reserved ...int) error {
	a := NewAddresses(nil, nil, reserved...)
	claim := func(what string, network, device int) error {
		if network <= 0 || device <= 0 {
			return fmt.Errorf("%w: %s has no network address or device id", design.ErrInvalid, what)
		}
		if a.taken(network) {
			return fmt.Errorf("%w: %s network address %d", design.ErrDuplicateAddress, what, network)
		}
		if a.device[device] {
			return fmt.Errorf("%w: %s device id %d", design.ErrDuplicateAddress, what, device)
		}
		a.hold(network, device)
		return nil
	}
	for _, m := range modules {
		if err := claim(fmt.Sprintf("module %q", m.Name), m.NetworkAddress, m.DeviceID); err != nil {
			return err
		}
	}
	for _, k := range keypads {
		if err := claim(fmt.Sprintf("keypad %q", k.Name), k.NetworkAddress, k.DeviceID); err != nil {
			return err
		}
	}
	return nil
}
