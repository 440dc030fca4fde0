package allocation

import (
	"fmt"

	"github.com/nerrad567/gray-logic-designer/internal/design"
)

// MaxSAK is the highest SAK the controller can address.
const MaxSAK = 65535

type sakRange struct {
	start, end int // [start, end)
}

func (r sakRange) overlaps(o sakRange) bool {
	return r.start < o.end && o.start < r.end
}

// NextSAK returns the SAK range for a new circuit of the given kind.
//
// HVAC circuits get no range (0, 0). Otherwise the range starts right after
// the highest-addressed existing range and is pushed forward by its own
// width while it overlaps any existing range. Gaps left by deleted circuits
// are never reused, so addresses already deployed to a controller stay put.
func NextSAK(existing []design.Circuit, kind design.CircuitKind) (sak, count int, err error) {
	if !kind.Valid() {
		return 0, 0, fmt.Errorf("%w: unknown circuit kind %q", design.ErrInvalid, kind)
	}
	width := kind.SAKWidth()
	if width == 0 {
		return 0, 0, nil
	}

	var occupied []sakRange
	candidate := 1
	highest := 0
	for _, c := range existing {
		if c.Kind == design.CircuitHVAC || !c.HasSAK() {
			continue
		}
		r := sakRange{start: c.SAK, end: c.SAK + c.SAKCount}
		occupied = append(occupied, r)
		if c.SAK > highest {
			highest = c.SAK
			candidate = r.end
		}
	}

	for {
		want := sakRange{start: candidate, end: candidate + width}
		if want.end-1 > MaxSAK {
			return 0, 0, fmt.Errorf("%w: no SAK range of width %d left below %d", design.ErrAddressExhausted, width, MaxSAK)
		}
		clash := false
		for _, r := range occupied {
			if want.overlaps(r) {
				clash = true
				break
			}
		}
		if !clash {
			return candidate, width, nil
		}
		candidate += width
	}
}

// CheckSAKRanges reports the first pair of circuits whose SAK ranges overlap.
func CheckSAKRanges(circuits []design.Circuit) error {
	var seen []design.Circuit
	for _, c := range circuits {
		if c.Kind == design.CircuitHVAC {
			if c.HasSAK() {
				return fmt.Errorf("%w: HVAC circuit %q carries SAK %d", design.ErrInvalid, c.Identifier, c.SAK)
			}
			continue
		}
		if !c.HasSAK() {
			return fmt.Errorf("%w: circuit %q has no SAK", design.ErrInvalid, c.Identifier)
		}
		if c.SAKCount != c.Kind.SAKWidth() {
			return fmt.Errorf("%w: circuit %q owns %d SAKs, kind %s needs %d",
				design.ErrInvalid, c.Identifier, c.SAKCount, c.Kind, c.Kind.SAKWidth())
		}
		r := sakRange{start: c.SAK, end: c.SAK + c.SAKCount}
		for _, o := range seen {
			if r.overlaps(sakRange{start: o.SAK, end: o.SAK + o.SAKCount}) {
				return fmt.Errorf("%w: SAK %d of circuit %q overlaps circuit %q",
					design.ErrDuplicateAddress, c.SAK, c.Identifier, o.Identifier)
			}
		}
		seen = append(seen, c)
	}
	return nil
}
