package snapshot

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-designer/internal/allocation"
	"github.com/nerrad567/gray-logic-designer/internal/design"
)

// Options controls Parse.
type Options struct {
	// Reserved network addresses are never handed to imported devices.
	Reserved []int
	Logger   Logger
}

type section struct {
	name   string
	decode func(g *design.Graph, raw json.RawMessage) error
}

func into[T any](field func(*design.Graph) *[]T) func(*design.Graph, json.RawMessage) error {
	return func(g *design.Graph, raw json.RawMessage) error {
		var v []T
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		*field(g) = v
		return nil
	}
}

var currentSections = []section{
	{"areas", into(func(g *design.Graph) *[]design.Area { return &g.Areas })},
	{"rooms", into(func(g *design.Graph) *[]design.Room { return &g.Rooms })},
	{"boards", into(func(g *design.Graph) *[]design.Board { return &g.Boards })},
	{"circuits", into(func(g *design.Graph) *[]design.Circuit { return &g.Circuits })},
	{"modules", into(func(g *design.Graph) *[]design.Module { return &g.Modules })},
	{"links", into(func(g *design.Graph) *[]design.Link { return &g.Links })},
	{"keypads", into(func(g *design.Graph) *[]design.Keypad { return &g.Keypads })},
	{"scenes", into(func(g *design.Graph) *[]design.Scene { return &g.Scenes })},
}

func sectionNames(ss []section) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		out = append(out, s.name)
	}
	return out
}

// Parse reads a snapshot in either layout. The returned graph is keyed by
// the snapshot's own ids and is ready for design.Store.CreateGraph.
//
// Missing SAK ranges, network addresses and device ids are allocated; the
// ones present are kept and checked. Keypads are completed to their button
// count.
func Parse(data []byte, opts Options) (*design.Graph, error) {
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, fmt.Errorf("%w: snapshot is not a JSON object: %v", design.ErrMalformedDocument, err)
	}

	var (
		g   *design.Graph
		err error
	)
	if _, ok := members["projeto"]; ok {
		g, err = parseLegacy(data, members, logger)
	} else {
		g, err = parseCurrent(data, members, logger)
	}
	if err != nil {
		return nil, err
	}

	if err := complete(g, opts.Reserved, logger); err != nil {
		return nil, err
	}
	logger.Info("snapshot parsed",
		"project", g.Project.Name,
		"circuits", len(g.Circuits),
		"modules", len(g.Modules),
		"links", len(g.Links),
	)
	return g, nil
}

func parseCurrent(data []byte, members map[string]json.RawMessage, logger Logger) (*design.Graph, error) {
	schemas, err := currentSchemas()
	if err != nil {
		return nil, err
	}
	if err := validate(schemas.envelope, data); err != nil {
		return nil, fmt.Errorf("%w: %v", design.ErrMalformedDocument, err)
	}

	g := &design.Graph{}
	if err := json.Unmarshal(members["project"], &g.Project); err != nil {
		return nil, fmt.Errorf("%w: project: %v", design.ErrMalformedDocument, err)
	}
	g.Project = design.Project{Name: strings.TrimSpace(g.Project.Name), Status: defaultStatus(g.Project.Status)}

	for _, s := range currentSections {
		raw, ok := members[s.name]
		if !ok {
			continue
		}
		if err := validate(schemas.sections[s.name], raw); err != nil {
			logger.Warn("ignoring invalid snapshot section", "section", s.name, "error", err)
			continue
		}
		if err := s.decode(g, raw); err != nil {
			logger.Warn("ignoring unreadable snapshot section", "section", s.name, "error", err)
		}
	}
	return g, nil
}

func defaultStatus(s string) string {
	switch s {
	case design.StatusActive, design.StatusInactive, design.StatusDone:
		return s
	default:
		return design.StatusActive
	}
}

// complete checks parent links and fills what the snapshot left out.
func complete(g *design.Graph, reserved []int, logger Logger) error {
	areas := make(map[int64]bool)
	for _, a := range g.Areas {
		if areas[a.ID] {
			return fmt.Errorf("%w: area id %d appears twice", design.ErrMalformedDocument, a.ID)
		}
		areas[a.ID] = true
	}
	rooms := make(map[int64]bool)
	for _, r := range g.Rooms {
		if !areas[r.AreaID] {
			return fmt.Errorf("%w: room %q has no parent area", design.ErrMalformedDocument, r.Name)
		}
		if rooms[r.ID] {
			return fmt.Errorf("%w: room id %d appears twice", design.ErrMalformedDocument, r.ID)
		}
		rooms[r.ID] = true
	}
	boards := make(map[int64]bool)
	for _, b := range g.Boards {
		if !rooms[b.RoomID] {
			return fmt.Errorf("%w: board %q in unknown room %d", design.ErrDanglingReference, b.Name, b.RoomID)
		}
		boards[b.ID] = true
	}

	if err := completeCircuits(g, rooms); err != nil {
		return err
	}
	for _, m := range g.Modules {
		if m.BoardID != nil && !boards[*m.BoardID] {
			return fmt.Errorf("%w: module %q on unknown board %d", design.ErrDanglingReference, m.Name, *m.BoardID)
		}
	}
	if err := allocation.CompleteAddresses(g, reserved...); err != nil {
		return err
	}
	if err := completeKeypads(g, rooms, logger); err != nil {
		return err
	}
	if err := checkScenes(g, rooms); err != nil {
		return err
	}
	return allocation.CheckGraph(g, reserved...)
}

func completeCircuits(g *design.Graph, rooms map[int64]bool) error {
	seen := make(map[int64]bool)
	for i := range g.Circuits {
		c := &g.Circuits[i]
		if !rooms[c.RoomID] {
			return fmt.Errorf("%w: circuit %q in unknown room %d", design.ErrDanglingReference, c.Identifier, c.RoomID)
		}
		if seen[c.ID] {
			return fmt.Errorf("%w: circuit id %d appears twice", design.ErrMalformedDocument, c.ID)
		}
		seen[c.ID] = true
		if c.Name == "" {
			c.Name = c.Identifier
		}
		if c.Kind != design.CircuitLight {
			c.Dimmable = false
		}
		if c.Kind == design.CircuitHVAC || c.SAK <= 0 {
			c.SAK, c.SAKCount = 0, 0
		} else {
			c.SAKCount = c.Kind.SAKWidth()
		}
	}

	for i := range g.Circuits {
		c := &g.Circuits[i]
		if c.Kind == design.CircuitHVAC || c.HasSAK() {
			continue
		}
		sak, count, err := allocation.NextSAK(g.Circuits, c.Kind)
		if err != nil {
			return fmt.Errorf("circuit %q: %w", c.Identifier, err)
		}
		c.SAK, c.SAKCount = sak, count
	}
	return nil
}

func completeKeypads(g *design.Graph, rooms map[int64]bool, logger Logger) error {
	scenes := make(map[int64]bool, len(g.Scenes))
	for _, sc := range g.Scenes {
		scenes[sc.ID] = true
	}

	for i := range g.Keypads {
		k := &g.Keypads[i]
		if !rooms[k.RoomID] {
			return fmt.Errorf("%w: keypad %q in unknown room %d", design.ErrDanglingReference, k.Name, k.RoomID)
		}
		if !design.ValidButtonCount(k.ButtonCount) {
			return fmt.Errorf("%w: keypad %q has %d buttons", design.ErrMalformedDocument, k.Name, k.ButtonCount)
		}

		byOrdinal := make(map[int]design.KeypadButton, len(k.Buttons))
		for _, b := range k.Buttons {
			if b.Ordinal < 1 || b.Ordinal > k.ButtonCount {
				logger.Warn("dropping keypad button beyond button count", "keypad", k.Name, "ordinal", b.Ordinal)
				continue
			}
			if b.CircuitID != nil {
				if _, ok := g.Circuit(*b.CircuitID); !ok {
					return fmt.Errorf("%w: keypad %q button %d targets unknown circuit %d", design.ErrDanglingReference, k.Name, b.Ordinal, *b.CircuitID)
				}
			}
			if b.SceneID != nil && !scenes[*b.SceneID] {
				return fmt.Errorf("%w: keypad %q button %d targets unknown scene %d", design.ErrDanglingReference, k.Name, b.Ordinal, *b.SceneID)
			}
			if b.GUID == uuid.Nil {
				b.GUID = uuid.New()
			}
			byOrdinal[b.Ordinal] = b
		}

		buttons := make([]design.KeypadButton, 0, k.ButtonCount)
		for ord := 1; ord <= k.ButtonCount; ord++ {
			b, ok := byOrdinal[ord]
			if !ok {
				b = design.NewKeypadButton(ord)
			}
			buttons = append(buttons, b)
		}
		k.Buttons = buttons
	}
	return nil
}

func checkScenes(g *design.Graph, rooms map[int64]bool) error {
	for _, sc := range g.Scenes {
		if !rooms[sc.RoomID] {
			return fmt.Errorf("%w: scene %q in unknown room %d", design.ErrDanglingReference, sc.Name, sc.RoomID)
		}
		for i, a := range sc.Actions {
			if a.CircuitID != nil {
				if _, ok := g.Circuit(*a.CircuitID); !ok {
					return fmt.Errorf("%w: scene %q action %d targets unknown circuit %d", design.ErrDanglingReference, sc.Name, i+1, *a.CircuitID)
				}
			}
			if a.RoomID != nil && !rooms[*a.RoomID] {
				return fmt.Errorf("%w: scene %q action %d targets unknown room %d", design.ErrDanglingReference, sc.Name, i+1, *a.RoomID)
			}
			for _, o := range a.Overrides {
				if _, ok := g.Circuit(o.CircuitID); !ok {
					return fmt.Errorf("%w: scene %q action %d overrides unknown circuit %d", design.ErrDanglingReference, sc.Name, i+1, o.CircuitID)
				}
			}
		}
	}
	return nil
}
