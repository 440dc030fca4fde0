package snapshot

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nerrad567/gray-logic-designer/internal/design"
)

var legacySections = []string{"areas", "ambientes", "circuitos", "modulos", "vinculacoes"}

type legacyProject struct {
	Name string `json:"nome"`
}

type legacyArea struct {
	ID   int64  `json:"id"`
	Name string `json:"nome"`
}

type legacyRoom struct {
	ID     int64  `json:"id"`
	Name   string `json:"nome"`
	AreaID int64  `json:"area_id"`
}

type legacyCircuit struct {
	ID         int64   `json:"id"`
	Identifier string  `json:"identificador"`
	Name       string  `json:"nome"`
	Kind       string  `json:"tipo"`
	RoomID     int64   `json:"ambiente_id"`
	SAK        *int    `json:"sak"`
	Dimmable   bool    `json:"dimerizavel"`
	Power      float64 `json:"potencia"`
}

type legacyModule struct {
	ID       int64  `json:"id"`
	Name     string `json:"nome"`
	Kind     string `json:"tipo"`
	Channels int    `json:"quantidade_canais"`
}

type legacyLink struct {
	CircuitID int64 `json:"circuito_id"`
	ModuleID  int64 `json:"modulo_id"`
	Channel   int   `json:"canal"`
}

var legacyKinds = map[string]design.CircuitKind{
	"luz":      design.CircuitLight,
	"persiana": design.CircuitShade,
	"hvac":     design.CircuitHVAC,
}

func legacySection[T any](set *schemaSet, members map[string]json.RawMessage, name string, logger Logger) []T {
	raw, ok := members[name]
	if !ok {
		return nil
	}
	if err := validate(set.sections[name], raw); err != nil {
		logger.Warn("ignoring invalid legacy section", "section", name, "error", err)
		return nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		logger.Warn("ignoring unreadable legacy section", "section", name, "error", err)
		return nil
	}
	return out
}

// parseLegacy converts a first-generation export. Modules come back
// without a board; their network addresses are allocated afresh.
func parseLegacy(data []byte, members map[string]json.RawMessage, logger Logger) (*design.Graph, error) {
	schemas, err := legacySchemas()
	if err != nil {
		return nil, err
	}
	if err := validate(schemas.envelope, data); err != nil {
		return nil, fmt.Errorf("%w: %v", design.ErrMalformedDocument, err)
	}

	var p legacyProject
	if err := json.Unmarshal(members["projeto"], &p); err != nil {
		return nil, fmt.Errorf("%w: projeto: %v", design.ErrMalformedDocument, err)
	}
	g := &design.Graph{Project: design.Project{Name: strings.TrimSpace(p.Name), Status: design.StatusActive}}

	for _, a := range legacySection[legacyArea](schemas, members, "areas", logger) {
		g.Areas = append(g.Areas, design.Area{ID: a.ID, Name: a.Name})
	}
	for _, r := range legacySection[legacyRoom](schemas, members, "ambientes", logger) {
		g.Rooms = append(g.Rooms, design.Room{ID: r.ID, AreaID: r.AreaID, Name: r.Name})
	}

	for _, c := range legacySection[legacyCircuit](schemas, members, "circuitos", logger) {
		kind := legacyKinds[c.Kind]
		circuit := design.Circuit{
			ID:         c.ID,
			RoomID:     c.RoomID,
			Identifier: c.Identifier,
			Name:       c.Name,
			Kind:       kind,
			Dimmable:   c.Dimmable && kind == design.CircuitLight,
			Power:      c.Power,
		}
		if c.SAK != nil {
			circuit.SAK = *c.SAK
		}
		g.Circuits = append(g.Circuits, circuit)
	}

	for _, m := range legacySection[legacyModule](schemas, members, "modulos", logger) {
		kind, err := design.ParseModuleKind(m.Kind)
		if err != nil {
			return nil, fmt.Errorf("%w: module %q: %v", design.ErrMalformedDocument, m.Name, err)
		}
		if m.Channels != 0 && m.Channels != kind.Channels() {
			logger.Warn("legacy module channel count differs from its kind",
				"module", m.Name, "kind", string(kind), "channels", m.Channels)
		}
		g.Modules = append(g.Modules, design.Module{ID: m.ID, Name: m.Name, Kind: kind})
	}

	for i, l := range legacySection[legacyLink](schemas, members, "vinculacoes", logger) {
		g.Links = append(g.Links, design.Link{
			ID:        int64(i + 1),
			CircuitID: l.CircuitID,
			ModuleID:  l.ModuleID,
			Channel:   l.Channel,
		})
	}
	return g, nil
}
