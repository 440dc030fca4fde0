package design

import "sort"

// Graph is a whole project loaded eagerly: every entity of the project in
// stable order (by ID). Foreign keys inside a Graph refer to IDs of the
// same Graph.
//
// A Graph built by an importer carries local IDs that are only meaningful
// inside the Graph; Store.CreateGraph replaces them with database IDs.
type Graph struct {
	Project  Project   `json:"project"`
	Areas    []Area    `json:"areas"`
	Rooms    []Room    `json:"rooms"`
	Boards   []Board   `json:"boards"`
	Circuits []Circuit `json:"circuits"`
	Modules  []Module  `json:"modules"`
	Links    []Link    `json:"links"`
	Keypads  []Keypad  `json:"keypads"`
	Scenes   []Scene   `json:"scenes"`
}

// RoomsOf returns the rooms of an area.
func (g *Graph) RoomsOf(areaID int64) []Room {
	var out []Room
	for _, r := range g.Rooms {
		if r.AreaID == areaID {
			out = append(out, r)
		}
	}
	return out
}

// BoardsOf returns the boards housed in a room.
func (g *Graph) BoardsOf(roomID int64) []Board {
	var out []Board
	for _, b := range g.Boards {
		if b.RoomID == roomID {
			out = append(out, b)
		}
	}
	return out
}

// CircuitsOf returns the circuits of a room.
func (g *Graph) CircuitsOf(roomID int64) []Circuit {
	var out []Circuit
	for _, c := range g.Circuits {
		if c.RoomID == roomID {
			out = append(out, c)
		}
	}
	return out
}

// KeypadsOf returns the keypads of a room.
func (g *Graph) KeypadsOf(roomID int64) []Keypad {
	var out []Keypad
	for _, k := range g.Keypads {
		if k.RoomID == roomID {
			out = append(out, k)
		}
	}
	return out
}

// ScenesOf returns the scenes of a room.
func (g *Graph) ScenesOf(roomID int64) []Scene {
	var out []Scene
	for _, s := range g.Scenes {
		if s.RoomID == roomID {
			out = append(out, s)
		}
	}
	return out
}

// ModulesOn returns the modules on a board. A nil boardID selects the
// modules that belong to no board.
func (g *Graph) ModulesOn(boardID *int64) []Module {
	var out []Module
	for _, m := range g.Modules {
		switch {
		case boardID == nil && m.BoardID == nil:
			out = append(out, m)
		case boardID != nil && m.BoardID != nil && *m.BoardID == *boardID:
			out = append(out, m)
		}
	}
	return out
}

// Room returns the room with the given ID.
func (g *Graph) Room(id int64) (Room, bool) {
	for _, r := range g.Rooms {
		if r.ID == id {
			return r, true
		}
	}
	return Room{}, false
}

// Circuit returns the circuit with the given ID.
func (g *Graph) Circuit(id int64) (Circuit, bool) {
	for _, c := range g.Circuits {
		if c.ID == id {
			return c, true
		}
	}
	return Circuit{}, false
}

// Module returns the module with the given ID.
func (g *Graph) Module(id int64) (Module, bool) {
	for _, m := range g.Modules {
		if m.ID == id {
			return m, true
		}
	}
	return Module{}, false
}

// Scene returns the scene with the given ID.
func (g *Graph) Scene(id int64) (Scene, bool) {
	for _, s := range g.Scenes {
		if s.ID == id {
			return s, true
		}
	}
	return Scene{}, false
}

// LinkOf returns the link of a circuit, if any.
func (g *Graph) LinkOf(circuitID int64) (Link, bool) {
	for _, l := range g.Links {
		if l.CircuitID == circuitID {
			return l, true
		}
	}
	return Link{}, false
}

// LinksOn returns the links of a module ordered by channel.
func (g *Graph) LinksOn(moduleID int64) []Link {
	var out []Link
	for _, l := range g.Links {
		if l.ModuleID == moduleID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Channel < out[j].Channel })
	return out
}

// Counts summarises a graph by entity type.
type Counts struct {
	Areas    int `json:"areas"`
	Rooms    int `json:"rooms"`
	Boards   int `json:"boards"`
	Circuits int `json:"circuits"`
	Modules  int `json:"modules"`
	Links    int `json:"links"`
	Keypads  int `json:"keypads"`
	Scenes   int `json:"scenes"`
}

// Counts returns the number of entities of each type.
func (g *Graph) Counts() Counts {
	return Counts{
		Areas:    len(g.Areas),
		Rooms:    len(g.Rooms),
		Boards:   len(g.Boards),
		Circuits: len(g.Circuits),
		Modules:  len(g.Modules),
		Links:    len(g.Links),
		Keypads:  len(g.Keypads),
		Scenes:   len(g.Scenes),
	}
}
