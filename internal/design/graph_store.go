package design

import (
	"context"
	"fmt"
)

// LoadGraph loads a whole project eagerly for export.
func (s *Store) LoadGraph(ctx context.Context, projectID int64) (*Graph, error) {
	p, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	g := &Graph{Project: *p}
	if g.Areas, err = s.ListAreas(ctx, projectID); err != nil {
		return nil, err
	}
	if g.Rooms, err = s.ListRooms(ctx, projectID); err != nil {
		return nil, err
	}
	if g.Boards, err = s.ListBoards(ctx, projectID); err != nil {
		return nil, err
	}
	if g.Circuits, err = s.ListCircuits(ctx, projectID); err != nil {
		return nil, err
	}
	if g.Modules, err = s.ListModules(ctx, projectID); err != nil {
		return nil, err
	}
	if g.Links, err = s.ListLinks(ctx, projectID); err != nil {
		return nil, err
	}
	if g.Keypads, err = s.ListKeypads(ctx, projectID); err != nil {
		return nil, err
	}
	if g.Scenes, err = s.ListScenes(ctx, projectID); err != nil {
		return nil, err
	}
	return g, nil
}

// idMap translates the local IDs of an imported graph into database IDs.
type idMap struct {
	kind string
	ids  map[int64]int64
}

func newIDMap(kind string) *idMap {
	return &idMap{kind: kind, ids: make(map[int64]int64)}
}

func (m *idMap) get(local int64) (int64, error) {
	id, ok := m.ids[local]
	if !ok {
		return 0, fmt.Errorf("%w: %s %d", ErrDanglingReference, m.kind, local)
	}
	return id, nil
}

func (m *idMap) getOpt(local *int64) (*int64, error) {
	if local == nil {
		return nil, nil
	}
	id, err := m.get(*local)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// CreateGraph inserts every entity of g as a new project owned by ownerID
// and returns the stored graph. IDs in g are local keys; every foreign key
// must name an entity of g or the call fails with ErrDanglingReference.
//
// All inserts share one transaction: on any error nothing is committed.
func (s *Store) CreateGraph(ctx context.Context, ownerID string, g *Graph) (*Graph, error) {
	var stored *Graph
	err := s.WithTx(ctx, func(tx *Store) error {
		id, err := tx.insertGraph(ctx, ownerID, g)
		if err != nil {
			return err
		}
		stored, err = tx.LoadGraph(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *Store) insertGraph(ctx context.Context, ownerID string, g *Graph) (int64, error) {
	p := Project{Name: g.Project.Name, OwnerID: ownerID, Status: g.Project.Status}
	if err := ValidateName(p.Name); err != nil {
		return 0, fmt.Errorf("project: %w", err)
	}
	if err := s.CreateProject(ctx, &p); err != nil {
		return 0, err
	}

	areas, rooms, boards := newIDMap("area"), newIDMap("room"), newIDMap("board")
	circuits, modules, scenes := newIDMap("circuit"), newIDMap("module"), newIDMap("scene")

	for _, a := range g.Areas {
		row := Area{ProjectID: p.ID, Name: a.Name}
		if err := s.CreateArea(ctx, &row); err != nil {
			return 0, fmt.Errorf("area %q: %w", a.Name, err)
		}
		areas.ids[a.ID] = row.ID
	}

	for _, r := range g.Rooms {
		areaID, err := areas.get(r.AreaID)
		if err != nil {
			return 0, fmt.Errorf("room %q: %w", r.Name, err)
		}
		row := Room{AreaID: areaID, Name: r.Name}
		if err := s.CreateRoom(ctx, &row); err != nil {
			return 0, fmt.Errorf("room %q: %w", r.Name, err)
		}
		rooms.ids[r.ID] = row.ID
	}

	for _, b := range g.Boards {
		roomID, err := rooms.get(b.RoomID)
		if err != nil {
			return 0, fmt.Errorf("board %q: %w", b.Name, err)
		}
		row := Board{RoomID: roomID, Name: b.Name, Notes: b.Notes}
		if err := s.CreateBoard(ctx, &row); err != nil {
			return 0, fmt.Errorf("board %q: %w", b.Name, err)
		}
		boards.ids[b.ID] = row.ID
	}

	for _, c := range g.Circuits {
		roomID, err := rooms.get(c.RoomID)
		if err != nil {
			return 0, fmt.Errorf("circuit %q: %w", c.Identifier, err)
		}
		row := c
		row.ID, row.ProjectID, row.RoomID = 0, p.ID, roomID
		if err := s.CreateCircuit(ctx, &row); err != nil {
			return 0, fmt.Errorf("circuit %q: %w", c.Identifier, err)
		}
		circuits.ids[c.ID] = row.ID
	}

	for _, m := range g.Modules {
		boardID, err := boards.getOpt(m.BoardID)
		if err != nil {
			return 0, fmt.Errorf("module %q: %w", m.Name, err)
		}
		row := m
		row.ID, row.ProjectID, row.BoardID = 0, p.ID, boardID
		if err := s.CreateModule(ctx, &row); err != nil {
			return 0, fmt.Errorf("module %q: %w", m.Name, err)
		}
		modules.ids[m.ID] = row.ID
	}

	for _, l := range g.Links {
		circuitID, err := circuits.get(l.CircuitID)
		if err != nil {
			return 0, fmt.Errorf("link: %w", err)
		}
		moduleID, err := modules.get(l.ModuleID)
		if err != nil {
			return 0, fmt.Errorf("link: %w", err)
		}
		row := Link{CircuitID: circuitID, ModuleID: moduleID, Channel: l.Channel}
		if err := s.CreateLink(ctx, &row); err != nil {
			return 0, fmt.Errorf("link of circuit %d: %w", l.CircuitID, err)
		}
	}

	for _, sc := range g.Scenes {
		row, err := remapScene(sc, rooms, circuits)
		if err != nil {
			return 0, fmt.Errorf("scene %q: %w", sc.Name, err)
		}
		if err := s.CreateScene(ctx, &row); err != nil {
			return 0, fmt.Errorf("scene %q: %w", sc.Name, err)
		}
		scenes.ids[sc.ID] = row.ID
	}

	for _, k := range g.Keypads {
		roomID, err := rooms.get(k.RoomID)
		if err != nil {
			return 0, fmt.Errorf("keypad %q: %w", k.Name, err)
		}
		row := k
		row.ID, row.ProjectID, row.RoomID = 0, p.ID, roomID
		row.Buttons = make([]KeypadButton, len(k.Buttons))
		for i, b := range k.Buttons {
			b.ID, b.KeypadID = 0, 0
			if b.CircuitID, err = circuits.getOpt(b.CircuitID); err != nil {
				return 0, fmt.Errorf("keypad %q button %d: %w", k.Name, b.Ordinal, err)
			}
			if b.SceneID, err = scenes.getOpt(b.SceneID); err != nil {
				return 0, fmt.Errorf("keypad %q button %d: %w", k.Name, b.Ordinal, err)
			}
			row.Buttons[i] = b
		}
		if err := s.CreateKeypad(ctx, &row); err != nil {
			return 0, fmt.Errorf("keypad %q: %w", k.Name, err)
		}
	}

	return p.ID, nil
}

func remapScene(sc Scene, rooms, circuits *idMap) (Scene, error) {
	roomID, err := rooms.get(sc.RoomID)
	if err != nil {
		return Scene{}, err
	}
	row := Scene{RoomID: roomID, GUID: sc.GUID, Name: sc.Name, Movers: sc.Movers}
	for _, a := range sc.Actions {
		na := Action{Kind: a.Kind, Level: a.Level}
		if na.CircuitID, err = circuits.getOpt(a.CircuitID); err != nil {
			return Scene{}, err
		}
		if na.RoomID, err = rooms.getOpt(a.RoomID); err != nil {
			return Scene{}, err
		}
		for _, o := range a.Overrides {
			circuitID, err := circuits.get(o.CircuitID)
			if err != nil {
				return Scene{}, err
			}
			na.Overrides = append(na.Overrides, Override{CircuitID: circuitID, Enabled: o.Enabled, Level: o.Level})
		}
		row.Actions = append(row.Actions, na)
	}
	return row, nil
}
