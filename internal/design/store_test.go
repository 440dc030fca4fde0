package design_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/nerrad567/gray-logic-designer/internal/design"
	"github.com/nerrad567/gray-logic-designer/internal/infrastructure/database"
	_ "github.com/nerrad567/gray-logic-designer/migrations"
)

// setupTestStore opens a migrated temporary database.
func setupTestStore(t *testing.T) *design.Store {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Config{
		Path:        filepath.Join(t.TempDir(), "design.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return design.NewStore(db.DB)
}

// fixture holds one project with an area and a room.
type fixture struct {
	project design.Project
	area    design.Area
	room    design.Room
}

func seed(t *testing.T, s *design.Store) fixture {
	t.Helper()
	ctx := context.Background()

	f := fixture{project: design.Project{Name: "Casa Praia", OwnerID: "user-1"}}
	if err := s.CreateProject(ctx, &f.project); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	f.area = design.Area{ProjectID: f.project.ID, Name: "Térreo"}
	if err := s.CreateArea(ctx, &f.area); err != nil {
		t.Fatalf("CreateArea: %v", err)
	}
	f.room = design.Room{AreaID: f.area.ID, Name: "Sala"}
	if err := s.CreateRoom(ctx, &f.room); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	return f
}

func TestStore_ProjectLifecycle(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	f := seed(t, s)

	got, err := s.GetProject(ctx, f.project.ID)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if got.Name != "Casa Praia" || got.OwnerID != "user-1" || got.Status != design.StatusActive {
		t.Errorf("GetProject = %+v", got)
	}

	other := design.Project{Name: "Apartamento", OwnerID: "user-2"}
	if err := s.CreateProject(ctx, &other); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	mine, err := s.ListProjects(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != f.project.ID {
		t.Errorf("ListProjects(user-1) = %+v", mine)
	}
	all, err := s.ListProjects(ctx, "")
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("ListProjects(all) returned %d projects, want 2", len(all))
	}

	if err := s.DeleteProject(ctx, f.project.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if _, err := s.GetProject(ctx, f.project.ID); !errors.Is(err, design.ErrNotFound) {
		t.Errorf("GetProject after delete error = %v, want ErrNotFound", err)
	}
	if _, _, err := s.GetRoom(ctx, f.room.ID); !errors.Is(err, design.ErrNotFound) {
		t.Errorf("room should be deleted with its project, got %v", err)
	}
}

func TestStore_DuplicateNames(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	f := seed(t, s)

	tests := []struct {
		name string
		run  func() error
	}{
		{"project", func() error {
			return s.CreateProject(ctx, &design.Project{Name: "Casa Praia", OwnerID: "user-9"})
		}},
		{"area", func() error {
			return s.CreateArea(ctx, &design.Area{ProjectID: f.project.ID, Name: "Térreo"})
		}},
		{"room", func() error {
			return s.CreateRoom(ctx, &design.Room{AreaID: f.area.ID, Name: "Sala"})
		}},
		{"circuit identifier", func() error {
			c := design.Circuit{ProjectID: f.project.ID, RoomID: f.room.ID, Identifier: "L1", Name: "Luz", Kind: design.CircuitLight, SAK: 1, SAKCount: 1}
			if err := s.CreateCircuit(ctx, &c); err != nil {
				return err
			}
			c.ID = 0
			c.SAK = 2
			return s.CreateCircuit(ctx, &c)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, design.ErrDuplicateName) {
				t.Errorf("error = %v, want ErrDuplicateName", err)
			}
		})
	}
}

func TestStore_RoomProject(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	f := seed(t, s)

	room, projectID, err := s.GetRoom(ctx, f.room.ID)
	if err != nil {
		t.Fatalf("GetRoom: %v", err)
	}
	if projectID != f.project.ID || room.Name != "Sala" {
		t.Errorf("GetRoom = %+v in project %d", room, projectID)
	}

	if err := s.CreateRoom(ctx, &design.Room{AreaID: 9999, Name: "Órfão"}); !errors.Is(err, design.ErrNotFound) {
		t.Errorf("CreateRoom with missing area error = %v, want ErrNotFound", err)
	}
}

func TestStore_CircuitsModulesLinks(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	f := seed(t, s)

	board := design.Board{RoomID: f.room.ID, Name: "QD1"}
	if err := s.CreateBoard(ctx, &board); err != nil {
		t.Fatalf("CreateBoard: %v", err)
	}

	light := design.Circuit{ProjectID: f.project.ID, RoomID: f.room.ID, Identifier: "L1", Name: "Spots",
		Kind: design.CircuitLight, Dimmable: true, Power: 60, SAK: 1, SAKCount: 1}
	hvac := design.Circuit{ProjectID: f.project.ID, RoomID: f.room.ID, Identifier: "AC1", Name: "Split",
		Kind: design.CircuitHVAC}
	for _, c := range []*design.Circuit{&light, &hvac} {
		if err := s.CreateCircuit(ctx, c); err != nil {
			t.Fatalf("CreateCircuit %s: %v", c.Identifier, err)
		}
	}

	got, err := s.GetCircuit(ctx, hvac.ID)
	if err != nil {
		t.Fatalf("GetCircuit: %v", err)
	}
	if got.HasSAK() || got.SAK != 0 {
		t.Errorf("HVAC circuit stored with SAK %d", got.SAK)
	}

	relay := design.Module{ProjectID: f.project.ID, BoardID: design.ID(board.ID), Name: "RL12-1",
		Kind: design.ModuleRL12, NetworkAddress: 101, DeviceID: 101}
	if err := s.CreateModule(ctx, &relay); err != nil {
		t.Fatalf("CreateModule: %v", err)
	}

	dup := design.Module{ProjectID: f.project.ID, Name: "RL12-2", Kind: design.ModuleRL12, NetworkAddress: 101, DeviceID: 102}
	if err := s.CreateModule(ctx, &dup); !errors.Is(err, design.ErrDuplicateAddress) {
		t.Errorf("CreateModule with taken address error = %v, want ErrDuplicateAddress", err)
	}

	link := design.Link{CircuitID: light.ID, ModuleID: relay.ID, Channel: 1}
	if err := s.CreateLink(ctx, &link); err != nil {
		t.Fatalf("CreateLink: %v", err)
	}
	if err := s.CreateLink(ctx, &design.Link{CircuitID: hvac.ID, ModuleID: relay.ID, Channel: 1}); !errors.Is(err, design.ErrDuplicateAddress) {
		t.Errorf("CreateLink on occupied channel error = %v, want ErrDuplicateAddress", err)
	}

	if err := s.DeleteModule(ctx, relay.ID); !errors.Is(err, design.ErrModuleInUse) {
		t.Errorf("DeleteModule while linked error = %v, want ErrModuleInUse", err)
	}
	if err := s.DeleteLinkOf(ctx, light.ID); err != nil {
		t.Fatalf("DeleteLinkOf: %v", err)
	}
	if err := s.DeleteModule(ctx, relay.ID); err != nil {
		t.Errorf("DeleteModule after unlink: %v", err)
	}
	if err := s.DeleteLinkOf(ctx, light.ID); !errors.Is(err, design.ErrNotFound) {
		t.Errorf("DeleteLinkOf twice error = %v, want ErrNotFound", err)
	}
}

func TestStore_KeypadButtonCount(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	f := seed(t, s)

	k := design.Keypad{ProjectID: f.project.ID, RoomID: f.room.ID, Name: "Entrada",
		ButtonCount: 4, NetworkAddress: 110, DeviceID: 110}
	if err := s.CreateKeypad(ctx, &k); err != nil {
		t.Fatalf("CreateKeypad: %v", err)
	}
	if k.Model != design.DefaultKeypadModel || k.Color != design.DefaultKeypadColor {
		t.Errorf("defaults not applied: %+v", k)
	}
	if len(k.Buttons) != 4 {
		t.Fatalf("created %d buttons, want 4", len(k.Buttons))
	}
	first := k.Buttons[0].GUID

	if err := s.SetButtonCount(ctx, k.ID, 2); err != nil {
		t.Fatalf("SetButtonCount(2): %v", err)
	}
	got, err := s.GetKeypad(ctx, k.ID)
	if err != nil {
		t.Fatalf("GetKeypad: %v", err)
	}
	if got.ButtonCount != 2 || len(got.Buttons) != 2 {
		t.Fatalf("after 4->2: count=%d buttons=%d", got.ButtonCount, len(got.Buttons))
	}
	if got.Buttons[0].Ordinal != 1 || got.Buttons[1].Ordinal != 2 {
		t.Errorf("remaining ordinals = %d,%d, want 1,2", got.Buttons[0].Ordinal, got.Buttons[1].Ordinal)
	}
	if got.Buttons[0].GUID != first {
		t.Error("surviving button lost its GUID")
	}

	if err := s.SetButtonCount(ctx, k.ID, 4); err != nil {
		t.Fatalf("SetButtonCount(4): %v", err)
	}
	got, err = s.GetKeypad(ctx, k.ID)
	if err != nil {
		t.Fatalf("GetKeypad: %v", err)
	}
	if len(got.Buttons) != 4 || got.Buttons[3].Mode != design.ModeUnassigned {
		t.Errorf("after 2->4: %+v", got.Buttons)
	}

	if err := s.SetButtonCount(ctx, k.ID, 3); !errors.Is(err, design.ErrInvalid) {
		t.Errorf("SetButtonCount(3) error = %v, want ErrInvalid", err)
	}
}

func TestStore_UpdateKeypadButton(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	f := seed(t, s)

	light := design.Circuit{ProjectID: f.project.ID, RoomID: f.room.ID, Identifier: "L1", Name: "Spots",
		Kind: design.CircuitLight, SAK: 1, SAKCount: 1}
	if err := s.CreateCircuit(ctx, &light); err != nil {
		t.Fatalf("CreateCircuit: %v", err)
	}
	k := design.Keypad{ProjectID: f.project.ID, RoomID: f.room.ID, Name: "K", ButtonCount: 1, NetworkAddress: 110, DeviceID: 110}
	if err := s.CreateKeypad(ctx, &k); err != nil {
		t.Fatalf("CreateKeypad: %v", err)
	}

	b := k.Buttons[0]
	b.CircuitID = design.ID(light.ID)
	b.Mode, b.CommandOn = design.ModeToggle, 1
	b.Engraving, b.Icon, b.Rocker, b.RockerStyle = "SPOTS", "abajour", true, design.RockerLeftRight
	if err := s.UpdateKeypadButton(ctx, &b); err != nil {
		t.Fatalf("UpdateKeypadButton: %v", err)
	}

	got, err := s.GetKeypad(ctx, k.ID)
	if err != nil {
		t.Fatalf("GetKeypad: %v", err)
	}
	gb := got.Buttons[0]
	if gb.CircuitID == nil || *gb.CircuitID != light.ID || gb.Icon != "abajour" || !gb.Rocker ||
		gb.RockerStyle != design.RockerLeftRight || gb.GUID != b.GUID {
		t.Errorf("stored button = %+v", gb)
	}

	if err := s.DeleteCircuit(ctx, light.ID); err != nil {
		t.Fatalf("DeleteCircuit: %v", err)
	}
	got, err = s.GetKeypad(ctx, k.ID)
	if err != nil {
		t.Fatalf("GetKeypad: %v", err)
	}
	if got.Buttons[0].CircuitID != nil {
		t.Error("button should be unbound after its circuit is deleted")
	}
}

func TestStore_Scenes(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	f := seed(t, s)

	light := design.Circuit{ProjectID: f.project.ID, RoomID: f.room.ID, Identifier: "L1", Name: "Spots",
		Kind: design.CircuitLight, SAK: 1, SAKCount: 1}
	if err := s.CreateCircuit(ctx, &light); err != nil {
		t.Fatalf("CreateCircuit: %v", err)
	}

	sc := design.Scene{RoomID: f.room.ID, Name: "Cinema", Actions: []design.Action{
		{Kind: design.ActionSingle, Level: 30, CircuitID: design.ID(light.ID)},
		{Kind: design.ActionGroup, Level: 100, RoomID: design.ID(f.room.ID), Overrides: []design.Override{
			{CircuitID: light.ID, Enabled: false, Level: 0},
		}},
	}}
	if err := s.CreateScene(ctx, &sc); err != nil {
		t.Fatalf("CreateScene: %v", err)
	}

	got, err := s.GetScene(ctx, sc.ID)
	if err != nil {
		t.Fatalf("GetScene: %v", err)
	}
	if got.GUID != sc.GUID || len(got.Actions) != 2 {
		t.Fatalf("GetScene = %+v", got)
	}
	if got.Actions[0].Kind != design.ActionSingle || got.Actions[1].Kind != design.ActionGroup {
		t.Errorf("action order not preserved: %+v", got.Actions)
	}
	if len(got.Actions[1].Overrides) != 1 || got.Actions[1].Overrides[0].Enabled {
		t.Errorf("overrides = %+v", got.Actions[1].Overrides)
	}

	list, err := s.ListScenes(ctx, f.project.ID)
	if err != nil {
		t.Fatalf("ListScenes: %v", err)
	}
	if len(list) != 1 || len(list[0].Actions) != 2 {
		t.Errorf("ListScenes = %+v", list)
	}

	if err := s.DeleteScene(ctx, sc.ID); err != nil {
		t.Fatalf("DeleteScene: %v", err)
	}
	if _, err := s.GetScene(ctx, sc.ID); !errors.Is(err, design.ErrNotFound) {
		t.Errorf("GetScene after delete error = %v", err)
	}
}

func TestStore_WithTxRollsBack(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx *design.Store) error {
		if err := tx.CreateProject(ctx, &design.Project{Name: "Rascunho", OwnerID: "u"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx error = %v, want boom", err)
	}

	projects, err := s.ListProjects(ctx, "")
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 0 {
		t.Errorf("rolled back project is visible: %+v", projects)
	}
}
