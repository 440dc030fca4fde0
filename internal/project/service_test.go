package project_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-designer/internal/audit"
	"github.com/nerrad567/gray-logic-designer/internal/design"
	"github.com/nerrad567/gray-logic-designer/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-designer/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-designer/internal/infrastructure/metrics"
	"github.com/nerrad567/gray-logic-designer/internal/project"
	"github.com/nerrad567/gray-logic-designer/internal/roehn"
	_ "github.com/nerrad567/gray-logic-designer/migrations"
)

type recordedEvent struct {
	projectID int64
	event     string
}

type fakeEvents struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeEvents) PublishEvent(projectID int64, event string, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{projectID, event})
	return nil
}

type fakeStats struct {
	runs []influxdb.RunStats
}

func (f *fakeStats) WriteCompileStats(s influxdb.RunStats) {
	f.runs = append(f.runs, s)
}

func setupService(t *testing.T) *project.Service {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Config{
		Path:        filepath.Join(t.TempDir(), "designer.db"),
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

	opts := roehn.DefaultOptions()
	opts.Now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	svc := project.NewService(design.NewStore(db.DB), opts)
	svc.SetMetrics(metrics.New())
	svc.SetHistory(audit.NewSQLiteRepository(db.DB))
	return svc
}

type site struct {
	project design.Project
	area    design.Area
	room    design.Room
	board   design.Board
}

func seedSite(t *testing.T, svc *project.Service, name string) site {
	t.Helper()
	ctx := context.Background()

	s := site{project: design.Project{Name: name, OwnerID: "user-1"}}
	if err := svc.CreateProject(ctx, &s.project); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	s.area = design.Area{ProjectID: s.project.ID, Name: "Térreo"}
	if err := svc.CreateArea(ctx, &s.area); err != nil {
		t.Fatalf("CreateArea: %v", err)
	}
	s.room = design.Room{AreaID: s.area.ID, Name: "Sala"}
	if err := svc.CreateRoom(ctx, &s.room); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	s.board = design.Board{RoomID: s.room.ID, Name: "QD Térreo"}
	if err := svc.CreateBoard(ctx, &s.board); err != nil {
		t.Fatalf("CreateBoard: %v", err)
	}
	return s
}

func newCircuit(t *testing.T, svc *project.Service, roomID int64, identifier string, kind design.CircuitKind) design.Circuit {
	t.Helper()
	c := design.Circuit{RoomID: roomID, Identifier: identifier, Name: identifier, Kind: kind}
	if err := svc.CreateCircuit(context.Background(), &c); err != nil {
		t.Fatalf("CreateCircuit(%s): %v", identifier, err)
	}
	return c
}

func newModule(t *testing.T, svc *project.Service, s site, name string, kind design.ModuleKind) design.Module {
	t.Helper()
	m := design.Module{ProjectID: s.project.ID, BoardID: design.ID(s.board.ID), Name: name, Kind: kind}
	if err := svc.CreateModule(context.Background(), &m); err != nil {
		t.Fatalf("CreateModule(%s): %v", name, err)
	}
	return m
}

func TestCreateCircuit_AllocatesContiguousSAK(t *testing.T) {
	svc := setupService(t)
	s := seedSite(t, svc, "Casa Praia")

	tests := []struct {
		identifier string
		kind       design.CircuitKind
		wantSAK    int
		wantCount  int
	}{
		{"L1", design.CircuitLight, 1, 1},
		{"P1", design.CircuitShade, 2, 2},
		{"AC1", design.CircuitHVAC, 0, 0},
		{"L2", design.CircuitLight, 4, 1},
	}
	for _, tt := range tests {
		c := newCircuit(t, svc, s.room.ID, tt.identifier, tt.kind)
		if c.SAK != tt.wantSAK || c.SAKCount != tt.wantCount {
			t.Errorf("%s: sak = %d+%d, want %d+%d", tt.identifier, c.SAK, c.SAKCount, tt.wantSAK, tt.wantCount)
		}
		if c.ProjectID != s.project.ID {
			t.Errorf("%s: project = %d, want %d", tt.identifier, c.ProjectID, s.project.ID)
		}
	}
}

func TestCreateCircuit_Invalid(t *testing.T) {
	svc := setupService(t)
	s := seedSite(t, svc, "Casa Praia")
	ctx := context.Background()

	tests := []struct {
		name string
		c    design.Circuit
		want error
	}{
		{"blank identifier", design.Circuit{RoomID: s.room.ID, Name: "Luz", Kind: design.CircuitLight}, design.ErrInvalid},
		{"dimmable shade", design.Circuit{RoomID: s.room.ID, Identifier: "P1", Name: "P", Kind: design.CircuitShade, Dimmable: true}, design.ErrInvalid},
		{"unknown room", design.Circuit{RoomID: 9999, Identifier: "L1", Name: "Luz", Kind: design.CircuitLight}, design.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.c
			if err := svc.CreateCircuit(ctx, &c); !errors.Is(err, tt.want) {
				t.Errorf("CreateCircuit() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCreateModule_Addresses(t *testing.T) {
	svc := setupService(t)
	s := seedSite(t, svc, "Casa Praia")
	ctx := context.Background()

	first := newModule(t, svc, s, "RL12-1", design.ModuleRL12)
	if first.NetworkAddress != 101 || first.DeviceID != 101 {
		t.Errorf("first module = %d/%d, want 101/101", first.NetworkAddress, first.DeviceID)
	}

	explicit := design.Module{ProjectID: s.project.ID, Name: "DIM8-1", Kind: design.ModuleDIM8, NetworkAddress: 244}
	if err := svc.CreateModule(ctx, &explicit); err != nil {
		t.Fatalf("CreateModule(explicit): %v", err)
	}
	if explicit.DeviceID != 244 {
		t.Errorf("explicit device id = %d, want 244", explicit.DeviceID)
	}

	// 245 belongs to the controller.
	next := newModule(t, svc, s, "LX4-1", design.ModuleLX4)
	if next.NetworkAddress != 246 {
		t.Errorf("next module address = %d, want 246", next.NetworkAddress)
	}

	taken := design.Module{ProjectID: s.project.ID, Name: "RL4-1", Kind: design.ModuleRL4, NetworkAddress: 101}
	if err := svc.CreateModule(ctx, &taken); !errors.Is(err, design.ErrDuplicateAddress) {
		t.Errorf("CreateModule(taken) error = %v, want ErrDuplicateAddress", err)
	}
	controller := design.Module{ProjectID: s.project.ID, Name: "RL4-2", Kind: design.ModuleRL4, NetworkAddress: 245}
	if err := svc.CreateModule(ctx, &controller); !errors.Is(err, design.ErrDuplicateAddress) {
		t.Errorf("CreateModule(245) error = %v, want ErrDuplicateAddress", err)
	}
}

func TestCreateModule_BoardOfAnotherProject(t *testing.T) {
	svc := setupService(t)
	a := seedSite(t, svc, "Casa Praia")
	b := seedSite(t, svc, "Apartamento")

	m := design.Module{ProjectID: a.project.ID, BoardID: design.ID(b.board.ID), Name: "RL12", Kind: design.ModuleRL12}
	if err := svc.CreateModule(context.Background(), &m); !errors.Is(err, design.ErrInvalid) {
		t.Errorf("CreateModule() error = %v, want ErrInvalid", err)
	}
}

func TestLinkCircuit(t *testing.T) {
	svc := setupService(t)
	s := seedSite(t, svc, "Casa Praia")
	ctx := context.Background()

	l1 := newCircuit(t, svc, s.room.ID, "L1", design.CircuitLight)
	l2 := newCircuit(t, svc, s.room.ID, "L2", design.CircuitLight)
	p1 := newCircuit(t, svc, s.room.ID, "P1", design.CircuitShade)
	ac := newCircuit(t, svc, s.room.ID, "AC1", design.CircuitHVAC)
	relay := newModule(t, svc, s, "RL4-1", design.ModuleRL4)
	sa1 := newModule(t, svc, s, "SA1-1", design.ModuleSA1)

	link, err := svc.LinkCircuit(ctx, l1.ID, relay.ID, 0)
	if err != nil {
		t.Fatalf("LinkCircuit(auto): %v", err)
	}
	if link.Channel != 1 {
		t.Errorf("auto channel = %d, want 1", link.Channel)
	}

	tests := []struct {
		name      string
		circuitID int64
		moduleID  int64
		channel   int
		want      error
	}{
		{"taken channel", l2.ID, relay.ID, 1, design.ErrDuplicateAddress},
		{"already linked", l1.ID, relay.ID, 2, design.ErrDuplicateAddress},
		{"shade on relay", p1.ID, relay.ID, 2, design.ErrIncompatibleKind},
		{"shade on relay auto", p1.ID, relay.ID, 0, design.ErrIncompatibleKind},
		{"beyond capacity", l2.ID, relay.ID, 5, design.ErrCapacityExceeded},
		{"sa1 channel 2", ac.ID, sa1.ID, 2, design.ErrCapacityExceeded},
		{"unknown module", l2.ID, 9999, 1, design.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.LinkCircuit(ctx, tt.circuitID, tt.moduleID, tt.channel); !errors.Is(err, tt.want) {
				t.Errorf("LinkCircuit() error = %v, want %v", err, tt.want)
			}
		})
	}

	links, err := svc.Store().ListLinks(ctx, s.project.ID)
	if err != nil {
		t.Fatalf("ListLinks: %v", err)
	}
	if len(links) != 1 {
		t.Errorf("links after refusals = %d, want 1", len(links))
	}

	if _, err := svc.LinkCircuit(ctx, ac.ID, sa1.ID, 1); err != nil {
		t.Errorf("LinkCircuit(hvac): %v", err)
	}
}

func TestLinkCircuit_FillsModule(t *testing.T) {
	svc := setupService(t)
	s := seedSite(t, svc, "Casa Praia")
	ctx := context.Background()

	shades := newModule(t, svc, s, "LX4-1", design.ModuleLX4)
	for i, id := range []string{"P1", "P2", "P3", "P4"} {
		c := newCircuit(t, svc, s.room.ID, id, design.CircuitShade)
		link, err := svc.LinkCircuit(ctx, c.ID, shades.ID, 0)
		if err != nil {
			t.Fatalf("LinkCircuit(%s): %v", id, err)
		}
		if link.Channel != i+1 {
			t.Errorf("%s channel = %d, want %d", id, link.Channel, i+1)
		}
	}
	extra := newCircuit(t, svc, s.room.ID, "P5", design.CircuitShade)
	if _, err := svc.LinkCircuit(ctx, extra.ID, shades.ID, 0); !errors.Is(err, design.ErrCapacityExceeded) {
		t.Errorf("LinkCircuit(full) error = %v, want ErrCapacityExceeded", err)
	}
}

func TestDeleteModule_InUse(t *testing.T) {
	svc := setupService(t)
	s := seedSite(t, svc, "Casa Praia")
	ctx := context.Background()

	c := newCircuit(t, svc, s.room.ID, "L1", design.CircuitLight)
	m := newModule(t, svc, s, "RL12-1", design.ModuleRL12)
	if _, err := svc.LinkCircuit(ctx, c.ID, m.ID, 3); err != nil {
		t.Fatalf("LinkCircuit: %v", err)
	}

	if err := svc.DeleteModule(ctx, m.ID); !errors.Is(err, design.ErrModuleInUse) {
		t.Fatalf("DeleteModule() error = %v, want ErrModuleInUse", err)
	}
	if err := svc.UnlinkCircuit(ctx, c.ID); err != nil {
		t.Fatalf("UnlinkCircuit: %v", err)
	}
	if err := svc.DeleteModule(ctx, m.ID); err != nil {
		t.Errorf("DeleteModule() after unlink error = %v", err)
	}
}

func TestKeypads(t *testing.T) {
	svc := setupService(t)
	s := seedSite(t, svc, "Casa Praia")
	ctx := context.Background()

	light := newCircuit(t, svc, s.room.ID, "L1", design.CircuitLight)
	k := design.Keypad{RoomID: s.room.ID, Name: "Teclado Sala"}
	if err := svc.CreateKeypad(ctx, &k); err != nil {
		t.Fatalf("CreateKeypad: %v", err)
	}
	if k.NetworkAddress != design.KeypadNetworkFloor || k.ButtonCount != project.DefaultButtonCount {
		t.Errorf("keypad = addr %d, %d buttons", k.NetworkAddress, k.ButtonCount)
	}

	second := design.Keypad{RoomID: s.room.ID, Name: "Teclado Porta", ButtonCount: 2}
	if err := svc.CreateKeypad(ctx, &second); err != nil {
		t.Fatalf("CreateKeypad(second): %v", err)
	}
	if second.NetworkAddress != design.KeypadNetworkFloor+1 {
		t.Errorf("second keypad address = %d, want %d", second.NetworkAddress, design.KeypadNetworkFloor+1)
	}

	bad := design.Keypad{RoomID: s.room.ID, Name: "Teclado", ButtonCount: 3}
	if err := svc.CreateKeypad(ctx, &bad); !errors.Is(err, design.ErrInvalid) {
		t.Errorf("CreateKeypad(3 buttons) error = %v, want ErrInvalid", err)
	}

	b := design.KeypadButton{KeypadID: k.ID, Ordinal: 1, CircuitID: design.ID(light.ID), Engraving: "Luz"}
	if err := svc.UpdateKeypadButton(ctx, &b); err != nil {
		t.Fatalf("UpdateKeypadButton: %v", err)
	}
	if b.Mode != design.ModeToggle {
		t.Errorf("bound button mode = %d, want %d", b.Mode, design.ModeToggle)
	}

	kept := design.KeypadButton{KeypadID: k.ID, Ordinal: 2, CircuitID: design.ID(light.ID), Mode: design.ModeUnassigned}
	if err := svc.UpdateKeypadButton(ctx, &kept); err != nil {
		t.Fatalf("UpdateKeypadButton(explicit mode): %v", err)
	}
	if kept.Mode != design.ModeUnassigned {
		t.Errorf("explicit button mode = %d, want %d", kept.Mode, design.ModeUnassigned)
	}

	missing := design.KeypadButton{KeypadID: k.ID, Ordinal: 5}
	if err := svc.UpdateKeypadButton(ctx, &missing); !errors.Is(err, design.ErrNotFound) {
		t.Errorf("UpdateKeypadButton(5) error = %v, want ErrNotFound", err)
	}

	resized, err := svc.SetKeypadButtonCount(ctx, k.ID, 2)
	if err != nil {
		t.Fatalf("SetKeypadButtonCount: %v", err)
	}
	if resized.ButtonCount != 2 || len(resized.Buttons) != 2 {
		t.Fatalf("resized = %d buttons, %d rows", resized.ButtonCount, len(resized.Buttons))
	}
	if got := resized.Buttons[0]; got.CircuitID == nil || *got.CircuitID != light.ID || got.Engraving != "Luz" {
		t.Errorf("button 1 after resize = %+v", got)
	}
}

func TestKeypadButton_TargetInAnotherProject(t *testing.T) {
	svc := setupService(t)
	a := seedSite(t, svc, "Casa Praia")
	b := seedSite(t, svc, "Apartamento")
	ctx := context.Background()

	foreign := newCircuit(t, svc, b.room.ID, "L1", design.CircuitLight)
	k := design.Keypad{RoomID: a.room.ID, Name: "Teclado"}
	if err := svc.CreateKeypad(ctx, &k); err != nil {
		t.Fatalf("CreateKeypad: %v", err)
	}
	btn := design.KeypadButton{KeypadID: k.ID, Ordinal: 1, CircuitID: design.ID(foreign.ID)}
	if err := svc.UpdateKeypadButton(ctx, &btn); !errors.Is(err, design.ErrInvalid) {
		t.Errorf("UpdateKeypadButton() error = %v, want ErrInvalid", err)
	}
}

func TestCreateScene(t *testing.T) {
	svc := setupService(t)
	s := seedSite(t, svc, "Casa Praia")
	ctx := context.Background()

	light := newCircuit(t, svc, s.room.ID, "L1", design.CircuitLight)
	sc := design.Scene{
		RoomID: s.room.ID,
		Name:   "Cinema",
		Actions: []design.Action{
			{Kind: design.ActionSingle, Level: 20, CircuitID: design.ID(light.ID)},
			{Kind: design.ActionGroup, Level: 0, RoomID: design.ID(s.room.ID)},
		},
	}
	if err := svc.CreateScene(ctx, &sc); err != nil {
		t.Fatalf("CreateScene: %v", err)
	}
	got, err := svc.GetScene(ctx, sc.ID)
	if err != nil {
		t.Fatalf("GetScene: %v", err)
	}
	if len(got.Actions) != 2 || got.Actions[0].Level != 20 {
		t.Errorf("scene = %+v", got)
	}

	dangling := design.Scene{
		RoomID:  s.room.ID,
		Name:    "Noite",
		Actions: []design.Action{{Kind: design.ActionSingle, Level: 0, CircuitID: design.ID(9999)}},
	}
	if err := svc.CreateScene(ctx, &dangling); !errors.Is(err, design.ErrNotFound) {
		t.Errorf("CreateScene(dangling) error = %v, want ErrNotFound", err)
	}
}

func TestConcurrentWrites(t *testing.T) {
	svc := setupService(t)
	s := seedSite(t, svc, "Casa Praia")
	ctx := context.Background()

	const n = 12
	var wg sync.WaitGroup
	errs := make(chan error, 2*n)
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			kind := design.CircuitLight
			if i%2 == 1 {
				kind = design.CircuitShade
			}
			c := design.Circuit{RoomID: s.room.ID, Identifier: "C" + string(rune('A'+i)), Name: "Circuito", Kind: kind}
			errs <- svc.CreateCircuit(ctx, &c)
		}(i)
		go func(i int) {
			defer wg.Done()
			m := design.Module{ProjectID: s.project.ID, Name: "M" + string(rune('A'+i)), Kind: design.ModuleRL4}
			errs <- svc.CreateModule(ctx, &m)
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent write: %v", err)
		}
	}

	g, err := svc.Graph(ctx, s.project.ID)
	if err != nil {
		t.Fatalf("Graph: %v", err)
	}
	if len(g.Circuits) != n || len(g.Modules) != n {
		t.Fatalf("graph has %d circuits, %d modules", len(g.Circuits), len(g.Modules))
	}

	saks := make(map[int]bool)
	for _, c := range g.Circuits {
		for a := c.SAK; a < c.SAK+c.SAKCount; a++ {
			if saks[a] {
				t.Errorf("SAK %d allocated twice", a)
			}
			saks[a] = true
		}
	}
	// Six lights and six shades fill 1..18 without gaps.
	for a := 1; a <= 18; a++ {
		if !saks[a] {
			t.Errorf("SAK %d not allocated", a)
		}
	}

	addrs := make(map[int]bool)
	for _, m := range g.Modules {
		if addrs[m.NetworkAddress] {
			t.Errorf("network address %d allocated twice", m.NetworkAddress)
		}
		addrs[m.NetworkAddress] = true
	}
}

// buildSite creates a small but complete project for transfer tests.
func buildSite(t *testing.T, svc *project.Service) site {
	t.Helper()
	ctx := context.Background()
	s := seedSite(t, svc, "Casa Praia")

	l1 := newCircuit(t, svc, s.room.ID, "Luz Sala", design.CircuitLight)
	p1 := newCircuit(t, svc, s.room.ID, "Persiana Sala", design.CircuitShade)
	relay := newModule(t, svc, s, "RL12-1", design.ModuleRL12)
	shades := newModule(t, svc, s, "LX4-1", design.ModuleLX4)
	if _, err := svc.LinkCircuit(ctx, l1.ID, relay.ID, 1); err != nil {
		t.Fatalf("LinkCircuit(light): %v", err)
	}
	if _, err := svc.LinkCircuit(ctx, p1.ID, shades.ID, 2); err != nil {
		t.Fatalf("LinkCircuit(shade): %v", err)
	}
	return s
}

func TestExportImport_RoundTrip(t *testing.T) {
	for _, format := range []project.Format{project.FormatROEHN, project.FormatSnapshot} {
		t.Run(string(format), func(t *testing.T) {
			svc := setupService(t)
			events := &fakeEvents{}
			stats := &fakeStats{}
			svc.SetEvents(events)
			svc.SetStats(stats)
			ctx := context.Background()

			s := buildSite(t, svc)
			var buf bytes.Buffer
			sum, err := svc.Export(ctx, s.project.ID, format, &buf)
			if err != nil {
				t.Fatalf("Export: %v", err)
			}
			if sum.Counts.Circuits != 2 || sum.Counts.Links != 2 || len(sum.Skipped) != 0 {
				t.Errorf("export summary = %+v", sum)
			}

			data := buf.Bytes()
			if _, _, err := svc.Import(ctx, "user-2", format, bytes.NewReader(data)); !errors.Is(err, design.ErrDuplicateName) {
				t.Fatalf("Import(same name) error = %v, want ErrDuplicateName", err)
			}
			if err := svc.DeleteProject(ctx, s.project.ID); err != nil {
				t.Fatalf("DeleteProject: %v", err)
			}

			g, imported, err := svc.Import(ctx, "user-2", format, bytes.NewReader(data))
			if err != nil {
				t.Fatalf("Import: %v", err)
			}
			if g.Project.OwnerID != "user-2" {
				t.Errorf("imported project = %+v", g.Project)
			}
			if g.Project.Name != "Casa Praia" {
				t.Errorf("imported name = %q", g.Project.Name)
			}
			if imported.Counts.Circuits != 2 || imported.Counts.Modules != 2 || imported.Counts.Links != 2 {
				t.Errorf("import counts = %+v", imported.Counts)
			}

			stored, err := svc.Graph(ctx, g.Project.ID)
			if err != nil {
				t.Fatalf("Graph(imported): %v", err)
			}
			for _, m := range stored.Modules {
				if m.NetworkAddress != 101 && m.NetworkAddress != 102 {
					t.Errorf("module %q address = %d", m.Name, m.NetworkAddress)
				}
			}

			if len(events.events) != 2 || events.events[0].event != "exported" || events.events[1].event != "imported" {
				t.Errorf("events = %+v", events.events)
			}
			if len(stats.runs) != 2 || stats.runs[0].Direction != "export" || stats.runs[1].Direction != "import" {
				t.Errorf("stats = %+v", stats.runs)
			}

			exports, err := svc.History(ctx, s.project.ID, audit.ActionExport, 0, 0)
			if err != nil {
				t.Fatalf("History(export): %v", err)
			}
			if exports.Total != 1 || exports.Entries[0].Project != "Casa Praia" || exports.Entries[0].Format != string(format) {
				t.Errorf("export history = %+v", exports)
			}
			imports, err := svc.History(ctx, g.Project.ID, "", 0, 0)
			if err != nil {
				t.Fatalf("History(import): %v", err)
			}
			if imports.Total != 1 || imports.Entries[0].Action != audit.ActionImport || imports.Entries[0].UserID != "user-2" {
				t.Errorf("import history = %+v", imports)
			}
			if _, err := svc.History(ctx, g.Project.ID, "delete", 0, 0); !errors.Is(err, design.ErrInvalid) {
				t.Errorf("History(unknown action) error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestImport_RejectsWithoutSideEffects(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		format project.Format
		data   string
	}{
		{"roehn not json", project.FormatROEHN, "not json"},
		{"roehn empty object", project.FormatROEHN, "{}"},
		{"snapshot array", project.FormatSnapshot, "[]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Import(ctx, "user-1", tt.format, bytes.NewBufferString(tt.data))
			if !errors.Is(err, design.ErrMalformedDocument) {
				t.Errorf("Import() error = %v, want ErrMalformedDocument", err)
			}
		})
	}

	projects, err := svc.ListProjects(ctx, "")
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 0 {
		t.Errorf("projects after rejected imports = %d, want 0", len(projects))
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    project.Format
		wantErr bool
	}{
		{"", project.FormatROEHN, false},
		{"rwp", project.FormatROEHN, false},
		{"ROEHN", project.FormatROEHN, false},
		{"snapshot", project.FormatSnapshot, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := project.ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}
