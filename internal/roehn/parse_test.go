package roehn

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-designer/internal/design"
)

// roundTrip compiles, encodes, decodes and parses a graph.
func roundTrip(t *testing.T, g *design.Graph) *design.Graph {
	t.Helper()
	doc, _ := compileTest(t, g)
	data, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	decoded, dropped, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(dropped) != 0 {
		t.Fatalf("Decode() dropped %v", dropped)
	}
	out, err := Parse(decoded, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return out
}

func circuitByIdentifier(g *design.Graph, identifier string) (design.Circuit, bool) {
	for _, c := range g.Circuits {
		if c.Identifier == identifier {
			return c, true
		}
	}
	return design.Circuit{}, false
}

func TestParse_RoundTrip(t *testing.T) {
	in := testGraph()
	out := roundTrip(t, in)

	if got, want := out.Counts(), in.Counts(); got != want {
		t.Fatalf("counts = %+v, want %+v", got, want)
	}
	if out.Project.Name != in.Project.Name {
		t.Errorf("project name = %q", out.Project.Name)
	}

	// Identifiers come back from load names; kinds and SAK ranges survive.
	for _, c := range in.Circuits {
		got, ok := circuitByIdentifier(out, c.Name)
		if !ok {
			t.Errorf("circuit %q missing", c.Name)
			continue
		}
		if got.Kind != c.Kind || got.Dimmable != c.Dimmable || got.SAK != c.SAK || got.SAKCount != c.SAKCount {
			t.Errorf("circuit %q = %s dimmable=%v sak=%d+%d, want %s dimmable=%v sak=%d+%d",
				c.Name, got.Kind, got.Dimmable, got.SAK, got.SAKCount, c.Kind, c.Dimmable, c.SAK, c.SAKCount)
		}
	}

	for _, m := range in.Modules {
		var found *design.Module
		for i := range out.Modules {
			if out.Modules[i].Name == m.Name {
				found = &out.Modules[i]
			}
		}
		if found == nil {
			t.Errorf("module %q missing", m.Name)
			continue
		}
		if found.Kind != m.Kind || found.NetworkAddress != m.NetworkAddress || found.DeviceID != m.DeviceID {
			t.Errorf("module %q = %+v", m.Name, *found)
		}
		if (found.BoardID == nil) != (m.BoardID == nil) {
			t.Errorf("module %q board = %v, want board set %v", m.Name, found.BoardID, m.BoardID != nil)
		}
	}

	shade, _ := circuitByIdentifier(out, "Persiana Sala")
	link, ok := out.LinkOf(shade.ID)
	if !ok || link.Channel != 2 {
		t.Errorf("shade link = %+v, %v; want channel 2", link, ok)
	}
	unlinked, _ := circuitByIdentifier(out, "Luz Quarto")
	if _, ok := out.LinkOf(unlinked.ID); ok {
		t.Error("unlinked circuit came back linked")
	}
}

func TestParse_RoundTripScenesAndKeypads(t *testing.T) {
	out := roundTrip(t, testGraph())

	if len(out.Scenes) != 1 {
		t.Fatalf("len(scenes) = %d", len(out.Scenes))
	}
	sc := out.Scenes[0]
	if sc.GUID != sceneGUID || sc.Name != "Cinema" || sc.Movers {
		t.Errorf("scene = %+v", sc)
	}
	if room, _ := out.Room(sc.RoomID); room.Name != "Quarto" {
		t.Errorf("scene room = %q", room.Name)
	}
	if len(sc.Actions) != 2 {
		t.Fatalf("len(actions) = %d", len(sc.Actions))
	}

	light, _ := circuitByIdentifier(out, "Luz Sala")
	single := sc.Actions[0]
	if single.Kind != design.ActionSingle || single.Level != 80 || single.CircuitID == nil || *single.CircuitID != light.ID {
		t.Errorf("single action = %+v", single)
	}

	// Only the dimmer override differs from the group default; the shade
	// override is meaningless and the plain light follows the group.
	dimmer, _ := circuitByIdentifier(out, "Spots Sala")
	group := sc.Actions[1]
	if group.Kind != design.ActionGroup || group.Level != 60 {
		t.Errorf("group action = %+v", group)
	}
	if len(group.Overrides) != 1 || group.Overrides[0].CircuitID != dimmer.ID || group.Overrides[0].Enabled {
		t.Errorf("overrides = %+v", group.Overrides)
	}

	if len(out.Keypads) != 1 {
		t.Fatalf("len(keypads) = %d", len(out.Keypads))
	}
	k := out.Keypads[0]
	if k.ButtonCount != 4 || len(k.Buttons) != 4 || k.NetworkAddress != 110 || k.Color != "WHITE" {
		t.Errorf("keypad = %+v", k)
	}
	if b := k.Buttons[0]; b.SceneID == nil || *b.SceneID != sc.ID || b.CircuitID != nil {
		t.Errorf("button 1 = %+v, want scene target", b)
	}
	bedroom, _ := circuitByIdentifier(out, "Luz Quarto")
	if b := k.Buttons[1]; b.CircuitID == nil || *b.CircuitID != bedroom.ID {
		t.Errorf("button 2 = %+v, want bedroom light", b)
	}
	if b := k.Buttons[2]; b.Icon != "tv" || b.Rocker || b.SceneID != nil || b.CircuitID != nil {
		t.Errorf("button 3 = %+v", b)
	}
	if b := k.Buttons[3]; !b.Rocker || b.RockerStyle != design.RockerLeftRight || b.Engraving != "SALA" {
		t.Errorf("button 4 = %+v", b)
	}
}

func TestParse_RoundTripIsStable(t *testing.T) {
	first := roundTrip(t, testGraph())
	second := roundTrip(t, first)

	if got, want := second.Counts(), first.Counts(); got != want {
		t.Fatalf("counts = %+v, want %+v", got, want)
	}
	for i := range first.Circuits {
		a, b := first.Circuits[i], second.Circuits[i]
		if a.Identifier != b.Identifier || a.Kind != b.Kind || a.SAK != b.SAK {
			t.Errorf("circuit %d = %+v, want %+v", i, b, a)
		}
	}
	if second.Scenes[0].GUID != first.Scenes[0].GUID {
		t.Error("scene GUID changed across round trips")
	}
}

func TestParse_DuplicateNames(t *testing.T) {
	g := testGraph()
	g.Circuits[0].Name = "Luz"
	g.Circuits[1].Name = "Luz"
	g.Circuits[4].Name = ""
	out := roundTrip(t, g)

	for _, id := range []string{"Luz", "Luz-2", "L3"} {
		if _, ok := circuitByIdentifier(out, id); !ok {
			t.Errorf("identifier %q missing", id)
		}
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  func(t *testing.T) *Project
		want error
	}{
		{"nil document", func(t *testing.T) *Project { return nil }, design.ErrMalformedDocument},
		{"wrong root type", func(t *testing.T) *Project { return &Project{NodeType: "Area", Name: "x"} }, design.ErrMalformedDocument},
		{"no name", func(t *testing.T) *Project { return &Project{NodeType: TypeProject, Name: "  "} }, design.ErrMalformedDocument},
		{"room without name", func(t *testing.T) *Project {
			doc, _ := compileTest(t, testGraph())
			doc.Areas[1].SubItems[0].Name = ""
			return doc
		}, design.ErrMalformedDocument},
		{"bad button count", func(t *testing.T) *Project {
			doc, _ := compileTest(t, testGraph())
			findKeypad(doc, "Entrada").ButtonCount = 3
			return doc
		}, design.ErrMalformedDocument},
		{"channel holds a room", func(t *testing.T) *Project {
			doc, _ := compileTest(t, testGraph())
			findModule(doc, "Relés").Slot(SlotLoadOnOff).SubItemsGuid[3] = RefTo(doc.Areas[1].SubItems[0].Guid)
			return doc
		}, design.ErrDanglingReference},
		{"duplicate address", func(t *testing.T) *Project {
			doc, _ := compileTest(t, testGraph())
			findModule(doc, "Dimmers").HsnetAddress = 101
			return doc
		}, design.ErrDuplicateAddress},
		{"module on controller address", func(t *testing.T) *Project {
			doc, _ := compileTest(t, testGraph())
			findModule(doc, "Dimmers").HsnetAddress = 245
			return doc
		}, design.ErrDuplicateAddress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.doc(t), nil); !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	if _, _, err := Decode([]byte(`[1, 2]`)); !errors.Is(err, design.ErrMalformedDocument) {
		t.Errorf("Decode(array) error = %v, want ErrMalformedDocument", err)
	}

	doc, dropped, err := Decode([]byte(`{"$type": "Project", "Name": "Casa", "Areas": "oops", "Latitude": -12.9}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(dropped) != 1 || dropped[0] != "Areas" {
		t.Errorf("dropped = %v, want [Areas]", dropped)
	}
	if doc.Name != "Casa" || doc.Latitude != -12.9 {
		t.Errorf("doc = %q %v", doc.Name, doc.Latitude)
	}

	// A project whose rooms did not decode is not imported as an empty one.
	if _, err := Parse(doc, nil); !errors.Is(err, design.ErrMalformedDocument) {
		t.Errorf("Parse(dropped Areas) error = %v, want ErrMalformedDocument", err)
	}

	doc, dropped, err = Decode([]byte(`{"$type": "Project", "Name": "Casa", "Areas": [], "Scenes": "oops"}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(dropped) != 1 || dropped[0] != "Scenes" {
		t.Errorf("dropped = %v, want [Scenes]", dropped)
	}
	g, err := Parse(doc, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if g.Project.Name != "Casa" || len(g.Areas) != 0 {
		t.Errorf("graph = %+v", g.Counts())
	}
}

func TestParse_FillsMissingAddresses(t *testing.T) {
	doc, _ := compileTest(t, testGraph())
	k := findKeypad(doc, "Entrada")
	k.HsnetAddress, k.DevID = 0, 0
	m := findModule(doc, "IR")
	m.HsnetAddress, m.DevID = 0, 0

	data, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	decoded, _, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	g, err := Parse(decoded, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	addresses := make(map[string][2]int)
	for _, got := range g.Modules {
		addresses[got.Name] = [2]int{got.NetworkAddress, got.DeviceID}
	}
	for _, got := range g.Keypads {
		addresses[got.Name] = [2]int{got.NetworkAddress, got.DeviceID}
	}

	tests := []struct {
		name string
		want [2]int
	}{
		{"Relés", [2]int{101, 101}},
		{"Dimmers", [2]int{103, 103}},
		{"IR", [2]int{104, 104}},
		{"Entrada", [2]int{design.KeypadNetworkFloor, design.KeypadNetworkFloor}},
	}
	for _, tt := range tests {
		if got := addresses[tt.name]; got != tt.want {
			t.Errorf("%s address/device = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestParse_SkipsUnknownNodes(t *testing.T) {
	doc, _ := compileTest(t, testGraph())
	room := doc.Areas[1].SubItems[0]
	room.LoadOutputs = append(room.LoadOutputs, &UnknownLoad{Type: "Sensor", Guid: uuid.New(), Name: "PIR"})
	board := room.AutomationBoards[0]
	board.ModulesList = append(board.ModulesList, &Module{NodeType: TypeModule, Name: "Mystery", DriverGuid: uuid.New(), HsnetAddress: 150})

	g, err := Parse(doc, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(g.Circuits) != 5 || len(g.Modules) != 4 {
		t.Errorf("circuits = %d modules = %d, want unknown nodes skipped", len(g.Circuits), len(g.Modules))
	}
}
