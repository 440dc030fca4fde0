package roehn

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-designer/internal/design"
)

// Logger is the logging interface used by the compiler and parser.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// ControllerOptions describes the logic-server controller placed in the
// technical room.
type ControllerOptions struct {
	Model          string
	IPAddress      string
	NetworkAddress int
	DeviceID       int
}

// Options carries the document settings the design graph does not hold.
type Options struct {
	SoftwareVersion string
	TimeZone        string
	Latitude        float64
	Longitude       float64

	TechnicalArea string
	TechnicalRoom string
	BoardName     string

	Controller ControllerOptions

	ClientName      string
	ProgrammerName  string
	ProgrammerEmail string

	// Now is the clock used for the document timestamps.
	Now func() time.Time
}

// DefaultOptions returns the settings of a stock AQL-GV-M4 installation.
func DefaultOptions() Options {
	return Options{
		SoftwareVersion: "1.0.8.67",
		TimeZone:        "America/Bahia",
		TechnicalArea:   "Área Técnica",
		TechnicalRoom:   "Sala Técnica",
		BoardName:       "Quadro Elétrico",
		Controller: ControllerOptions{
			Model:          "AQL-GV-M4",
			IPAddress:      "192.168.0.245",
			NetworkAddress: 245,
			DeviceID:       1,
		},
		ClientName:     "Cliente",
		ProgrammerName: "Programador",
		Now:            time.Now,
	}
}

// Skip records an entity left out of the document.
type Skip struct {
	Entity Entity `json:"entity"`
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

// Report summarises a compile run.
type Report struct {
	Areas    int `json:"areas"`
	Rooms    int `json:"rooms"`
	Boards   int `json:"boards"`
	Circuits int `json:"circuits"`
	Modules  int `json:"modules"`
	Links    int `json:"links"`
	Keypads  int `json:"keypads"`
	Scenes   int `json:"scenes"`
	Units    int `json:"units"`

	// RosterOverflow counts devices enrolled beyond the controller's roster capacity.
	RosterOverflow int    `json:"roster_overflow,omitempty"`
	Skipped        []Skip `json:"skipped,omitempty"`
}

type compiler struct {
	s      *Session
	g      *design.Graph
	opts   Options
	log    Logger
	report *Report

	techBoard *Board
	rooms     map[int64]*Room
	boards    map[int64]*Board
	modules   map[int64]*Module
}

// Compile builds the ROEHN document of a design graph.
//
// Per-circuit, per-link, per-keypad and per-scene failures are logged and
// recorded in the report; the rest of the project is still exported. Only
// a graph without a project or an unknown controller model fails the run.
func Compile(g *design.Graph, opts Options, logger Logger) (*Project, *Report, error) {
	if g == nil || g.Project.Name == "" {
		return nil, nil, fmt.Errorf("%w: graph has no project", design.ErrInvalid)
	}
	if _, ok := Controller(opts.Controller.Model); !ok {
		return nil, nil, fmt.Errorf("%w: unknown controller model %q", design.ErrInvalid, opts.Controller.Model)
	}
	if logger == nil {
		logger = noopLogger{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	c := &compiler{
		s:       NewSession(),
		g:       g,
		opts:    opts,
		log:     logger,
		report:  &Report{},
		rooms:   make(map[int64]*Room),
		boards:  make(map[int64]*Board),
		modules: make(map[int64]*Module),
	}
	c.base()
	c.bindScenes()
	c.structure()
	c.placeModules()
	for _, a := range g.Areas {
		for _, r := range g.RoomsOf(a.ID) {
			c.roomContents(r)
		}
	}

	c.report.Units = c.s.doc.maxUnitID()
	logger.Info("project compiled",
		"project_id", g.Project.ID,
		"circuits", c.report.Circuits,
		"modules", c.report.Modules,
		"links", c.report.Links,
		"skipped", len(c.report.Skipped),
	)
	return c.s.doc, c.report, nil
}

func (c *compiler) skip(e Entity, id int64, err error) {
	c.report.Skipped = append(c.report.Skipped, Skip{Entity: e, ID: id, Reason: err.Error()})
	c.log.Warn("skipping entity in export", "entity", e.String(), "id", id, "error", err)
}

// base creates the project root with the technical area, room and board
// holding the controller.
func (c *compiler) base() {
	s := c.s
	now := c.opts.Now().Format("2006-01-02T15:04:05.000000")

	s.doc = &Project{
		NodeType:       TypeProject,
		Areas:          []*Area{},
		Scenes:         []*Scene{},
		Scripts:        []json.RawMessage{},
		Variables:      []*Variable{c.startupVariable()},
		SpecialActions: c.specialActions(),
		ClientInfo:     &ClientInfo{NodeType: TypeClientInfo, Name: c.opts.ClientName},
		Name:           c.g.Project.Name,
		Guid:           s.newGUID(),
		Created:        now,
		LastModified:   now,
		LastTimeSaved:  now,
		ProgrammerInfo: &ProgrammerInfo{
			NodeType: TypeProgrammerInfo,
			Name:     c.opts.ProgrammerName,
			Email:    c.opts.ProgrammerEmail,
			Guid:     s.newGUID(),
		},
		CloudConfig:          &CloudConfig{NodeType: TypeCloudConfig},
		ProjectSchemaVersion: 1,
		SoftwareVersion:      c.opts.SoftwareVersion,
		SelectedTimeZoneID:   c.opts.TimeZone,
		Latitude:             c.opts.Latitude,
		Longitude:            c.opts.Longitude,
	}

	s.controller = c.controller()
	c.techBoard = &Board{
		NodeType:    TypeBoard,
		Name:        c.opts.BoardName,
		Guid:        s.newGUID(),
		ModulesList: []*Module{s.controller},
	}
	room := c.newRoom(c.opts.TechnicalRoom, s.newGUID())
	room.AutomationBoards = append(room.AutomationBoards, c.techBoard)
	area := c.newArea(c.opts.TechnicalArea, s.newGUID())
	area.SubItems = append(area.SubItems, room)
	s.doc.Areas = append(s.doc.Areas, area)
}

func (c *compiler) controller() *Module {
	profile, _ := Controller(c.opts.Controller.Model)
	s := c.s
	s.unit = firstControllerUnit - 1

	return &Module{
		NodeType:      TypeModule,
		Name:          profile.Model,
		DriverGuid:    profile.Driver,
		Guid:          s.newGUID(),
		IpAddress:     c.opts.Controller.IPAddress,
		HsnetAddress:  c.opts.Controller.NetworkAddress,
		Logicserver:   true,
		DevID:         c.opts.Controller.DeviceID,
		UnitComposers: s.composers(controllerComposers),
		Slots: []*Slot{
			{
				NodeType:     TypeSlot,
				SlotCapacity: profile.RosterCapacity,
				SlotType:     slotTypeRoster,
				InitialPort:  1,
				IO:           0,
				SubItemsGuid: refs(1),
				Name:         SlotRoster,
			},
			{
				NodeType:     TypeSlot,
				SlotCapacity: profile.SceneCapacity,
				SlotType:     slotTypeScene,
				InitialPort:  1,
				IO:           1,
				SubItemsGuid: refs(profile.SceneCapacity),
				Name:         SlotScene,
			},
		},
		SmartGroup: 1,
	}
}

func (c *compiler) specialActions() []*SpecialAction {
	out := make([]*SpecialAction, 0, len(specialActions))
	for _, sa := range specialActions {
		out = append(out, &SpecialAction{NodeType: TypeSpecialAction, Name: sa.name, Guid: c.s.newGUID(), Type: sa.kind})
	}
	return out
}

func (c *compiler) startupVariable() *Variable {
	return &Variable{
		NodeType:    TypeVariable,
		Name:        "Startup",
		Description: "This variable indicates that the system has just been booted.",
		Guid:        c.s.newGUID(),
		IsStartup:   true,
		Id:          1,
	}
}

func (c *compiler) newArea(name string, g uuid.UUID) *Area {
	return &Area{
		NodeType:       TypeArea,
		Scenes:         []*Scene{},
		Scripts:        []json.RawMessage{},
		Variables:      []*Variable{},
		SpecialActions: c.specialActions(),
		Guid:           g,
		Name:           name,
		SubItems:       []*Room{},
	}
}

func (c *compiler) newRoom(name string, g uuid.UUID) *Room {
	return &Room{
		NodeType:         TypeRoom,
		Name:             name,
		Scenes:           []*Scene{},
		Scripts:          []json.RawMessage{},
		Variables:        []*Variable{},
		LoadOutputs:      Loads{},
		UserInterfaces:   []*Keypad{},
		AutomationBoards: []*Board{},
		SpecialActions:   c.specialActions(),
		Guid:             g,
	}
}

// bindScenes registers the stored scene GUIDs so buttons in any room can
// target scenes defined later in the walk.
func (c *compiler) bindScenes() {
	for _, sc := range c.g.Scenes {
		if sc.GUID == uuid.Nil {
			continue
		}
		if err := c.s.Bind(EntityScene, sc.ID, sc.GUID); err != nil {
			c.log.Warn("scene GUID not reusable, minting a new one", "scene_id", sc.ID, "error", err)
		}
	}
}

// structure creates the area, room and board nodes of the design.
func (c *compiler) structure() {
	for _, a := range c.g.Areas {
		area := c.newArea(a.Name, c.s.GUID(EntityArea, a.ID))
		c.s.doc.Areas = append(c.s.doc.Areas, area)
		c.report.Areas++

		for _, r := range c.g.RoomsOf(a.ID) {
			room := c.newRoom(r.Name, c.s.GUID(EntityRoom, r.ID))
			area.SubItems = append(area.SubItems, room)
			c.rooms[r.ID] = room
			c.report.Rooms++

			for _, b := range c.g.BoardsOf(r.ID) {
				board := &Board{
					NodeType:    TypeBoard,
					Name:        b.Name,
					Guid:        c.s.GUID(EntityBoard, b.ID),
					Notes:       optionalText(b.Notes),
					ModulesList: []*Module{},
				}
				room.AutomationBoards = append(room.AutomationBoards, board)
				c.boards[b.ID] = board
				c.report.Boards++
			}
		}
	}
}

// placeModules puts every module in its board, or next to the controller
// when it has none, and enrols it on the network roster.
func (c *compiler) placeModules() {
	for _, m := range c.g.Modules {
		board := c.techBoard
		if m.BoardID != nil {
			if b, ok := c.boards[*m.BoardID]; ok {
				board = b
			} else {
				c.log.Warn("module board not in graph, using technical board", "module_id", m.ID, "board_id", *m.BoardID)
			}
		}

		c.s.syncUnits()
		node := c.module(m)
		board.ModulesList = append(board.ModulesList, node)
		c.modules[m.ID] = node
		c.register(EntityModule, m.ID, node.Guid)
		c.report.Modules++
	}
}

// register enrols a device on the roster and warns when the controller
// cannot address it.
func (c *compiler) register(e Entity, id int64, g uuid.UUID) {
	if c.s.Register(g) {
		return
	}
	c.report.RosterOverflow++
	c.log.Warn("controller roster over capacity", "entity", e.String(), "id", id,
		"model", c.opts.Controller.Model)
}

func (c *compiler) module(m design.Module) *Module {
	profile := Profile(m.Kind)
	node := &Module{
		NodeType:        TypeModule,
		Name:            m.Name,
		DriverGuid:      profile.Driver,
		Guid:            c.s.GUID(EntityModule, m.ID),
		HsnetAddress:    m.NetworkAddress,
		RemoteIpAddress: text(""),
		DevID:           m.DeviceID,
		SmartGroup:      1,
	}
	for _, spec := range profile.slots {
		node.Slots = append(node.Slots, &Slot{
			NodeType:     TypeSlot,
			SlotCapacity: spec.capacity,
			SlotType:     spec.slotType,
			InitialPort:  1,
			IO:           spec.io,
			SubItemsGuid: refs(spec.capacity),
			Name:         spec.name,
		})
	}

	switch m.Kind {
	case design.ModuleLX4:
		node.UnitComposers = c.openingComposers()
	case design.ModuleSA1:
		node.NodeType = TypeModuleHVAC
		node.SubItemComposers = [][]*UnitComposer{c.s.composers(sa1Composers)}
		node.GTWItemComposers = &[]json.RawMessage{}
	}
	return node
}

// openingComposers are the sixteen opening-percentage points of a shade
// module, four per channel.
func (c *compiler) openingComposers() []*UnitComposer {
	var out []*UnitComposer
	for i := 1; i <= 4; i++ {
		for j := 1; j <= 4; j++ {
			port, io := 1, 1
			if j%2 == 0 {
				port, io = 5, 0
			}
			out = append(out, c.s.composer(composerSpec{
				name:     fmt.Sprintf("Opening Percentage %d %d", i, j),
				port:     port,
				portType: 6,
				kind:     1,
				io:       io,
			}))
		}
	}
	return out
}

func (c *compiler) roomContents(r design.Room) {
	room := c.rooms[r.ID]

	for _, circuit := range c.g.CircuitsOf(r.ID) {
		c.s.syncUnits()
		load, err := c.load(circuit)
		if err != nil {
			c.skip(EntityCircuit, circuit.ID, err)
			continue
		}
		room.LoadOutputs = append(room.LoadOutputs, load)
		c.report.Circuits++

		link, ok := c.g.LinkOf(circuit.ID)
		if !ok {
			continue
		}
		if err := c.link(circuit, link, load.NodeGUID()); err != nil {
			c.skip(EntityCircuit, circuit.ID, fmt.Errorf("link: %w", err))
			continue
		}
		c.report.Links++
	}

	for _, k := range c.g.KeypadsOf(r.ID) {
		c.s.syncUnits()
		node, err := c.keypad(k)
		if err != nil {
			c.skip(EntityKeypad, k.ID, err)
			continue
		}
		room.UserInterfaces = append(room.UserInterfaces, node)
		c.register(EntityKeypad, k.ID, node.Guid)
		c.report.Keypads++
	}

	for _, sc := range c.g.ScenesOf(r.ID) {
		node := c.scene(sc)
		if !c.s.RegisterScene(node.Guid) {
			c.log.Warn("controller scene slot is full", "scene_id", sc.ID)
		}
		room.Scenes = append(room.Scenes, node)
		c.report.Scenes++
	}
}

func (c *compiler) load(circuit design.Circuit) (Load, error) {
	name := circuit.Name
	if name == "" {
		name = circuit.Identifier
	}
	g := c.s.GUID(EntityCircuit, circuit.ID)

	switch circuit.Kind {
	case design.CircuitLight:
		l := &CircuitLoad{
			NodeType:    TypeCircuit,
			LoadType:    LoadTypeOnOff,
			Power:       circuit.Power,
			ProfileGuid: ProfileOnOff,
			Unit:        c.s.newUnit(),
			Name:        name,
			Guid:        g,
			Description: "ON/OFF",
		}
		if circuit.Dimmable {
			l.LoadType = LoadTypeDimmer
			l.ProfileGuid = ProfileDimmer
			l.Description = "Dimmer"
		}
		return l, nil
	case design.CircuitShade:
		return &ShadeLoad{
			NodeType:             TypeShade,
			ProfileGuid:          ProfileShade,
			UnitMovement:         c.s.newUnit(),
			UnitOpenedPercentage: c.s.newUnit(),
			UnitCurrentPosition:  c.s.newUnit(),
			Name:                 name,
			Guid:                 g,
			Description:          "Persiana",
		}, nil
	case design.CircuitHVAC:
		return &HVACLoad{
			NodeType:         TypeHVAC,
			ProfileGuid:      ProfileHVAC,
			ControlModelGuid: ControlModelHVAC,
			Name:             name,
			Guid:             g,
			Description:      "HVAC",
		}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported circuit kind %q", design.ErrIncompatibleKind, circuit.Kind)
	}
}

// slotPreference lists the slot names a circuit may occupy, exact match first.
func slotPreference(circuit design.Circuit) []string {
	switch circuit.Kind {
	case design.CircuitLight:
		if circuit.Dimmable {
			return []string{SlotLoadDim, SlotLoadOnOff}
		}
		return []string{SlotLoadOnOff, SlotLoadDim}
	case design.CircuitShade:
		return []string{SlotShade}
	case design.CircuitHVAC:
		return []string{SlotIR}
	default:
		return nil
	}
}

var errNoSlot = errors.New("no matching slot")

// link writes the circuit GUID into the channel entry of the module slot.
func (c *compiler) link(circuit design.Circuit, link design.Link, g uuid.UUID) error {
	node, ok := c.modules[link.ModuleID]
	if !ok {
		return fmt.Errorf("%w: module %d is not in the document", design.ErrDanglingReference, link.ModuleID)
	}

	var slot *Slot
	for _, name := range slotPreference(circuit) {
		if slot = node.Slot(name); slot != nil {
			break
		}
	}
	if slot == nil {
		return fmt.Errorf("%w: %w on module %q for %s circuit", design.ErrIncompatibleKind, errNoSlot, node.Name, circuit.Kind)
	}
	if link.Channel < 1 || link.Channel > slot.SlotCapacity {
		return fmt.Errorf("%w: channel %d outside slot %q of module %q", design.ErrCapacityExceeded, link.Channel, slot.Name, node.Name)
	}
	for len(slot.SubItemsGuid) < slot.SlotCapacity {
		slot.SubItemsGuid = append(slot.SubItemsGuid, Ref{})
	}
	entry := &slot.SubItemsGuid[link.Channel-1]
	if entry.IsSet() && entry.GUID() != g {
		return fmt.Errorf("%w: channel %d of module %q is taken", design.ErrDuplicateAddress, link.Channel, node.Name)
	}
	*entry = RefTo(g)
	return nil
}

func text(s string) *string {
	return &s
}

// optionalText maps blank text to JSON null.
func optionalText(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
