package roehn

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-designer/internal/allocation"
	"github.com/nerrad567/gray-logic-designer/internal/design"
)

const maxIdentifierLength = 50

type parsedModule struct {
	id   int64
	node *Module
}

type parsedRoom struct {
	id   int64
	node *Room
}

type parser struct {
	doc *Project
	log Logger
	g   *design.Graph

	next        map[Entity]int64
	nextLink    int64
	rooms       map[uuid.UUID]int64
	roomNodes   []parsedRoom
	circuits    map[uuid.UUID]int64
	scenes      map[uuid.UUID]int64
	identifiers map[string]bool
	modules     []parsedModule
}

// Parse rebuilds a design graph from a document.
//
// IDs in the returned graph are local keys numbered from 1, ready for
// design.Store.CreateGraph. The technical area holding the controller is
// not part of the design: modules on its boards come back without a board.
// Circuit identifiers are derived from load names and SAK ranges are
// allocated afresh in document order. The graph is checked against every
// allocation rule before it is returned.
func Parse(doc *Project, logger Logger) (*design.Graph, error) {
	if logger == nil {
		logger = noopLogger{}
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: empty document", design.ErrMalformedDocument)
	}
	if doc.NodeType != "" && doc.NodeType != TypeProject {
		return nil, fmt.Errorf("%w: root node is %q, not %q", design.ErrMalformedDocument, doc.NodeType, TypeProject)
	}
	name := strings.TrimSpace(doc.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: project has no name", design.ErrMalformedDocument)
	}
	for _, section := range doc.dropped {
		// Rooms live under Areas; dropping it would import an empty project.
		if section == sectionAreas {
			return nil, fmt.Errorf("%w: section %s does not decode", design.ErrMalformedDocument, section)
		}
		logger.Warn("ignoring malformed document section", "section", section)
	}
	if err := CheckReferences(doc); err != nil {
		return nil, err
	}

	p := &parser{
		doc:         doc,
		log:         logger,
		g:           &design.Graph{Project: design.Project{Name: name, Status: design.StatusActive}},
		next:        make(map[Entity]int64),
		rooms:       make(map[uuid.UUID]int64),
		circuits:    make(map[uuid.UUID]int64),
		scenes:      make(map[uuid.UUID]int64),
		identifiers: make(map[string]bool),
	}
	if len(doc.Scenes) > 0 {
		logger.Warn("ignoring project-level scenes", "count", len(doc.Scenes))
	}

	if err := p.structure(); err != nil {
		return nil, err
	}
	if err := p.links(); err != nil {
		return nil, err
	}
	// Scenes first: buttons may target a scene of any room.
	for _, r := range p.roomNodes {
		for _, s := range r.node.Scenes {
			if err := p.scene(r.id, s); err != nil {
				return nil, err
			}
		}
	}
	for _, r := range p.roomNodes {
		for _, k := range r.node.UserInterfaces {
			if err := p.keypad(r.id, k); err != nil {
				return nil, err
			}
		}
	}

	var reserved []int
	if ctrl := doc.Controller(); ctrl != nil {
		reserved = append(reserved, ctrl.HsnetAddress)
	}
	// Keypads without an HSNET port are written with address 0.
	if err := allocation.CompleteAddresses(p.g, reserved...); err != nil {
		return nil, err
	}
	if err := allocation.CheckGraph(p.g, reserved...); err != nil {
		return nil, err
	}

	logger.Info("document parsed",
		"project", name,
		"circuits", len(p.g.Circuits),
		"modules", len(p.g.Modules),
		"links", len(p.g.Links),
	)
	return p.g, nil
}

func (p *parser) id(e Entity) int64 {
	p.next[e]++
	return p.next[e]
}

// isTechnicalArea reports whether an area only houses the controller: it
// has a board holding a logic server and no loads, keypads or scenes.
func isTechnicalArea(a *Area) bool {
	hasController := false
	for _, r := range a.SubItems {
		if len(r.LoadOutputs) > 0 || len(r.UserInterfaces) > 0 || len(r.Scenes) > 0 {
			return false
		}
		for _, b := range r.AutomationBoards {
			for _, m := range b.ModulesList {
				if m.Logicserver {
					hasController = true
				}
			}
		}
	}
	return hasController
}

func (p *parser) structure() error {
	for ai, a := range p.doc.Areas {
		if isTechnicalArea(a) {
			for _, r := range a.SubItems {
				for _, b := range r.AutomationBoards {
					p.boardModules(b, nil)
				}
			}
			continue
		}

		areaName := strings.TrimSpace(a.Name)
		if areaName == "" {
			return fmt.Errorf("%w: area %d has no name", design.ErrMalformedDocument, ai+1)
		}
		area := design.Area{ID: p.id(EntityArea), Name: areaName}
		p.g.Areas = append(p.g.Areas, area)
		if len(a.Scenes) > 0 {
			p.log.Warn("ignoring area-level scenes", "area", areaName, "count", len(a.Scenes))
		}

		for ri, r := range a.SubItems {
			roomName := strings.TrimSpace(r.Name)
			if roomName == "" {
				return fmt.Errorf("%w: room %d of area %q has no name", design.ErrMalformedDocument, ri+1, areaName)
			}
			room := design.Room{ID: p.id(EntityRoom), AreaID: area.ID, Name: roomName}
			p.g.Rooms = append(p.g.Rooms, room)
			p.roomNodes = append(p.roomNodes, parsedRoom{id: room.ID, node: r})
			if r.Guid != uuid.Nil {
				p.rooms[r.Guid] = room.ID
			}

			for _, b := range r.AutomationBoards {
				board := design.Board{
					ID:     p.id(EntityBoard),
					RoomID: room.ID,
					Name:   defaultText(strings.TrimSpace(b.Name), "Board"),
					Notes:  deref(b.Notes),
				}
				p.g.Boards = append(p.g.Boards, board)
				p.boardModules(b, design.ID(board.ID))
			}

			for _, l := range r.LoadOutputs {
				if err := p.load(room.ID, l); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (p *parser) boardModules(b *Board, boardID *int64) {
	for _, m := range b.ModulesList {
		if m.Logicserver || isControllerDriver(m.DriverGuid) {
			continue
		}
		kind, ok := KindOfDriver(m.DriverGuid)
		if !ok {
			p.log.Warn("skipping module with unknown driver", "module", m.Name, "driver", m.DriverGuid.String())
			continue
		}

		mod := design.Module{
			ID:             p.id(EntityModule),
			Name:           defaultText(strings.TrimSpace(m.Name), kind.Spec().FullName),
			Kind:           kind,
			NetworkAddress: m.HsnetAddress,
			DeviceID:       m.DevID,
		}
		if boardID != nil {
			mod.BoardID = design.ID(*boardID)
		}
		if mod.DeviceID == 0 {
			mod.DeviceID = mod.NetworkAddress
		}
		p.g.Modules = append(p.g.Modules, mod)
		p.modules = append(p.modules, parsedModule{id: mod.ID, node: m})
	}
}

func (p *parser) load(roomID int64, l Load) error {
	var c design.Circuit
	switch l := l.(type) {
	case *CircuitLoad:
		c.Kind, c.Dimmable, c.Power = design.CircuitLight, l.Dimmable(), l.Power
	case *ShadeLoad:
		c.Kind = design.CircuitShade
	case *HVACLoad:
		c.Kind = design.CircuitHVAC
	default:
		p.log.Warn("skipping load of unknown type", "name", l.NodeName(), "guid", l.NodeGUID().String())
		return nil
	}

	c.ID = p.id(EntityCircuit)
	c.RoomID = roomID
	c.Identifier = p.identifier(l.NodeName(), c.ID)
	c.Name = defaultText(strings.TrimSpace(l.NodeName()), c.Identifier)

	sak, count, err := allocation.NextSAK(p.g.Circuits, c.Kind)
	if err != nil {
		return fmt.Errorf("load %q: %w", c.Name, err)
	}
	c.SAK, c.SAKCount = sak, count

	if g := l.NodeGUID(); g != uuid.Nil {
		if _, dup := p.circuits[g]; dup {
			return fmt.Errorf("%w: load GUID %s appears twice", design.ErrMalformedDocument, g)
		}
		p.circuits[g] = c.ID
	}
	p.g.Circuits = append(p.g.Circuits, c)
	return nil
}

// identifier derives a project-unique circuit identifier from a load name.
func (p *parser) identifier(name string, id int64) string {
	base := strings.TrimSpace(name)
	if base == "" {
		base = "C" + strconv.FormatInt(id, 10)
	}
	base = truncate(base, maxIdentifierLength-4)

	candidate := base
	for n := 2; p.identifiers[candidate]; n++ {
		candidate = base + "-" + strconv.Itoa(n)
	}
	p.identifiers[candidate] = true
	return candidate
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

func isChannelSlot(name string) bool {
	switch name {
	case SlotLoadOnOff, SlotLoadDim, SlotShade, SlotIR:
		return true
	default:
		return false
	}
}

// links reads module channel slots back into links.
func (p *parser) links() error {
	for _, pm := range p.modules {
		for _, sl := range pm.node.Slots {
			if !isChannelSlot(sl.Name) {
				continue
			}
			for i, r := range sl.SubItemsGuid {
				if !r.IsSet() {
					continue
				}
				circuitID, ok := p.circuits[r.GUID()]
				if !ok {
					return fmt.Errorf("%w: module %q slot %q channel %d does not hold a load",
						design.ErrDanglingReference, pm.node.Name, sl.Name, i+1)
				}
				p.nextLink++
				p.g.Links = append(p.g.Links, design.Link{
					ID:        p.nextLink,
					CircuitID: circuitID,
					ModuleID:  pm.id,
					Channel:   i + 1,
				})
			}
		}
	}
	return nil
}

func (p *parser) scene(roomID int64, s *Scene) error {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return fmt.Errorf("%w: scene without name", design.ErrMalformedDocument)
	}
	sc := design.Scene{
		ID:     p.id(EntityScene),
		RoomID: roomID,
		GUID:   s.Guid,
		Name:   name,
		Movers: s.SceneMovers || s.Operator == OperatorMovers,
	}
	if s.Guid != uuid.Nil {
		if _, dup := p.scenes[s.Guid]; dup {
			return fmt.Errorf("%w: scene GUID %s appears twice", design.ErrMalformedDocument, s.Guid)
		}
		p.scenes[s.Guid] = sc.ID
	}

	for i, a := range s.Actions {
		switch a.ActionType {
		case ActionTypeCircuit:
			circuitID, ok := p.circuits[a.TargetGuid.GUID()]
			if !ok {
				return fmt.Errorf("%w: scene %q action %d does not target a load", design.ErrDanglingReference, name, i+1)
			}
			sc.Actions = append(sc.Actions, design.Action{Kind: design.ActionSingle, Level: a.Level, CircuitID: design.ID(circuitID)})

		case ActionTypeGroup:
			targetRoom, ok := p.rooms[a.TargetGuid.GUID()]
			if !ok {
				return fmt.Errorf("%w: scene %q action %d does not target a room", design.ErrDanglingReference, name, i+1)
			}
			action := design.Action{Kind: design.ActionGroup, Level: a.Level, RoomID: design.ID(targetRoom)}
			for j, ca := range a.CustomActions {
				circuitID, ok := p.circuits[ca.TargetGuid.GUID()]
				if !ok {
					return fmt.Errorf("%w: scene %q action %d entry %d does not target a load", design.ErrDanglingReference, name, i+1, j+1)
				}
				circuit, _ := p.g.Circuit(circuitID)
				if circuit.Kind != design.CircuitLight {
					continue
				}
				if ca.Enable && ca.Level == a.Level {
					continue
				}
				action.Overrides = append(action.Overrides, design.Override{CircuitID: circuitID, Enabled: ca.Enable, Level: ca.Level})
			}
			sc.Actions = append(sc.Actions, action)

		default:
			p.log.Warn("skipping scene action of unknown type", "scene", name, "action_type", a.ActionType)
		}
	}

	p.g.Scenes = append(p.g.Scenes, sc)
	return nil
}

func (p *parser) keypad(roomID int64, k *Keypad) error {
	if !design.ValidButtonCount(k.ButtonCount) {
		return fmt.Errorf("%w: keypad %q has %d buttons", design.ErrMalformedDocument, k.Name, k.ButtonCount)
	}
	model := defaultText(strings.TrimSpace(k.ModelName), design.DefaultKeypadModel)
	kp := design.Keypad{
		ID:             p.id(EntityKeypad),
		RoomID:         roomID,
		Name:           defaultText(strings.TrimSpace(k.Name), model),
		Model:          model,
		Color:          defaultText(k.Color, design.DefaultKeypadColor),
		ButtonColor:    defaultText(k.ButtonColor, design.DefaultKeypadColor),
		ButtonCount:    k.ButtonCount,
		NetworkAddress: k.HsnetAddress,
		DeviceID:       k.DevID,
		Notes:          deref(k.Notes),
	}
	if kp.DeviceID == 0 {
		kp.DeviceID = kp.NetworkAddress
	}

	buttons := k.ListKeypadButtons
	if len(buttons) > k.ButtonCount {
		p.log.Warn("dropping keypad buttons beyond button count", "keypad", kp.Name, "buttons", len(buttons), "button_count", k.ButtonCount)
		buttons = buttons[:k.ButtonCount]
	}
	for i, b := range buttons {
		kp.Buttons = append(kp.Buttons, p.button(kp.Name, i+1, b))
	}
	for ord := len(kp.Buttons) + 1; ord <= k.ButtonCount; ord++ {
		kp.Buttons = append(kp.Buttons, design.NewKeypadButton(ord))
	}

	p.g.Keypads = append(p.g.Keypads, kp)
	return nil
}

func (p *parser) button(keypad string, ordinal int, b *KeypadButton) design.KeypadButton {
	btn := design.NewKeypadButton(ordinal)
	if b.Guid != uuid.Nil {
		btn.GUID = b.Guid
	}

	if t := b.TargetObjectGuid; t.IsSet() {
		if sceneID, ok := p.scenes[t.GUID()]; ok {
			btn.SceneID = design.ID(sceneID)
		} else if circuitID, ok := p.circuits[t.GUID()]; ok {
			btn.CircuitID = design.ID(circuitID)
		} else {
			p.log.Warn("button target is neither a scene nor a load", "keypad", keypad, "ordinal", ordinal, "target", t.String())
		}
	}

	if b.Modo != 0 {
		btn.Mode = b.Modo
	}
	if b.ModoDoublePress != 0 {
		btn.DoublePressMode = b.ModoDoublePress
	}
	btn.CommandOn = b.CommandOn
	btn.CommandOff = b.CommandOff
	btn.CanHold = b.CanHold
	btn.DoublePressCommand = b.CommandDoublePress
	btn.Engraving = deref(b.EngraverText)

	btn.Rocker = b.ButtonStyleGuid == StyleRocker || b.ButtonStyleGuid == StyleRockerIcon
	if props := b.StylePropertiesSerializable; props != nil {
		if props.Icon != nil {
			if name, ok := IconName(*props.Icon); ok {
				btn.Icon = name
			}
		}
		if props.RockerIcon != nil {
			btn.RockerStyle = RockerStyleOf(*props.RockerIcon)
		}
	}
	return btn
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
