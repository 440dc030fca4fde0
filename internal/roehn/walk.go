package roehn

import "github.com/google/uuid"

// eachUnit calls fn for every unit in the document.
func (p *Project) eachUnit(fn func(*Unit)) {
	visit := func(u *Unit) {
		if u != nil {
			fn(u)
		}
	}
	composers := func(cs []*UnitComposer) {
		for _, c := range cs {
			if c != nil {
				visit(c.Unit)
			}
		}
	}

	p.eachModule(func(m *Module) {
		composers(m.UnitComposers)
		for _, sub := range m.SubItemComposers {
			composers(sub)
		}
		for _, sl := range m.Slots {
			composers(sl.UnitComposers)
		}
	})
	p.eachRoom(func(_ *Area, r *Room) {
		for _, l := range r.LoadOutputs {
			for _, u := range l.units() {
				visit(u)
			}
		}
		for _, k := range r.UserInterfaces {
			composers(k.composers())
			for _, list := range [][]*KeypadButton{k.ListKeypadButtons, k.ListKeypadButtonsLayout2} {
				for _, b := range list {
					composers([]*UnitComposer{b.UnitKey, b.UnitLed, b.UnitSecondaryKey, b.UnitSecondaryLed})
				}
			}
		}
	})
}

// maxUnitID returns the highest unit id in the document, or 0.
func (p *Project) maxUnitID() int {
	highest := 0
	p.eachUnit(func(u *Unit) {
		if u.Id > highest {
			highest = u.Id
		}
	})
	return highest
}

// eachRoom calls fn for every room in document order.
func (p *Project) eachRoom(fn func(*Area, *Room)) {
	for _, a := range p.Areas {
		if a == nil {
			continue
		}
		for _, r := range a.SubItems {
			if r != nil {
				fn(a, r)
			}
		}
	}
}

// eachModule calls fn for every module of every board.
func (p *Project) eachModule(fn func(*Module)) {
	p.eachRoom(func(_ *Area, r *Room) {
		for _, b := range r.AutomationBoards {
			if b == nil {
				continue
			}
			for _, m := range b.ModulesList {
				if m != nil {
					fn(m)
				}
			}
		}
	})
}

// eachScene calls fn for every scene of the project, its areas and rooms.
func (p *Project) eachScene(fn func(*Scene)) {
	visit := func(ss []*Scene) {
		for _, s := range ss {
			if s != nil {
				fn(s)
			}
		}
	}
	visit(p.Scenes)
	for _, a := range p.Areas {
		if a != nil {
			visit(a.Scenes)
		}
	}
	p.eachRoom(func(_ *Area, r *Room) { visit(r.Scenes) })
}

// Controller returns the logic-server module of the document, if any.
func (p *Project) Controller() *Module {
	var found *Module
	p.eachModule(func(m *Module) {
		if found == nil && m.Logicserver {
			found = m
		}
	})
	return found
}

// nodeIndex maps every node GUID in the document to its node type.
func (p *Project) nodeIndex() map[uuid.UUID]string {
	idx := make(map[uuid.UUID]string)
	add := func(g uuid.UUID, typ string) {
		if g != uuid.Nil {
			idx[g] = typ
		}
	}
	specials := func(sa []*SpecialAction) {
		for _, s := range sa {
			if s != nil {
				add(s.Guid, TypeSpecialAction)
			}
		}
	}

	add(p.Guid, TypeProject)
	specials(p.SpecialActions)
	for _, v := range p.Variables {
		if v != nil {
			add(v.Guid, TypeVariable)
		}
	}
	for _, a := range p.Areas {
		if a == nil {
			continue
		}
		add(a.Guid, TypeArea)
		specials(a.SpecialActions)
	}
	p.eachRoom(func(_ *Area, r *Room) {
		add(r.Guid, TypeRoom)
		specials(r.SpecialActions)
		for _, l := range r.LoadOutputs {
			switch l := l.(type) {
			case *CircuitLoad:
				add(l.Guid, TypeCircuit)
			case *ShadeLoad:
				add(l.Guid, TypeShade)
			case *HVACLoad:
				add(l.Guid, TypeHVAC)
			case *UnknownLoad:
				add(l.Guid, l.Type)
			}
		}
		for _, k := range r.UserInterfaces {
			add(k.Guid, TypeKeypad)
			for _, b := range k.ListKeypadButtons {
				add(b.Guid, TypeKeypadButton)
			}
		}
		for _, b := range r.AutomationBoards {
			if b != nil {
				add(b.Guid, TypeBoard)
			}
		}
	})
	p.eachModule(func(m *Module) { add(m.Guid, m.NodeType) })
	p.eachScene(func(s *Scene) { add(s.Guid, TypeScene) })
	return idx
}
