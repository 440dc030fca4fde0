package roehn

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-designer/internal/design"
)

// Scene operators.
const (
	OperatorStandard = 0
	OperatorMovers   = 1
)

func (c *compiler) scene(sc design.Scene) *Scene {
	node := &Scene{
		NodeType:    TypeScene,
		Guid:        c.s.GUID(EntityScene, sc.ID),
		Name:        sc.Name,
		SceneMovers: sc.Movers,
		Operator:    OperatorStandard,
		Actions:     []*SceneAction{},
	}
	if sc.Movers {
		node.Operator = OperatorMovers
	}

	for i, a := range sc.Actions {
		action, err := c.action(a)
		if err != nil {
			c.skip(EntityScene, sc.ID, fmt.Errorf("action %d: %w", i+1, err))
			continue
		}
		node.Actions = append(node.Actions, action)
	}
	return node
}

func (c *compiler) action(a design.Action) (*SceneAction, error) {
	switch a.Kind {
	case design.ActionSingle:
		if a.CircuitID == nil {
			return nil, fmt.Errorf("%w: single action without circuit", design.ErrInvalid)
		}
		circuit, ok := c.g.Circuit(*a.CircuitID)
		if !ok || !circuit.Kind.Valid() {
			return nil, fmt.Errorf("%w: circuit %d", design.ErrDanglingReference, *a.CircuitID)
		}
		return &SceneAction{
			NodeType:      TypeSceneAction,
			TargetGuid:    RefTo(c.s.GUID(EntityCircuit, circuit.ID)),
			ActionType:    ActionTypeCircuit,
			Level:         a.Level,
			CustomActions: []*CustomAction{},
		}, nil

	case design.ActionGroup:
		if a.RoomID == nil {
			return nil, fmt.Errorf("%w: group action without room", design.ErrInvalid)
		}
		if _, ok := c.rooms[*a.RoomID]; !ok {
			return nil, fmt.Errorf("%w: room %d", design.ErrDanglingReference, *a.RoomID)
		}
		circuitGUID := func(id int64) uuid.UUID { return c.s.GUID(EntityCircuit, id) }
		return &SceneAction{
			NodeType:      TypeSceneAction,
			TargetGuid:    RefTo(c.s.GUID(EntityRoom, *a.RoomID)),
			ActionType:    ActionTypeGroup,
			Level:         a.Level,
			CustomActions: GroupEntries(c.g.CircuitsOf(*a.RoomID), a, circuitGUID),
		}, nil

	default:
		return nil, fmt.Errorf("%w: action kind %q", design.ErrInvalid, a.Kind)
	}
}

// GroupEntries builds the per-circuit table of a group action over the
// circuits of its room. Lights follow their override when one exists and
// are otherwise enabled at the action level. Every other circuit is
// disabled whatever its override says.
func GroupEntries(circuits []design.Circuit, a design.Action, guid func(int64) uuid.UUID) []*CustomAction {
	overrides := make(map[int64]design.Override, len(a.Overrides))
	for _, o := range a.Overrides {
		overrides[o.CircuitID] = o
	}

	out := make([]*CustomAction, 0, len(circuits))
	for _, circuit := range circuits {
		if !circuit.Kind.Valid() {
			continue
		}
		entry := &CustomAction{NodeType: TypeCustomAction, TargetGuid: RefTo(guid(circuit.ID))}
		switch {
		case circuit.Kind != design.CircuitLight:
			entry.Enable, entry.Level = false, 0
		default:
			if o, ok := overrides[circuit.ID]; ok {
				entry.Enable, entry.Level = o.Enabled, o.Level
			} else {
				entry.Enable, entry.Level = true, a.Level
			}
		}
		out = append(out, entry)
	}
	return out
}
