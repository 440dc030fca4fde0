package project

import (
	"context"
	"fmt"

	"github.com/nerrad567/gray-logic-designer/internal/design"
)

// DefaultButtonCount is used when a keypad is created without one.
const DefaultButtonCount = 4

// CreateKeypad adds a keypad to a room with all of its buttons. A zero
// network address is allocated from the keypad floor.
func (s *Service) CreateKeypad(ctx context.Context, k *design.Keypad) error {
	if err := design.ValidateName(k.Name); err != nil {
		return err
	}
	if k.ButtonCount == 0 {
		k.ButtonCount = DefaultButtonCount
	}
	if !design.ValidButtonCount(k.ButtonCount) {
		return fmt.Errorf("%w: button count must be one of %v", design.ErrInvalid, design.KeypadButtonCounts)
	}
	_, projectID, err := s.store.GetRoom(ctx, k.RoomID)
	if err != nil {
		return err
	}
	k.ProjectID = projectID
	for i := range k.Buttons {
		b := &k.Buttons[i]
		if b.RockerStyle == "" {
			b.RockerStyle = design.RockerUpDown
		}
		if err := s.checkButton(ctx, projectID, *b); err != nil {
			return fmt.Errorf("button %d: %w", b.Ordinal, err)
		}
	}

	err = s.write(ctx, projectID, func(tx *design.Store) error {
		addrs, err := s.addresses(ctx, tx, projectID)
		if err != nil {
			return err
		}
		k.NetworkAddress, k.DeviceID, err = addrs.Assign(k.NetworkAddress, k.DeviceID, addrs.NextKeypadAddress)
		if err != nil {
			return err
		}
		return tx.CreateKeypad(ctx, k)
	})
	if err != nil {
		return err
	}
	s.logger.Info("keypad created", "project_id", projectID, "keypad_id", k.ID,
		"buttons", k.ButtonCount, "network_address", k.NetworkAddress)
	return nil
}

// GetKeypad returns a keypad with its buttons.
func (s *Service) GetKeypad(ctx context.Context, id int64) (*design.Keypad, error) {
	return s.store.GetKeypad(ctx, id)
}

// DeleteKeypad removes a keypad and its buttons.
func (s *Service) DeleteKeypad(ctx context.Context, id int64) error {
	k, err := s.store.GetKeypad(ctx, id)
	if err != nil {
		return err
	}
	return s.write(ctx, k.ProjectID, func(tx *design.Store) error {
		return tx.DeleteKeypad(ctx, id)
	})
}

// SetKeypadButtonCount resizes a keypad. Buttons above the new count are
// dropped; new ones start unbound.
func (s *Service) SetKeypadButtonCount(ctx context.Context, keypadID int64, count int) (*design.Keypad, error) {
	k, err := s.store.GetKeypad(ctx, keypadID)
	if err != nil {
		return nil, err
	}
	var out *design.Keypad
	err = s.write(ctx, k.ProjectID, func(tx *design.Store) error {
		if err := tx.SetButtonCount(ctx, keypadID, count); err != nil {
			return err
		}
		out, err = tx.GetKeypad(ctx, keypadID)
		return err
	})
	return out, err
}

// UpdateKeypadButton stores the editable fields of one button. A button
// given a target while still in the unassigned mode is switched to toggle.
func (s *Service) UpdateKeypadButton(ctx context.Context, b *design.KeypadButton) error {
	if b.RockerStyle == "" {
		b.RockerStyle = design.RockerUpDown
	}
	if err := design.ValidateKeypadButton(*b); err != nil {
		return err
	}
	k, err := s.store.GetKeypad(ctx, b.KeypadID)
	if err != nil {
		return err
	}
	if b.Ordinal < 1 || b.Ordinal > k.ButtonCount {
		return fmt.Errorf("%w: keypad %d has no button %d", design.ErrNotFound, k.ID, b.Ordinal)
	}
	if err := s.checkButton(ctx, k.ProjectID, *b); err != nil {
		return err
	}
	targeted := b.CircuitID != nil || b.SceneID != nil
	if targeted && b.Mode == 0 {
		b.Mode = design.ModeToggle
	}
	if !targeted && b.Mode == 0 {
		b.Mode = design.ModeUnassigned
	}
	if b.DoublePressMode == 0 {
		b.DoublePressMode = design.ModeUnassigned
	}

	return s.write(ctx, k.ProjectID, func(tx *design.Store) error {
		return tx.UpdateKeypadButton(ctx, b)
	})
}

// checkButton verifies that a button's target lives in projectID.
func (s *Service) checkButton(ctx context.Context, projectID int64, b design.KeypadButton) error {
	if err := design.ValidateKeypadButton(b); err != nil {
		return err
	}
	if b.CircuitID != nil {
		c, err := s.store.GetCircuit(ctx, *b.CircuitID)
		if err != nil {
			return err
		}
		if err := sameProject("circuit", c.ProjectID, projectID); err != nil {
			return err
		}
	}
	if b.SceneID != nil {
		sc, err := s.store.GetScene(ctx, *b.SceneID)
		if err != nil {
			return err
		}
		_, sceneProject, err := s.store.GetRoom(ctx, sc.RoomID)
		if err != nil {
			return err
		}
		if err := sameProject("scene", sceneProject, projectID); err != nil {
			return err
		}
	}
	return nil
}

// CreateScene adds a scene to a room. Every circuit and room the actions
// touch must belong to the same project.
func (s *Service) CreateScene(ctx context.Context, sc *design.Scene) error {
	if err := design.ValidateScene(*sc); err != nil {
		return err
	}
	_, projectID, err := s.store.GetRoom(ctx, sc.RoomID)
	if err != nil {
		return err
	}
	for i, a := range sc.Actions {
		if err := s.checkAction(ctx, projectID, a); err != nil {
			return fmt.Errorf("action %d: %w", i+1, err)
		}
	}

	err = s.write(ctx, projectID, func(tx *design.Store) error {
		return tx.CreateScene(ctx, sc)
	})
	if err != nil {
		return err
	}
	s.logger.Info("scene created", "project_id", projectID, "scene_id", sc.ID, "actions", len(sc.Actions))
	return nil
}

func (s *Service) checkAction(ctx context.Context, projectID int64, a design.Action) error {
	if a.CircuitID != nil {
		c, err := s.store.GetCircuit(ctx, *a.CircuitID)
		if err != nil {
			return err
		}
		if err := sameProject("circuit", c.ProjectID, projectID); err != nil {
			return err
		}
	}
	if a.RoomID != nil {
		_, roomProject, err := s.store.GetRoom(ctx, *a.RoomID)
		if err != nil {
			return err
		}
		if err := sameProject("room", roomProject, projectID); err != nil {
			return err
		}
	}
	for _, o := range a.Overrides {
		c, err := s.store.GetCircuit(ctx, o.CircuitID)
		if err != nil {
			return err
		}
		if err := sameProject("override circuit", c.ProjectID, projectID); err != nil {
			return err
		}
	}
	return nil
}

// GetScene returns a scene with its actions.
func (s *Service) GetScene(ctx context.Context, id int64) (*design.Scene, error) {
	return s.store.GetScene(ctx, id)
}

// DeleteScene removes a scene. Keypad buttons bound to it become unbound.
func (s *Service) DeleteScene(ctx context.Context, id int64) error {
	sc, err := s.store.GetScene(ctx, id)
	if err != nil {
		return err
	}
	_, projectID, err := s.store.GetRoom(ctx, sc.RoomID)
	if err != nil {
		return err
	}
	return s.write(ctx, projectID, func(tx *design.Store) error {
		return tx.DeleteScene(ctx, id)
	})
}
