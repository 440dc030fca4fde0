package project

import (
	"context"

	"github.com/nerrad567/gray-logic-designer/internal/allocation"
	"github.com/nerrad567/gray-logic-designer/internal/design"
)

// CreateCircuit adds a circuit to a room and allocates its SAK range after
// the highest range of the project. HVAC circuits get no SAK.
func (s *Service) CreateCircuit(ctx context.Context, c *design.Circuit) error {
	if err := design.ValidateCircuit(*c); err != nil {
		return err
	}
	_, projectID, err := s.store.GetRoom(ctx, c.RoomID)
	if err != nil {
		return err
	}
	c.ProjectID = projectID

	err = s.write(ctx, projectID, func(tx *design.Store) error {
		existing, err := tx.ListCircuits(ctx, projectID)
		if err != nil {
			return err
		}
		c.SAK, c.SAKCount, err = allocation.NextSAK(existing, c.Kind)
		if err != nil {
			return err
		}
		return tx.CreateCircuit(ctx, c)
	})
	if err != nil {
		return err
	}
	s.logger.Info("circuit created", "project_id", projectID, "circuit_id", c.ID,
		"identifier", c.Identifier, "sak", c.SAK, "sak_count", c.SAKCount)
	return nil
}

// DeleteCircuit removes a circuit together with its link and scene actions.
func (s *Service) DeleteCircuit(ctx context.Context, id int64) error {
	c, err := s.store.GetCircuit(ctx, id)
	if err != nil {
		return err
	}
	return s.write(ctx, c.ProjectID, func(tx *design.Store) error {
		return tx.DeleteCircuit(ctx, id)
	})
}

// CreateModule adds a module to a project. A zero network address is
// allocated above the project's highest; a zero device id mirrors the
// network address. Explicit values must be free.
func (s *Service) CreateModule(ctx context.Context, m *design.Module) error {
	if err := design.ValidateModule(*m); err != nil {
		return err
	}
	if _, err := s.store.GetProject(ctx, m.ProjectID); err != nil {
		return err
	}
	if m.BoardID != nil {
		_, boardProject, err := s.store.GetBoard(ctx, *m.BoardID)
		if err != nil {
			return err
		}
		if err := sameProject("board", boardProject, m.ProjectID); err != nil {
			return err
		}
	}

	err := s.write(ctx, m.ProjectID, func(tx *design.Store) error {
		addrs, err := s.addresses(ctx, tx, m.ProjectID)
		if err != nil {
			return err
		}
		m.NetworkAddress, m.DeviceID, err = addrs.Assign(m.NetworkAddress, m.DeviceID, addrs.NextModuleAddress)
		if err != nil {
			return err
		}
		return tx.CreateModule(ctx, m)
	})
	if err != nil {
		return err
	}
	s.logger.Info("module created", "project_id", m.ProjectID, "module_id", m.ID,
		"kind", string(m.Kind), "network_address", m.NetworkAddress, "device_id", m.DeviceID)
	return nil
}

func (s *Service) addresses(ctx context.Context, tx *design.Store, projectID int64) (*allocation.Addresses, error) {
	modules, err := tx.ListModules(ctx, projectID)
	if err != nil {
		return nil, err
	}
	keypads, err := tx.ListKeypads(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return allocation.NewAddresses(modules, keypads, s.reserved...), nil
}

// DeleteModule removes a module. It fails with design.ErrModuleInUse while
// circuits are linked to it.
func (s *Service) DeleteModule(ctx context.Context, id int64) error {
	m, err := s.store.GetModule(ctx, id)
	if err != nil {
		return err
	}
	return s.write(ctx, m.ProjectID, func(tx *design.Store) error {
		return tx.DeleteModule(ctx, id)
	})
}

// LinkCircuit binds a circuit to a module channel. Channel 0 picks the
// lowest free channel. The kind check, channel range, channel occupancy
// and existing link of the circuit are checked in that order.
func (s *Service) LinkCircuit(ctx context.Context, circuitID, moduleID int64, channel int) (*design.Link, error) {
	c, err := s.store.GetCircuit(ctx, circuitID)
	if err != nil {
		return nil, err
	}
	m, err := s.store.GetModule(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if err := sameProject("module", m.ProjectID, c.ProjectID); err != nil {
		return nil, err
	}

	link := &design.Link{CircuitID: circuitID, ModuleID: moduleID, Channel: channel}
	err = s.write(ctx, c.ProjectID, func(tx *design.Store) error {
		links, err := tx.ListLinks(ctx, c.ProjectID)
		if err != nil {
			return err
		}
		if link.Channel == 0 {
			if !m.Kind.Accepts(c.Kind) {
				// Report the kind mismatch before channel exhaustion.
				return allocation.CheckLink(*m, *c, 1, links)
			}
			if link.Channel, err = allocation.NextFreeChannel(*m, links); err != nil {
				return err
			}
		}
		if err := allocation.CheckLink(*m, *c, link.Channel, links); err != nil {
			return err
		}
		return tx.CreateLink(ctx, link)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("circuit linked", "project_id", c.ProjectID, "circuit_id", circuitID,
		"module_id", moduleID, "channel", link.Channel)
	return link, nil
}

// UnlinkCircuit removes the link of a circuit.
func (s *Service) UnlinkCircuit(ctx context.Context, circuitID int64) error {
	c, err := s.store.GetCircuit(ctx, circuitID)
	if err != nil {
		return err
	}
	return s.write(ctx, c.ProjectID, func(tx *design.Store) error {
		return tx.DeleteLinkOf(ctx, circuitID)
	})
}
