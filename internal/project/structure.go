package project

import (
	"context"
	"fmt"
	"strings"

	"github.com/nerrad567/gray-logic-designer/internal/design"
)

// CreateProject validates and stores a new project.
func (s *Service) CreateProject(ctx context.Context, p *design.Project) error {
	if err := design.ValidateName(p.Name); err != nil {
		return err
	}
	switch p.Status {
	case "", design.StatusActive, design.StatusInactive, design.StatusDone:
	default:
		return fmt.Errorf("%w: unknown project status %q", design.ErrInvalid, p.Status)
	}
	if err := s.store.CreateProject(ctx, p); err != nil {
		return err
	}
	s.logger.Info("project created", "project_id", p.ID, "name", p.Name, "owner", p.OwnerID)
	return nil
}

// GetProject returns a project by ID.
func (s *Service) GetProject(ctx context.Context, id int64) (*design.Project, error) {
	return s.store.GetProject(ctx, id)
}

// ListProjects lists the projects of ownerID, or every project when
// ownerID is empty.
func (s *Service) ListProjects(ctx context.Context, ownerID string) ([]design.Project, error) {
	return s.store.ListProjects(ctx, ownerID)
}

// DeleteProject removes a project and everything it owns.
func (s *Service) DeleteProject(ctx context.Context, id int64) error {
	err := s.write(ctx, id, func(tx *design.Store) error {
		return tx.DeleteProject(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("project deleted", "project_id", id)
	return nil
}

// Graph loads a whole project in one read transaction.
func (s *Service) Graph(ctx context.Context, projectID int64) (*design.Graph, error) {
	var g *design.Graph
	err := s.store.WithTx(ctx, func(tx *design.Store) error {
		var err error
		g, err = tx.LoadGraph(ctx, projectID)
		return err
	})
	return g, err
}

// CreateArea adds an area to a project.
func (s *Service) CreateArea(ctx context.Context, a *design.Area) error {
	if err := design.ValidateName(a.Name); err != nil {
		return err
	}
	if _, err := s.store.GetProject(ctx, a.ProjectID); err != nil {
		return err
	}
	return s.write(ctx, a.ProjectID, func(tx *design.Store) error {
		return tx.CreateArea(ctx, a)
	})
}

// CreateRoom adds a room to an area.
func (s *Service) CreateRoom(ctx context.Context, r *design.Room) error {
	if err := design.ValidateName(r.Name); err != nil {
		return err
	}
	area, err := s.store.GetArea(ctx, r.AreaID)
	if err != nil {
		return err
	}
	return s.write(ctx, area.ProjectID, func(tx *design.Store) error {
		return tx.CreateRoom(ctx, r)
	})
}

// CreateBoard adds an automation board to a room.
func (s *Service) CreateBoard(ctx context.Context, b *design.Board) error {
	if err := design.ValidateName(b.Name); err != nil {
		return err
	}
	b.Notes = strings.TrimSpace(b.Notes)
	_, projectID, err := s.store.GetRoom(ctx, b.RoomID)
	if err != nil {
		return err
	}
	return s.write(ctx, projectID, func(tx *design.Store) error {
		return tx.CreateBoard(ctx, b)
	})
}

// ProjectOfRoom returns the project a room belongs to.
func (s *Service) ProjectOfRoom(ctx context.Context, roomID int64) (int64, error) {
	_, projectID, err := s.store.GetRoom(ctx, roomID)
	return projectID, err
}
