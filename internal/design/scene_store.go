package design

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// CreateScene inserts a scene with its actions and overrides and sets
// their IDs. A nil GUID is replaced with a fresh one.
func (s *Store) CreateScene(ctx context.Context, sc *Scene) error {
	sc.Name = strings.TrimSpace(sc.Name)
	if sc.GUID == uuid.Nil {
		sc.GUID = uuid.New()
	}
	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO scenes (room_id, guid, name, movers) VALUES (?, ?, ?, ?)`,
		sc.RoomID, sc.GUID.String(), sc.Name, boolInt(sc.Movers))
	if err != nil {
		return mapError(err, "inserting scene")
	}
	sc.ID, _ = res.LastInsertId() //nolint:errcheck // SQLite always supports LastInsertId

	for i := range sc.Actions {
		a := &sc.Actions[i]
		a.SceneID = sc.ID
		res, err := s.conn.ExecContext(ctx,
			`INSERT INTO scene_actions (scene_id, position, kind, level, circuit_id, room_id)
			VALUES (?, ?, ?, ?, ?, ?)`,
			a.SceneID, i+1, string(a.Kind), a.Level, nullInt64(a.CircuitID), nullInt64(a.RoomID))
		if err != nil {
			return mapError(err, "inserting scene action")
		}
		a.ID, _ = res.LastInsertId() //nolint:errcheck // SQLite always supports LastInsertId

		for j := range a.Overrides {
			o := &a.Overrides[j]
			o.ActionID = a.ID
			res, err := s.conn.ExecContext(ctx,
				`INSERT INTO scene_overrides (action_id, circuit_id, enabled, level) VALUES (?, ?, ?, ?)`,
				o.ActionID, o.CircuitID, boolInt(o.Enabled), o.Level)
			if err != nil {
				return mapError(err, "inserting scene override")
			}
			o.ID, _ = res.LastInsertId() //nolint:errcheck // SQLite always supports LastInsertId
		}
	}
	return nil
}

// GetScene returns a scene with its actions.
func (s *Store) GetScene(ctx context.Context, id int64) (*Scene, error) {
	var sc Scene
	var movers int
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, room_id, guid, name, movers FROM scenes WHERE id = ?`, id,
	).Scan(&sc.ID, &sc.RoomID, &sc.GUID, &sc.Name, &movers)
	if err != nil {
		return nil, notFound(err, "scene", id)
	}
	sc.Movers = movers != 0

	actions, err := s.queryActions(ctx, `WHERE a.scene_id = ?`, id)
	if err != nil {
		return nil, err
	}
	sc.Actions = actions[id]
	return &sc, nil
}

// ListScenes returns the scenes of a project with their actions.
func (s *Store) ListScenes(ctx context.Context, projectID int64) ([]Scene, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT s.id, s.room_id, s.guid, s.name, s.movers
		FROM scenes s JOIN rooms r ON r.id = s.room_id JOIN areas ar ON ar.id = r.area_id
		WHERE ar.project_id = ? ORDER BY s.id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying scenes: %w", err)
	}
	defer rows.Close()

	var out []Scene
	for rows.Next() {
		var sc Scene
		var movers int
		if err := rows.Scan(&sc.ID, &sc.RoomID, &sc.GUID, &sc.Name, &movers); err != nil {
			return nil, fmt.Errorf("scanning scene: %w", err)
		}
		sc.Movers = movers != 0
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	actions, err := s.queryActions(ctx, `
		JOIN scenes s ON s.id = a.scene_id JOIN rooms r ON r.id = s.room_id JOIN areas ar ON ar.id = r.area_id
		WHERE ar.project_id = ?`, projectID)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Actions = actions[out[i].ID]
	}
	return out, nil
}

// queryActions loads actions with their overrides, grouped by scene ID.
func (s *Store) queryActions(ctx context.Context, where string, args ...any) (map[int64][]Action, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT a.id, a.scene_id, a.kind, a.level, a.circuit_id, a.room_id
		FROM scene_actions a `+where+` ORDER BY a.scene_id, a.position`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying scene actions: %w", err)
	}

	var actions []Action
	for rows.Next() {
		var a Action
		var kind string
		var circuit, room sql.NullInt64
		if err := rows.Scan(&a.ID, &a.SceneID, &kind, &a.Level, &circuit, &room); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning scene action: %w", err)
		}
		a.Kind = ActionKind(kind)
		a.CircuitID = int64Ptr(circuit)
		a.RoomID = int64Ptr(room)
		actions = append(actions, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	overrides, err := s.queryOverrides(ctx, actions)
	if err != nil {
		return nil, err
	}

	out := make(map[int64][]Action)
	for _, a := range actions {
		a.Overrides = overrides[a.ID]
		out[a.SceneID] = append(out[a.SceneID], a)
	}
	return out, nil
}

func (s *Store) queryOverrides(ctx context.Context, actions []Action) (map[int64][]Override, error) {
	out := make(map[int64][]Override)
	if len(actions) == 0 {
		return out, nil
	}

	placeholders := make([]string, len(actions))
	args := make([]any, len(actions))
	for i, a := range actions {
		placeholders[i] = "?"
		args[i] = a.ID
	}
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, action_id, circuit_id, enabled, level FROM scene_overrides
		WHERE action_id IN (`+strings.Join(placeholders, ",")+`) ORDER BY action_id, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying scene overrides: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var o Override
		var enabled int
		if err := rows.Scan(&o.ID, &o.ActionID, &o.CircuitID, &enabled, &o.Level); err != nil {
			return nil, fmt.Errorf("scanning scene override: %w", err)
		}
		o.Enabled = enabled != 0
		out[o.ActionID] = append(out[o.ActionID], o)
	}
	return out, rows.Err()
}

// DeleteScene removes a scene. Keypad buttons bound to it become unbound.
func (s *Store) DeleteScene(ctx context.Context, id int64) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM scenes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting scene %d: %w", id, err)
	}
	return expectOne(res, "scene", id)
}
