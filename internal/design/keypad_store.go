package design

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const keypadColumns = `id, project_id, room_id, name, model, color, button_color, button_count,
	network_address, device_id, notes`

const buttonColumns = `b.id, b.keypad_id, b.ordinal, b.guid, b.circuit_id, b.scene_id, b.mode,
	b.command_on, b.command_off, b.can_hold, b.double_press_mode, b.double_press_command,
	b.engraving, b.icon, b.rocker, b.rocker_style, b.notes`

// CreateKeypad inserts a keypad and its buttons and sets their IDs.
// Buttons missing from k.Buttons are created with defaults so the keypad
// always owns ordinals 1..ButtonCount.
func (s *Store) CreateKeypad(ctx context.Context, k *Keypad) error {
	applyKeypadDefaults(k)
	const query = `INSERT INTO keypads (project_id, room_id, name, model, color, button_color,
		button_count, network_address, device_id, notes) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := s.conn.ExecContext(ctx, query,
		k.ProjectID, k.RoomID, k.Name, k.Model, k.Color, k.ButtonColor,
		k.ButtonCount, k.NetworkAddress, k.DeviceID, k.Notes)
	if err != nil {
		return mapError(err, "inserting keypad")
	}
	k.ID, _ = res.LastInsertId() //nolint:errcheck // SQLite always supports LastInsertId

	given := make(map[int]KeypadButton, len(k.Buttons))
	for _, b := range k.Buttons {
		given[b.Ordinal] = b
	}
	k.Buttons = k.Buttons[:0]
	for ordinal := 1; ordinal <= k.ButtonCount; ordinal++ {
		b, ok := given[ordinal]
		if !ok {
			b = NewKeypadButton(ordinal)
		}
		b.KeypadID = k.ID
		if err := s.insertButton(ctx, &b); err != nil {
			return err
		}
		k.Buttons = append(k.Buttons, b)
	}
	return nil
}

func applyKeypadDefaults(k *Keypad) {
	k.Name = strings.TrimSpace(k.Name)
	if k.Model == "" {
		k.Model = DefaultKeypadModel
	}
	if k.Color == "" {
		k.Color = DefaultKeypadColor
	}
	if k.ButtonColor == "" {
		k.ButtonColor = DefaultKeypadColor
	}
}

func (s *Store) insertButton(ctx context.Context, b *KeypadButton) error {
	if b.GUID == uuid.Nil {
		b.GUID = uuid.New()
	}
	if b.RockerStyle == "" {
		b.RockerStyle = RockerUpDown
	}
	const query = `INSERT INTO keypad_buttons (keypad_id, ordinal, guid, circuit_id, scene_id, mode,
		command_on, command_off, can_hold, double_press_mode, double_press_command,
		engraving, icon, rocker, rocker_style, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := s.conn.ExecContext(ctx, query,
		b.KeypadID, b.Ordinal, b.GUID.String(), nullInt64(b.CircuitID), nullInt64(b.SceneID), b.Mode,
		b.CommandOn, b.CommandOff, boolInt(b.CanHold), b.DoublePressMode, b.DoublePressCommand,
		b.Engraving, b.Icon, boolInt(b.Rocker), string(b.RockerStyle), b.Notes)
	if err != nil {
		return mapError(err, "inserting keypad button")
	}
	b.ID, _ = res.LastInsertId() //nolint:errcheck // SQLite always supports LastInsertId
	return nil
}

// GetKeypad returns a keypad with its buttons ordered by ordinal.
func (s *Store) GetKeypad(ctx context.Context, id int64) (*Keypad, error) {
	k, err := scanKeypad(s.conn.QueryRowContext(ctx,
		`SELECT `+keypadColumns+` FROM keypads WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "keypad", id)
	}
	buttons, err := s.queryButtons(ctx, `WHERE b.keypad_id = ?`, id)
	if err != nil {
		return nil, err
	}
	k.Buttons = buttons[id]
	return k, nil
}

// ListKeypads returns the keypads of a project with their buttons.
func (s *Store) ListKeypads(ctx context.Context, projectID int64) ([]Keypad, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+keypadColumns+` FROM keypads WHERE project_id = ? ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying keypads: %w", err)
	}
	defer rows.Close()

	var out []Keypad
	for rows.Next() {
		k, err := scanKeypad(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning keypad: %w", err)
		}
		out = append(out, *k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	buttons, err := s.queryButtons(ctx,
		`JOIN keypads k ON k.id = b.keypad_id WHERE k.project_id = ?`, projectID)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Buttons = buttons[out[i].ID]
	}
	return out, nil
}

// queryButtons loads buttons grouped by keypad ID.
func (s *Store) queryButtons(ctx context.Context, where string, args ...any) (map[int64][]KeypadButton, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+buttonColumns+` FROM keypad_buttons b `+where+` ORDER BY b.keypad_id, b.ordinal`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying keypad buttons: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]KeypadButton)
	for rows.Next() {
		b, err := scanButton(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning keypad button: %w", err)
		}
		out[b.KeypadID] = append(out[b.KeypadID], *b)
	}
	return out, rows.Err()
}

// SetButtonCount changes how many buttons a keypad has. Buttons above the
// new count are removed and missing ones are created with defaults.
func (s *Store) SetButtonCount(ctx context.Context, keypadID int64, count int) error {
	if !ValidButtonCount(count) {
		return fmt.Errorf("%w: button count must be one of %v", ErrInvalid, KeypadButtonCounts)
	}

	res, err := s.conn.ExecContext(ctx,
		`UPDATE keypads SET button_count = ? WHERE id = ?`, count, keypadID)
	if err != nil {
		return mapError(err, "updating keypad")
	}
	if err := expectOne(res, "keypad", keypadID); err != nil {
		return err
	}

	if _, err := s.conn.ExecContext(ctx,
		`DELETE FROM keypad_buttons WHERE keypad_id = ? AND ordinal > ?`, keypadID, count); err != nil {
		return fmt.Errorf("pruning keypad buttons: %w", err)
	}

	existing, err := s.queryButtons(ctx, `WHERE b.keypad_id = ?`, keypadID)
	if err != nil {
		return err
	}
	have := make(map[int]bool)
	for _, b := range existing[keypadID] {
		have[b.Ordinal] = true
	}
	for ordinal := 1; ordinal <= count; ordinal++ {
		if have[ordinal] {
			continue
		}
		b := NewKeypadButton(ordinal)
		b.KeypadID = keypadID
		if err := s.insertButton(ctx, &b); err != nil {
			return err
		}
	}
	return nil
}

// UpdateKeypadButton stores the editable fields of the button identified
// by KeypadID and Ordinal. ID and GUID are kept.
func (s *Store) UpdateKeypadButton(ctx context.Context, b *KeypadButton) error {
	const query = `UPDATE keypad_buttons SET circuit_id = ?, scene_id = ?, mode = ?,
		command_on = ?, command_off = ?, can_hold = ?, double_press_mode = ?,
		double_press_command = ?, engraving = ?, icon = ?, rocker = ?, rocker_style = ?, notes = ?
		WHERE keypad_id = ? AND ordinal = ?`
	res, err := s.conn.ExecContext(ctx, query,
		nullInt64(b.CircuitID), nullInt64(b.SceneID), b.Mode,
		b.CommandOn, b.CommandOff, boolInt(b.CanHold), b.DoublePressMode,
		b.DoublePressCommand, b.Engraving, b.Icon, boolInt(b.Rocker), string(b.RockerStyle), b.Notes,
		b.KeypadID, b.Ordinal)
	if err != nil {
		return mapError(err, "updating keypad button")
	}
	return expectOne(res, fmt.Sprintf("button %d of keypad", b.Ordinal), b.KeypadID)
}

// DeleteKeypad removes a keypad and its buttons.
func (s *Store) DeleteKeypad(ctx context.Context, id int64) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM keypads WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting keypad %d: %w", id, err)
	}
	return expectOne(res, "keypad", id)
}

func scanKeypad(row scanner) (*Keypad, error) {
	var k Keypad
	if err := row.Scan(&k.ID, &k.ProjectID, &k.RoomID, &k.Name, &k.Model, &k.Color, &k.ButtonColor,
		&k.ButtonCount, &k.NetworkAddress, &k.DeviceID, &k.Notes); err != nil {
		return nil, err
	}
	return &k, nil
}

func scanButton(row scanner) (*KeypadButton, error) {
	var b KeypadButton
	var circuit, scene sql.NullInt64
	var canHold, rocker int
	var style string
	if err := row.Scan(&b.ID, &b.KeypadID, &b.Ordinal, &b.GUID, &circuit, &scene, &b.Mode,
		&b.CommandOn, &b.CommandOff, &canHold, &b.DoublePressMode, &b.DoublePressCommand,
		&b.Engraving, &b.Icon, &rocker, &style, &b.Notes); err != nil {
		return nil, err
	}
	b.CircuitID = int64Ptr(circuit)
	b.SceneID = int64Ptr(scene)
	b.CanHold = canHold != 0
	b.Rocker = rocker != 0
	b.RockerStyle = RockerStyle(style)
	return &b, nil
}
