package design

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const circuitColumns = `id, project_id, room_id, identifier, name, kind, dimmable, power, sak, sak_count`

// CreateCircuit inserts a circuit and sets its ID. SAK and SAKCount must
// already be allocated.
func (s *Store) CreateCircuit(ctx context.Context, c *Circuit) error {
	c.Identifier = strings.TrimSpace(c.Identifier)
	c.Name = strings.TrimSpace(c.Name)

	var sak sql.NullInt64
	if c.HasSAK() {
		sak = sql.NullInt64{Int64: int64(c.SAK), Valid: true}
	}
	const query = `INSERT INTO circuits (project_id, room_id, identifier, name, kind, dimmable, power, sak, sak_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := s.conn.ExecContext(ctx, query,
		c.ProjectID, c.RoomID, c.Identifier, c.Name, string(c.Kind),
		boolInt(c.Dimmable), c.Power, sak, c.SAKCount)
	if err != nil {
		return mapError(err, "inserting circuit")
	}
	c.ID, _ = res.LastInsertId() //nolint:errcheck // SQLite always supports LastInsertId
	return nil
}

// GetCircuit returns a circuit by ID.
func (s *Store) GetCircuit(ctx context.Context, id int64) (*Circuit, error) {
	c, err := scanCircuit(s.conn.QueryRowContext(ctx,
		`SELECT `+circuitColumns+` FROM circuits WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "circuit", id)
	}
	return c, nil
}

// ListCircuits returns the circuits of a project ordered by ID.
func (s *Store) ListCircuits(ctx context.Context, projectID int64) ([]Circuit, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+circuitColumns+` FROM circuits WHERE project_id = ? ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying circuits: %w", err)
	}
	defer rows.Close()

	var out []Circuit
	for rows.Next() {
		c, err := scanCircuit(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning circuit: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// DeleteCircuit removes a circuit. Its link and scene actions go with it;
// keypad buttons bound to it become unbound.
func (s *Store) DeleteCircuit(ctx context.Context, id int64) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM circuits WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting circuit %d: %w", id, err)
	}
	return expectOne(res, "circuit", id)
}

func scanCircuit(row scanner) (*Circuit, error) {
	var c Circuit
	var kind string
	var dimmable int
	var sak sql.NullInt64
	if err := row.Scan(&c.ID, &c.ProjectID, &c.RoomID, &c.Identifier, &c.Name,
		&kind, &dimmable, &c.Power, &sak, &c.SAKCount); err != nil {
		return nil, err
	}
	c.Kind = CircuitKind(kind)
	c.Dimmable = dimmable != 0
	if sak.Valid {
		c.SAK = int(sak.Int64)
	}
	return &c, nil
}

const moduleColumns = `id, project_id, board_id, name, kind, network_address, device_id`

// CreateModule inserts a module and sets its ID. The network address and
// device id must already be allocated.
func (s *Store) CreateModule(ctx context.Context, m *Module) error {
	m.Name = strings.TrimSpace(m.Name)
	const query = `INSERT INTO modules (project_id, board_id, name, kind, network_address, device_id)
		VALUES (?, ?, ?, ?, ?, ?)`
	res, err := s.conn.ExecContext(ctx, query,
		m.ProjectID, nullInt64(m.BoardID), m.Name, string(m.Kind), m.NetworkAddress, m.DeviceID)
	if err != nil {
		return mapError(err, "inserting module")
	}
	m.ID, _ = res.LastInsertId() //nolint:errcheck // SQLite always supports LastInsertId
	return nil
}

// GetModule returns a module by ID.
func (s *Store) GetModule(ctx context.Context, id int64) (*Module, error) {
	m, err := scanModule(s.conn.QueryRowContext(ctx,
		`SELECT `+moduleColumns+` FROM modules WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "module", id)
	}
	return m, nil
}

// ListModules returns the modules of a project ordered by ID.
func (s *Store) ListModules(ctx context.Context, projectID int64) ([]Module, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+moduleColumns+` FROM modules WHERE project_id = ? ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying modules: %w", err)
	}
	defer rows.Close()

	var out []Module
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning module: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// DeleteModule removes a module. It fails with ErrModuleInUse while any
// circuit is linked to it.
func (s *Store) DeleteModule(ctx context.Context, id int64) error {
	var links int
	if err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM links WHERE module_id = ?`, id).Scan(&links); err != nil {
		return fmt.Errorf("counting links of module %d: %w", id, err)
	}
	if links > 0 {
		return fmt.Errorf("%w: module %d has %d links", ErrModuleInUse, id, links)
	}

	res, err := s.conn.ExecContext(ctx, `DELETE FROM modules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting module %d: %w", id, err)
	}
	return expectOne(res, "module", id)
}

func scanModule(row scanner) (*Module, error) {
	var m Module
	var board sql.NullInt64
	var kind string
	if err := row.Scan(&m.ID, &m.ProjectID, &board, &m.Name, &kind, &m.NetworkAddress, &m.DeviceID); err != nil {
		return nil, err
	}
	m.BoardID = int64Ptr(board)
	m.Kind = ModuleKind(kind)
	return &m, nil
}

// CreateLink inserts a link and sets its ID.
func (s *Store) CreateLink(ctx context.Context, l *Link) error {
	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO links (circuit_id, module_id, channel) VALUES (?, ?, ?)`,
		l.CircuitID, l.ModuleID, l.Channel)
	if err != nil {
		return mapError(err, "inserting link")
	}
	l.ID, _ = res.LastInsertId() //nolint:errcheck // SQLite always supports LastInsertId
	return nil
}

// ListLinks returns the links of a project ordered by module then channel.
func (s *Store) ListLinks(ctx context.Context, projectID int64) ([]Link, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT l.id, l.circuit_id, l.module_id, l.channel
		FROM links l JOIN modules m ON m.id = l.module_id
		WHERE m.project_id = ? ORDER BY l.module_id, l.channel`, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying links: %w", err)
	}
	defer rows.Close()

	var out []Link
	for rows.Next() {
		var l Link
		if err := rows.Scan(&l.ID, &l.CircuitID, &l.ModuleID, &l.Channel); err != nil {
			return nil, fmt.Errorf("scanning link: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// DeleteLinkOf removes the link of a circuit.
func (s *Store) DeleteLinkOf(ctx context.Context, circuitID int64) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM links WHERE circuit_id = ?`, circuitID)
	if err != nil {
		return fmt.Errorf("deleting link of circuit %d: %w", circuitID, err)
	}
	return expectOne(res, "link of circuit", circuitID)
}
