package design

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

// dbtx is the subset of *sql.DB and *sql.Tx the store needs.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the SQLite repository for the design model.
type Store struct {
	db   *sql.DB
	conn dbtx
	inTx bool
}

// NewStore creates a store over db.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, conn: db}
}

// WithTx runs fn with a store bound to one transaction. It commits when fn
// returns nil and rolls back otherwise. Nested calls reuse the outer
// transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) (err error) {
	if s.inTx {
		return fn(s)
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			sqlTx.Rollback() //nolint:errcheck // Re-panicking
			panic(p)
		}
		if err != nil {
			sqlTx.Rollback() //nolint:errcheck // Original error takes precedence
		}
	}()

	if err = fn(&Store{db: s.db, conn: sqlTx, inTx: true}); err != nil {
		return err
	}
	if err = sqlTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// mapError translates SQLite constraint failures into package errors.
func mapError(err error, what string) error {
	var sqlErr sqlite3.Error
	if !errors.As(err, &sqlErr) {
		return fmt.Errorf("%s: %w", what, err)
	}
	switch sqlErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		if strings.Contains(sqlErr.Error(), "network_address") || strings.Contains(sqlErr.Error(), "channel") ||
			strings.Contains(sqlErr.Error(), "links.circuit_id") {
			return fmt.Errorf("%w: %s: %v", ErrDuplicateAddress, what, sqlErr)
		}
		return fmt.Errorf("%w: %s: %v", ErrDuplicateName, what, sqlErr)
	case sqlite3.ErrConstraintForeignKey:
		return fmt.Errorf("%w: %s: parent does not exist", ErrNotFound, what)
	case sqlite3.ErrConstraintCheck, sqlite3.ErrConstraintNotNull:
		return fmt.Errorf("%w: %s: %v", ErrInvalid, what, sqlErr)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// notFound converts sql.ErrNoRows into ErrNotFound.
func notFound(err error, what string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %d", ErrNotFound, what, id)
	}
	return fmt.Errorf("querying %s %d: %w", what, id, err)
}

// expectOne reports ErrNotFound when a delete or update touched no row.
func expectOne(result sql.Result, what string, id int64) error {
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return fmt.Errorf("%w: %s %d", ErrNotFound, what, id)
	}
	return nil
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// CreateProject inserts a project and sets its ID.
func (s *Store) CreateProject(ctx context.Context, p *Project) error {
	if p.Status == "" {
		p.Status = StatusActive
	}
	const query = `INSERT INTO projects (name, owner_id, status) VALUES (?, ?, ?)`
	res, err := s.conn.ExecContext(ctx, query, strings.TrimSpace(p.Name), p.OwnerID, p.Status)
	if err != nil {
		return mapError(err, "inserting project")
	}
	p.ID, _ = res.LastInsertId() //nolint:errcheck // SQLite always supports LastInsertId
	p.Name = strings.TrimSpace(p.Name)
	p.CreatedAt = time.Now().UTC().Truncate(time.Second)
	return nil
}

// GetProject returns a project by ID.
func (s *Store) GetProject(ctx context.Context, id int64) (*Project, error) {
	const query = `SELECT id, name, owner_id, status, created_at FROM projects WHERE id = ?`
	p, err := scanProject(s.conn.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "project", id)
	}
	return p, nil
}

// ListProjects returns projects ordered by name. An empty ownerID lists all projects.
func (s *Store) ListProjects(ctx context.Context, ownerID string) ([]Project, error) {
	query := `SELECT id, name, owner_id, status, created_at FROM projects`
	var args []any
	if ownerID != "" {
		query += ` WHERE owner_id = ?`
		args = append(args, ownerID)
	}
	query += ` ORDER BY name`

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// DeleteProject removes a project and everything it owns.
func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting project %d: %w", id, err)
	}
	return expectOne(res, "project", id)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (*Project, error) {
	var p Project
	var created string
	if err := row.Scan(&p.ID, &p.Name, &p.OwnerID, &p.Status, &created); err != nil {
		return nil, err
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, created) //nolint:errcheck // Format is controlled by the schema default
	return &p, nil
}

// CreateArea inserts an area and sets its ID.
func (s *Store) CreateArea(ctx context.Context, a *Area) error {
	a.Name = strings.TrimSpace(a.Name)
	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO areas (project_id, name) VALUES (?, ?)`, a.ProjectID, a.Name)
	if err != nil {
		return mapError(err, "inserting area")
	}
	a.ID, _ = res.LastInsertId() //nolint:errcheck // SQLite always supports LastInsertId
	return nil
}

// GetArea returns an area by ID.
func (s *Store) GetArea(ctx context.Context, id int64) (*Area, error) {
	var a Area
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, project_id, name FROM areas WHERE id = ?`, id,
	).Scan(&a.ID, &a.ProjectID, &a.Name)
	if err != nil {
		return nil, notFound(err, "area", id)
	}
	return &a, nil
}

// ListAreas returns the areas of a project ordered by ID.
func (s *Store) ListAreas(ctx context.Context, projectID int64) ([]Area, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, project_id, name FROM areas WHERE project_id = ? ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying areas: %w", err)
	}
	defer rows.Close()

	var out []Area
	for rows.Next() {
		var a Area
		if err := rows.Scan(&a.ID, &a.ProjectID, &a.Name); err != nil {
			return nil, fmt.Errorf("scanning area: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CreateRoom inserts a room and sets its ID.
func (s *Store) CreateRoom(ctx context.Context, r *Room) error {
	r.Name = strings.TrimSpace(r.Name)
	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO rooms (area_id, name) VALUES (?, ?)`, r.AreaID, r.Name)
	if err != nil {
		return mapError(err, "inserting room")
	}
	r.ID, _ = res.LastInsertId() //nolint:errcheck // SQLite always supports LastInsertId
	return nil
}

// GetRoom returns a room by ID together with the ID of its project.
func (s *Store) GetRoom(ctx context.Context, id int64) (*Room, int64, error) {
	var r Room
	var projectID int64
	err := s.conn.QueryRowContext(ctx, `
		SELECT r.id, r.area_id, r.name, a.project_id
		FROM rooms r JOIN areas a ON a.id = r.area_id
		WHERE r.id = ?`, id,
	).Scan(&r.ID, &r.AreaID, &r.Name, &projectID)
	if err != nil {
		return nil, 0, notFound(err, "room", id)
	}
	return &r, projectID, nil
}

// ListRooms returns every room of a project ordered by ID.
func (s *Store) ListRooms(ctx context.Context, projectID int64) ([]Room, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT r.id, r.area_id, r.name
		FROM rooms r JOIN areas a ON a.id = r.area_id
		WHERE a.project_id = ? ORDER BY r.id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying rooms: %w", err)
	}
	defer rows.Close()

	var out []Room
	for rows.Next() {
		var r Room
		if err := rows.Scan(&r.ID, &r.AreaID, &r.Name); err != nil {
			return nil, fmt.Errorf("scanning room: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CreateBoard inserts an automation board and sets its ID.
func (s *Store) CreateBoard(ctx context.Context, b *Board) error {
	b.Name = strings.TrimSpace(b.Name)
	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO boards (room_id, name, notes) VALUES (?, ?, ?)`, b.RoomID, b.Name, b.Notes)
	if err != nil {
		return mapError(err, "inserting board")
	}
	b.ID, _ = res.LastInsertId() //nolint:errcheck // SQLite always supports LastInsertId
	return nil
}

// GetBoard returns a board by ID together with the ID of its project.
func (s *Store) GetBoard(ctx context.Context, id int64) (*Board, int64, error) {
	var b Board
	var projectID int64
	err := s.conn.QueryRowContext(ctx, `
		SELECT b.id, b.room_id, b.name, b.notes, a.project_id
		FROM boards b JOIN rooms r ON r.id = b.room_id JOIN areas a ON a.id = r.area_id
		WHERE b.id = ?`, id,
	).Scan(&b.ID, &b.RoomID, &b.Name, &b.Notes, &projectID)
	if err != nil {
		return nil, 0, notFound(err, "board", id)
	}
	return &b, projectID, nil
}

// ListBoards returns every board of a project ordered by ID.
func (s *Store) ListBoards(ctx context.Context, projectID int64) ([]Board, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT b.id, b.room_id, b.name, b.notes
		FROM boards b JOIN rooms r ON r.id = b.room_id JOIN areas a ON a.id = r.area_id
		WHERE a.project_id = ? ORDER BY b.id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying boards: %w", err)
	}
	defer rows.Close()

	var out []Board
	for rows.Next() {
		var b Board
		if err := rows.Scan(&b.ID, &b.RoomID, &b.Name, &b.Notes); err != nil {
			return nil, fmt.Errorf("scanning board: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
