// Package audit records the export and import runs of design projects so
// an integrator can see which document was handed to a controller and when.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// Actions recorded in the transfer log.
const (
	ActionExport = "export"
	ActionImport = "import"
)

// Entry is a single transfer run.
type Entry struct {
	ID        string         `json:"id"`
	ProjectID int64          `json:"project_id"`
	Project   string         `json:"project"`
	Action    string         `json:"action"`
	Format    string         `json:"format"`
	UserID    string         `json:"user_id,omitempty"`
	Skipped   int            `json:"skipped"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Filter controls which entries to return.
type Filter struct {
	ProjectID int64  // required
	Action    string // optional: export or import
	Limit     int    // default 50, max 200
	Offset    int    // pagination offset
}

// ListResult contains the paginated entries.
type ListResult struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

// Repository defines the interface for transfer log operations.
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	List(ctx context.Context, filter Filter) (*ListResult, error)
}

// SQLiteRepository stores the transfer log in the transfer_log table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new transfer log repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts an entry. The ID and CreatedAt are generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		e.ID = "xfr-" + uuid.NewString()[:8]
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	var detailsJSON *string
	if e.Details != nil {
		b, err := json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("marshalling transfer details: %w", err)
		}
		s := string(b)
		detailsJSON = &s
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transfer_log (id, project_id, project, action, format, user_id, skipped, details, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ProjectID, e.Project, e.Action, e.Format,
		nullableString(e.UserID), e.Skipped, detailsJSON,
		e.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting transfer entry: %w", err)
	}
	return nil
}

// nullableString returns nil for empty strings, or the string otherwise.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// List returns the entries of one project, most recent first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) (*ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 { //nolint:mnd // max page size
		filter.Limit = 200
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	// An empty action matches every row.
	const where = `WHERE project_id = ? AND (? = '' OR action = ?)`
	args := []any{filter.ProjectID, filter.Action, filter.Action}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transfer_log `+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting transfer entries: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, project_id, project, action, format, user_id, skipped, details, created_at
		 FROM transfer_log `+where+` ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`,
		append(args, filter.Limit, filter.Offset)...,
	)
	if err != nil {
		return nil, fmt.Errorf("querying transfer entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e           Entry
			userID      sql.NullString
			detailsJSON sql.NullString
			createdAt   string
		)
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.Project, &e.Action, &e.Format,
			&userID, &e.Skipped, &detailsJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning transfer entry: %w", err)
		}
		e.UserID = userID.String
		if detailsJSON.Valid && detailsJSON.String != "" {
			var details map[string]any
			if json.Unmarshal([]byte(detailsJSON.String), &details) == nil {
				e.Details = details
			}
		}
		t, err := time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing transfer timestamp %q: %w", createdAt, err)
		}
		e.CreatedAt = t
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transfer entries: %w", err)
	}

	return &ListResult{
		Entries: entries,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	}, nil
}
