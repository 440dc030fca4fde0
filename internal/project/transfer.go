package project

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nerrad567/gray-logic-designer/internal/audit"
	"github.com/nerrad567/gray-logic-designer/internal/design"
	"github.com/nerrad567/gray-logic-designer/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-designer/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-designer/internal/roehn"
	"github.com/nerrad567/gray-logic-designer/internal/snapshot"
)

// Format selects the document format of an export or import.
type Format string

const (
	// FormatROEHN is the controller's .rwp project document.
	FormatROEHN Format = "roehn"
	// FormatSnapshot is the designer's own JSON snapshot.
	FormatSnapshot Format = "snapshot"
)

// ParseFormat accepts "roehn", "rwp" or "snapshot". Empty means ROEHN.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "roehn", "rwp":
		return FormatROEHN, nil
	case "snapshot", "json":
		return FormatSnapshot, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", design.ErrInvalid, s)
}

// Extension is the file extension of the format.
func (f Format) Extension() string {
	if f == FormatSnapshot {
		return ".json"
	}
	return ".rwp"
}

// Summary describes a finished export or import. It is also the payload of
// the MQTT events.
type Summary struct {
	ProjectID int64         `json:"project_id"`
	Project   string        `json:"project"`
	Format    Format        `json:"format"`
	Counts    design.Counts `json:"counts"`
	Skipped   []roehn.Skip  `json:"skipped,omitempty"`
	At        time.Time     `json:"at"`
}

// Export writes a project to w in the given format.
//
// A ROEHN export never fails on a single circuit, link, keypad or scene:
// those are left out, logged and listed in Summary.Skipped.
func (s *Service) Export(ctx context.Context, projectID int64, format Format, w io.Writer) (*Summary, error) {
	start := time.Now()
	sum, err := s.export(ctx, projectID, format, w)
	if err != nil {
		s.metrics.ObserveRun("export", string(format), "error")
		return nil, err
	}
	s.metrics.ObserveRun("export", string(format), "ok")
	s.finished(ctx, mqtt.EventExported, "", sum, time.Since(start))
	return sum, nil
}

func (s *Service) export(ctx context.Context, projectID int64, format Format, w io.Writer) (*Summary, error) {
	g, err := s.Graph(ctx, projectID)
	if err != nil {
		return nil, err
	}
	sum := &Summary{
		ProjectID: projectID,
		Project:   g.Project.Name,
		Format:    format,
		Counts:    g.Counts(),
		At:        s.opts.Now().UTC(),
	}

	switch format {
	case FormatROEHN:
		doc, report, err := roehn.Compile(g, s.opts, s.logger)
		if err != nil {
			return nil, err
		}
		if err := roehn.Encode(w, doc); err != nil {
			return nil, err
		}
		sum.Counts = design.Counts{
			Areas:    report.Areas,
			Rooms:    report.Rooms,
			Boards:   report.Boards,
			Circuits: report.Circuits,
			Modules:  report.Modules,
			Links:    report.Links,
			Keypads:  report.Keypads,
			Scenes:   report.Scenes,
		}
		sum.Skipped = report.Skipped
		for _, sk := range report.Skipped {
			s.metrics.ObserveSkipped(sk.Entity.String(), 1)
		}
	case FormatSnapshot:
		if err := snapshot.Encode(w, snapshot.New(g, sum.At)); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown format %q", design.ErrInvalid, format)
	}

	s.logger.Info("project exported", "project_id", projectID, "format", string(format),
		"circuits", sum.Counts.Circuits, "links", sum.Counts.Links, "skipped", len(sum.Skipped))
	return sum, nil
}

// Import parses a document and stores it as a new project owned by
// ownerID. Nothing is stored unless the whole document is accepted.
func (s *Service) Import(ctx context.Context, ownerID string, format Format, r io.Reader) (*design.Graph, *Summary, error) {
	start := time.Now()
	g, err := s.importDocument(ctx, ownerID, format, r)
	if err != nil {
		s.metrics.ObserveRun("import", string(format), "error")
		s.logger.Warn("import rejected", "format", string(format), "error", err)
		return nil, nil, err
	}
	s.metrics.ObserveRun("import", string(format), "ok")

	sum := &Summary{
		ProjectID: g.Project.ID,
		Project:   g.Project.Name,
		Format:    format,
		Counts:    g.Counts(),
		At:        s.opts.Now().UTC(),
	}
	s.logger.Info("project imported", "project_id", g.Project.ID, "format", string(format),
		"circuits", sum.Counts.Circuits, "modules", sum.Counts.Modules, "links", sum.Counts.Links)
	s.finished(ctx, mqtt.EventImported, ownerID, sum, time.Since(start))
	return g, sum, nil
}

func (s *Service) importDocument(ctx context.Context, ownerID string, format Format, r io.Reader) (*design.Graph, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	var (
		parsed *design.Graph
		err    error
	)
	switch format {
	case FormatROEHN:
		parsed, err = parseROEHN(buf.Bytes(), s.logger)
	case FormatSnapshot:
		parsed, err = snapshot.Parse(buf.Bytes(), snapshot.Options{Reserved: s.reserved, Logger: s.logger})
	default:
		err = fmt.Errorf("%w: unknown format %q", design.ErrInvalid, format)
	}
	if err != nil {
		return nil, err
	}
	return s.store.CreateGraph(ctx, ownerID, parsed)
}

func parseROEHN(data []byte, logger Logger) (*design.Graph, error) {
	doc, _, err := roehn.Decode(data)
	if err != nil {
		if errors.Is(err, design.ErrMalformedDocument) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", design.ErrMalformedDocument, err)
	}
	return roehn.Parse(doc, logger)
}

// finished publishes the event, statistics and transfer log entry of a
// successful run. Failures here are logged and never fail the run.
func (s *Service) finished(ctx context.Context, event, userID string, sum *Summary, took time.Duration) {
	direction := audit.ActionExport
	if event == mqtt.EventImported {
		direction = audit.ActionImport
	}
	if s.events != nil {
		if err := s.events.PublishEvent(sum.ProjectID, event, sum); err != nil {
			s.logger.Warn("publishing project event", "event", event, "project_id", sum.ProjectID, "error", err)
		}
	}
	if s.stats != nil {
		s.stats.WriteCompileStats(influxdb.RunStats{
			ProjectID: sum.ProjectID,
			Direction: direction,
			Format:    string(sum.Format),
			Circuits:  sum.Counts.Circuits,
			Modules:   sum.Counts.Modules,
			Links:     sum.Counts.Links,
			Keypads:   sum.Counts.Keypads,
			Scenes:    sum.Counts.Scenes,
			Skipped:   len(sum.Skipped),
			Duration:  took,
			At:        sum.At,
		})
	}
	if s.history != nil {
		e := &audit.Entry{
			ProjectID: sum.ProjectID,
			Project:   sum.Project,
			Action:    direction,
			Format:    string(sum.Format),
			UserID:    userID,
			Skipped:   len(sum.Skipped),
			Details: map[string]any{
				"counts":      sum.Counts,
				"duration_ms": took.Milliseconds(),
			},
			CreatedAt: sum.At,
		}
		if err := s.history.Create(ctx, e); err != nil {
			s.logger.Warn("recording transfer", "project_id", sum.ProjectID, "action", direction, "error", err)
		}
	}
}

// History lists the transfer log of a project, most recent first.
func (s *Service) History(ctx context.Context, projectID int64, action string, limit, offset int) (*audit.ListResult, error) {
	if s.history == nil {
		return &audit.ListResult{Entries: []audit.Entry{}, Limit: limit, Offset: offset}, nil
	}
	if action != "" && action != audit.ActionExport && action != audit.ActionImport {
		return nil, fmt.Errorf("%w: unknown action %q", design.ErrInvalid, action)
	}
	return s.history.List(ctx, audit.Filter{ProjectID: projectID, Action: action, Limit: limit, Offset: offset})
}
