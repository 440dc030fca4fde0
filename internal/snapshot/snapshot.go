package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/nerrad567/gray-logic-designer/internal/design"
)

// Format header values of the current layout.
const (
	Format  = "gray-logic-designer/snapshot"
	Version = 1
)

// Logger is the logging interface used while reading snapshots.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Document is a snapshot in the current layout.
type Document struct {
	Format     string    `json:"format"`
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	design.Graph
}

// New wraps a graph in a snapshot document.
func New(g *design.Graph, now time.Time) *Document {
	return &Document{
		Format:     Format,
		Version:    Version,
		ExportedAt: now.UTC(),
		Graph:      *g,
	}
}

// Encode writes the document as indented JSON.
func Encode(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return nil
}
