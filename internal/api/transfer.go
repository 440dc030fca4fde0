package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/nerrad567/gray-logic-designer/internal/project"
)

// handleExport streams a project as a ROEHN document or a snapshot.
// The document is built in memory so a failure still yields a JSON error.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := project.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	p := projectFrom(r.Context())

	var buf bytes.Buffer
	sum, err := s.svc.Export(r.Context(), p.ID, format, &buf)
	if err != nil {
		s.logger.Warn("export failed", "project_id", p.ID, "format", string(format), "error", err)
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName(p.Name)+format.Extension()))
	w.Header().Set("X-Skipped", strconv.Itoa(len(sum.Skipped)))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // Best-effort write to response; connection may be closed
	buf.WriteTo(w)
}

// handleImport stores the request body as a new project owned by the caller.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	format, err := project.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	g, sum, err := s.svc.Import(r.Context(), principalFrom(r.Context()).Subject, format, r.Body)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"project": g.Project,
		"counts":  sum.Counts,
	})
}

// handleHistory lists the export and import runs of a project.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := queryInt(q.Get("limit"))
	if err != nil {
		writeBadRequest(w, "limit must be an integer")
		return
	}
	offset, err := queryInt(q.Get("offset"))
	if err != nil {
		writeBadRequest(w, "offset must be an integer")
		return
	}
	res, err := s.svc.History(r.Context(), projectFrom(r.Context()).ID, q.Get("action"), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// queryInt parses an optional integer query parameter.
func queryInt(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

// fileName keeps letters, digits, dashes and underscores of a project
// name and replaces everything else with underscores.
func fileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "project"
	}
	return b.String()
}
