package api

import (
	"net/http"
	"sort"

	"github.com/nerrad567/gray-logic-designer/internal/design"
	"github.com/nerrad567/gray-logic-designer/internal/roehn"
)

type createProjectRequest struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// handleListProjects lists the caller's projects, or every project for admins.
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.svc.ListProjects(r.Context(), principalFrom(r.Context()).OwnerFilter())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeList(w, "projects", projects)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p := design.Project{Name: req.Name, Status: req.Status, OwnerID: principalFrom(r.Context()).Subject}
	if err := s.svc.CreateProject(r.Context(), &p); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, projectFrom(r.Context()))
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteProject(r.Context(), projectFrom(r.Context()).ID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetGraph returns the whole project tree with its counts.
func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	g, err := s.svc.Graph(r.Context(), projectFrom(r.Context()).ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"graph": g, "counts": g.Counts()})
}

type controllerInfo struct {
	Model          string `json:"model"`
	RosterCapacity int    `json:"roster_capacity"`
	SceneCapacity  int    `json:"scene_capacity"`
}

// handleCatalog lists the kinds, models and icons a client can choose from.
func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	modules := make([]design.ModuleSpec, 0, len(design.ModuleKinds))
	for _, k := range design.ModuleKinds {
		modules = append(modules, k.Spec())
	}
	controllers := make([]controllerInfo, 0, len(roehn.Controllers))
	for _, c := range roehn.Controllers {
		controllers = append(controllers, controllerInfo{c.Model, c.RosterCapacity, c.SceneCapacity})
	}
	icons := make([]string, 0, len(roehn.Icons))
	for name := range roehn.Icons {
		icons = append(icons, name)
	}
	sort.Strings(icons)

	writeJSON(w, http.StatusOK, map[string]any{
		"circuit_kinds":        design.CircuitKinds,
		"modules":              modules,
		"controllers":          controllers,
		"keypad_button_counts": design.KeypadButtonCounts,
		"keypad_icons":         icons,
	})
}
