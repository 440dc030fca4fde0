package api

import (
	"net/http"

	"github.com/nerrad567/gray-logic-designer/internal/allocation"
	"github.com/nerrad567/gray-logic-designer/internal/design"
)

type createCircuitRequest struct {
	RoomID     int64              `json:"room_id"`
	Identifier string             `json:"identifier"`
	Name       string             `json:"name"`
	Kind       design.CircuitKind `json:"kind"`
	Dimmable   bool               `json:"dimmable"`
	Power      float64            `json:"power"`
}

type createModuleRequest struct {
	BoardID        *int64            `json:"board_id"`
	Name           string            `json:"name"`
	Kind           design.ModuleKind `json:"kind"`
	NetworkAddress int               `json:"network_address"`
	DeviceID       int               `json:"device_id"`
}

// linkRequest binds a circuit to a module channel. Channel 0 picks the
// first free channel.
type linkRequest struct {
	ModuleID int64 `json:"module_id"`
	Channel  int   `json:"channel"`
}

func (s *Server) handleListCircuits(w http.ResponseWriter, r *http.Request) {
	circuits, err := s.svc.Store().ListCircuits(r.Context(), projectFrom(r.Context()).ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeList(w, "circuits", circuits)
}

func (s *Server) handleCreateCircuit(w http.ResponseWriter, r *http.Request) {
	var req createCircuitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !s.roomInProject(w, r, req.RoomID) {
		return
	}
	c := design.Circuit{
		RoomID:     req.RoomID,
		Identifier: req.Identifier,
		Name:       req.Name,
		Kind:       req.Kind,
		Dimmable:   req.Dimmable,
		Power:      req.Power,
	}
	if err := s.svc.CreateCircuit(r.Context(), &c); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// circuit loads {circuitID} and checks it belongs to the URL's project.
func (s *Server) circuit(w http.ResponseWriter, r *http.Request) (*design.Circuit, bool) {
	id, ok := pathID(w, r, "circuitID")
	if !ok {
		return nil, false
	}
	c, err := s.svc.Store().GetCircuit(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	return c, s.inProject(w, r, c.ProjectID, "circuit")
}

func (s *Server) handleGetCircuit(w http.ResponseWriter, r *http.Request) {
	c, ok := s.circuit(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCircuit(w http.ResponseWriter, r *http.Request) {
	c, ok := s.circuit(w, r)
	if !ok {
		return
	}
	if err := s.svc.DeleteCircuit(r.Context(), c.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLinkCircuit(w http.ResponseWriter, r *http.Request) {
	c, ok := s.circuit(w, r)
	if !ok {
		return
	}
	var req linkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	link, err := s.svc.LinkCircuit(r.Context(), c.ID, req.ModuleID, req.Channel)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

func (s *Server) handleUnlinkCircuit(w http.ResponseWriter, r *http.Request) {
	c, ok := s.circuit(w, r)
	if !ok {
		return
	}
	if err := s.svc.UnlinkCircuit(r.Context(), c.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListModules(w http.ResponseWriter, r *http.Request) {
	modules, err := s.svc.Store().ListModules(r.Context(), projectFrom(r.Context()).ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeList(w, "modules", modules)
}

func (s *Server) handleCreateModule(w http.ResponseWriter, r *http.Request) {
	var req createModuleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	m := design.Module{
		ProjectID:      projectFrom(r.Context()).ID,
		BoardID:        req.BoardID,
		Name:           req.Name,
		Kind:           req.Kind,
		NetworkAddress: req.NetworkAddress,
		DeviceID:       req.DeviceID,
	}
	if err := s.svc.CreateModule(r.Context(), &m); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) module(w http.ResponseWriter, r *http.Request) (*design.Module, bool) {
	id, ok := pathID(w, r, "moduleID")
	if !ok {
		return nil, false
	}
	m, err := s.svc.Store().GetModule(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	return m, s.inProject(w, r, m.ProjectID, "module")
}

func (s *Server) handleGetModule(w http.ResponseWriter, r *http.Request) {
	m, ok := s.module(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleDeleteModule(w http.ResponseWriter, r *http.Request) {
	m, ok := s.module(w, r)
	if !ok {
		return
	}
	if err := s.svc.DeleteModule(r.Context(), m.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleFreeChannels lists the unoccupied channels of a module.
func (s *Server) handleFreeChannels(w http.ResponseWriter, r *http.Request) {
	m, ok := s.module(w, r)
	if !ok {
		return
	}
	links, err := s.svc.Store().ListLinks(r.Context(), m.ProjectID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	free := allocation.FreeChannels(*m, links)
	if free == nil {
		free = []int{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"module_id": m.ID,
		"capacity":  m.Kind.Channels(),
		"free":      free,
	})
}

func (s *Server) handleListLinks(w http.ResponseWriter, r *http.Request) {
	links, err := s.svc.Store().ListLinks(r.Context(), projectFrom(r.Context()).ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeList(w, "links", links)
}
