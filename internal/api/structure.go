package api

import (
	"net/http"

	"github.com/nerrad567/gray-logic-designer/internal/design"
)

type createAreaRequest struct {
	Name string `json:"name"`
}

type createRoomRequest struct {
	AreaID int64  `json:"area_id"`
	Name   string `json:"name"`
}

type createBoardRequest struct {
	RoomID int64  `json:"room_id"`
	Name   string `json:"name"`
	Notes  string `json:"notes"`
}

func (s *Server) handleListAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := s.svc.Store().ListAreas(r.Context(), projectFrom(r.Context()).ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeList(w, "areas", areas)
}

func (s *Server) handleCreateArea(w http.ResponseWriter, r *http.Request) {
	var req createAreaRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a := design.Area{ProjectID: projectFrom(r.Context()).ID, Name: req.Name}
	if err := s.svc.CreateArea(r.Context(), &a); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.svc.Store().ListRooms(r.Context(), projectFrom(r.Context()).ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeList(w, "rooms", rooms)
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	area, err := s.svc.Store().GetArea(r.Context(), req.AreaID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !s.inProject(w, r, area.ProjectID, "area") {
		return
	}
	room := design.Room{AreaID: req.AreaID, Name: req.Name}
	if err := s.svc.CreateRoom(r.Context(), &room); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

func (s *Server) handleListBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := s.svc.Store().ListBoards(r.Context(), projectFrom(r.Context()).ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeList(w, "boards", boards)
}

func (s *Server) handleCreateBoard(w http.ResponseWriter, r *http.Request) {
	var req createBoardRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !s.roomInProject(w, r, req.RoomID) {
		return
	}
	b := design.Board{RoomID: req.RoomID, Name: req.Name, Notes: req.Notes}
	if err := s.svc.CreateBoard(r.Context(), &b); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// inProject answers 404 when an entity of the URL's project refers to
// another project.
func (s *Server) inProject(w http.ResponseWriter, r *http.Request, got int64, what string) bool {
	if got != projectFrom(r.Context()).ID {
		writeNotFound(w, what+" not found in project")
		return false
	}
	return true
}

func (s *Server) roomInProject(w http.ResponseWriter, r *http.Request, roomID int64) bool {
	projectID, err := s.svc.ProjectOfRoom(r.Context(), roomID)
	if err != nil {
		writeServiceError(w, err)
		return false
	}
	return s.inProject(w, r, projectID, "room")
}

// writeList writes {key: items, count: n}, never with a null list.
func writeList[T any](w http.ResponseWriter, key string, items []T) {
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, map[string]any{key: items, "count": len(items)})
}
