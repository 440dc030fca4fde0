package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-designer/internal/design"
)

type createKeypadRequest struct {
	RoomID         int64                 `json:"room_id"`
	Name           string                `json:"name"`
	Model          string                `json:"model"`
	Color          string                `json:"color"`
	ButtonColor    string                `json:"button_color"`
	ButtonCount    int                   `json:"button_count"`
	NetworkAddress int                   `json:"network_address"`
	DeviceID       int                   `json:"device_id"`
	Notes          string                `json:"notes"`
	Buttons        []design.KeypadButton `json:"buttons"`
}

type buttonCountRequest struct {
	ButtonCount int `json:"button_count"`
}

type createSceneRequest struct {
	RoomID  int64           `json:"room_id"`
	Name    string          `json:"name"`
	Movers  bool            `json:"movers"`
	Actions []design.Action `json:"actions"`
}

func (s *Server) handleListKeypads(w http.ResponseWriter, r *http.Request) {
	keypads, err := s.svc.Store().ListKeypads(r.Context(), projectFrom(r.Context()).ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeList(w, "keypads", keypads)
}

func (s *Server) handleCreateKeypad(w http.ResponseWriter, r *http.Request) {
	var req createKeypadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !s.roomInProject(w, r, req.RoomID) {
		return
	}
	k := design.Keypad{
		RoomID:         req.RoomID,
		Name:           req.Name,
		Model:          req.Model,
		Color:          req.Color,
		ButtonColor:    req.ButtonColor,
		ButtonCount:    req.ButtonCount,
		NetworkAddress: req.NetworkAddress,
		DeviceID:       req.DeviceID,
		Notes:          req.Notes,
		Buttons:        req.Buttons,
	}
	if err := s.svc.CreateKeypad(r.Context(), &k); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, k)
}

func (s *Server) keypad(w http.ResponseWriter, r *http.Request) (*design.Keypad, bool) {
	id, ok := pathID(w, r, "keypadID")
	if !ok {
		return nil, false
	}
	k, err := s.svc.GetKeypad(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	return k, s.inProject(w, r, k.ProjectID, "keypad")
}

func (s *Server) handleGetKeypad(w http.ResponseWriter, r *http.Request) {
	k, ok := s.keypad(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, k)
}

func (s *Server) handleDeleteKeypad(w http.ResponseWriter, r *http.Request) {
	k, ok := s.keypad(w, r)
	if !ok {
		return
	}
	if err := s.svc.DeleteKeypad(r.Context(), k.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetButtonCount(w http.ResponseWriter, r *http.Request) {
	k, ok := s.keypad(w, r)
	if !ok {
		return
	}
	var req buttonCountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := s.svc.SetKeypadButtonCount(r.Context(), k.ID, req.ButtonCount)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleUpdateButton replaces the editable fields of one button. The
// keypad and ordinal come from the URL.
func (s *Server) handleUpdateButton(w http.ResponseWriter, r *http.Request) {
	k, ok := s.keypad(w, r)
	if !ok {
		return
	}
	ordinal, err := strconv.Atoi(chi.URLParam(r, "ordinal"))
	if err != nil {
		writeBadRequest(w, "invalid ordinal")
		return
	}
	var b design.KeypadButton
	if !decodeJSON(w, r, &b) {
		return
	}
	b.KeypadID = k.ID
	b.Ordinal = ordinal
	if err := s.svc.UpdateKeypadButton(r.Context(), &b); err != nil {
		writeServiceError(w, err)
		return
	}
	updated, err := s.svc.GetKeypad(r.Context(), k.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	for _, stored := range updated.Buttons {
		if stored.Ordinal == ordinal {
			writeJSON(w, http.StatusOK, stored)
			return
		}
	}
	writeNotFound(w, "button not found")
}

func (s *Server) handleListScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := s.svc.Store().ListScenes(r.Context(), projectFrom(r.Context()).ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeList(w, "scenes", scenes)
}

func (s *Server) handleCreateScene(w http.ResponseWriter, r *http.Request) {
	var req createSceneRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !s.roomInProject(w, r, req.RoomID) {
		return
	}
	sc := design.Scene{RoomID: req.RoomID, Name: req.Name, Movers: req.Movers, Actions: req.Actions}
	if err := s.svc.CreateScene(r.Context(), &sc); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sc)
}

func (s *Server) scene(w http.ResponseWriter, r *http.Request) (*design.Scene, bool) {
	id, ok := pathID(w, r, "sceneID")
	if !ok {
		return nil, false
	}
	sc, err := s.svc.GetScene(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	if !s.roomInProject(w, r, sc.RoomID) {
		return nil, false
	}
	return sc, true
}

func (s *Server) handleGetScene(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.scene(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (s *Server) handleDeleteScene(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.scene(w, r)
	if !ok {
		return
	}
	if err := s.svc.DeleteScene(r.Context(), sc.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
