package server

import (
	"net/http"

	"github.com/lowaak/smart-trainer/workout-builder/internal/workout"
)

// currentResponse is the editing session state returned by the /current routes
type currentResponse struct {
	Workout workout.Workout `json:"workout"`
	CanUndo bool            `json:"canUndo"`
	CanRedo bool            `json:"canRedo"`
}

func (s *Server) currentState() currentResponse {
	return currentResponse{
		Workout: s.session.Present(),
		CanUndo: s.session.CanUndo(),
		CanRedo: s.session.CanRedo(),
	}
}

func (s *Server) handleGetCurrent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.currentState())
}

// handlePutCurrent records the posted workout as the next edit. The id of the
// session is kept so a client cannot swap the workout being edited.
func (s *Server) handlePutCurrent(w http.ResponseWriter, r *http.Request) {
	var wk workout.Workout
	if !decodeJSON(w, r, &wk) {
		return
	}
	if err := wk.Segments.CheckLimits(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if id := s.session.Present().ID; id != "" {
		wk = wk.WithID(id)
	}
	if wk.Segments == nil {
		wk.Segments = workout.Segments{}
	}
	s.session.Apply(wk)
	writeJSON(w, http.StatusOK, s.currentState())
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.session.Undo(); !ok {
		writeError(w, http.StatusConflict, "nothing to undo")
		return
	}
	writeJSON(w, http.StatusOK, s.currentState())
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.session.Redo(); !ok {
		writeError(w, http.StatusConflict, "nothing to redo")
		return
	}
	writeJSON(w, http.StatusOK, s.currentState())
}
