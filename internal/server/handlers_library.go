package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lowaak/smart-trainer/workout-builder/internal/library"
	"github.com/lowaak/smart-trainer/workout-builder/internal/workout"
)

const libraryEventBuffer = 16

func (s *Server) handleListLibrary(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Printf("Server: listing library failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleSaveLibrary(w http.ResponseWriter, r *http.Request) {
	var wk workout.Workout
	if !decodeJSON(w, r, &wk) {
		return
	}
	saved, err := s.store.Save(r.Context(), wk)
	var verr *workout.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.logger.Printf("Server: saving %q failed: %v", wk.Name, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleGetLibrary(w http.ResponseWriter, r *http.Request) {
	wk, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wk)
}

func (s *Server) handleDeleteLibrary(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleLibraryEvents streams library updates as server-sent events until the
// client goes away
func (s *Server) handleLibraryEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	updates, cancel := s.libraryEvents.Subscribe(libraryEventBuffer)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			data, err := json.Marshal(u)
			if err != nil {
				s.logger.Printf("Server: encoding library event failed: %v", err)
				continue
			}
			fmt.Fprintf(w, "event: library\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, library.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.logger.Printf("Server: library error: %v", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}
