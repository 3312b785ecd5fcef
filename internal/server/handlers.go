package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lowaak/smart-trainer/workout-builder/internal/workout"
	"github.com/lowaak/smart-trainer/workout-builder/internal/zones"
	"github.com/lowaak/smart-trainer/workout-builder/internal/zwo"
)

// segmentsRequest is the body of the timeline and summary endpoints
type segmentsRequest struct {
	Segments workout.Segments `json:"segments"`
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	var req segmentsRequest
	if !decodeSegments(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Timeline(req.Segments))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ftp, err := s.ftpParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req segmentsRequest
	if !decodeSegments(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Summary(req.Segments, ftp))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var wk workout.Workout
	if !decodeJSON(w, r, &wk) {
		return
	}
	data, err := zwo.Encode(wk)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("Content-Type", zwo.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, zwo.FileName(wk.Name)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading body: "+err.Error())
		return
	}
	wk, err := zwo.Decode(data)
	var parseErr *zwo.ParseError
	if errors.As(err, &parseErr) {
		writeError(w, http.StatusBadRequest, parseErr.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Printf("Server: imported %q with %d segments", wk.Name, len(wk.Segments))
	writeJSON(w, http.StatusOK, wk)
}

// zoneResponse is one row of the zone table
type zoneResponse struct {
	Name       string  `json:"name"`
	Label      string  `json:"label"`
	MinPercent float64 `json:"minPercent"`
	MaxPercent float64 `json:"maxPercent"`
	Color      string  `json:"color"`
}

func (s *Server) handleZones(w http.ResponseWriter, r *http.Request) {
	out := make([]zoneResponse, 0, zones.Count)
	for _, z := range zones.Table {
		out = append(out, zoneResponse(z))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, workout.Presets())
}

func (s *Server) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	preset, ok := workout.PresetByID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "preset not found")
		return
	}
	writeJSON(w, http.StatusOK, preset)
}

// ftpParam reads the optional ftp query parameter, falling back to the configured FTP
func (s *Server) ftpParam(r *http.Request) (float64, error) {
	raw := r.URL.Query().Get("ftp")
	if raw == "" {
		return s.defaultFTP, nil
	}
	ftp, err := strconv.ParseFloat(raw, 64)
	if err != nil || ftp <= 0 {
		return 0, fmt.Errorf("ftp must be a positive number, got %q", raw)
	}
	return ftp, nil
}

// decodeJSON reads the request body into v, writing a 400 response on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		var verr *workout.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Error())
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

// decodeSegments is decodeJSON followed by the segment limit check
func decodeSegments(w http.ResponseWriter, r *http.Request, req *segmentsRequest) bool {
	if !decodeJSON(w, r, req) {
		return false
	}
	if err := req.Segments.CheckLimits(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
