package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/smart-trainer/workout-builder/internal/history"
	"github.com/lowaak/smart-trainer/workout-builder/internal/library"
	"github.com/lowaak/smart-trainer/workout-builder/internal/metrics"
	"github.com/lowaak/smart-trainer/workout-builder/internal/workout"
)

type testEnv struct {
	server *Server
	engine *metrics.Engine
	store  library.Store
	logs   *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logs := &bytes.Buffer{}
	logger := log.New(logs, "", 0)

	engine, err := metrics.NewEngine(16, logger)
	require.NoError(t, err)
	store, err := library.NewFileStore(t.TempDir(), logger)
	require.NoError(t, err)
	session := history.New(workout.New("", ""), logger)

	s := New(engine, store, session, 250, logger)
	t.Cleanup(s.Close)
	return &testEnv{server: s, engine: engine, store: store, logs: logs}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

const steadySegments = `{"segments":[{"type":"steady","duration":300,"powerPercent":75}]}`

func TestHandleTimeline(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/timeline", steadySegments)
	require.Equal(t, http.StatusOK, rec.Code)

	points := decodeBody[[]metrics.TimelinePoint](t, rec)
	require.Len(t, points, 1)
	assert.Equal(t, 5.0, points[0].EndMinute)
	assert.Equal(t, 75.0, points[0].PowerPercent)
}

func TestHandleTimeline_Empty(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/timeline", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandleSummary(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/summary", steadySegments)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decodeBody[metrics.Summary](t, rec)
	assert.Equal(t, 300, summary.TotalDurationSeconds)
	assert.Equal(t, 188, summary.NP, "default FTP 250 at 75%")

	rec = env.do(t, http.MethodPost, "/api/v1/summary?ftp=200", steadySegments)
	require.Equal(t, http.StatusOK, rec.Code)
	summary = decodeBody[metrics.Summary](t, rec)
	assert.Equal(t, 150, summary.NP)
	assert.Len(t, summary.ZoneBreakdown, 6)
}

func TestHandleSummary_BadInput(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/v1/summary?ftp=abc", steadySegments).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/v1/summary?ftp=-5", steadySegments).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/v1/summary", `{"segments":`).Code)

	rec := env.do(t, http.MethodPost, "/api/v1/summary", `{"segments":[{"type":"sprint","duration":10}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown segment type")
}

func TestHandleSegments_OutOfRange(t *testing.T) {
	env := newTestEnv(t)
	bodies := []string{
		`{"segments":[{"type":"steady","duration":2000000000,"powerPercent":80}]}`,
		`{"segments":[{"type":"steady","duration":-300,"powerPercent":75}]}`,
		`{"segments":[{"type":"interval","repetitions":4611686018427387903,"onDuration":3,"offDuration":3}]}`,
	}
	for _, body := range bodies {
		for _, path := range []string{"/api/v1/summary", "/api/v1/timeline", "/api/v1/current"} {
			method := http.MethodPost
			if path == "/api/v1/current" {
				method = http.MethodPut
			}
			rec := env.do(t, method, path, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, "%s %s", path, body)
			assert.Contains(t, rec.Body.String(), "invalid")
		}
	}
	assert.Equal(t, 0, env.engine.CachedSummaries())
}

func TestHandleImport_OutOfRange(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/import", `<workout_file><workout><SteadyState Duration="-300" Power="0.75"/></workout></workout_file>`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "parsing workout file")
}

func TestHandleExportImport(t *testing.T) {
	env := newTestEnv(t)

	body := `{"name":"Sweet / Spot","description":"d","segments":[
		{"type":"warmup","duration":600,"startPowerPercent":50,"endPowerPercent":75},
		{"type":"interval","repetitions":3,"onDuration":300,"offDuration":120,"powerTarget1Percent":90,"powerTarget2Percent":55,"cadence":95}
	]}`
	rec := env.do(t, http.MethodPost, "/api/v1/export", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="Sweet_Spot.zwo"`)
	xmlDoc := rec.Body.String()
	assert.Contains(t, xmlDoc, `<IntervalsT Repeat="3"`)

	rec = env.do(t, http.MethodPost, "/api/v1/import", xmlDoc)
	require.Equal(t, http.StatusOK, rec.Code)
	imported := decodeBody[workout.Workout](t, rec)
	assert.Equal(t, "Sweet / Spot", imported.Name)
	require.Len(t, imported.Segments, 2)
	assert.Equal(t, workout.Interval{Repetitions: 3, OnDuration: 300, OffDuration: 120, PowerTarget1Percent: 90, PowerTarget2Percent: 55, Cadence: 95}, imported.Segments[1])
}

func TestHandleImport_BadXML(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/import", "<workout_file><name>")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "parsing workout file")
}

func TestHandlePresetsAndZones(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/presets", "")
	require.Equal(t, http.StatusOK, rec.Code)
	presets := decodeBody[[]workout.Workout](t, rec)
	assert.Len(t, presets, len(workout.Presets()))

	rec = env.do(t, http.MethodGet, "/api/v1/presets/"+workout.PresetVO2Max4x4, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, workout.PresetVO2Max4x4, decodeBody[workout.Workout](t, rec).ID)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/v1/presets/nope", "").Code)

	rec = env.do(t, http.MethodGet, "/api/v1/zones", "")
	require.Equal(t, http.StatusOK, rec.Code)
	zones := decodeBody[[]zoneResponse](t, rec)
	require.Len(t, zones, 6)
	assert.Equal(t, "#F4C01A", zones[3].Color)
}

func TestHandleLibrary(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/library", `{"name":"Hour","segments":[{"type":"steady","duration":3600,"powerPercent":65}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	saved := decodeBody[workout.Workout](t, rec)
	require.NotEmpty(t, saved.ID)

	rec = env.do(t, http.MethodPost, "/api/v1/library", `{"name":"hour","segments":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, saved.ID, decodeBody[workout.Workout](t, rec).ID)

	rec = env.do(t, http.MethodGet, "/api/v1/library", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]workout.Workout](t, rec), 1)

	rec = env.do(t, http.MethodGet, "/api/v1/library/"+saved.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hour", decodeBody[workout.Workout](t, rec).Name)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/v1/library/"+saved.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/v1/library/"+saved.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/api/v1/library/"+saved.ID, "").Code)
}

func TestHandleLibrary_NameRequired(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/library", `{"name":"","segments":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "name")
}

func TestHandleCurrent_UndoRedo(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/current", "")
	require.Equal(t, http.StatusOK, rec.Code)
	initial := decodeBody[currentResponse](t, rec)
	assert.False(t, initial.CanUndo)

	rec = env.do(t, http.MethodPost, "/api/v1/current/undo", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/v1/current", `{"id":"client-id","name":"Edit","segments":[{"type":"steady","duration":60,"powerPercent":50}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	edited := decodeBody[currentResponse](t, rec)
	assert.Equal(t, initial.Workout.ID, edited.Workout.ID, "session id is kept")
	assert.True(t, edited.CanUndo)
	assert.Len(t, edited.Workout.Segments, 1)

	rec = env.do(t, http.MethodPost, "/api/v1/current/undo", "")
	require.Equal(t, http.StatusOK, rec.Code)
	undone := decodeBody[currentResponse](t, rec)
	assert.Empty(t, undone.Workout.Segments)
	assert.True(t, undone.CanRedo)

	rec = env.do(t, http.MethodPost, "/api/v1/current/redo", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Edit", decodeBody[currentResponse](t, rec).Workout.Name)

	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/api/v1/current/redo", "").Code)
}

func TestHandleLibraryEvents(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.server)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/v1/library/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return env.server.libraryEvents.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	saved, err := env.store.Save(context.Background(), workout.New("Streamed", "").Append(workout.Steady{Duration: 60, PowerPercent: 50}))
	require.NoError(t, err)

	reader := bufio.NewReader(resp.Body)
	var data string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: ") {
			data = strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			break
		}
	}
	var update library.Update
	require.NoError(t, json.Unmarshal([]byte(data), &update))
	assert.Equal(t, library.Update{Kind: library.UpdateSaved, WorkoutID: saved.ID, Name: "Streamed"}, update)
}

func TestRequestLogging(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodGet, "/api/v1/zones", "")
	assert.Contains(t, env.logs.String(), "Server: GET /api/v1/zones -> 200")
}

func TestRecover(t *testing.T) {
	var logs bytes.Buffer
	handler := Recover(log.New(&logs, "", 0))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, logs.String(), "PANIC")
}

func TestCORS_Preflight(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodOptions, "/api/v1/summary", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.server.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
