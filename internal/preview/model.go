// Package preview is a terminal browser for presets and library workouts. It
// shows the metrics summary and zone breakdown of the selected workout.
package preview

import (
	"io"
	"strings"
	"sync"

	"github.com/lowaak/smart-trainer/workout-builder/internal/events"
	"github.com/lowaak/smart-trainer/workout-builder/internal/metrics"
	"github.com/lowaak/smart-trainer/workout-builder/internal/workout"
)

// Source tells where a listed workout comes from
type Source string

const (
	SourcePreset  Source = "preset"
	SourceLibrary Source = "library"
)

// Entry is one row of the workout list
type Entry struct {
	Workout workout.Workout
	Source  Source
}

// Selection is the workout shown in the detail pane together with its metrics
type Selection struct {
	Index   int
	Entry   Entry
	FTP     float64
	Summary metrics.Summary
}

const (
	maxLogLines = 1000
	eventBuffer = 8
)

// Model holds the state views render and notifies them when it changes
type Model struct {
	entriesEvent   *events.Stream[[]Entry]
	selectionEvent *events.Stream[Selection]
	logEvent       *events.Stream[string]
	closeEvent     *events.Stream[struct{}]
	entries        []Entry
	selection      Selection
	hasSelection   bool
	logLines       []string
	logMu          sync.RWMutex
	mu             sync.RWMutex
}

func NewModel() *Model {
	return &Model{
		entriesEvent:   events.NewStream[[]Entry](),
		selectionEvent: events.NewStream[Selection](),
		logEvent:       events.NewStream[string](),
		closeEvent:     events.NewStream[struct{}](),
		logLines:       make([]string, 0, maxLogLines),
	}
}

// ListenToEntries returns a channel receiving the workout list whenever it
// changes, and a function that stops the notifications
func (m *Model) ListenToEntries() (<-chan []Entry, func()) {
	return m.entriesEvent.Subscribe(eventBuffer)
}

// ListenToSelection returns a channel receiving every new selection
func (m *Model) ListenToSelection() (<-chan Selection, func()) {
	return m.selectionEvent.Subscribe(eventBuffer)
}

// ListenToLog returns a channel receiving each appended log line
func (m *Model) ListenToLog() (<-chan string, func()) {
	return m.logEvent.Subscribe(eventBuffer)
}

// ListenToCloseApplication returns a channel signalled when the user asks to quit
func (m *Model) ListenToCloseApplication() (<-chan struct{}, func()) {
	return m.closeEvent.Subscribe(1)
}

// RequestCloseApplication signals that the application should close
func (m *Model) RequestCloseApplication() {
	m.closeEvent.Publish(struct{}{})
}

// Entries returns a copy of the workout list
func (m *Model) Entries() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Entry(nil), m.entries...)
}

// SetEntries replaces the workout list and notifies listeners
func (m *Model) SetEntries(entries []Entry) {
	m.mu.Lock()
	m.entries = append([]Entry(nil), entries...)
	snapshot := append([]Entry(nil), m.entries...)
	m.mu.Unlock()

	m.entriesEvent.Publish(snapshot)
}

// Selection returns the current selection, false when nothing is selected
func (m *Model) Selection() (Selection, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.selection, m.hasSelection
}

// SetSelection records the selected workout and notifies listeners
func (m *Model) SetSelection(sel Selection) {
	m.mu.Lock()
	m.selection = sel
	m.hasSelection = true
	m.mu.Unlock()

	m.selectionEvent.Publish(sel)
}

// ClearSelection drops the selection, used when the list becomes empty
func (m *Model) ClearSelection() {
	m.mu.Lock()
	m.selection = Selection{Index: -1}
	m.hasSelection = false
	m.mu.Unlock()

	m.selectionEvent.Publish(Selection{Index: -1})
}

// AppendLog adds a line to the log buffer, dropping the oldest beyond maxLogLines
func (m *Model) AppendLog(line string) {
	line = strings.TrimRight(line, "\r\n")
	m.logMu.Lock()
	m.logLines = append(m.logLines, line)
	if len(m.logLines) > maxLogLines {
		m.logLines = append(m.logLines[:0], m.logLines[len(m.logLines)-maxLogLines:]...)
	}
	m.logMu.Unlock()

	m.logEvent.Publish(line)
}

// GetLogTail returns up to n of the most recent log lines, oldest first
func (m *Model) GetLogTail(n int) []string {
	m.logMu.RLock()
	defer m.logMu.RUnlock()
	if n <= 0 {
		return nil
	}
	start := len(m.logLines) - n
	if start < 0 {
		start = 0
	}
	return append([]string(nil), m.logLines[start:]...)
}

// LogWriter returns an io.Writer feeding the log buffer, for use as a
// *log.Logger output
func (m *Model) LogWriter() io.Writer {
	return logWriter{model: m}
}

type logWriter struct {
	model *Model
}

func (w logWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line != "" {
			w.model.AppendLog(line)
		}
	}
	return len(p), nil
}
