package preview

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/lowaak/smart-trainer/workout-builder/internal/library"
	"github.com/lowaak/smart-trainer/workout-builder/internal/metrics"
	"github.com/lowaak/smart-trainer/workout-builder/internal/workout"
	"github.com/lowaak/smart-trainer/workout-builder/internal/zwo"
)

const (
	DefaultFTPStepWatts = 5.0
	MinFTPWatts         = 50.0
	MaxFTPWatts         = 600.0
)

// ErrNoSelection is returned by actions that need a selected workout
var ErrNoSelection = errors.New("no workout selected")

// Controller handles view events and keeps the Model up to date
type Controller struct {
	model         *Model
	engine        *metrics.Engine
	store         library.Store
	exportDir     string
	logger        *log.Logger
	mu            sync.Mutex
	ftp           float64
	cancelUpdates func()
}

// ControllerArgs holds the arguments for creating a new Controller
type ControllerArgs struct {
	Model     *Model
	Engine    *metrics.Engine
	Store     library.Store
	FTP       float64
	ExportDir string // Directory receiving exported .zwo files
	Logger    *log.Logger
}

// NewController creates a Controller. It reloads the workout list whenever
// the library changes.
func NewController(args ControllerArgs) *Controller {
	if args.Model == nil {
		panic("Controller: model cannot be nil")
	}
	if args.Engine == nil {
		panic("Controller: engine cannot be nil")
	}
	if args.Store == nil {
		panic("Controller: store cannot be nil")
	}
	if args.Logger == nil {
		panic("Controller: logger cannot be nil")
	}
	exportDir := args.ExportDir
	if exportDir == "" {
		exportDir = "."
	}

	c := &Controller{
		model:     args.Model,
		engine:    args.Engine,
		store:     args.Store,
		exportDir: exportDir,
		logger:    args.Logger,
		ftp:       clampFTP(args.FTP),
	}
	c.cancelUpdates = args.Store.OnUpdated(func(u library.Update) {
		c.logger.Printf("Library %s %q", u.Kind, u.Name)
		if err := c.Reload(context.Background()); err != nil {
			c.logger.Printf("Reload failed: %v", err)
		}
	})
	return c
}

// Reload rebuilds the workout list from the presets and the library. The
// selected workout stays selected when it is still listed.
func (c *Controller) Reload(ctx context.Context) error {
	saved, err := c.store.List(ctx)
	if err != nil {
		return fmt.Errorf("listing library: %w", err)
	}

	presets := workout.Presets()
	entries := make([]Entry, 0, len(presets)+len(saved))
	for _, p := range presets {
		entries = append(entries, Entry{Workout: p, Source: SourcePreset})
	}
	for _, w := range saved {
		entries = append(entries, Entry{Workout: w, Source: SourceLibrary})
	}
	c.model.SetEntries(entries)

	index := 0
	if sel, ok := c.model.Selection(); ok {
		index = indexOf(entries, sel.Entry)
		if index < 0 {
			index = min(sel.Index, len(entries)-1)
		}
	}
	if len(entries) == 0 {
		c.model.ClearSelection()
		return nil
	}
	c.OnWorkoutSelected(index)
	return nil
}

func indexOf(entries []Entry, target Entry) int {
	for i, e := range entries {
		if e.Source == target.Source && e.Workout.ID == target.Workout.ID {
			return i
		}
	}
	return -1
}

// OnWorkoutSelected computes the summary of the workout at index and selects it
func (c *Controller) OnWorkoutSelected(index int) {
	entries := c.model.Entries()
	if index < 0 || index >= len(entries) {
		c.logger.Printf("Invalid workout index: %d", index)
		return
	}
	ftp := c.FTP()
	entry := entries[index]
	c.model.SetSelection(Selection{
		Index:   index,
		Entry:   entry,
		FTP:     ftp,
		Summary: c.engine.Summary(entry.Workout.Segments, ftp),
	})
}

// FTP returns the FTP metrics are computed at
func (c *Controller) FTP() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ftp
}

// IncreaseFTP raises the FTP by DefaultFTPStepWatts
func (c *Controller) IncreaseFTP() {
	c.setFTP(c.FTP() + DefaultFTPStepWatts)
}

// DecreaseFTP lowers the FTP by DefaultFTPStepWatts
func (c *Controller) DecreaseFTP() {
	c.setFTP(c.FTP() - DefaultFTPStepWatts)
}

func (c *Controller) setFTP(watts float64) {
	watts = clampFTP(watts)
	c.mu.Lock()
	changed := c.ftp != watts
	c.ftp = watts
	c.mu.Unlock()
	if !changed {
		return
	}

	c.logger.Printf("FTP: %g W", watts)
	if sel, ok := c.model.Selection(); ok {
		c.OnWorkoutSelected(sel.Index)
	}
}

func clampFTP(watts float64) float64 {
	return max(MinFTPWatts, min(MaxFTPWatts, watts))
}

// SaveSelected copies the selected preset into the library
func (c *Controller) SaveSelected(ctx context.Context) error {
	sel, ok := c.model.Selection()
	if !ok {
		return ErrNoSelection
	}
	if sel.Entry.Source == SourceLibrary {
		c.logger.Printf("%q is already in the library", sel.Entry.Workout.Name)
		return nil
	}
	saved, err := c.store.Save(ctx, sel.Entry.Workout)
	if err != nil {
		return err
	}
	c.logger.Printf("Saved %q to the library", saved.Name)
	return nil
}

// DeleteSelected removes the selected workout from the library. Presets
// cannot be deleted.
func (c *Controller) DeleteSelected(ctx context.Context) error {
	sel, ok := c.model.Selection()
	if !ok {
		return ErrNoSelection
	}
	if sel.Entry.Source != SourceLibrary {
		c.logger.Printf("Presets cannot be deleted")
		return nil
	}
	return c.store.Delete(ctx, sel.Entry.Workout.ID)
}

// ExportSelected writes the selected workout as a .zwo file into the export
// directory and returns its path
func (c *Controller) ExportSelected() (string, error) {
	sel, ok := c.model.Selection()
	if !ok {
		return "", ErrNoSelection
	}
	data, err := zwo.Encode(sel.Entry.Workout)
	if err != nil {
		return "", err
	}
	path := filepath.Join(c.exportDir, zwo.FileName(sel.Entry.Workout.Name))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("exporting %q: %w", sel.Entry.Workout.Name, err)
	}
	c.logger.Printf("Exported %q to %s", sel.Entry.Workout.Name, path)
	return path, nil
}

// OnEscapeKey handles when the Escape key is pressed
func (c *Controller) OnEscapeKey() {
	c.model.RequestCloseApplication()
}

// Shutdown stops listening to library changes
func (c *Controller) Shutdown() {
	c.cancelUpdates()
}
