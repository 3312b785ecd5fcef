package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rivo/tview"
	"github.com/spf13/pflag"

	"github.com/lowaak/smart-trainer/workout-builder/internal/config"
	"github.com/lowaak/smart-trainer/workout-builder/internal/history"
	"github.com/lowaak/smart-trainer/workout-builder/internal/library"
	"github.com/lowaak/smart-trainer/workout-builder/internal/logging"
	"github.com/lowaak/smart-trainer/workout-builder/internal/metrics"
	"github.com/lowaak/smart-trainer/workout-builder/internal/preview"
	"github.com/lowaak/smart-trainer/workout-builder/internal/server"
	"github.com/lowaak/smart-trainer/workout-builder/internal/workout"
	"github.com/lowaak/smart-trainer/workout-builder/internal/zwo"
)

const usage = `usage: workout-builder <command> [flags] [args]

commands:
  summary <workout>    print the metrics summary of a workout (.json or .zwo)
  timeline <workout>   print the chart timeline of a workout
  export <workout>     convert a workout to .zwo (-o to choose the output file)
  import <file.zwo>    print a .zwo file as workout JSON (--save to add it to the library)
  presets              list the built-in workouts
  serve                run the HTTP API
  preview              browse presets and the library in the terminal

Run "workout-builder <command> --help" for the flags of a command.
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "workout-builder: %v\n", err)
		os.Exit(1)
	}
}

// app carries what every command needs once flags and config are loaded
type app struct {
	cfg    config.Config
	logger *log.Logger
	out    io.Writer
	args   []string
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return errors.New("missing command")
	}

	name := args[0]
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	config.RegisterFlags(fs)

	var handler func(*app) error
	switch name {
	case "summary":
		handler = runSummary
	case "timeline":
		handler = runTimeline
	case "export":
		output := fs.StringP("output", "o", "", "output file (default: derived from the workout name)")
		handler = func(a *app) error { return runExport(a, *output) }
	case "import":
		save := fs.Bool("save", false, "save the imported workout to the library")
		handler = func(a *app) error { return runImport(a, *save) }
	case "presets":
		handler = runPresets
	case "serve":
		handler = runServe
	case "preview":
		handler = runPreview
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", name)
	}

	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	cfg, err := config.Load(fs)
	if err != nil {
		return err
	}
	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer closer.Close()

	return handler(&app{cfg: cfg, logger: logger, out: out, args: fs.Args()})
}

// workoutArg reads the single workout file argument
func (a *app) workoutArg() (workout.Workout, error) {
	if len(a.args) != 1 {
		return workout.Workout{}, errors.New("expected exactly one workout file")
	}
	return readWorkout(a.args[0])
}

// readWorkout loads a workout from a .zwo file or from workout JSON
func readWorkout(path string) (workout.Workout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return workout.Workout{}, err
	}
	if strings.EqualFold(filepath.Ext(path), zwo.FileExtension) || bytes.HasPrefix(bytes.TrimSpace(data), []byte("<")) {
		return zwo.Decode(data)
	}
	var w workout.Workout
	if err := json.Unmarshal(data, &w); err != nil {
		return workout.Workout{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := w.Segments.CheckLimits(); err != nil {
		return workout.Workout{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return w, nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runSummary(a *app) error {
	w, err := a.workoutArg()
	if err != nil {
		return err
	}
	return a.printJSON(metrics.ComputeSummary(w.Segments, a.cfg.FTP))
}

func runTimeline(a *app) error {
	w, err := a.workoutArg()
	if err != nil {
		return err
	}
	return a.printJSON(metrics.Timeline(w.Segments))
}

func runExport(a *app, output string) error {
	w, err := a.workoutArg()
	if err != nil {
		return err
	}
	data, err := zwo.Encode(w)
	if err != nil {
		return err
	}
	if output == "-" {
		_, err = a.out.Write(data)
		return err
	}
	if output == "" {
		output = zwo.FileName(w.Name)
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "exported %q to %s\n", w.Name, output)
	return nil
}

func runImport(a *app, save bool) error {
	if len(a.args) != 1 {
		return errors.New("expected exactly one .zwo file")
	}
	data, err := os.ReadFile(a.args[0])
	if err != nil {
		return err
	}
	w, err := zwo.Decode(data)
	if err != nil {
		return err
	}
	if save {
		store, err := library.Open(a.cfg.Library.Driver, a.cfg.Library.Dir, a.logger)
		if err != nil {
			return err
		}
		defer store.Close()
		if w, err = store.Save(context.Background(), w); err != nil {
			return err
		}
	}
	return a.printJSON(w)
}

func runPresets(a *app) error {
	for _, p := range workout.Presets() {
		s := metrics.ComputeSummary(p.Segments, a.cfg.FTP)
		fmt.Fprintf(a.out, "%-30s %-8s TSS %3d  IF %.2f  %s\n", p.ID, workout.FormatDuration(s.TotalDurationSeconds), s.TSS, s.IF, p.Name)
	}
	return nil
}

func runServe(a *app) error {
	store, err := library.Open(a.cfg.Library.Driver, a.cfg.Library.Dir, a.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	engine, err := metrics.NewEngine(a.cfg.Cache.Size, a.logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	current, ok, err := store.LoadCurrent(ctx)
	if err != nil {
		return err
	}
	if !ok {
		current = workout.New("", "")
	} else {
		a.logger.Printf("Restored %q from the last session", current.Name)
	}
	session := history.New(current, a.logger)

	saver := library.NewAutoSaver(store, a.cfg.AutoSave.Delay, a.logger)
	unsubscribe := session.OnChange(saver.Observe)

	srv := server.New(engine, store, session, a.cfg.FTP, a.logger)
	defer srv.Close()

	err = srv.ListenAndServe(ctx, a.cfg.Server.Address)
	unsubscribe()
	saver.Flush(context.Background())
	saver.Stop()
	return err
}

func runPreview(a *app) error {
	model := preview.NewModel()

	// Logs go to the log pane; stderr would draw over the terminal UI
	if a.cfg.Log.File == "" {
		a.logger.SetOutput(model.LogWriter())
	} else {
		a.logger.SetOutput(io.MultiWriter(a.logger.Writer(), model.LogWriter()))
	}

	store, err := library.Open(a.cfg.Library.Driver, a.cfg.Library.Dir, a.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	engine, err := metrics.NewEngine(a.cfg.Cache.Size, a.logger)
	if err != nil {
		return err
	}

	controller := preview.NewController(preview.ControllerArgs{
		Model:     model,
		Engine:    engine,
		Store:     store,
		FTP:       a.cfg.FTP,
		ExportDir: ".",
		Logger:    a.logger,
	})
	defer controller.Shutdown()

	view := preview.NewTviewView(a.logger, tview.NewApplication())
	base := preview.NewBaseView(preview.BaseViewArgs{
		View:       view,
		Model:      model,
		Controller: controller,
		Logger:     a.logger,
	})
	defer base.Shutdown()

	if err := controller.Reload(context.Background()); err != nil {
		return err
	}
	a.logger.Printf("Loaded %d workouts at FTP %g W", len(model.Entries()), controller.FTP())
	return base.Run()
}
