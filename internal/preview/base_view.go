package preview

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lowaak/smart-trainer/workout-builder/internal/go_func_utils"
)

const logResizeInterval = 100 * time.Millisecond

// BaseView contains the logic shared by all View implementations: it
// forwards Model changes to the View
type BaseView struct {
	view       View
	model      *Model
	controller *Controller
	context    context.Context
	cancelFunc context.CancelFunc
	waitGroup  sync.WaitGroup
	logMu      sync.Mutex // Serializes log view rewrites
	logger     *log.Logger
}

// BaseViewArgs holds the arguments for creating a new BaseView
type BaseViewArgs struct {
	View       View
	Model      *Model
	Controller *Controller
	Logger     *log.Logger
}

// NewBaseView initializes the view and starts forwarding model changes to it
func NewBaseView(args BaseViewArgs) *BaseView {
	if args.Logger == nil {
		panic("BaseView: logger cannot be nil")
	}
	if args.View == nil {
		panic("BaseView: view cannot be nil")
	}
	if args.Model == nil {
		panic("BaseView: model cannot be nil")
	}
	if args.Controller == nil {
		panic("BaseView: controller cannot be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())

	base := &BaseView{
		view:       args.View,
		model:      args.Model,
		controller: args.Controller,
		context:    ctx,
		cancelFunc: cancel,
		logger:     args.Logger,
	}

	args.View.Initialize(args.Controller)
	args.View.SetupKeyboardHandlers(args.Controller)

	// Render whatever the model already holds
	args.View.SetEntries(args.Model.Entries())
	if sel, ok := args.Model.Selection(); ok {
		args.View.ShowSelection(sel)
	}

	base.setupEventListeners()

	base.waitGroup.Add(1)
	go_func_utils.SafeGo(base.logger, func() { base.monitorLogResize() })
	base.updateLogDisplay()

	return base
}

// forward runs handle for every value received on ch until the view shuts
// down, then cancels the subscription
func forward[T any](base *BaseView, ch <-chan T, cancel func(), handle func(T)) {
	base.waitGroup.Add(1)
	go_func_utils.SafeGo(base.logger, func() {
		defer base.waitGroup.Done()
		defer cancel()
		for {
			select {
			case <-base.context.Done():
				return
			case v, ok := <-ch:
				if !ok {
					return
				}
				handle(v)
			}
		}
	})
}

func (base *BaseView) setupEventListeners() {
	logCh, logCancel := base.model.ListenToLog()
	forward(base, logCh, logCancel, func(string) {
		base.updateLogDisplay()
	})

	entriesCh, entriesCancel := base.model.ListenToEntries()
	forward(base, entriesCh, entriesCancel, func(entries []Entry) {
		base.view.SetEntries(entries)
		base.draw()
	})

	selectionCh, selectionCancel := base.model.ListenToSelection()
	forward(base, selectionCh, selectionCancel, func(sel Selection) {
		base.view.ShowSelection(sel)
		base.draw()
	})

	closeCh, closeCancel := base.model.ListenToCloseApplication()
	forward(base, closeCh, closeCancel, func(struct{}) {
		base.view.Stop()
	})
}

func (base *BaseView) draw() {
	if err := base.view.Draw(); err != nil {
		base.logger.Printf("BaseView: Error drawing: %v", err)
	}
}

func (base *BaseView) updateLogDisplay() {
	base.logMu.Lock()
	defer base.logMu.Unlock()
	height := base.view.GetLogViewHeight()
	if height <= 0 {
		return
	}

	base.view.ClearLogView()
	for _, line := range base.model.GetLogTail(height) {
		if err := base.view.WriteLogLine(line + "\n"); err != nil {
			base.logger.Printf("BaseView: Error writing to log view: %v", err)
		}
	}
	base.draw()
}

func (base *BaseView) monitorLogResize() {
	defer base.waitGroup.Done()
	var lastHeight int
	ticker := time.NewTicker(logResizeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-base.context.Done():
			return
		case <-ticker.C:
			height := base.view.GetLogViewHeight()
			if height != lastHeight && height > 0 {
				lastHeight = height
				base.updateLogDisplay()
			}
		}
	}
}

// Shutdown stops all goroutines and waits for them to finish
func (base *BaseView) Shutdown() {
	base.logger.Println("BaseView: Shutting down")
	base.cancelFunc()
	base.waitGroup.Wait()
	base.logger.Println("BaseView: Shutdown complete")
}

// Run starts the UI and blocks until it exits
func (base *BaseView) Run() error {
	return base.view.Run()
}
