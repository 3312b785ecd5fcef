package preview

import (
	"context"
	"fmt"
	"log"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// TviewView implements View using tview (curses-based terminal UI)
type TviewView struct {
	logger *log.Logger
	app    *tview.Application

	mainFlex     *tview.Flex
	workoutList  *tview.List
	detailsPanel *tview.TextView
	logView      *tview.TextView
	tabWidgets   []*tview.Box

	// Set while SetEntries rebuilds the list so the changed callback does not
	// select rows on the controller
	populating bool
}

func NewTviewView(logger *log.Logger, app *tview.Application) *TviewView {
	return &TviewView{
		logger: logger,
		app:    app,
	}
}

// Initialize sets up the tview widgets
func (ui *TviewView) Initialize(controller *Controller) {
	// No SetChangedFunc with app.Draw() on the log view: BaseView draws after
	// updating it, and drawing from the changed func hangs during shutdown
	ui.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	ui.logView.SetBorder(true).SetTitle(" Logs ")

	ui.workoutList = tview.NewList().
		ShowSecondaryText(true).
		SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
			if ui.populating {
				return
			}
			controller.OnWorkoutSelected(index)
		})
	ui.workoutList.SetBorder(true).SetTitle(" Workouts ")

	ui.detailsPanel = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetTextAlign(tview.AlignLeft)
	ui.detailsPanel.SetBorder(true).SetTitle(" Summary ")
	ui.detailsPanel.SetText(formatSelection(Selection{Index: -1}))

	ui.tabWidgets = []*tview.Box{ui.workoutList.Box, ui.detailsPanel.Box}

	content := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(ui.workoutList, 0, 1, true).
		AddItem(ui.detailsPanel, 0, 2, false)

	ui.mainFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(content, 0, 3, true).
		AddItem(ui.logView, 0, 1, false)
}

// SetupKeyboardHandlers sets up keyboard event handlers
func (ui *TviewView) SetupKeyboardHandlers(controller *Controller) {
	ui.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyTab:
			ui.cycleFocus()
			return nil
		case tcell.KeyEscape:
			controller.OnEscapeKey()
			return nil
		case tcell.KeyRune:
		default:
			return event
		}

		switch event.Rune() {
		case '+', '=':
			controller.IncreaseFTP()
		case '-':
			controller.DecreaseFTP()
		case 's':
			if err := controller.SaveSelected(context.Background()); err != nil {
				ui.logger.Printf("Save failed: %v", err)
			}
		case 'd':
			if err := controller.DeleteSelected(context.Background()); err != nil {
				ui.logger.Printf("Delete failed: %v", err)
			}
		case 'e':
			if _, err := controller.ExportSelected(); err != nil {
				ui.logger.Printf("Export failed: %v", err)
			}
		case 'r':
			if err := controller.Reload(context.Background()); err != nil {
				ui.logger.Printf("Reload failed: %v", err)
			}
		default:
			return event
		}
		return nil
	})
}

func (ui *TviewView) cycleFocus() {
	count := len(ui.tabWidgets)
	for i, w := range ui.tabWidgets {
		if w.HasFocus() {
			ui.app.SetFocus(ui.tabWidgets[(i+1)%count])
			return
		}
	}
	if count > 0 {
		ui.app.SetFocus(ui.tabWidgets[0])
	}
}

// SetEntries populates the workout list, keeping the highlighted row
func (ui *TviewView) SetEntries(entries []Entry) {
	ui.app.QueueUpdate(func() {
		current := ui.workoutList.GetCurrentItem()
		ui.populating = true
		ui.workoutList.Clear()
		for _, e := range entries {
			ui.workoutList.AddItem(tview.Escape(e.Workout.Name), entrySecondaryText(e), 0, nil)
		}
		if current < len(entries) {
			ui.workoutList.SetCurrentItem(current)
		}
		ui.populating = false
		ui.workoutList.SetTitle(fmt.Sprintf(" Workouts (%d) ", len(entries)))
	})
}

// ShowSelection renders the selected workout and highlights its row
func (ui *TviewView) ShowSelection(sel Selection) {
	text := formatSelection(sel)
	ui.app.QueueUpdate(func() {
		if sel.Index >= 0 && sel.Index < ui.workoutList.GetItemCount() && ui.workoutList.GetCurrentItem() != sel.Index {
			ui.populating = true
			ui.workoutList.SetCurrentItem(sel.Index)
			ui.populating = false
		}
		ui.detailsPanel.SetText(text).ScrollToBeginning()
	})
}

// GetLogViewHeight returns the visible height of the log view
func (ui *TviewView) GetLogViewHeight() int {
	_, _, _, height := ui.logView.GetInnerRect()
	return height
}

// ClearLogView clears the log view
func (ui *TviewView) ClearLogView() {
	ui.logView.Clear()
}

// WriteLogLine writes a line to the log view
func (ui *TviewView) WriteLogLine(line string) error {
	_, err := fmt.Fprint(ui.logView, tview.Escape(line))
	return err
}

// Draw refreshes/redraws the UI
func (ui *TviewView) Draw() error {
	ui.app.Draw()
	return nil
}

// Run starts the UI and blocks until it exits
func (ui *TviewView) Run() error {
	// SetRoot must be called before setting focus, otherwise focus may be reset
	ui.app.SetRoot(ui.mainFlex, true)
	ui.app.SetFocus(ui.workoutList)
	return ui.app.Run()
}

// Stop stops the UI framework
func (ui *TviewView) Stop() {
	ui.app.Stop()
}
