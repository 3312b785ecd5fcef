package preview

// View defines the interface for framework-specific UI implementations
type View interface {
	// Initialize is called after construction to set up framework-specific widgets
	Initialize(controller *Controller)

	// SetupKeyboardHandlers routes key presses to the controller
	SetupKeyboardHandlers(controller *Controller)

	// Run starts the UI framework and blocks until it exits
	Run() error

	// Stop stops the UI framework
	Stop()

	// Draw refreshes/redraws the UI
	Draw() error

	// GetLogViewHeight returns the visible height of the log view
	GetLogViewHeight() int

	// ClearLogView clears the log view
	ClearLogView()

	// WriteLogLine writes a line to the log view
	WriteLogLine(line string) error

	// SetEntries populates the workout list
	SetEntries(entries []Entry)

	// ShowSelection renders the selected workout's details. Index -1 means
	// nothing is selected.
	ShowSelection(sel Selection)
}
