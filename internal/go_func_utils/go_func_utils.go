package go_func_utils

import (
	"log"
	"runtime/debug"
)

// SafeGo runs fn in a new goroutine, logging any panic with its stack before
// re-raising it. Background work (HTTP server, autosave timers, the terminal
// preview) can otherwise die with the trace lost behind the UI or log file.
func SafeGo(logger *log.Logger, fn func()) {
	go SafeFunc(logger, fn)()
}

// SafeFunc wraps fn with the same panic logging as SafeGo without starting a
// goroutine, for callbacks that the runtime schedules itself (time.AfterFunc)
func SafeFunc(logger *log.Logger, fn func()) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Printf("PANIC: %v\n%s", r, debug.Stack())
				panic(r)
			}
		}()
		fn()
	}
}
