package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoSelection is reported when an action needs a selected field.
	ErrNoSelection = errors.New("tui: no field selected")
)
