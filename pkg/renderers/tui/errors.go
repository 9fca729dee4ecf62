package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrUnsupportedWidget is returned when a form field was not rendered by
	// the headless renderer.
	ErrUnsupportedWidget = errors.New("tui: field widget is not editable in a terminal")
)
