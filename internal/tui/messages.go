package tui

import "github.com/matheuskafuri/headlines/internal/pipeline"

// displayMsg carries a display to render. err, when set, is a fetch
// diagnostic for the status line.
type displayMsg struct {
	display pipeline.Display
	err     error
}

// rejectedMsg reports an event the pipeline refused; the current display
// stays as it is.
type rejectedMsg struct {
	err error
}

type openErrMsg struct {
	err error
}
