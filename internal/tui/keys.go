package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/matheuskafuri/headlines/internal/pipeline"
	"github.com/matheuskafuri/headlines/internal/rank"
)

var keys = struct {
	Quit         key.Binding
	Help         key.Binding
	Escape       key.Binding
	Category     key.Binding
	Left         key.Binding
	Right        key.Binding
	Up           key.Binding
	Down         key.Binding
	Enter        key.Binding
	Open         key.Binding
	SortByViews  key.Binding
	SortByRating key.Binding
	Refresh      key.Binding
}{
	Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c")),
	Help:         key.NewBinding(key.WithKeys("?")),
	Escape:       key.NewBinding(key.WithKeys("esc")),
	Category:     key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9")),
	Left:         key.NewBinding(key.WithKeys("left", "h")),
	Right:        key.NewBinding(key.WithKeys("right", "l")),
	Up:           key.NewBinding(key.WithKeys("up", "k")),
	Down:         key.NewBinding(key.WithKeys("down", "j")),
	Enter:        key.NewBinding(key.WithKeys("enter")),
	Open:         key.NewBinding(key.WithKeys("o")),
	SortByViews:  key.NewBinding(key.WithKeys("v")),
	SortByRating: key.NewBinding(key.WithKeys("s")),
	Refresh:      key.NewBinding(key.WithKeys("r")),
}

// eventFor maps a key press to the pipeline event it raises, if any.
// Enter selects only while the category bar has focus; on the list it
// opens the highlighted link instead.
func (a *App) eventFor(msg tea.KeyMsg) (pipeline.Event, bool) {
	switch {
	case key.Matches(msg, keys.Category):
		if src, ok := a.categories.at(int(msg.String()[0] - '0')); ok {
			return pipeline.Select{Source: src}, true
		}
	case key.Matches(msg, keys.Enter) && a.categories.focused:
		if src, ok := a.categories.current(); ok {
			return pipeline.Select{Source: src}, true
		}
	case key.Matches(msg, keys.SortByViews):
		return pipeline.Sort{Key: rank.Views}, true
	case key.Matches(msg, keys.SortByRating):
		return pipeline.Sort{Key: rank.Rating}, true
	case key.Matches(msg, keys.Refresh):
		return pipeline.Refresh{}, true
	}
	return nil, false
}
