package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/headlines/internal/source"
)

// categoryBar is the row of selectable categories. cursor moves with the
// arrow keys; active is the category on screen, if any.
type categoryBar struct {
	sources   []source.Source
	cursor    int
	active    source.Source
	hasActive bool
	focused   bool
}

func newCategoryBar(sources []source.Source) categoryBar {
	return categoryBar{sources: sources}
}

func (c *categoryBar) left() {
	if c.cursor > 0 {
		c.cursor--
	}
}

func (c *categoryBar) right() {
	if c.cursor < len(c.sources)-1 {
		c.cursor++
	}
}

func (c *categoryBar) current() (source.Source, bool) {
	if c.cursor < 0 || c.cursor >= len(c.sources) {
		return 0, false
	}
	return c.sources[c.cursor], true
}

// at returns the category shown at 1-based position n.
func (c *categoryBar) at(n int) (source.Source, bool) {
	if n < 1 || n > len(c.sources) {
		return 0, false
	}
	return c.sources[n-1], true
}

func (c *categoryBar) setActive(s source.Source) {
	c.active = s
	c.hasActive = true
	for i, src := range c.sources {
		if src == s {
			c.cursor = i
		}
	}
}

func (c *categoryBar) render(width int) string {
	sep := tabSeparatorStyle.Render(" · ")

	var row string
	for i, s := range c.sources {
		style := tabInactiveStyle
		if c.hasActive && s == c.active {
			style = tabActiveStyle
		}
		label := fmt.Sprintf("%d %s", i+1, s.Title())
		if c.focused && i == c.cursor {
			label = "[" + label + "]"
		}

		candidate := row
		if i > 0 {
			candidate += sep
		}
		candidate += style.Render(label)
		// Stop before exceeding width
		if lipgloss.Width(candidate) > width && row != "" {
			break
		}
		row = candidate
	}

	barStyle := lipgloss.NewStyle().
		Background(colorSurface).
		Width(width).
		PaddingLeft(1)
	return barStyle.Render(row)
}
