package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/matheuskafuri/headlines/internal/headline"
)

const (
	headerTimeLayout = "01.02.2006 03:04 PM"
	placeholderText  = "Please select a category to view headlines."
)

// FormatRow renders one headline the way every presenter lists it, n
// being its 1-based position.
func FormatRow(n int, r headline.Record) string {
	return fmt.Sprintf("#%d (%s views, Rating: %s (%d)): %s", n, humanize.Comma(int64(r.Views)), r.Stars, r.Tag, r.Text)
}

// FormatHeader is the title line above a category's headlines.
func FormatHeader(label string, at time.Time) string {
	return fmt.Sprintf("Latest %s Headlines - %s", label, at.Format(headerTimeLayout))
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	return runewidth.Truncate(s, n, "...")
}

func renderRow(n int, r headline.Record, selected bool, width int) string {
	prefix := "  "
	style := rowStyle
	if selected {
		prefix = "> "
		style = rowSelectedStyle
	}
	line := truncateStr(FormatRow(n, r), width-runewidth.StringWidth(prefix))
	// Color the stars without changing the visible text.
	if i := strings.Index(line, r.Stars); i >= 0 && r.Stars != "" {
		return style.Render(prefix+line[:i]) + starStyle.Render(r.Stars) + style.Render(line[i+len(r.Stars):])
	}
	return style.Render(prefix + line)
}

func renderList(records []headline.Record, cursor int, height int, width int) string {
	if len(records) == 0 {
		return center(placeholderStyle.Render("No headlines found"), width, height)
	}

	// Each row is 1 line + 1 blank line
	itemHeight := 2
	visible := height / itemHeight
	if visible < 1 {
		visible = 1
	}

	// Calculate scroll offset
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > len(records) {
		end = len(records)
		start = end - visible
		if start < 0 {
			start = 0
		}
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderRow(i+1, records[i], i == cursor, width))
		if i < end-1 {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

func center(s string, width, height int) string {
	pad := (width - lipgloss.Width(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat("\n", height/3) + strings.Repeat(" ", pad) + s
}
