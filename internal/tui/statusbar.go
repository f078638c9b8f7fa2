package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/headlines/internal/rank"
)

func renderStatusBar(count int, key rank.Key, loaded bool, width int, hints string) string {
	left := ""
	if loaded {
		left = fmt.Sprintf(" %d headlines", count)
		if key != "" {
			left += " · by " + key.Label()
		}
	}

	right := " " + hints + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}
