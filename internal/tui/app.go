package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/matheuskafuri/headlines/internal/browser"
	"github.com/matheuskafuri/headlines/internal/pipeline"
	"github.com/matheuskafuri/headlines/internal/source"
)

// Handler applies pipeline events. *pipeline.Machine satisfies it.
type Handler interface {
	Handle(ctx context.Context, ev pipeline.Event) (pipeline.Display, error)
}

type App struct {
	pipeline Handler
	open     func(string) error
	now      func() time.Time
	logger   *log.Logger

	categories categoryBar
	spinner    spinner.Model

	display   pipeline.Display
	loaded    bool
	shownAt   time.Time
	cursor    int
	busy      bool
	help      bool
	err       error
	preselect *source.Source

	width  int
	height int
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Pipeline Handler
	// Sources are the categories on the bar, in order.
	Sources []source.Source
	// Preselect, when set, is selected on startup.
	Preselect *source.Source

	Logger *log.Logger
	// Open defaults to browser.Open.
	Open func(string) error
	// Now stamps the header; defaults to time.Now.
	Now func() time.Time
}

func NewApp(opts RunOpts) *App {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	a := &App{
		pipeline:   opts.Pipeline,
		open:       opts.Open,
		now:        opts.Now,
		logger:     opts.Logger,
		categories: newCategoryBar(opts.Sources),
		spinner:    sp,
		preselect:  opts.Preselect,
	}
	if a.open == nil {
		a.open = browser.Open
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.logger == nil {
		a.logger = log.New(io.Discard)
	}
	// Nothing is selected yet, so the bar starts with focus.
	a.categories.focused = true
	return a
}

func (a *App) Init() tea.Cmd {
	if a.preselect != nil {
		return a.dispatch(pipeline.Select{Source: *a.preselect})
	}
	return nil
}

// dispatch runs ev on the pipeline off the UI loop. Only one event is in
// flight at a time; keys arriving meanwhile are dropped.
func (a *App) dispatch(ev pipeline.Event) tea.Cmd {
	if a.busy {
		return nil
	}
	a.busy = true
	h := a.pipeline
	run := func() tea.Msg {
		d, err := h.Handle(context.Background(), ev)
		if !pipeline.Displayed(err) {
			return rejectedMsg{err: err}
		}
		return displayMsg{display: d, err: err}
	}
	return tea.Batch(run, a.spinner.Tick)
}

func (a *App) openCmd(link string) tea.Cmd {
	open := a.open
	return func() tea.Msg {
		if err := open(link); err != nil {
			return openErrMsg{err: err}
		}
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		return a.handleKey(msg)

	case displayMsg:
		a.busy = false
		a.display = msg.display
		a.loaded = true
		a.shownAt = a.now()
		a.cursor = 0
		a.categories.setActive(msg.display.Source)
		a.categories.focused = false
		a.err = msg.err
		return a, nil

	case rejectedMsg:
		a.busy = false
		a.err = msg.err
		return a, nil

	case openErrMsg:
		a.logger.Warn("opening link", "err", msg.err)
		a.err = msg.err
		return a, nil

	case spinner.TickMsg:
		if a.busy {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.help {
		if key.Matches(msg, keys.Help, keys.Escape, keys.Quit) {
			a.help = false
		}
		return a, nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, keys.Help):
		a.help = true
		return a, nil
	}

	if ev, ok := a.eventFor(msg); ok {
		return a, a.dispatch(ev)
	}

	records := a.display.Records
	switch {
	case key.Matches(msg, keys.Left):
		a.categories.focused = true
		a.categories.left()
	case key.Matches(msg, keys.Right):
		a.categories.focused = true
		a.categories.right()
	case key.Matches(msg, keys.Up):
		a.categories.focused = false
		if a.cursor > 0 {
			a.cursor--
		}
	case key.Matches(msg, keys.Down):
		a.categories.focused = false
		if a.cursor < len(records)-1 {
			a.cursor++
		}
	case key.Matches(msg, keys.Escape):
		if a.loaded {
			a.categories.focused = false
		}
	case key.Matches(msg, keys.Open, keys.Enter):
		if a.cursor < len(records) {
			return a, a.openCmd(records[a.cursor].Link)
		}
	}
	return a, nil
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorPrimary).Render("  headlines")
	}

	if a.help {
		return a.renderHelp()
	}

	// Header
	title := "headlines"
	if a.loaded {
		title = FormatHeader(a.display.Label, a.shownAt)
	}
	headerLeft := headerStyle.Render(title)
	headerRight := ""
	if a.busy {
		headerRight = headerRightStyle.Render(a.spinner.View() + " loading")
	}
	headerGap := a.width - lipgloss.Width(headerLeft) - lipgloss.Width(headerRight)
	if headerGap < 0 {
		headerGap = 0
	}
	header := headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight

	bar := a.categories.render(a.width)

	contentHeight := a.height - 4
	if contentHeight < 3 {
		contentHeight = 3
	}
	var content string
	if a.loaded {
		content = renderList(a.display.Records, a.cursor, contentHeight, a.width-1)
	} else {
		content = center(placeholderStyle.Render(placeholderText), a.width, contentHeight)
	}
	content = fitHeight(content, contentHeight)

	status := renderStatusBar(len(a.display.Records), a.display.Key, a.loaded, a.width,
		"1-4 category  v views  s rating  r refresh  o open  ? help  q quit")
	if a.err != nil {
		status = errorStyle.Render(truncateStr(" "+a.err.Error(), a.width))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, bar, "", content, status)
}

func fitHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	for len(lines) < h {
		lines = append(lines, "")
	}
	if len(lines) > h {
		lines = lines[:h]
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).Render("headlines")
	dim := helpDimStyle

	help := title + dim.Render(" · Keyboard Shortcuts") + "\n\n" +
		dim.Render("Categories") + "\n" +
		"  1-4           Show a category\n" +
		"  ←/→, h/l      Move along the category bar\n" +
		"  enter         Show the highlighted category\n\n" +
		dim.Render("Headlines") + "\n" +
		"  j/k, ↑/↓      Move through headlines\n" +
		"  o, enter      Open headline in browser\n" +
		"  v             Sort by views\n" +
		"  s             Sort by rating\n" +
		"  r             Refresh the current category\n\n" +
		dim.Render("General") + "\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c     Quit"

	card := helpCardStyle.Render(help)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
