package tui

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matheuskafuri/headlines/internal/headline"
	"github.com/matheuskafuri/headlines/internal/page"
	"github.com/matheuskafuri/headlines/internal/pipeline"
	"github.com/matheuskafuri/headlines/internal/rank"
	"github.com/matheuskafuri/headlines/internal/source"
)

var shownAt = time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC)

type fakeHandler struct {
	events  []pipeline.Event
	display pipeline.Display
	err     error
}

func (f *fakeHandler) Handle(ctx context.Context, ev pipeline.Event) (pipeline.Display, error) {
	f.events = append(f.events, ev)
	return f.display, f.err
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testApp(t *testing.T, h *fakeHandler) (*App, *[]string) {
	t.Helper()
	var opened []string
	a := NewApp(RunOpts{
		Pipeline: h,
		Sources:  source.All(),
		Open: func(link string) error {
			opened = append(opened, link)
			return nil
		},
		Now: func() time.Time { return shownAt },
	})
	a.Update(tea.WindowSizeMsg{Width: 200, Height: 40})
	return a, &opened
}

// collect runs cmd and any batched commands, returning the pipeline
// messages they produce.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	var out []tea.Msg
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
	case displayMsg, rejectedMsg, openErrMsg:
		out = append(out, msg)
	}
	return out
}

func sampleDisplay() pipeline.Display {
	return pipeline.Display{
		Records: []headline.Record{
			{Text: "Lakers win", Link: "https://www.espn.com/a", Views: 1234567, Rating: 3.5, Stars: "★★★½☆", Tag: 42},
			{Text: "Yankees lose", Link: "https://www.espn.com/b", Views: 2000000, Rating: 1.0, Stars: "★☆☆☆☆", Tag: 7000},
		},
		Label:  "ESPN.com",
		Source: source.Sports,
	}
}

func TestEventForKeys(t *testing.T) {
	tests := []struct {
		name    string
		msg     tea.KeyMsg
		focused bool
		want    pipeline.Event
	}{
		{"1 selects sports", runes("1"), false, pipeline.Select{Source: source.Sports}},
		{"2 selects finance", runes("2"), false, pipeline.Select{Source: source.Finance}},
		{"3 selects politics", runes("3"), false, pipeline.Select{Source: source.Politics}},
		{"4 selects health", runes("4"), false, pipeline.Select{Source: source.Health}},
		{"5 is out of range", runes("5"), false, nil},
		{"v sorts by views", runes("v"), false, pipeline.Sort{Key: rank.Views}},
		{"s sorts by rating", runes("s"), false, pipeline.Sort{Key: rank.Rating}},
		{"r refreshes", runes("r"), false, pipeline.Refresh{}},
		{"o opens, no event", runes("o"), false, nil},
		{"enter on bar selects", tea.KeyMsg{Type: tea.KeyEnter}, true, pipeline.Select{Source: source.Sports}},
		{"enter on list opens", tea.KeyMsg{Type: tea.KeyEnter}, false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := testApp(t, &fakeHandler{})
			a.categories.focused = tt.focused
			got, ok := a.eventFor(tt.msg)
			if tt.want == nil {
				if ok {
					t.Errorf("expected no event, got %#v", got)
				}
				return
			}
			if !ok || got != tt.want {
				t.Errorf("eventFor(%q) = %#v, %v; want %#v", tt.msg.String(), got, ok, tt.want)
			}
		})
	}
}

func TestArrowThenEnterSelects(t *testing.T) {
	h := &fakeHandler{display: sampleDisplay()}
	a, _ := testApp(t, h)

	a.Update(tea.KeyMsg{Type: tea.KeyRight})
	a.Update(tea.KeyMsg{Type: tea.KeyRight})
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	collect(cmd)

	if len(h.events) != 1 || h.events[0] != (pipeline.Select{Source: source.Politics}) {
		t.Errorf("expected politics select, got %#v", h.events)
	}
}

func TestSelectRendersDisplay(t *testing.T) {
	h := &fakeHandler{display: sampleDisplay()}
	a, _ := testApp(t, h)

	_, cmd := a.Update(runes("1"))
	if !a.busy {
		t.Error("expected busy while the event is in flight")
	}
	msgs := collect(cmd)
	if len(msgs) != 1 {
		t.Fatalf("expected one pipeline message, got %d", len(msgs))
	}
	a.Update(msgs[0])

	if a.busy {
		t.Error("expected idle after display")
	}
	view := a.View()
	for _, want := range []string{
		"Latest ESPN.com Headlines - 03.05.2024 02:07 PM",
		"#1 (1,234,567 views, Rating: ★★★½☆ (42)): Lakers win",
		"#2 (2,000,000 views, Rating: ★☆☆☆☆ (7000)): Yankees lose",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestKeysIgnoredWhileBusy(t *testing.T) {
	h := &fakeHandler{display: sampleDisplay()}
	a, _ := testApp(t, h)

	_, first := a.Update(runes("1"))
	for _, k := range []string{"2", "r", "v"} {
		if _, cmd := a.Update(runes(k)); cmd != nil {
			t.Errorf("key %q: expected no command while busy", k)
		}
	}
	collect(first)
	if len(h.events) != 1 {
		t.Errorf("expected only the first event handled, got %d", len(h.events))
	}
}

func TestPlaceholderWhenIdle(t *testing.T) {
	a, _ := testApp(t, &fakeHandler{})
	if view := a.View(); !strings.Contains(view, placeholderText) {
		t.Errorf("expected placeholder in idle view")
	}
}

func TestRejectedKeepsDisplay(t *testing.T) {
	h := &fakeHandler{display: sampleDisplay()}
	a, _ := testApp(t, h)
	a.Update(displayMsg{display: sampleDisplay()})

	h.display = pipeline.Display{}
	h.err = fmt.Errorf("sort while idle: %w", pipeline.ErrInvalidTransition)
	_, cmd := a.Update(runes("v"))
	msgs := collect(cmd)
	if len(msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(msgs))
	}
	if _, ok := msgs[0].(rejectedMsg); !ok {
		t.Fatalf("expected rejectedMsg, got %T", msgs[0])
	}
	a.Update(msgs[0])

	if len(a.display.Records) != 2 {
		t.Errorf("display replaced by a refused event")
	}
	if !errors.Is(a.err, pipeline.ErrInvalidTransition) {
		t.Errorf("expected status error, got %v", a.err)
	}
}

func TestFetchFailureShowsEmptyDisplayAndError(t *testing.T) {
	h := &fakeHandler{
		display: pipeline.Display{Records: []headline.Record{}, Label: "Health.com", Source: source.Health},
		err:     fmt.Errorf("extracting health: %w", page.ErrFetchUnavailable),
	}
	a, _ := testApp(t, h)

	_, cmd := a.Update(runes("4"))
	msgs := collect(cmd)
	if len(msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(msgs))
	}
	if _, ok := msgs[0].(displayMsg); !ok {
		t.Fatalf("expected displayMsg for a failed fetch, got %T", msgs[0])
	}
	a.Update(msgs[0])

	if !a.loaded || a.display.Label != "Health.com" {
		t.Errorf("expected loaded health display, got %+v", a.display)
	}
	view := a.View()
	if !strings.Contains(view, "Latest Health.com Headlines") || !strings.Contains(view, "page unavailable") {
		t.Errorf("expected header and diagnostic in view")
	}
}

func TestOpenHighlightedRow(t *testing.T) {
	a, opened := testApp(t, &fakeHandler{})
	a.Update(displayMsg{display: sampleDisplay()})

	a.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := a.Update(runes("o"))
	if cmd == nil {
		t.Fatal("expected open command")
	}
	cmd()
	if len(*opened) != 1 || (*opened)[0] != "https://www.espn.com/b" {
		t.Errorf("opened %v, want second link", *opened)
	}
}

func TestOpenError(t *testing.T) {
	a := NewApp(RunOpts{
		Pipeline: &fakeHandler{},
		Sources:  source.All(),
		Open:     func(string) error { return errors.New("no browser") },
	})
	a.Update(displayMsg{display: sampleDisplay()})
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msgs := collect(cmd)
	if len(msgs) != 1 {
		t.Fatalf("expected open error message, got %d", len(msgs))
	}
	a.Update(msgs[0])
	if a.err == nil {
		t.Error("expected error to be shown")
	}
}

func TestPreselectOnInit(t *testing.T) {
	h := &fakeHandler{display: sampleDisplay()}
	src := source.Finance
	a := NewApp(RunOpts{Pipeline: h, Sources: source.All(), Preselect: &src})
	collect(a.Init())
	if len(h.events) != 1 || h.events[0] != (pipeline.Select{Source: source.Finance}) {
		t.Errorf("expected finance select on init, got %#v", h.events)
	}
}

type downFetcher struct{}

func (downFetcher) Load(context.Context, string) (*page.Page, error) {
	return nil, errors.New("boom")
}
func (downFetcher) Close() error { return nil }

func TestUnexpectedFetchErrorStillLoads(t *testing.T) {
	m := pipeline.New(pipeline.Options{Fetcher: downFetcher{}, Rand: rand.New(rand.NewPCG(1, 2))})
	a := NewApp(RunOpts{Pipeline: m, Sources: source.All(), Now: func() time.Time { return shownAt }})
	a.Update(tea.WindowSizeMsg{Width: 200, Height: 40})

	_, cmd := a.Update(runes("4"))
	for _, msg := range collect(cmd) {
		a.Update(msg)
	}

	if st, src := m.State(); st != pipeline.Loaded || src != source.Health {
		t.Fatalf("machine state = %v/%v", st, src)
	}
	if !a.loaded || a.display.Source != source.Health {
		t.Errorf("app not showing health: loaded=%v display=%+v", a.loaded, a.display)
	}
	if a.err == nil || !strings.Contains(a.err.Error(), "boom") {
		t.Errorf("expected diagnostic in status, got %v", a.err)
	}
}
