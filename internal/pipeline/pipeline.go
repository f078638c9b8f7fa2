// Package pipeline drives the select → extract → synthesize → rank cycle.
//
// A Machine holds the currently selected source and its headline
// collection. It starts Idle; a Select moves it to Loaded, after which
// Sort reorders the held collection and Refresh fetches the same source
// again. Events are handled one at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matheuskafuri/headlines/internal/headline"
	"github.com/matheuskafuri/headlines/internal/history"
	"github.com/matheuskafuri/headlines/internal/page"
	"github.com/matheuskafuri/headlines/internal/rank"
	"github.com/matheuskafuri/headlines/internal/source"
)

// ErrInvalidTransition is returned for Sort and Refresh while Idle. The
// machine is left unchanged.
var ErrInvalidTransition = errors.New("invalid transition")

type State int

const (
	Idle State = iota
	Loaded
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loaded:
		return "loaded"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Event is one of Select, Sort or Refresh.
type Event interface {
	event() string
}

// Select fetches Source and replaces the held collection.
type Select struct{ Source source.Source }

// Sort reorders the held collection by Key without fetching.
type Sort struct{ Key rank.Key }

// Refresh fetches the held source again.
type Refresh struct{}

func (Select) event() string  { return "select" }
func (Sort) event() string    { return "sort" }
func (Refresh) event() string { return "refresh" }

// Display is what the presenter renders after an event. Key is empty when
// Records are in extraction order.
type Display struct {
	Records   []headline.Record `json:"records"`
	Label     string            `json:"label"`
	Source    source.Source     `json:"-"`
	Key       rank.Key          `json:"sort,omitempty"`
	FetchedAt time.Time         `json:"fetched_at"`
}

// Journal receives one entry per fetch cycle.
type Journal interface {
	Record(e history.Entry) error
}

type Options struct {
	Fetcher page.Fetcher
	Rand    headline.Rand

	// Now defaults to time.Now.
	Now func() time.Time
	// NewID names fetch cycles; defaults to uuid.NewString.
	NewID func() string

	Logger  *log.Logger
	Journal Journal

	// Limits overrides a source's default cap.
	Limits map[source.Source]int
}

type Machine struct {
	mu sync.Mutex

	fetcher page.Fetcher
	rng     headline.Rand
	now     func() time.Time
	newID   func() string
	logger  *log.Logger
	journal Journal
	limits  map[source.Source]int

	state     State
	src       source.Source
	held      []headline.Record
	key       rank.Key
	fetchedAt time.Time
}

func New(opts Options) *Machine {
	m := &Machine{
		fetcher: opts.Fetcher,
		rng:     opts.Rand,
		now:     opts.Now,
		newID:   opts.NewID,
		logger:  opts.Logger,
		journal: opts.Journal,
		limits:  opts.Limits,
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.newID == nil {
		m.newID = uuid.NewString
	}
	if m.logger == nil {
		m.logger = log.New(io.Discard)
	}
	return m
}

// State reports the current state and, when Loaded, the held source.
func (m *Machine) State() (State, source.Source) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.src
}

// Handle applies ev and returns the resulting display.
//
// A Select or Refresh whose extraction fails still moves the machine to
// Loaded with an empty collection; the returned Display is valid and the
// error (wrapping page.ErrFetchUnavailable or source.ErrNoMatchingContent)
// is diagnostic only.
func (m *Machine) Handle(ctx context.Context, ev Event) (Display, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch ev := ev.(type) {
	case Select:
		if !ev.Source.Valid() {
			return Display{}, fmt.Errorf("selecting: %w: %d", source.ErrUnknownSource, int(ev.Source))
		}
		return m.fetch(ctx, ev.Source, ev.event())
	case Refresh:
		if m.state != Loaded {
			return Display{}, fmt.Errorf("refresh while %s: %w", m.state, ErrInvalidTransition)
		}
		return m.fetch(ctx, m.src, ev.event())
	case Sort:
		if m.state != Loaded {
			return Display{}, fmt.Errorf("sort while %s: %w", m.state, ErrInvalidTransition)
		}
		ranked, err := rank.Rank(m.held, ev.Key)
		if err != nil {
			return Display{}, err
		}
		// The sorted order becomes the held collection, so ties in the
		// next sort keep this order.
		m.held = ranked
		m.key = ev.Key
		m.logger.Debug("sorted", "source", m.src, "key", ev.Key, "items", len(ranked))
		return m.display(slices.Clone(ranked)), nil
	default:
		return Display{}, fmt.Errorf("unsupported event %T: %w", ev, ErrInvalidTransition)
	}
}

// fetch runs one extract/synthesize cycle and replaces the held collection
// with its result, empty on failure.
func (m *Machine) fetch(ctx context.Context, src source.Source, event string) (Display, error) {
	cycle := m.newID()
	start := m.now()

	items, err := source.Extract(ctx, src, m.fetcher, m.limits[src])
	records := headline.Synthesize(m.rng, items)

	m.state = Loaded
	m.src = src
	m.held = records
	m.key = ""
	m.fetchedAt = m.now()

	elapsed := m.fetchedAt.Sub(start)
	entry := history.Entry{
		Cycle:    cycle,
		Source:   src.String(),
		Event:    event,
		Items:    len(records),
		Outcome:  outcomeOf(err),
		Duration: elapsed,
		At:       m.fetchedAt,
	}
	if err != nil {
		entry.Error = err.Error()
		m.logger.Warn("fetch failed", "cycle", cycle, "source", src, "event", event, "outcome", entry.Outcome, "err", err)
	} else {
		m.logger.Info("fetched", "cycle", cycle, "source", src, "event", event, "items", len(records), "duration", elapsed)
	}
	if m.journal != nil {
		if jerr := m.journal.Record(entry); jerr != nil {
			m.logger.Error("recording fetch", "cycle", cycle, "err", jerr)
		}
	}

	return m.display(slices.Clone(records)), err
}

func (m *Machine) display(records []headline.Record) Display {
	return Display{
		Records:   records,
		Label:     m.src.Label(),
		Source:    m.src,
		Key:       m.key,
		FetchedAt: m.fetchedAt,
	}
}

// Displayed reports whether a Handle error still came with a display to
// render. Failed fetches do; refused events do not.
func Displayed(err error) bool {
	return err == nil ||
		errors.Is(err, page.ErrFetchUnavailable) ||
		errors.Is(err, source.ErrNoMatchingContent)
}

func outcomeOf(err error) history.Outcome {
	switch {
	case err == nil:
		return history.OutcomeOK
	case errors.Is(err, source.ErrNoMatchingContent):
		return history.OutcomeNoContent
	case errors.Is(err, page.ErrFetchUnavailable):
		return history.OutcomeUnavailable
	default:
		return history.OutcomeFailed
	}
}
