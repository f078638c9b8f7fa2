// Package source knows where each headline category comes from and how to
// pull headlines out of its front page.
package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matheuskafuri/headlines/internal/headline"
	"github.com/matheuskafuri/headlines/internal/page"
)

// ErrNoMatchingContent reports that a page loaded but none of its elements
// yielded a usable headline.
var ErrNoMatchingContent = errors.New("no matching content")

// ErrUnknownSource is returned by Parse for names outside the fixed set.
var ErrUnknownSource = errors.New("unknown source")

// Source identifies one of the fixed headline categories.
type Source int

const (
	Sports Source = iota
	Finance
	Politics
	Health
)

// All returns every source in menu order.
func All() []Source {
	return []Source{Sports, Finance, Politics, Health}
}

type site struct {
	name      string
	label     string
	url       string
	cap       int
	extractor Extractor
}

var sites = map[Source]site{
	Sports:   {name: "sports", label: "ESPN.com", url: "https://www.espn.com/", cap: 10, extractor: sportsExtractor{}},
	Finance:  {name: "finance", label: "Investing.com", url: "https://www.investing.com/", cap: 10, extractor: financeExtractor{}},
	Politics: {name: "politics", label: "BBC.com", url: "https://www.bbc.com/", cap: 6, extractor: politicsExtractor{}},
	Health:   {name: "health", label: "Health.com", url: "https://www.health.com/", cap: 10, extractor: healthExtractor{}},
}

// Parse resolves a category name ("sports", "Finance", ...) to a Source.
func Parse(name string) (Source, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, s := range All() {
		if sites[s].name == n {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q (valid: %s)", ErrUnknownSource, name, strings.Join(Names(), ", "))
}

// Names returns the lowercase names of every source in menu order.
func Names() []string {
	out := make([]string, 0, len(sites))
	for _, s := range All() {
		out = append(out, sites[s].name)
	}
	return out
}

// Valid reports whether s is one of the fixed sources.
func (s Source) Valid() bool {
	_, ok := sites[s]
	return ok
}

// String returns the lowercase name used in config and on the command line.
func (s Source) String() string {
	if sp, ok := sites[s]; ok {
		return sp.name
	}
	return fmt.Sprintf("source(%d)", int(s))
}

// Title is the category name as shown on the category bar.
func (s Source) Title() string {
	name := s.String()
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// Label is the site the category is drawn from.
func (s Source) Label() string { return sites[s].label }

// URL is the page the category's headlines are extracted from.
func (s Source) URL() string { return sites[s].url }

// Cap is the default maximum number of headlines the source yields.
func (s Source) Cap() int { return sites[s].cap }

// Extractor pulls candidate headlines out of a loaded page, in document
// order. It does not filter or cap; Extract does that uniformly.
type Extractor interface {
	Candidates(p *page.Page) []headline.RawItem
}

// Extractor returns the extraction rules for s.
func (s Source) Extractor() Extractor { return sites[s].extractor }

// Extract loads the source's page through f and returns at most limit
// headlines (the source's Cap when limit <= 0). On failure it returns an
// empty, non-nil slice and an error wrapping page.ErrFetchUnavailable (any
// Load error counts) or ErrNoMatchingContent; callers are expected to carry on with the empty
// result.
func Extract(ctx context.Context, s Source, f page.Fetcher, limit int) ([]headline.RawItem, error) {
	if !s.Valid() {
		return []headline.RawItem{}, fmt.Errorf("%w: %d", ErrUnknownSource, int(s))
	}
	if limit <= 0 {
		limit = s.Cap()
	}

	p, err := f.Load(ctx, s.URL())
	if err != nil {
		if !errors.Is(err, page.ErrFetchUnavailable) {
			err = fmt.Errorf("%w: %w", page.ErrFetchUnavailable, err)
		}
		return []headline.RawItem{}, fmt.Errorf("extracting %s: %w", s, err)
	}

	items := clean(s.Extractor().Candidates(p), limit)
	if len(items) == 0 {
		return items, fmt.Errorf("extracting %s from %s: %w", s, s.URL(), ErrNoMatchingContent)
	}
	return items, nil
}

// clean drops candidates with blank text or link and truncates to limit.
func clean(candidates []headline.RawItem, limit int) []headline.RawItem {
	out := make([]headline.RawItem, 0, min(len(candidates), limit))
	for _, c := range candidates {
		if len(out) == limit {
			break
		}
		text := strings.TrimSpace(c.Text)
		link := strings.TrimSpace(c.Link)
		if text == "" || link == "" {
			continue
		}
		out = append(out, headline.RawItem{Text: text, Link: link})
	}
	return out
}
