package page

import (
	"context"
	"fmt"
	"sync"
)

// StaticFetcher serves pages from memory. URLs without an entry fail with
// ErrFetchUnavailable.
type StaticFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	loads map[string]int
}

func NewStaticFetcher(pages map[string]string) *StaticFetcher {
	cp := make(map[string]string, len(pages))
	for k, v := range pages {
		cp[k] = v
	}
	return &StaticFetcher{pages: cp, loads: make(map[string]int)}
}

// Set replaces the HTML served for rawURL.
func (f *StaticFetcher) Set(rawURL, html string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[rawURL] = html
}

// Loads reports how many times rawURL has been requested.
func (f *StaticFetcher) Loads(rawURL string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads[rawURL]
}

func (f *StaticFetcher) Load(ctx context.Context, rawURL string) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("loading %s: %w: %w", rawURL, ErrFetchUnavailable, err)
	}
	f.mu.Lock()
	f.loads[rawURL]++
	html, ok := f.pages[rawURL]
	f.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("loading %s: %w: no such page", rawURL, ErrFetchUnavailable)
	}
	return FromHTML(rawURL, html)
}

func (f *StaticFetcher) Close() error { return nil }
