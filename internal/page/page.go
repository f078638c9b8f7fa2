// Package page loads web pages and exposes their structure for querying.
//
// A Fetcher produces a *Page; extractors query it with CSS selectors and read
// element text and attributes. Engines differ only in how the HTML is
// obtained (a headless browser or a plain HTTP request); querying always goes
// through goquery.
package page

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrFetchUnavailable reports that a page could not be loaded or did not
// become ready in time.
var ErrFetchUnavailable = errors.New("page unavailable")

// Fetcher loads pages. Implementations are not required to be safe for
// concurrent use.
type Fetcher interface {
	Load(ctx context.Context, rawURL string) (*Page, error)
	Close() error
}

// Page is a loaded, queryable document.
type Page struct {
	base *url.URL
	doc  *goquery.Document
}

// FromReader parses HTML read from r as the document located at rawURL.
func FromReader(rawURL string, r io.Reader) (*Page, error) {
	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing page url: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html for %s: %w", rawURL, err)
	}
	return &Page{base: base, doc: doc}, nil
}

// FromHTML is FromReader for an in-memory document.
func FromHTML(rawURL, html string) (*Page, error) {
	return FromReader(rawURL, strings.NewReader(html))
}

// URL returns the address the page was loaded from.
func (p *Page) URL() string {
	return p.base.String()
}

// QueryAll returns every element matching selector, in document order.
// An invalid selector matches nothing.
func (p *Page) QueryAll(selector string) []Element {
	sel := p.doc.Find(selector)
	out := make([]Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, Element{sel: s, base: p.base})
	})
	return out
}

// Element is a single node from a Page.
type Element struct {
	sel  *goquery.Selection
	base *url.URL
}

// Text returns the element's text with runs of whitespace collapsed to a
// single space and the ends trimmed.
func (e Element) Text() string {
	if e.sel == nil {
		return ""
	}
	return strings.Join(strings.Fields(e.sel.Text()), " ")
}

// Attr returns the raw attribute value as written in the markup.
func (e Element) Attr(name string) (string, bool) {
	if e.sel == nil {
		return "", false
	}
	v, ok := e.sel.Attr(name)
	return strings.TrimSpace(v), ok
}

// Href returns the element's link resolved against the page URL, the same
// value a browser reports for the anchor's href property. It is empty when
// the attribute is missing, blank or unparsable.
func (e Element) Href() string {
	raw, ok := e.Attr("href")
	if !ok || raw == "" {
		return ""
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if e.base == nil {
		return ref.String()
	}
	return e.base.ResolveReference(ref).String()
}

// Find returns the first descendant matching selector.
func (e Element) Find(selector string) (Element, bool) {
	if e.sel == nil {
		return Element{}, false
	}
	s := e.sel.Find(selector).First()
	if s.Length() == 0 {
		return Element{}, false
	}
	return Element{sel: s, base: e.base}, true
}
