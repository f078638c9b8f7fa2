package page

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gocolly/colly/v2"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// HTTPFetcher fetches raw HTML without running scripts. Pages that build
// their headlines client-side will come back with nothing to match.
type HTTPFetcher struct {
	userAgent string
	timeout   time.Duration
	logger    *log.Logger
}

func NewHTTPFetcher(userAgent string, timeout time.Duration, logger *log.Logger) *HTTPFetcher {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if timeout <= 0 {
		timeout = DefaultReadyTimeout
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &HTTPFetcher{userAgent: userAgent, timeout: timeout, logger: logger}
}

func (f *HTTPFetcher) Load(ctx context.Context, rawURL string) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("loading %s: %w: %w", rawURL, ErrFetchUnavailable, err)
	}

	c := colly.NewCollector(
		colly.UserAgent(f.userAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(f.timeout)

	var (
		body     []byte
		finalURL = rawURL
		loadErr  error
	)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		finalURL = r.Request.URL.String()
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			loadErr = fmt.Errorf("status %d: %w", r.StatusCode, err)
			return
		}
		loadErr = err
	})

	start := time.Now()
	if err := c.Visit(rawURL); err != nil && loadErr == nil {
		loadErr = err
	}
	if loadErr != nil {
		f.logger.Warn("http load failed", "url", rawURL, "err", loadErr)
		return nil, fmt.Errorf("loading %s: %w: %w", rawURL, ErrFetchUnavailable, loadErr)
	}
	f.logger.Debug("http load", "url", finalURL, "bytes", len(body), "took", time.Since(start))
	return FromReader(finalURL, bytes.NewReader(body))
}

func (f *HTTPFetcher) Close() error { return nil }
