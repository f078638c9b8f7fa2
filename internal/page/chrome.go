package page

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/chromedp"
)

// DefaultReadyTimeout bounds how long a load waits for the document body.
const DefaultReadyTimeout = 10 * time.Second

// ChromeOptions configures the headless browser session.
type ChromeOptions struct {
	Headless     bool
	ExecPath     string
	UserAgent    string
	ReadyTimeout time.Duration
}

// ChromeFetcher drives a single long-lived Chrome instance. The browser is
// started on the first Load and reused for every page after that. Loads are
// serialized: the session has one tab and is not shared.
type ChromeFetcher struct {
	opts   ChromeOptions
	logger *log.Logger

	mu            sync.Mutex
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
}

func NewChromeFetcher(opts ChromeOptions, logger *log.Logger) *ChromeFetcher {
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = DefaultReadyTimeout
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &ChromeFetcher{opts: opts, logger: logger}
}

func (f *ChromeFetcher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", f.opts.Headless),
		chromedp.Flag("ignore-certificate-errors", true),
	)
	if f.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(f.opts.ExecPath))
	}
	if f.opts.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(f.opts.UserAgent))
	}
	return opts
}

// start launches the browser if it is not running, relaunching it when the
// previous session has died. Caller holds f.mu.
func (f *ChromeFetcher) start() error {
	if f.browserCtx != nil {
		if f.browserCtx.Err() == nil {
			return nil
		}
		f.logger.Warn("chrome session lost, relaunching", "err", context.Cause(f.browserCtx))
		f.stop()
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), f.allocatorOptions()...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// An empty Run starts the browser process.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return fmt.Errorf("starting chrome: %w", err)
	}
	f.browserCtx = browserCtx
	f.cancelBrowser = cancelBrowser
	f.cancelAlloc = cancelAlloc
	f.logger.Info("chrome session started", "headless", f.opts.Headless)
	return nil
}

func (f *ChromeFetcher) Load(ctx context.Context, rawURL string) (*Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("loading %s: %w: %w", rawURL, ErrFetchUnavailable, err)
	}
	if err := f.start(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchUnavailable, err)
	}

	// Tab actions must run under the browser context; the caller's context
	// only contributes cancellation.
	runCtx, cancel := context.WithTimeout(f.browserCtx, f.opts.ReadyTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	start := time.Now()
	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		f.logger.Warn("chrome load failed", "url", rawURL, "err", err)
		return nil, fmt.Errorf("loading %s: %w: %w", rawURL, ErrFetchUnavailable, err)
	}
	f.logger.Debug("chrome load", "url", rawURL, "bytes", len(html), "took", time.Since(start))
	return FromReader(rawURL, strings.NewReader(html))
}

// Close shuts the browser down. It is safe to call more than once.
func (f *ChromeFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancelBrowser != nil {
		f.stop()
		f.logger.Info("chrome session closed")
	}
	return nil
}

// stop cancels the session contexts and forgets them. Caller holds f.mu.
func (f *ChromeFetcher) stop() {
	if f.cancelBrowser != nil {
		f.cancelBrowser()
	}
	if f.cancelAlloc != nil {
		f.cancelAlloc()
	}
	f.browserCtx = nil
	f.cancelBrowser = nil
	f.cancelAlloc = nil
}
