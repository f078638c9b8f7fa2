package page

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

type throttled struct {
	Fetcher
	limiter *rate.Limiter
}

// Throttle spaces loads at least every apart. A non-positive interval
// returns f unchanged.
func Throttle(f Fetcher, every time.Duration) Fetcher {
	if every <= 0 {
		return f
	}
	return &throttled{Fetcher: f, limiter: rate.NewLimiter(rate.Every(every), 1)}
}

func (t *throttled) Load(ctx context.Context, rawURL string) (*Page, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting to load %s: %w: %w", rawURL, ErrFetchUnavailable, err)
	}
	return t.Fetcher.Load(ctx, rawURL)
}
