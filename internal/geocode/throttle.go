package geocode

import (
	"context"
	"sync"
	"time"
)

// Throttled spaces consecutive calls to a geocoder by a fixed delay to stay within
// the provider's usage policy.
type Throttled struct {
	next  Geocoder
	delay time.Duration

	mu   sync.Mutex
	last time.Time
}

// Throttle wraps g so calls start at least delay apart.
func Throttle(g Geocoder, delay time.Duration) *Throttled {
	return &Throttled{next: g, delay: delay}
}

// Name implements Geocoder.
func (t *Throttled) Name() string { return t.next.Name() }

// Geocode waits out the remaining delay, then calls the wrapped geocoder.
func (t *Throttled) Geocode(ctx context.Context, query string) (Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.last.IsZero() && t.delay > 0 {
		if wait := t.delay - time.Since(t.last); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return Result{}, ctx.Err()
			case <-timer.C:
			}
		}
	}
	t.last = time.Now()
	return t.next.Geocode(ctx, query)
}
