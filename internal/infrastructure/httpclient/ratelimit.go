package httpclient

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// hostLimiter keeps one token bucket per host so feeds and article pages on
// the same outlet are spaced while other outlets proceed. A nil *hostLimiter
// never blocks.
type hostLimiter struct {
	every rate.Limit
	burst int

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

func newHostLimiter(interval time.Duration, burst int) *hostLimiter {
	if interval <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &hostLimiter{
		every:   rate.Every(interval),
		burst:   burst,
		buckets: map[string]*rate.Limiter{},
	}
}

// wait blocks until host may receive another request or ctx ends.
func (h *hostLimiter) wait(ctx context.Context, host string) error {
	if h == nil {
		return nil
	}
	return h.bucket(host).Wait(ctx)
}

func (h *hostLimiter) bucket(host string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()

	b, ok := h.buckets[host]
	if !ok {
		b = rate.NewLimiter(h.every, h.burst)
		h.buckets[host] = b
	}
	return b
}
