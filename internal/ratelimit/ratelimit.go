// Package ratelimit implements fixed-window request counting per client key.
//
// The memory store keeps counters in the process, so restarts reset them and every
// instance of a horizontally scaled deployment counts on its own. The redis store
// shares counters between instances.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/AhmedSarhan/gamer-boy/internal/apperr"
)

// DefaultWindow is the window used by the presets.
const DefaultWindow = 60 * time.Second

// UnknownClient is the shared bucket for requests without a usable address header.
const UnknownClient = "unknown"

// Result reports the state of a key after a hit.
type Result struct {
	Allowed bool
	// Count is the number of requests counted in the current window.
	Count   int
	ResetAt time.Time
}

// Store counts hits per key. Implementations apply the whole fixed-window step for a
// hit atomically.
type Store interface {
	Hit(ctx context.Context, key string, max int, window time.Duration) (Result, error)
}

// Limiter gates requests against a Store.
type Limiter struct {
	Name   string
	Max    int
	Window time.Duration
	Store  Store

	now func() time.Time
}

func NewLimiter(name string, max int, window time.Duration, store Store) *Limiter {
	return &Limiter{Name: name, Max: max, Window: window, Store: store, now: time.Now}
}

// Strict is meant for mutating endpoints.
func Strict(store Store) *Limiter { return NewLimiter("strict", 10, DefaultWindow, store) }

// Moderate is meant for general reads.
func Moderate(store Store) *Limiter { return NewLimiter("moderate", 100, DefaultWindow, store) }

// Relaxed is meant for public, cheap reads.
func Relaxed(store Store) *Limiter { return NewLimiter("relaxed", 300, DefaultWindow, store) }

// Allow counts one request for key. A rejected request returns an
// apperr.RateLimitExceeded error; any other error comes from the store.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	res, err := l.Store.Hit(ctx, l.Name+":"+key, l.Max, l.Window)
	if err != nil {
		return Result{Allowed: true}, fmt.Errorf("rate limit store: %w", err)
	}
	if !res.Allowed {
		return res, apperr.RateLimited(RetryAfter(res.ResetAt, l.now()))
	}
	return res, nil
}

// Remaining returns how many requests are left in the window of res.
func (l *Limiter) Remaining(res Result) int {
	if r := l.Max - res.Count; r > 0 {
		return r
	}
	return 0
}

// RetryAfter returns the whole seconds until resetAt, at least 1.
func RetryAfter(resetAt, now time.Time) int {
	secs := int(math.Ceil(resetAt.Sub(now).Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

// ClientKey identifies the caller by the first X-Forwarded-For entry, then X-Real-IP.
// Requests carrying neither share the UnknownClient bucket.
func ClientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return UnknownClient
}
