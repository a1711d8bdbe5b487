// Package ratelimit throttles credential endpoints per client address with a
// sliding window. Windows live in Redis when configured so every replica sees
// the same counts, otherwise in process memory.
package ratelimit

import (
	"context"
	"time"
)

const keyPrefix = "tickethub:ratelimit:"

// Result is the outcome of one Allow call.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is the whole number of seconds until the window frees a slot,
// never less than one.
func (r Result) RetryAfter(now time.Time) int {
	secs := int(r.ResetAt.Sub(now).Round(time.Second) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

// Store records hits against a key and reports whether the latest one fits in
// the window.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
}
