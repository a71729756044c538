// Package ratelimit provides fixed-window request counting keyed by client
// IP. Its purpose is abuse dampening, not a correctness guarantee: the
// in-process fallback resets on restart and the durable backend fails open.
package ratelimit

import "context"

// Limiter reports whether one more request under key is admitted within the
// current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
