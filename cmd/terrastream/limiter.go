package main

import (
	"context"

	"golang.org/x/time/rate"
)

// fpsLimiter paces frames with a token bucket of one frame. A burst of one
// means a hitch is never paid back with a run of unpaced frames.
type fpsLimiter struct {
	bucket *rate.Limiter
	limit  int
}

// Wait blocks until the next frame is due at limit frames per second; a
// limit of zero or less does not wait.
func (f *fpsLimiter) Wait(limit int) {
	if limit <= 0 {
		f.bucket, f.limit = nil, 0
		return
	}
	switch {
	case f.bucket == nil:
		f.bucket = rate.NewLimiter(rate.Limit(limit), 1)
	case limit != f.limit:
		f.bucket.SetLimit(rate.Limit(limit))
	}
	f.limit = limit
	// only fails for a cancelled context
	_ = f.bucket.Wait(context.Background())
}
