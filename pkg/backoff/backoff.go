// Package backoff computes retry delays for transient delivery failures.
package backoff

import (
	"math"
	"math/rand"
	"time"
)

// Delay returns the exponential backoff for the given attempt number with up
// to 20% jitter, capped at max. attempt is zero-based: the first retry after
// a failure uses attempt 0.
func Delay(base time.Duration, attempt int, max time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}

	exp := math.Pow(2, float64(attempt))
	delay := time.Duration(float64(base) * exp)

	jitter := time.Duration(rand.Float64() * 0.2 * float64(delay))
	delay += jitter

	if max > 0 && delay > max {
		return max
	}

	return delay
}
