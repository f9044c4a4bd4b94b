package pipeline

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/wh0isdsmith/narr-ai-tive/internal/gemini"
)

// IsRetryable reports whether a generation failure is transient. Retry lives
// here, outside the iteration loop; the Controller itself never retries a
// failed service call.
func IsRetryable(err error) bool {
	var genErr *gemini.GenerationError
	return errors.As(err, &genErr) && genErr.Retryable()
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

const MaxRetries = 3
