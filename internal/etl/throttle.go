package etl

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Throttle gates outgoing geocoding requests. The transformer waits on it
// before every lookup regardless of the previous outcome, which keeps the
// pipeline inside the public API's fair-use limit.
//
// It is an interface rather than a concrete limiter so tests can inject a
// no-op gate and exercise throttle policy without real time delays.
type Throttle interface {
	Wait(ctx context.Context) error
}

// NewIntervalThrottle returns a minimum-interval gate allowing one request
// per interval with no burst. *rate.Limiter satisfies Throttle directly.
func NewIntervalThrottle(interval time.Duration) Throttle {
	return rate.NewLimiter(rate.Every(interval), 1)
}
