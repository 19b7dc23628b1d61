// internal/orchestrator/pacer.go
package orchestrator

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces consecutive backend calls.
type Pacer interface {
	Wait(ctx context.Context) error
}

// NewPacer lets the first call through immediately and then one call per
// delay. A non-positive delay disables pacing.
func NewPacer(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}
