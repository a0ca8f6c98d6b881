// Package limiter implements the fixed-window attempt counter guarding the
// credential endpoints.  Counting is per key (client address + action);
// non-overlapping windows reset wholesale at the boundary, so bursts across
// a boundary are possible and accepted.  A Limiter instance is injected into
// the handlers, never shared through package state, so tests build fresh
// ones and deployments can swap the backend without touching call sites.
package limiter

import (
	"context"
	"time"
)

// Limiter answers whether one more attempt under key is allowed right now.
// max and window parameterize the budget per call so different actions can
// carry different budgets over the same backend.  When the attempt is
// rejected, retryAfter reports how long until the window resets.
type Limiter interface {
	Allow(ctx context.Context, key string, max int, window time.Duration) (allowed bool, retryAfter time.Duration)
}
