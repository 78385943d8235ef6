package memberships

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultCooldown is the advisory per-operation cooldown. Throttling resists
// rapid-fire retries only; the engine's idempotency guarantees hold even when
// throttling is disabled entirely.
const DefaultCooldown = 3 * time.Second

// pruneThreshold bounds the attempt map: once it grows past this, stale
// entries are swept on the next Allow.
const pruneThreshold = 4096

// Throttle rejects repeated invocations of the same (user, event, operation)
// key within a cooldown window.
type Throttle struct {
	mu       sync.Mutex
	last     map[string]time.Time
	cooldown time.Duration
	now      func() time.Time
}

func NewThrottle(cooldown time.Duration) *Throttle {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Throttle{
		last:     make(map[string]time.Time),
		cooldown: cooldown,
		now:      time.Now,
	}
}

// Allow reports whether the keyed operation may proceed, recording the attempt
// when it does. Denied attempts do not extend the window.
func (t *Throttle) Allow(userID, eventID uuid.UUID, operation string) bool {
	key := userID.String() + ":" + eventID.String() + ":" + operation

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if lastAttempt, ok := t.last[key]; ok && now.Sub(lastAttempt) < t.cooldown {
		return false
	}

	if len(t.last) > pruneThreshold {
		cutoff := now.Add(-t.cooldown)
		for k, at := range t.last {
			if at.Before(cutoff) {
				delete(t.last, k)
			}
		}
	}

	t.last[key] = now
	return true
}
