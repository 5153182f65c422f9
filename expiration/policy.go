package expiration

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Policy decides the expiration time of an entry written at a given time.
type Policy interface {
	// ExpiresAt returns the time an entry written at now expires.
	// The zero time means the entry never expires.
	ExpiresAt(now time.Time) time.Time
}

// IsExpired reports whether an entry with the given expiration time is expired at now.
// A zero expiresAt never expires.
func IsExpired(now, expiresAt time.Time) bool {
	return !expiresAt.IsZero() && !expiresAt.After(now)
}

// TTL returns the remaining lifetime of an entry written at now, for stores that take a duration.
// It returns 0 when the entry never expires, and a negative duration when the entry is already expired.
func TTL(p Policy, now time.Time) time.Duration {
	expiresAt := p.ExpiresAt(now)
	if expiresAt.IsZero() {
		return 0
	}
	if d := expiresAt.Sub(now); d > 0 {
		return d
	}
	return -1
}

// Never is a policy that never expires an entry.
type Never struct{}

var _ Policy = Never{}

// ExpiresAt always returns the zero time.
func (Never) ExpiresAt(time.Time) time.Time {
	return time.Time{}
}

// Fixed is a policy that expires an entry after a fixed duration.
type Fixed time.Duration

var _ Policy = Fixed(0)

// ExpiresAt returns now plus the duration.
// A non-positive duration means the entry never expires.
func (d Fixed) ExpiresAt(now time.Time) time.Time {
	if d <= 0 {
		return time.Time{}
	}
	return now.Add(time.Duration(d))
}

// Jittered is a policy that expires an entry after TTL plus a random duration in [0, Jitter).
// Entries loaded together by a batch load then expire at different times,
// so the backing store does not receive their reloads at once.
type Jittered struct {
	// TTL is the base lifetime of an entry. A non-positive TTL means the entry never expires.
	TTL time.Duration

	// Jitter is the upper bound of the random extension.
	Jitter time.Duration

	// Random is the random number generator for the extension.
	// If not set, the default system random generator is used.
	// This can be set to a specific random generator for deterministic behavior in tests.
	Random *rand.Rand

	mu sync.Mutex
}

var _ Policy = (*Jittered)(nil)

// ExpiresAt returns now plus TTL plus a random extension.
func (p *Jittered) ExpiresAt(now time.Time) time.Time {
	if p.TTL <= 0 {
		return time.Time{}
	}
	if p.Jitter <= 0 {
		return now.Add(p.TTL)
	}
	return now.Add(p.TTL + time.Duration(p.int64N(int64(p.Jitter))))
}

func (p *Jittered) int64N(n int64) int64 {
	if p.Random == nil {
		return rand.Int64N(n)
	}

	// rand.Rand is not safe for concurrent use.
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Random.Int64N(n)
}
