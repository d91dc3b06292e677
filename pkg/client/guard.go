package client

import "sync"

// ReauthGuard is a single-flight latch for the reauthentication redirect.
// A burst of concurrent requests that all come back unauthenticated must
// produce at most one navigation; the latch stays engaged until a full
// navigation completes and calls Reset. It is scoped to one running client
// instance and is a storm-prevention mechanism, not a correctness one.
type ReauthGuard struct {
	mu      sync.Mutex
	engaged bool
}

// TryEnter engages the latch. It returns true for exactly one caller until
// Reset is called.
func (g *ReauthGuard) TryEnter() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.engaged {
		return false
	}
	g.engaged = true
	return true
}

// Reset releases the latch. The embedder calls this when a full navigation
// has completed.
func (g *ReauthGuard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.engaged = false
}

// Engaged reports whether a redirect is in flight.
func (g *ReauthGuard) Engaged() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.engaged
}
