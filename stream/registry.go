package stream

import (
	"sort"
	"sync"
)

// subscriptionRegistry is the authoritative record of consumer intent: which
// feeds are wanted and whether the session should be authenticated. It has
// no transport knowledge, survives reconnects, and is the source of truth
// for replay.
type subscriptionRegistry struct {
	mu     sync.Mutex
	feeds  map[string]struct{}
	authed bool
}

func newSubscriptionRegistry() *subscriptionRegistry {
	return &subscriptionRegistry{feeds: make(map[string]struct{})}
}

// add records feed ids. Adding a present id is a no-op.
func (r *subscriptionRegistry) add(feeds ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range feeds {
		r.feeds[f] = struct{}{}
	}
}

// remove forgets feed ids. Removing an absent id is a no-op.
func (r *subscriptionRegistry) remove(feeds ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range feeds {
		delete(r.feeds, f)
	}
}

// snapshot returns the current set, sorted for deterministic replay.
func (r *subscriptionRegistry) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.feeds))
	for f := range r.feeds {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func (r *subscriptionRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.feeds)
}

// markAuthenticated records that private feeds should be re-authenticated
// after a reconnect.
func (r *subscriptionRegistry) markAuthenticated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.authed = true
}

func (r *subscriptionRegistry) markUnauthenticated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.authed = false
}

func (r *subscriptionRegistry) wantAuth() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.authed
}
