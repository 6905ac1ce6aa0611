package stream

import (
	"sync"
	"time"
)

// keepAlive tracks probe/acknowledgement timing for staleness detection.
// The probe loop records sends, the router records acknowledgements.
type keepAlive struct {
	timeout time.Duration

	mu          sync.Mutex
	lastProbeAt time.Time
	lastAckAt   time.Time
}

func newKeepAlive(timeout time.Duration) *keepAlive {
	return &keepAlive{timeout: timeout}
}

func (k *keepAlive) markProbe(t time.Time) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.lastProbeAt = t
}

func (k *keepAlive) markAck(t time.Time) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.lastAckAt = t
}

// stale reports whether the most recent probe is unacknowledged and older
// than the timeout.
func (k *keepAlive) stale(now time.Time) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return !k.lastProbeAt.IsZero() &&
		k.lastProbeAt.After(k.lastAckAt) &&
		now.Sub(k.lastProbeAt) > k.timeout
}

// reset clears probe state for a fresh connection epoch.
func (k *keepAlive) reset() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.lastProbeAt = time.Time{}
	k.lastAckAt = time.Time{}
}
