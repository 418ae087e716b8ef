package input

import (
	"sync"
	"time"

	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/vehicle"
)

// DefaultStaleAfter is how long a network intent stays valid without a
// refresh before the vehicle coasts.
const DefaultStaleAfter = 500 * time.Millisecond

// Remote holds the latest intent received over the network. Store is
// called from connection goroutines, SampleIntent from the sim loop.
type Remote struct {
	mu         sync.Mutex
	last       vehicle.Intent
	sequence   uint64
	receivedAt time.Time
	staleAfter time.Duration
	now        func() time.Time
}

// NewRemote creates a sampler whose intents expire after staleAfter.
// A non-positive staleAfter disables expiry.
func NewRemote(staleAfter time.Duration) *Remote {
	return &Remote{staleAfter: staleAfter, now: time.Now}
}

// Store records an intent. Out-of-order sequences (older than the last
// stored one) are dropped; sequence 0 is always accepted.
func (r *Remote) Store(seq uint64, in vehicle.Intent) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if seq != 0 && seq < r.sequence {
		return false
	}
	r.sequence = seq
	r.last = in.Clamped()
	r.receivedAt = r.now()
	return true
}

// Disconnect drops the stored intent so the vehicle coasts.
func (r *Remote) Disconnect() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = vehicle.Neutral()
	r.receivedAt = time.Time{}
}

// Sequence returns the last accepted input sequence.
func (r *Remote) Sequence() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sequence
}

func (r *Remote) SampleIntent() vehicle.Intent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.receivedAt.IsZero() {
		return vehicle.Neutral()
	}
	if r.staleAfter > 0 && r.now().Sub(r.receivedAt) > r.staleAfter {
		return vehicle.Neutral()
	}
	return r.last
}
