// SPDX-License-Identifier: MPL-2.0

package cooldown

import (
	"sync"
	"time"

	"github.com/invowk/cmdengine/pkg/commandtree"
)

// Bucket is the runtime counter for one (cooldown, key) pair.
//
// The window is self-anchoring: it restarts at the call that exhausts the
// bucket, so a burst that drains it always waits a full period.
type Bucket struct {
	mu        sync.Mutex
	def       *commandtree.Cooldown
	remaining int
	window    time.Time
	lastCall  time.Time
	evicted   bool
}

func newBucket(def *commandtree.Cooldown) *Bucket {
	return &Bucket{def: def, remaining: def.Amount}
}

// Remaining returns the calls left in the current window.
func (b *Bucket) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remaining
}

// check applies the window rules at now and reports how long the caller must
// wait, or 0 when the call is permitted. Must be called with mu held.
func (b *Bucket) check(now time.Time) time.Duration {
	b.lastCall = now
	if b.remaining == b.def.Amount {
		b.window = now
	}
	if !now.Before(b.window.Add(b.def.Per)) {
		b.remaining = b.def.Amount
		b.window = now
	}
	if b.remaining == 0 {
		return b.def.Per - now.Sub(b.window)
	}
	return 0
}

// consume takes one call from the bucket. Must be called with mu held.
func (b *Bucket) consume(now time.Time) {
	if b.remaining > 0 {
		b.remaining--
	}
	if b.remaining == 0 {
		b.window = now
	}
}

// reset restores the full amount. Must be called with mu held.
func (b *Bucket) reset() {
	b.remaining = b.def.Amount
	b.window = time.Time{}
	b.lastCall = time.Time{}
}

// idle reports whether the bucket is indistinguishable from a fresh one and
// unused for at least ttl. Must be called with mu held.
func (b *Bucket) idle(now time.Time, ttl time.Duration) bool {
	if now.Sub(b.lastCall) < ttl {
		return false
	}
	return b.remaining == b.def.Amount || !now.Before(b.window.Add(b.def.Per))
}
