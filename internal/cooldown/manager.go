// SPDX-License-Identifier: MPL-2.0

// Package cooldown implements per-command, per-key fixed-window rate limiting.
package cooldown

import (
	"sync"
	"time"

	"github.com/invowk/cmdengine/internal/clock"
	"github.com/invowk/cmdengine/pkg/commandtree"
)

type (
	// Options configures a Manager.
	Options struct {
		// Clock defaults to the system clock.
		Clock clock.Clock
		// DefaultKey generates bucket keys for cooldowns without their own key
		// function. Nil puts every invocation in one global bucket.
		DefaultKey commandtree.KeyFunc
		// IdleTTL evicts buckets unused for this long once their window has
		// expired. Zero keeps buckets for the manager's lifetime.
		IdleTTL time.Duration
	}

	// Exceeded reports one cooldown that blocked a call.
	Exceeded struct {
		Cooldown   *commandtree.Cooldown
		Key        string
		RetryAfter time.Duration
	}

	// Manager holds the bucket table. It is safe for concurrent use.
	Manager struct {
		clock      clock.Clock
		defaultKey commandtree.KeyFunc
		idleTTL    time.Duration

		mu        sync.Mutex
		buckets   map[bucketID]*Bucket
		lastSweep time.Time
	}

	bucketID struct {
		def *commandtree.Cooldown
		key string
	}
)

// New creates a Manager.
func New(opts Options) *Manager {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.DefaultKey == nil {
		opts.DefaultKey = commandtree.GlobalKey
	}
	return &Manager{
		clock:      opts.Clock,
		defaultKey: opts.DefaultKey,
		idleTTL:    opts.IdleTTL,
		buckets:    make(map[bucketID]*Bucket),
	}
}

// Check reports every cooldown of cmd that would block a call now, without
// consuming anything.
func (m *Manager) Check(cmd *commandtree.Command, ec *commandtree.ExecutionContext) []Exceeded {
	exceeded, release := m.evaluate(cmd, ec)
	release(false)
	return exceeded
}

// Acquire checks every cooldown of cmd and, when none blocks, consumes one
// call from each bucket. Checking and consuming happen under the bucket locks,
// so concurrent callers cannot both take the last call.
func (m *Manager) Acquire(cmd *commandtree.Command, ec *commandtree.ExecutionContext) []Exceeded {
	exceeded, release := m.evaluate(cmd, ec)
	release(len(exceeded) == 0)
	return exceeded
}

// Reset restores every bucket of cmd to its full amount.
func (m *Manager) Reset(cmd *commandtree.Command) {
	defs := make(map[*commandtree.Cooldown]bool)
	for _, def := range cmd.Cooldowns() {
		defs[def] = true
	}
	var targets []*Bucket
	m.mu.Lock()
	for id, b := range m.buckets {
		if defs[id.def] {
			targets = append(targets, b)
		}
	}
	m.mu.Unlock()

	for _, b := range targets {
		b.mu.Lock()
		b.reset()
		b.mu.Unlock()
	}
}

// ResetAll drops every bucket.
func (m *Manager) ResetAll() {
	m.mu.Lock()
	old := m.buckets
	m.buckets = make(map[bucketID]*Bucket)
	m.mu.Unlock()

	for _, b := range old {
		b.mu.Lock()
		b.evicted = true
		b.mu.Unlock()
	}
}

// Len returns the number of live buckets.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buckets)
}

// evaluate locks the buckets of cmd in declaration order and runs the window
// rules. The returned release function consumes from every bucket when
// commit is true and then unlocks them.
func (m *Manager) evaluate(cmd *commandtree.Command, ec *commandtree.ExecutionContext) ([]Exceeded, func(commit bool)) {
	now := m.clock.Now()
	m.sweep(now)

	var (
		locked   []*Bucket
		exceeded []Exceeded
	)
	for _, def := range cmd.Cooldowns() {
		key, ok := m.key(def, ec)
		if !ok {
			continue
		}
		b := m.lockBucket(bucketID{def: def, key: key})
		locked = append(locked, b)
		if wait := b.check(now); wait > 0 {
			exceeded = append(exceeded, Exceeded{Cooldown: def, Key: key, RetryAfter: wait})
		}
	}

	return exceeded, func(commit bool) {
		for _, b := range locked {
			if commit {
				b.consume(now)
			}
			b.mu.Unlock()
		}
	}
}

func (m *Manager) key(def *commandtree.Cooldown, ec *commandtree.ExecutionContext) (string, bool) {
	if def.Key != nil {
		return def.Key(def.BucketType, ec)
	}
	return m.defaultKey(def.BucketType, ec)
}

// lockBucket returns the live bucket for id with its mutex held, creating it
// on first use.
func (m *Manager) lockBucket(id bucketID) *Bucket {
	for {
		m.mu.Lock()
		b, ok := m.buckets[id]
		if !ok {
			b = newBucket(id.def)
			m.buckets[id] = b
		}
		m.mu.Unlock()

		b.mu.Lock()
		if !b.evicted {
			return b
		}
		b.mu.Unlock()
	}
}

func (m *Manager) sweep(now time.Time) {
	if m.idleTTL <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if now.Sub(m.lastSweep) < m.idleTTL {
		return
	}
	m.lastSweep = now
	for id, b := range m.buckets {
		if !b.mu.TryLock() {
			continue
		}
		if b.idle(now, m.idleTTL) {
			b.evicted = true
			delete(m.buckets, id)
		}
		b.mu.Unlock()
	}
}
