// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package collections

import (
	"sync"
	"time"

	"tastetrail/internal/models"
)

// MutationState is where a cached collection is in an optimistic update.
type MutationState int

const (
	// StateConfirmed means the cached copy matches the last server copy.
	StateConfirmed MutationState = iota
	// StateOptimistic means a local change is applied but not yet written.
	StateOptimistic
	// StateRolledBack means the last write failed and the pre-mutation
	// snapshot was restored.
	StateRolledBack
)

func (s MutationState) String() string {
	switch s {
	case StateOptimistic:
		return "optimistic"
	case StateRolledBack:
		return "rolled-back"
	}
	return "confirmed"
}

// entry is the cached copy of one collection. resolve serializes optimistic
// mutations of the collection; mu guards the fields.
type entry struct {
	resolve sync.Mutex

	mu       sync.Mutex
	doc      *models.UserCollection
	state    MutationState
	loadedAt time.Time
}

func (e *entry) snapshot() (*models.UserCollection, MutationState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Clone(), e.state
}

// base returns the cached copy to mutate from, or false when it must be
// reloaded: nothing loaded, last write rolled back, or older than ttl.
func (e *entry) base(now time.Time, ttl time.Duration) (*models.UserCollection, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.doc == nil || e.state == StateRolledBack || now.Sub(e.loadedAt) > ttl {
		return nil, false
	}
	return e.doc.Clone(), true
}

func (e *entry) set(doc *models.UserCollection, state MutationState, now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.doc = doc
	e.state = state
	e.loadedAt = now
}

// cache holds collection copies keyed by collection id.
type cache struct {
	ttl        time.Duration
	maxEntries int

	mu      sync.Mutex
	entries map[string]*entry
}

func newCache(ttl time.Duration, maxEntries int) *cache {
	return &cache{ttl: ttl, maxEntries: maxEntries, entries: make(map[string]*entry)}
}

// entry returns the cache slot for id, creating an empty one if needed.
func (c *cache) entry(id string, now time.Time) *entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[id]; ok {
		return e
	}
	if len(c.entries) >= c.maxEntries {
		c.sweepLocked(now)
	}
	e := &entry{}
	c.entries[id] = e
	return e
}

// fresh returns the cached copy of id if it is loaded and within the TTL.
func (c *cache) fresh(id string, now time.Time) (*models.UserCollection, bool) {
	c.mu.Lock()
	e, ok := c.entries[id]
	c.mu.Unlock()
	if !ok {
		return nil, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.doc == nil || now.Sub(e.loadedAt) > c.ttl {
		return nil, false
	}
	return e.doc.Clone(), true
}

func (c *cache) evict(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

// sweepLocked drops expired entries that are not mid-mutation.
func (c *cache) sweepLocked(now time.Time) {
	for id, e := range c.entries {
		if !e.resolve.TryLock() {
			continue
		}
		e.mu.Lock()
		expired := now.Sub(e.loadedAt) > c.ttl
		e.mu.Unlock()
		e.resolve.Unlock()
		if expired {
			delete(c.entries, id)
		}
	}
}
