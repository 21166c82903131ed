// Package cache holds locally mirrored children of a remote parent entity.
//
// A Collection never drops an entity as a side effect of a refresh: incoming
// records either update the cached entity with the same key in place or are
// appended as new entities. Removal only happens through Remove.
package cache

import "sync"

// State tells how much of the remote collection has been mirrored.
type State int

const (
	// NotLoaded means nothing was fetched yet.
	NotLoaded State = iota
	// Partial means some entities were fetched one by one or by a filtered query.
	Partial
	// Loaded means a full listing was merged at least once.
	Loaded
)

func (s State) String() string {
	switch s {
	case Partial:
		return "partial"
	case Loaded:
		return "loaded"
	default:
		return "not_loaded"
	}
}

// Binding tells a Collection how wire records map onto cached entities.
type Binding[K comparable, R any, V any] struct {
	// Key extracts the identity of a record.
	Key func(R) K
	// New instantiates an entity for a record with no cached counterpart.
	New func(R) V
	// Refresh copies a record onto an already cached entity.
	Refresh func(V, R)
}

// Collection is an insertion-ordered set of entities keyed by remote id.
//
// Refresh and New run while the collection lock is held, so they must not
// call back into the same collection.
type Collection[K comparable, R any, V any] struct {
	mu      sync.RWMutex
	state   State
	order   []K
	items   map[K]V
	binding Binding[K, R, V]
}

// New creates an empty, not yet loaded collection.
func New[K comparable, R any, V any](binding Binding[K, R, V]) *Collection[K, R, V] {
	return &Collection[K, R, V]{
		items:   make(map[K]V),
		binding: binding,
	}
}

// State reports the load state.
func (c *Collection[K, R, V]) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Loaded reports whether a full listing was merged.
func (c *Collection[K, R, V]) Loaded() bool {
	return c.State() == Loaded
}

// Len returns the number of cached entities.
func (c *Collection[K, R, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Get returns the cached entity for key.
func (c *Collection[K, R, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[key]
	return v, ok
}

// List returns the cached entities in insertion order.
func (c *Collection[K, R, V]) List() []V {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]V, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.items[k])
	}
	return out
}

// Find returns the first entity, in insertion order, matching pred.
func (c *Collection[K, R, V]) Find(pred func(V) bool) (V, bool) {
	for _, v := range c.List() {
		if pred(v) {
			return v, true
		}
	}
	var zero V
	return zero, false
}

// Upsert merges records without claiming the collection is complete.
// It returns the entities backing each record, in record order.
func (c *Collection[K, R, V]) Upsert(records ...R) []V {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.mergeLocked(records)
	if c.state == NotLoaded && len(records) > 0 {
		c.state = Partial
	}
	return out
}

// Merge merges a full listing and marks the collection loaded.
// Cached entities absent from records are kept.
func (c *Collection[K, R, V]) Merge(records []R) []V {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.mergeLocked(records)
	c.state = Loaded
	return out
}

// Remove evicts key. It reports whether the key was cached.
func (c *Collection[K, R, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[key]; !ok {
		return false
	}
	delete(c.items, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

func (c *Collection[K, R, V]) mergeLocked(records []R) []V {
	out := make([]V, 0, len(records))
	for _, r := range records {
		key := c.binding.Key(r)
		if v, ok := c.items[key]; ok {
			c.binding.Refresh(v, r)
			out = append(out, v)
			continue
		}
		v := c.binding.New(r)
		c.items[key] = v
		c.order = append(c.order, key)
		out = append(out, v)
	}
	return out
}
