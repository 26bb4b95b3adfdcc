// Package cache holds the run-scoped snapshot of collected provider state.
//
// The cache is a flat map from a typed composite Key to a Node. Collector
// units write each key exactly once during collection; the cache is then
// frozen and shared read-only with every rule. Rules read through a Tracker
// so the subset of the cache they consumed can be reported alongside their
// findings.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrDuplicateKey is returned when a key is written a second time.
	ErrDuplicateKey = errors.New("cache key already written")

	// ErrFrozen is returned when writing to a frozen cache.
	ErrFrozen = errors.New("cache is frozen")

	// ErrEmptyNode is returned when writing a node with neither data nor error.
	ErrEmptyNode = errors.New("cache node has neither data nor error")
)

// Reader is the read-only view of the cache handed to rules.
type Reader interface {
	// Get returns the node stored at key. It never creates entries.
	Get(key Key) (*Node, bool)
}

// Cache is the Source Cache for one run.
// The mutex guards the map for memory safety only; key uniqueness comes from
// deterministic key derivation in the collector.
type Cache struct {
	mu     sync.RWMutex
	nodes  map[Key]*Node
	frozen bool
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{nodes: make(map[Key]*Node)}
}

// Put stores node at key. Each key may be written once per run.
func (c *Cache) Put(key Key, node *Node) error {
	if node == nil || (node.Data == nil && node.Err == nil) {
		return fmt.Errorf("put %s: %w", key, ErrEmptyNode)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen {
		return fmt.Errorf("put %s: %w", key, ErrFrozen)
	}
	if _, exists := c.nodes[key]; exists {
		return fmt.Errorf("put %s: %w", key, ErrDuplicateKey)
	}
	c.nodes[key] = node
	return nil
}

// Get implements Reader.
func (c *Cache) Get(key Key) (*Node, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, ok := c.nodes[key]
	return n, ok
}

// Freeze makes the cache read-only. It marks the barrier between the
// collection and evaluation phases.
func (c *Cache) Freeze() {
	c.mu.Lock()
	c.frozen = true
	c.mu.Unlock()
}

// Frozen reports whether Freeze has been called.
func (c *Cache) Frozen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frozen
}

// Len returns the number of stored keys.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.nodes)
}

// Keys returns every stored key in a stable order.
func (c *Cache) Keys() []Key {
	c.mu.RLock()
	keys := make([]Key, 0, len(c.nodes))
	for k := range c.nodes {
		keys = append(keys, k)
	}
	c.mu.RUnlock()
	sortKeys(keys)
	return keys
}

// Snapshot copies the cache contents into a Source.
func (c *Cache) Snapshot() Source {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := make(Source, len(c.nodes))
	for k, n := range c.nodes {
		s[k] = n
	}
	return s
}

// MarshalJSON encodes the cache in the same stable form as Source.
func (c *Cache) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Snapshot())
}

func sortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
}
