package cache

import (
	"encoding/json"
	"sync"
)

// Source is a subset of the cache, keyed like the cache itself. Rules
// produce one Source each (what they read) and the runner merges them.
type Source map[Key]*Node

// Merge copies every entry of other into s.
func (s Source) Merge(other Source) {
	for k, n := range other {
		s[k] = n
	}
}

// Keys returns the keys of s in a stable order.
func (s Source) Keys() []Key {
	keys := make([]Key, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

type sourceEntry struct {
	Service   string   `json:"service"`
	Operation string   `json:"operation"`
	Region    string   `json:"region"`
	Path      []string `json:"path,omitempty"`
	Node      *Node    `json:"node"`
}

// MarshalJSON encodes s as a list sorted by key so identical contents always
// encode to identical bytes.
func (s Source) MarshalJSON() ([]byte, error) {
	entries := make([]sourceEntry, 0, len(s))
	for _, k := range s.Keys() {
		entries = append(entries, sourceEntry{
			Service:   k.Service,
			Operation: k.Operation,
			Region:    k.Region,
			Path:      k.Segments(),
			Node:      s[k],
		})
	}
	return json.Marshal(entries)
}

// Tracker is a Reader that records every present node it returns.
type Tracker struct {
	r      Reader
	mu     sync.Mutex
	source Source
}

// Track wraps r in a recording Reader.
func Track(r Reader) *Tracker {
	return &Tracker{r: r, source: make(Source)}
}

// Get implements Reader.
func (t *Tracker) Get(key Key) (*Node, bool) {
	n, ok := t.r.Get(key)
	if ok {
		t.mu.Lock()
		t.source[key] = n
		t.mu.Unlock()
	}
	return n, ok
}

// Source returns a copy of the recorded nodes.
func (t *Tracker) Source() Source {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := make(Source, len(t.source))
	s.Merge(t.source)
	return s
}
