package session

import "sync"

// PendingSet tracks normalized phrases this session is resolving right now.
type PendingSet struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// NewPendingSet creates an empty set.
func NewPendingSet() *PendingSet {
	return &PendingSet{keys: make(map[string]struct{})}
}

// Add claims key. It returns false when the key is already being resolved.
func (p *PendingSet) Add(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.keys[key]; ok {
		return false
	}
	p.keys[key] = struct{}{}
	return true
}

// Remove releases key.
func (p *PendingSet) Remove(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.keys, key)
}
