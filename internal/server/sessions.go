package server

import (
	"sync"
	"time"

	"github.com/spigell/hh-screener/internal/interview"
)

// entry serializes turns of one conversation.
type entry struct {
	mu      sync.Mutex
	session *interview.Session
	touched time.Time
}

type registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	now     func() time.Time
}

func newRegistry() *registry {
	return &registry{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

func (r *registry) add(s *interview.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[s.ID] = &entry{session: s, touched: r.now()}
}

// get returns the entry and marks it as used.
func (r *registry) get(id string) (*entry, bool) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}

	e.mu.Lock()
	e.touched = r.now()
	e.mu.Unlock()

	return e, true
}

func (r *registry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	return true
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// sweep drops sessions idle for longer than ttl and returns how many were removed.
// A session in the middle of a turn is skipped.
func (r *registry) sweep(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}

	deadline := r.now().Add(-ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.entries {
		if !e.mu.TryLock() {
			continue
		}
		idle := e.touched.Before(deadline)
		e.mu.Unlock()

		if idle {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}
