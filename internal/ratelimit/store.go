package ratelimit

import "time"

// Entry is the state kept per identifier.
type Entry struct {
	// Count is the number of admitted requests in the current window.
	Count int
	// ResetAt is the instant the window ends.
	ResetAt time.Time
}

// Store holds entries keyed by identifier.
//
// Implementations need not be safe for concurrent use; the Limiter serializes
// every call.
type Store interface {
	Get(id string) (Entry, bool)
	Put(id string, e Entry)
	Delete(id string)
	// DeleteExpired removes every entry whose window ended before now and
	// returns how many were removed.
	DeleteExpired(now time.Time) int
	Len() int
}

// MemoryStore is a map-backed Store. State lives for the lifetime of the
// process and is rebuilt empty on restart.
type MemoryStore struct {
	entries map[string]Entry
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (m *MemoryStore) Get(id string) (Entry, bool) {
	e, ok := m.entries[id]
	return e, ok
}

func (m *MemoryStore) Put(id string, e Entry) { m.entries[id] = e }

func (m *MemoryStore) Delete(id string) { delete(m.entries, id) }

func (m *MemoryStore) DeleteExpired(now time.Time) int {
	n := 0
	for id, e := range m.entries {
		if now.After(e.ResetAt) {
			delete(m.entries, id)
			n++
		}
	}
	return n
}

func (m *MemoryStore) Len() int { return len(m.entries) }
