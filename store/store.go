// Package store holds the latest decoded reading per sensor, keyed by
// BLE MAC address. It is the single piece of shared state between the
// scan callback and the display loop.
package store

import (
	"sync"
	"time"

	"github.com/julianjc84/TPMS/decoder"
)

// Entry is the per-sensor record: identity, user-assigned name and the
// most recent reading. LastReading is nil for sensors pre-seeded from
// configuration that have not broadcast yet.
type Entry struct {
	MAC         string
	Name        string
	LastReading *decoder.Reading
	LastSeen    time.Time
}

// Store maps sensor MAC addresses to their latest entry. All methods
// are safe for concurrent use; the lock is held only for the duration
// of a single operation, never across a decode. Entries are never
// evicted on age, since sensors legitimately go silent for minutes
// between broadcasts; only Remove and Clear drop state.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// New returns an empty store.
func New() *Store {
	return &Store{entries: make(map[string]*Entry)}
}

// Upsert replaces the entry's reading and timestamp wholesale, creating
// the entry if this MAC has not been seen. Readings are never merged
// field by field: each advertisement is a complete measurement.
func (s *Store) Upsert(mac string, r decoder.Reading, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[mac]
	if !ok {
		e = &Entry{MAC: mac}
		s.entries[mac] = e
	}
	e.LastReading = &r
	e.LastSeen = at
}

// SetName assigns a friendly name, pre-creating the entry so configured
// sensors exist before any traffic arrives.
func (s *Store) SetName(mac, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[mac]
	if !ok {
		e = &Entry{MAC: mac}
		s.entries[mac] = e
	}
	e.Name = name
}

// Get returns a copy of the entry for mac.
func (s *Store) Get(mac string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[mac]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// All returns a snapshot of every entry. Order is unspecified; the
// display layer sorts as needed.
func (s *Store) All() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, *e)
	}
	return out
}

// Len returns the number of tracked sensors.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Remove drops one sensor. User-driven only.
func (s *Store) Remove(mac string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, mac)
}

// Clear drops every sensor. User-driven only.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*Entry)
}
