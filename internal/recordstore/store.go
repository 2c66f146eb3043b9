// Package recordstore holds the client's copy of the server's application list.
package recordstore

import (
	"slices"
	"sync"

	"jobmate/tracker/internal/application"
)

// Store mirrors the last list response. It never edits individual records:
// the only write is a wholesale replacement.
type Store struct {
	mu      sync.RWMutex
	records []application.Record
}

// New returns an empty Store.
func New() *Store {
	return &Store{records: make([]application.Record, 0)}
}

// ReplaceAll swaps the visible list for records, in the order given.
func (s *Store) ReplaceAll(records []application.Record) {
	next := slices.Clone(records)
	if next == nil {
		next = make([]application.Record, 0)
	}
	s.mu.Lock()
	s.records = next
	s.mu.Unlock()
}

// Current returns the records in server order. The slice is a copy.
func (s *Store) Current() []application.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records)
}

// Len returns the number of records held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
