// Package events tracks which Dialogflow platform events trigger which
// intents. The generator consults the store when building intent documents
// so that event-triggered intents don't fall through to the fallback intent.
//
// The store is an explicit value threaded through the generator rather than
// process-global state; independent generation runs (and tests) each get
// their own.
package events

import "sync"

// Store maps intent names to the platform events that trigger them.
// Registration is additive: registering twice for the same intent appends.
// It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	byName map[string][]string
}

// NewStore returns an empty, ready-to-use [Store].
func NewStore() *Store {
	return &Store{byName: make(map[string][]string)}
}

// Register appends events to the list stored for intent, creating the entry
// if absent. Duplicate event names are kept; ordering is registration order.
func (s *Store) Register(intent string, events ...string) {
	if len(events) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byName[intent] = append(s.byName[intent], events...)
}

// EventsFor returns the events registered for intent, in registration order.
// The returned slice is a copy; an intent with no registrations yields an
// empty slice.
func (s *Store) EventsFor(intent string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]string, len(s.byName[intent]))
	copy(events, s.byName[intent])
	return events
}

// All returns a copy of the full intent→events mapping.
func (s *Store) All() map[string][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make(map[string][]string, len(s.byName))
	for intent, events := range s.byName {
		cp := make([]string, len(events))
		copy(cp, events)
		all[intent] = cp
	}
	return all
}

// Reset removes all registrations. Intended for test isolation and for
// re-running generation from a clean slate.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byName = make(map[string][]string)
}
