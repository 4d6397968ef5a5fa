package store

import (
	"maps"
	"slices"
)

// EventKind identifies the mutation that produced an Event.
type EventKind string

const (
	EventAdded      EventKind = "added"
	EventUpdated    EventKind = "updated"
	EventDeleted    EventKind = "deleted"
	EventDuplicated EventKind = "duplicated"
	EventMoved      EventKind = "moved"
	EventSelected   EventKind = "selected"
	EventReplaced   EventKind = "replaced"
)

// Event describes a fully applied mutation. Observers read the new state back
// from the store; the event only says what changed.
type Event struct {
	Kind       EventKind `json:"kind"`
	FieldID    string    `json:"fieldId,omitempty"`
	SourceID   string    `json:"sourceId,omitempty"`
	From       int       `json:"from,omitempty"`
	To         int       `json:"to,omitempty"`
	SelectedID string    `json:"selectedId,omitempty"`
	Len        int       `json:"len"`
}

// Listener receives store events synchronously on the mutating goroutine.
type Listener func(Event)

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	if s.listeners == nil {
		s.listeners = make(map[int]Listener)
	}
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	return func() {
		delete(s.listeners, id)
	}
}

func (s *Store) emit(event Event) {
	if len(s.listeners) == 0 {
		return
	}
	event.Len = len(s.fields)
	event.SelectedID = s.selected
	for _, id := range slices.Sorted(maps.Keys(s.listeners)) {
		if fn, ok := s.listeners[id]; ok {
			fn(event)
		}
	}
}
