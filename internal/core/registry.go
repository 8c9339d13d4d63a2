package core

import (
	"sync"
	"time"
)

const (
	// DefaultName is assigned to every session on connect.
	DefaultName = "Guest"
	// DefaultRoom is where every session starts.
	DefaultRoom = "001"
)

// Session is the server-side state for one live connection. Privilege
// and mute expiry live here so disconnect cleanup drops them with the
// session.
type Session struct {
	ID         string
	Name       string
	Room       string
	Privileged bool
	MutedUntil time.Time
}

// Muted reports whether the session is muted at the given instant.
func (s Session) Muted(now time.Time) bool {
	return s.MutedUntil.After(now)
}

// Registry tracks every live session. All methods are safe for
// concurrent use; operations on unknown ids are no-ops.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	order    []string // connect order, for deterministic name lookup
}

// NewRegistry constructs an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Connect creates the session for a new connection with defaults.
func (r *Registry) Connect(id string) Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := &Session{ID: id, Name: DefaultName, Room: DefaultRoom}
	r.sessions[id] = s
	r.order = append(r.order, id)
	return *s
}

// Get returns a copy of the session, if present.
func (r *Registry) Get(id string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// SetName updates the display name.
func (r *Registry) SetName(id, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		s.Name = name
	}
}

// SetRoom records the session's current room.
func (r *Registry) SetRoom(id, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		s.Room = room
	}
}

// SetPrivileged grants or revokes the admin capability.
func (r *Registry) SetPrivileged(id string, v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		s.Privileged = v
	}
}

// Mute sets the session's mute expiry.
func (r *Registry) Mute(id string, until time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		s.MutedUntil = until
	}
}

// FindByName returns the earliest-connected session with the given
// display name. The match is case-sensitive.
func (r *Registry) FindByName(name string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if s, ok := r.sessions[id]; ok && s.Name == name {
			return *s, true
		}
	}
	return Session{}, false
}

// Remove deletes the session. Privilege and mute state go with it.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return
	}
	delete(r.sessions, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
