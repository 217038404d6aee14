package game

import (
	"sort"
	"sync"
)

// Registry maps session channels and presence groups to at most one
// active session each. Every session is held in an entry with its own
// mutex; all mutating calls into a Session run under that entry's lock,
// which is the only serialization the pure engine needs.
type Registry struct {
	mu sync.Mutex

	// session channel -> entry
	byChannel map[string]*entry

	// presence group -> session channel
	byGroup map[string]string
}

type entry struct {
	mu      sync.Mutex
	session *Session
}

// Handle grants serialized access to one registered session.
type Handle struct {
	e *entry
}

// Do runs fn with exclusive access to the session.
func (h *Handle) Do(fn func(*Session) error) error {
	h.e.mu.Lock()
	defer h.e.mu.Unlock()
	return fn(h.e.session)
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		byChannel: make(map[string]*entry),
		byGroup:   make(map[string]string),
	}
}

// Add registers a session. It fails with ErrAlreadyInSession when the
// presence group or the session channel already has an active session.
func (r *Registry) Add(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byChannel[s.SessionChannelID()]; ok {
		return ErrAlreadyInSession
	}
	if _, ok := r.byGroup[s.PresenceGroupID()]; ok {
		return ErrAlreadyInSession
	}

	r.byChannel[s.SessionChannelID()] = &entry{session: s}
	r.byGroup[s.PresenceGroupID()] = s.SessionChannelID()

	return nil
}

// ByChannel returns the handle for the session bound to a command channel.
func (r *Registry) ByChannel(sessionChannelID string) (*Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byChannel[sessionChannelID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	return &Handle{e: e}, nil
}

// ByGroup returns the handle for the session bound to a presence group.
func (r *Registry) ByGroup(presenceGroupID string) (*Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	channelID, ok := r.byGroup[presenceGroupID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	e, ok := r.byChannel[channelID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	return &Handle{e: e}, nil
}

// Remove drops a session from both lookup tables.
func (r *Registry) Remove(sessionChannelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byChannel[sessionChannelID]
	if !ok {
		return
	}

	delete(r.byChannel, sessionChannelID)
	delete(r.byGroup, e.session.PresenceGroupID())
}

// Channels returns the session channels of all active sessions, sorted.
func (r *Registry) Channels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.byChannel))
	for id := range r.byChannel {
		out = append(out, id)
	}
	sort.Strings(out)

	return out
}
