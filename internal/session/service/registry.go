package service

import (
	"sync"

	"github.com/smallbiznis/orderdesk/internal/session/domain"
)

// Listener observes every published session change.
type Listener func(domain.Session)

// Registry holds the live session of each client. Only the session service
// publishes into it; everyone else reads copies or subscribes.
type Registry struct {
	mu        sync.RWMutex
	sessions  map[string]domain.Session
	listeners map[int]Listener
	nextID    int
}

func NewRegistry() *Registry {
	return &Registry{
		sessions:  make(map[string]domain.Session),
		listeners: make(map[int]Listener),
	}
}

func (r *Registry) Get(clientID string) (domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[clientID]
	if !ok {
		return domain.Session{}, false
	}
	return s.Clone(), true
}

// Subscribe registers fn and returns its cancel func.
func (r *Registry) Subscribe(fn Listener) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

func (r *Registry) publish(s domain.Session) {
	r.mu.Lock()
	r.sessions[s.ClientID] = s.Clone()
	listeners := make([]Listener, 0, len(r.listeners))
	for _, fn := range r.listeners {
		listeners = append(listeners, fn)
	}
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(s.Clone())
	}
}
