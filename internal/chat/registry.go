package chat

import (
	"fmt"
	"sort"
	"sync"
)

// Sink is the delivery side of a connection. TrySend must not block; it
// reports false when the event could not be queued.
type Sink interface {
	TrySend(Event) bool
}

// Conn is the registry's record of one live connection. Identity is fixed
// for the connection's life.
type Conn struct {
	ID       string
	Identity string
	sink     Sink
}

// Registry is the single source of truth for who is online. It owns the
// connection records; every other component refers to connections by id.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*Conn)}
}

func (r *Registry) Register(id, identity string, sink Sink) (*Conn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.conns[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateConnection, id)
	}

	conn := &Conn{ID: id, Identity: identity, sink: sink}
	r.conns[id] = conn
	return conn, nil
}

// Unregister is idempotent: disconnect cleanup may race with an explicit
// logout.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
}

func (r *Registry) Lookup(id string) (*Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[id]
	return conn, ok
}

func (r *Registry) All() []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Conn, 0, len(r.conns))
	for _, conn := range r.conns {
		out = append(out, conn)
	}
	return out
}

// Users returns the presence roster, sorted for stable output.
func (r *Registry) Users() []User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]User, 0, len(r.conns))
	for _, conn := range r.conns {
		out = append(out, User{ID: conn.ID, Username: conn.Identity})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Username != out[j].Username {
			return out[i].Username < out[j].Username
		}
		return out[i].ID < out[j].ID
	})
	return out
}
