package chat

import (
	"fmt"
	"sort"
	"sync"
)

// Rooms tracks, per pre-provisioned room, the set of connections present.
// A connection belongs to at most one room at a time. One mutex guards
// every room so that a transfer (leave old, join new) is atomic: no
// observer sees the connection in two rooms or in none mid-move.
type Rooms struct {
	mu      sync.Mutex
	members map[string]map[string]bool
	current map[string]string
}

// Transfer reports the outcome of a Join.
type Transfer struct {
	// Previous is the room the connection was removed from, "" if it was
	// roomless.
	Previous string
}

func NewRooms(names []string) (*Rooms, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("at least one room is required")
	}

	members := make(map[string]map[string]bool, len(names))
	for _, name := range names {
		members[name] = make(map[string]bool)
	}

	return &Rooms{
		members: members,
		current: make(map[string]string),
	}, nil
}

func (r *Rooms) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.members[name]
	return ok
}

func (r *Rooms) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.members))
	for name := range r.members {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Join moves the connection into room, leaving its current room first.
// Returns ErrNotARoom for names outside the directory.
func (r *Rooms) Join(connID, room string) (Transfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[room]; !ok {
		return Transfer{}, fmt.Errorf("%w: %s", ErrNotARoom, room)
	}

	var transfer Transfer
	if previous, ok := r.current[connID]; ok {
		delete(r.members[previous], connID)
		transfer.Previous = previous
	}

	r.members[room][connID] = true
	r.current[connID] = room
	return transfer, nil
}

// Leave removes the connection from room. Reports false when the
// connection was not a member (a no-op, not an error). An explicit leave
// makes the connection roomless; it is not moved to a default room.
func (r *Rooms) Leave(connID, room string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.members[room]
	if !ok || !set[connID] {
		return false
	}

	delete(set, connID)
	if r.current[connID] == room {
		delete(r.current, connID)
	}
	return true
}

// Forget removes the connection from every room, returning the rooms it
// was removed from. Used by disconnect cleanup.
func (r *Rooms) Forget(connID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var left []string
	for name, set := range r.members {
		if set[connID] {
			delete(set, connID)
			left = append(left, name)
		}
	}
	delete(r.current, connID)
	sort.Strings(left)
	return left
}

// Current returns the connection's current room, "" when roomless.
func (r *Rooms) Current(connID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current[connID]
}

// Members returns the connection ids present in room, read fresh so
// deliveries never use a stale snapshot.
func (r *Rooms) Members(room string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.members[room]
	if !ok {
		return nil
	}

	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
