package chat

import (
	"sort"
	"sync"
)

// Typing holds, per room, who is currently signaling "typing". There is
// no server-side expiry: entries leave only on an explicit stop signal,
// a room change, or disconnect cleanup. Rate limiting is the client's
// job.
type Typing struct {
	mu     sync.Mutex
	byRoom map[string]map[string]string
}

func NewTyping() *Typing {
	return &Typing{byRoom: make(map[string]map[string]string)}
}

// Set records or clears the typing signal and returns the room's
// refreshed display list.
func (t *Typing) Set(room, connID, identity string, isTyping bool) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.byRoom[room]
	if !ok {
		set = make(map[string]string)
		t.byRoom[room] = set
	}

	if isTyping {
		set[connID] = identity
	} else {
		delete(set, connID)
	}
	return displayList(set)
}

// Remove clears the connection's entry in one room. Reports whether an
// entry existed, so callers can skip republishing when nothing changed.
func (t *Typing) Remove(room, connID string) (bool, []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.byRoom[room]
	if !ok {
		return false, nil
	}
	if _, present := set[connID]; !present {
		return false, displayList(set)
	}

	delete(set, connID)
	return true, displayList(set)
}

// Forget clears the connection's entry in every room, returning the
// refreshed list for each room that changed.
func (t *Typing) Forget(connID string) map[string][]string {
	t.mu.Lock()
	defer t.mu.Unlock()

	affected := make(map[string][]string)
	for room, set := range t.byRoom {
		if _, present := set[connID]; present {
			delete(set, connID)
			affected[room] = displayList(set)
		}
	}
	return affected
}

func (t *Typing) List(room string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return displayList(t.byRoom[room])
}

func displayList(set map[string]string) []string {
	out := make([]string, 0, len(set))
	for _, identity := range set {
		out = append(out, identity)
	}
	sort.Strings(out)
	return out
}
