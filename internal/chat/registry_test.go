package chat

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSink collects events delivered to one connection.
type fakeSink struct {
	mu     sync.Mutex
	events []Event
	full   bool
}

func (f *fakeSink) TrySend(ev Event) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.full {
		return false
	}
	f.events = append(f.events, ev)
	return true
}

func (f *fakeSink) ofType(t EventType) []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Event
	for _, ev := range f.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func (f *fakeSink) lastOfType(t EventType) (Event, bool) {
	all := f.ofType(t)
	if len(all) == 0 {
		return Event{}, false
	}
	return all[len(all)-1], true
}

func (f *fakeSink) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = nil
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()

	conn, err := r.Register("c1", "alice", &fakeSink{})
	require.NoError(t, err)
	assert.Equal(t, "c1", conn.ID)
	assert.Equal(t, "alice", conn.Identity)

	got, ok := r.Lookup("c1")
	require.True(t, ok)
	assert.Same(t, conn, got)

	_, ok = r.Lookup("c2")
	assert.False(t, ok)
}

func TestRegistryDuplicateConnection(t *testing.T) {
	r := NewRegistry()

	_, err := r.Register("c1", "alice", &fakeSink{})
	require.NoError(t, err)

	_, err = r.Register("c1", "bob", &fakeSink{})
	assert.ErrorIs(t, err, ErrDuplicateConnection)

	// The original registration survives the rejected one.
	conn, ok := r.Lookup("c1")
	require.True(t, ok)
	assert.Equal(t, "alice", conn.Identity)
}

func TestRegistryUnregisterIdempotent(t *testing.T) {
	r := NewRegistry()

	_, err := r.Register("c1", "alice", &fakeSink{})
	require.NoError(t, err)

	r.Unregister("c1")
	r.Unregister("c1")
	r.Unregister("never-existed")

	_, ok := r.Lookup("c1")
	assert.False(t, ok)
	assert.Empty(t, r.All())
}

func TestRegistryUsersSorted(t *testing.T) {
	r := NewRegistry()

	for _, u := range []struct{ id, name string }{
		{"c3", "carol"}, {"c1", "alice"}, {"c2", "bob"},
	} {
		_, err := r.Register(u.id, u.name, &fakeSink{})
		require.NoError(t, err)
	}

	assert.Equal(t, []User{
		{ID: "c1", Username: "alice"},
		{ID: "c2", Username: "bob"},
		{ID: "c3", Username: "carol"},
	}, r.Users())
}
