package chat

import (
	"github.com/rs/zerolog/log"
)

// Fanout delivers events to rooms, single connections, or everyone.
// Room membership is read at delivery time, never from a snapshot taken
// earlier, so since-departed connections are not delivered to. A failed
// delivery to one recipient never aborts the rest.
type Fanout struct {
	registry *Registry
	rooms    *Rooms
}

func NewFanout(registry *Registry, rooms *Rooms) *Fanout {
	return &Fanout{registry: registry, rooms: rooms}
}

func (f *Fanout) ToRoom(room string, ev Event) {
	f.toRoom(room, "", ev)
}

// ToRoomExcept delivers to every member of room other than exceptID.
// Used for "member joined/left" notifications that the subject should
// not receive.
func (f *Fanout) ToRoomExcept(room, exceptID string, ev Event) {
	f.toRoom(room, exceptID, ev)
}

func (f *Fanout) toRoom(room, exceptID string, ev Event) {
	for _, id := range f.rooms.Members(room) {
		if id == exceptID {
			continue
		}
		f.ToConn(id, ev)
	}
}

func (f *Fanout) ToConn(connID string, ev Event) bool {
	conn, ok := f.registry.Lookup(connID)
	if !ok {
		return false
	}
	if !conn.sink.TrySend(ev) {
		log.Debug().Str("conn", connID).Str("event", string(ev.Type)).Msg("dropped event for slow connection")
		return false
	}
	return true
}

func (f *Fanout) ToAll(ev Event) {
	for _, conn := range f.registry.All() {
		if !conn.sink.TrySend(ev) {
			log.Debug().Str("conn", conn.ID).Str("event", string(ev.Type)).Msg("dropped event for slow connection")
		}
	}
}
