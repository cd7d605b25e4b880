package chat

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Coordinator is the session lifecycle controller: it owns the registry,
// room membership, typing state, and message store, and drives every
// state change from connect to disconnect. All outbound notifications go
// through the fanout after the owning component's lock is released.
type Coordinator struct {
	registry    *Registry
	rooms       *Rooms
	typing      *Typing
	store       *Store
	fanout      *Fanout
	defaultRoom string
}

func NewCoordinator(roomNames []string, defaultRoom string, historyLimit int) (*Coordinator, error) {
	rooms, err := NewRooms(roomNames)
	if err != nil {
		return nil, err
	}
	if !rooms.Has(defaultRoom) {
		return nil, fmt.Errorf("default room %q is not in the room directory", defaultRoom)
	}

	store, err := NewStore(roomNames, historyLimit)
	if err != nil {
		return nil, err
	}

	registry := NewRegistry()
	return &Coordinator{
		registry:    registry,
		rooms:       rooms,
		typing:      NewTyping(),
		store:       store,
		fanout:      NewFanout(registry, rooms),
		defaultRoom: defaultRoom,
	}, nil
}

// Connect registers an authenticated connection, announces it globally,
// and places it in the default room. The identity has already been
// verified at the transport boundary.
func (c *Coordinator) Connect(connID, identity string, sink Sink) error {
	conn, err := c.registry.Register(connID, identity, sink)
	if err != nil {
		log.Error().Err(err).Str("conn", connID).Msg("connection rejected")
		return err
	}

	log.Info().Str("conn", connID).Str("user", identity).Msg("user connected")

	// Presence is global; room membership is local.
	c.fanout.ToAll(Event{Type: EventUserList, Users: c.registry.Users()})
	c.fanout.ToAll(Event{Type: EventUserJoined, ID: connID, Username: identity})

	c.joinRoom(conn, c.defaultRoom)
	return nil
}

// HandleEvent dispatches one inbound event. A malformed event affects at
// most the connection that sent it; it never disturbs global state.
func (c *Coordinator) HandleEvent(connID string, ev ClientEvent) {
	conn, ok := c.registry.Lookup(connID)
	if !ok {
		return
	}

	switch ev.Type {
	case EventJoinRoom:
		c.joinRoom(conn, ev.Room)
	case EventLeaveRoom:
		c.leaveRoom(conn, ev.Room)
	case EventSendMessage:
		c.sendMessage(conn, ev)
	case EventMessageRead:
		c.markRead(conn, ev)
	case EventMessageReaction:
		c.toggleReaction(conn, ev)
	case EventTyping:
		c.setTyping(conn, ev.IsTyping)
	case EventPrivateMessage:
		c.privateMessage(conn, ev)
	default:
		log.Debug().Str("conn", connID).Str("event", string(ev.Type)).Msg("ignoring unknown event")
	}
}

// Disconnect runs unconditional, idempotent cleanup: the connection
// leaves every room and typing set, is unregistered, and global presence
// is republished. Safe to call for ids that were never registered.
func (c *Coordinator) Disconnect(connID string) {
	conn, ok := c.registry.Lookup(connID)
	if !ok {
		return
	}

	for _, room := range c.rooms.Forget(connID) {
		c.fanout.ToRoom(room, Event{
			Type:     EventUserLeftRoom,
			ID:       connID,
			Username: conn.Identity,
			Room:     room,
		})
	}

	for room, typing := range c.typing.Forget(connID) {
		c.fanout.ToRoom(room, Event{Type: EventTypingUsers, Room: room, Typing: typing})
	}

	c.registry.Unregister(connID)

	c.fanout.ToAll(Event{Type: EventUserLeft, ID: connID, Username: conn.Identity})
	c.fanout.ToAll(Event{Type: EventUserList, Users: c.registry.Users()})

	log.Info().Str("conn", connID).Str("user", conn.Identity).Msg("user disconnected")
}

// Users returns the global presence roster.
func (c *Coordinator) Users() []User {
	return c.registry.Users()
}

// RoomNames returns the room directory.
func (c *Coordinator) RoomNames() []string {
	return c.rooms.Names()
}

// RoomMembers returns the identities present in a room, for display.
func (c *Coordinator) RoomMembers(room string) []User {
	return c.memberUsers(room)
}

// History returns the surviving messages of a room, oldest first.
func (c *Coordinator) History(room string) ([]Message, error) {
	return c.store.History(room)
}

func (c *Coordinator) joinRoom(conn *Conn, room string) {
	transfer, err := c.rooms.Join(conn.ID, room)
	if err != nil {
		log.Debug().Str("conn", conn.ID).Str("room", room).Msg("join for unknown room ignored")
		return
	}

	if transfer.Previous != "" && transfer.Previous != room {
		c.fanout.ToRoom(transfer.Previous, Event{
			Type:     EventUserLeftRoom,
			ID:       conn.ID,
			Username: conn.Identity,
			Room:     transfer.Previous,
		})
	}

	// A connection entering a room is not typing anywhere; stale entries
	// can exist in any room after a roomless period.
	for affected, typing := range c.typing.Forget(conn.ID) {
		c.fanout.ToRoom(affected, Event{Type: EventTypingUsers, Room: affected, Typing: typing})
	}

	// Full member list to the joiner only; a delta to everyone else.
	// A join for the room the connection already occupies re-emits both
	// on purpose, matching the upstream re-join behavior clients rely on
	// for a fresh member snapshot.
	c.fanout.ToConn(conn.ID, Event{
		Type:  EventJoinedRoom,
		Room:  room,
		Users: c.memberUsers(room),
	})
	c.fanout.ToRoomExcept(room, conn.ID, Event{
		Type:     EventUserJoinedRoom,
		ID:       conn.ID,
		Username: conn.Identity,
		Room:     room,
	})
}

func (c *Coordinator) leaveRoom(conn *Conn, room string) {
	// Leaving makes the connection roomless; it is not returned to the
	// default room until its next join.
	if !c.rooms.Leave(conn.ID, room) {
		return
	}

	if removed, typing := c.typing.Remove(room, conn.ID); removed {
		c.fanout.ToRoom(room, Event{Type: EventTypingUsers, Room: room, Typing: typing})
	}

	c.fanout.ToRoom(room, Event{
		Type:     EventUserLeftRoom,
		ID:       conn.ID,
		Username: conn.Identity,
		Room:     room,
	})
}

func (c *Coordinator) sendMessage(conn *Conn, ev ClientEvent) {
	room := ev.Room
	if room == "" {
		room = c.rooms.Current(conn.ID)
	}
	if room == "" {
		room = c.defaultRoom
	}

	kind := MessageKindText
	if ev.File != nil {
		kind = MessageKindFile
	} else if ev.Text == "" {
		return
	}

	msg, err := c.store.Append(room, conn.ID, conn.Identity, kind, ev.Text, ev.File)
	if err != nil {
		log.Debug().Err(err).Str("conn", conn.ID).Msg("message rejected")
		return
	}

	c.fanout.ToRoom(room, Event{Type: EventReceiveMessage, Message: &msg})
}

func (c *Coordinator) markRead(conn *Conn, ev ClientEvent) {
	readBy, changed, err := c.store.MarkRead(ev.Room, ev.MessageID, conn.ID)
	if err != nil {
		c.logStoreMiss(conn.ID, ev, err)
		return
	}
	if !changed {
		return
	}

	c.fanout.ToRoom(ev.Room, Event{
		Type:      EventMessageRead,
		Room:      ev.Room,
		MessageID: ev.MessageID,
		ReadBy:    readBy,
	})
}

func (c *Coordinator) toggleReaction(conn *Conn, ev ClientEvent) {
	if ev.Emoji == "" {
		return
	}

	reactions, err := c.store.ToggleReaction(ev.Room, ev.MessageID, conn.ID, ev.Emoji)
	if err != nil {
		c.logStoreMiss(conn.ID, ev, err)
		return
	}

	c.fanout.ToRoom(ev.Room, Event{
		Type:      EventMessageReaction,
		Room:      ev.Room,
		MessageID: ev.MessageID,
		Reactions: reactions,
	})
}

func (c *Coordinator) setTyping(conn *Conn, isTyping bool) {
	room := c.rooms.Current(conn.ID)
	if room == "" {
		room = c.defaultRoom
	}

	typing := c.typing.Set(room, conn.ID, conn.Identity, isTyping)
	c.fanout.ToRoom(room, Event{Type: EventTypingUsers, Room: room, Typing: typing})
}

func (c *Coordinator) privateMessage(conn *Conn, ev ClientEvent) {
	if ev.To == "" || ev.Text == "" {
		return
	}

	msg := Message{
		ID:        c.store.NextID(),
		Sender:    conn.Identity,
		SenderID:  conn.ID,
		Kind:      MessageKindText,
		Text:      ev.Text,
		Timestamp: time.Now().UTC(),
		IsPrivate: true,
	}

	// Echoed to the sender as well, whether or not the recipient exists.
	c.fanout.ToConn(ev.To, Event{Type: EventPrivateMessage, Message: &msg})
	c.fanout.ToConn(conn.ID, Event{Type: EventPrivateMessage, Message: &msg})
}

func (c *Coordinator) memberUsers(room string) []User {
	ids := c.rooms.Members(room)
	users := make([]User, 0, len(ids))
	for _, id := range ids {
		if conn, ok := c.registry.Lookup(id); ok {
			users = append(users, User{ID: conn.ID, Username: conn.Identity})
		}
	}
	return users
}

func (c *Coordinator) logStoreMiss(connID string, ev ClientEvent, err error) {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNotARoom) {
		log.Debug().Err(err).Str("conn", connID).Int64("message", ev.MessageID).Msg("stale message reference ignored")
		return
	}
	log.Error().Err(err).Str("conn", connID).Msg("message store error")
}
