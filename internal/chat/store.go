package chat

import (
	"fmt"
	"slices"
	"sync"
	"time"
)

// Store is the append-only, capacity-bounded message log, one log per
// room. Messages mutate only in their readBy and reactions sub-fields.
// Once a log outgrows the limit the oldest entry is evicted; later
// operations on an evicted id return ErrNotFound.
type Store struct {
	mu     sync.Mutex
	limit  int
	nextID int64
	logs   map[string][]*Message
}

func NewStore(rooms []string, limit int) (*Store, error) {
	if limit < 1 {
		return nil, fmt.Errorf("message limit must be positive, got %d", limit)
	}

	logs := make(map[string][]*Message, len(rooms))
	for _, room := range rooms {
		logs[room] = nil
	}

	return &Store{limit: limit, logs: logs}, nil
}

// NextID hands out a fresh message id without storing anything. Private
// messages use it so their ids share the store's id space.
func (s *Store) NextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	return s.nextID
}

// Append creates a message with the sender pre-seeded in readBy and adds
// it to the room's log, evicting the oldest entry past the capacity.
// Returns a copy safe to fan out.
func (s *Store) Append(room, senderID, senderIdentity string, kind MessageKind, text string, file *FilePayload) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log, ok := s.logs[room]
	if !ok {
		return Message{}, fmt.Errorf("%w: %s", ErrNotARoom, room)
	}

	s.nextID++
	msg := &Message{
		ID:        s.nextID,
		Room:      room,
		Sender:    senderIdentity,
		SenderID:  senderID,
		Kind:      kind,
		Text:      text,
		File:      file,
		Timestamp: time.Now().UTC(),
		ReadBy:    []string{senderID},
		Reactions: make(map[string][]string),
	}

	log = append(log, msg)
	if len(log) > s.limit {
		log = slices.Clone(log[1:])
	}
	s.logs[room] = log

	return msg.clone(), nil
}

// MarkRead adds the connection to the message's readBy set. Idempotent:
// a repeat call returns the unchanged set with changed=false so callers
// can skip the broadcast.
func (s *Store) MarkRead(room string, messageID int64, connID string) (readBy []string, changed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, err := s.find(room, messageID)
	if err != nil {
		return nil, false, err
	}

	if slices.Contains(msg.ReadBy, connID) {
		return slices.Clone(msg.ReadBy), false, nil
	}

	msg.ReadBy = append(msg.ReadBy, connID)
	return slices.Clone(msg.ReadBy), true, nil
}

// ToggleReaction adds the connection under emoji, or removes it if
// already present, dropping the emoji key when its set empties. Each
// emoji is tracked independently per connection. Returns the full
// refreshed reactions map.
func (s *Store) ToggleReaction(room string, messageID int64, connID, emoji string) (map[string][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, err := s.find(room, messageID)
	if err != nil {
		return nil, err
	}

	ids := msg.Reactions[emoji]
	if idx := slices.Index(ids, connID); idx >= 0 {
		ids = slices.Delete(ids, idx, idx+1)
		if len(ids) == 0 {
			delete(msg.Reactions, emoji)
		} else {
			msg.Reactions[emoji] = ids
		}
	} else {
		msg.Reactions[emoji] = append(ids, connID)
	}

	return cloneReactions(msg.Reactions), nil
}

// History returns copies of the room's surviving messages, oldest first.
func (s *Store) History(room string) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log, ok := s.logs[room]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotARoom, room)
	}

	out := make([]Message, 0, len(log))
	for _, msg := range log {
		out = append(out, msg.clone())
	}
	return out, nil
}

// Len reports the room's surviving message count.
func (s *Store) Len(room string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.logs[room])
}

func (s *Store) find(room string, messageID int64) (*Message, error) {
	log, ok := s.logs[room]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotARoom, room)
	}
	for _, msg := range log {
		if msg.ID == messageID {
			return msg, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrNotFound, messageID)
}
