package chat

type EventType string

// Inbound event types.
const (
	EventJoinRoom        EventType = "join_room"
	EventLeaveRoom       EventType = "leave_room"
	EventSendMessage     EventType = "send_message"
	EventMessageRead     EventType = "message_read"
	EventMessageReaction EventType = "message_reaction"
	EventTyping          EventType = "typing"
	EventPrivateMessage  EventType = "private_message"
)

// Outbound event types.
const (
	EventUserList       EventType = "user_list"
	EventUserJoined     EventType = "user_joined"
	EventUserLeft       EventType = "user_left"
	EventJoinedRoom     EventType = "joined_room"
	EventUserJoinedRoom EventType = "user_joined_room"
	EventUserLeftRoom   EventType = "user_left_room"
	EventReceiveMessage EventType = "receive_message"
	EventTypingUsers    EventType = "typing_users"
)

// User is a presence roster entry.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Event is the outbound wire envelope. Which fields are set depends on
// Type. The collection fields carry no omitempty: an empty typing list
// or reactions map is a real state change ("now empty") and must reach
// the wire as []/{} rather than vanish.
type Event struct {
	Type      EventType           `json:"type"`
	Room      string              `json:"room,omitempty"`
	ID        string              `json:"id,omitempty"`
	Username  string              `json:"username,omitempty"`
	Users     []User              `json:"users"`
	Message   *Message            `json:"message,omitempty"`
	MessageID int64               `json:"messageId,omitempty"`
	ReadBy    []string            `json:"readBy"`
	Reactions map[string][]string `json:"reactions"`
	Typing    []string            `json:"typing"`
}

// ClientEvent is the inbound wire envelope sent by an authenticated
// connection.
type ClientEvent struct {
	Type      EventType    `json:"type"`
	Room      string       `json:"room,omitempty"`
	Text      string       `json:"text,omitempty"`
	File      *FilePayload `json:"file,omitempty"`
	MessageID int64        `json:"messageId,omitempty"`
	Emoji     string       `json:"emoji,omitempty"`
	IsTyping  bool         `json:"isTyping,omitempty"`
	To        string       `json:"to,omitempty"`
}
