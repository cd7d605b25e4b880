package chat

import "time"

type MessageKind string

const (
	MessageKindText MessageKind = "text"
	MessageKindFile MessageKind = "file"
)

// FilePayload references an upload held by the external blob store. The
// core carries it opaquely.
type FilePayload struct {
	URL          string `json:"url"`
	Type         string `json:"type"`
	OriginalName string `json:"originalName"`
}

// Message is immutable once created except for ReadBy (append-only set)
// and Reactions (toggle-mutated).
type Message struct {
	ID        int64               `json:"id"`
	Room      string              `json:"room,omitempty"`
	Sender    string              `json:"sender"`
	SenderID  string              `json:"senderId"`
	Kind      MessageKind         `json:"kind"`
	Text      string              `json:"text,omitempty"`
	File      *FilePayload        `json:"file,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
	ReadBy    []string            `json:"readBy"`
	Reactions map[string][]string `json:"reactions"`
	IsPrivate bool                `json:"isPrivate,omitempty"`
}

// clone returns a copy that is safe to hand out after the store's lock is
// released.
func (m *Message) clone() Message {
	out := *m
	out.ReadBy = append([]string(nil), m.ReadBy...)
	out.Reactions = cloneReactions(m.Reactions)
	return out
}

func cloneReactions(reactions map[string][]string) map[string][]string {
	out := make(map[string][]string, len(reactions))
	for emoji, ids := range reactions {
		out[emoji] = append([]string(nil), ids...)
	}
	return out
}
