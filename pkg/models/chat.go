package models

import "time"

// ChatMessageType discriminates chat payload kinds. Only TEXT is in use;
// the backend reserves richer kinds for future releases.
type ChatMessageType string

const (
	ChatMessageText ChatMessageType = "TEXT"
)

// ChatMessage is a one-to-one message between two platform users.
//
// CorrelationID is client-generated on send and echoed back by the
// transport, letting the sender drop the server echo of its own
// optimistic message instead of displaying it twice.
type ChatMessage struct {
	ID            int64           `json:"id,omitempty"`
	Sender        UserRef         `json:"sender"`
	Receiver      UserRef         `json:"receiver"`
	Content       string          `json:"content"`
	Type          ChatMessageType `json:"type"`
	CorrelationID string          `json:"correlationId,omitempty"`
	SentAt        time.Time       `json:"sentAt,omitempty"`

	// ClientEchoed marks a locally composed message rendered before the
	// backend confirmed it. Never set on inbound messages.
	ClientEchoed bool `json:"-"`
}

// Between reports whether the message belongs to the conversation
// between the two given user ids, in either direction.
func (m *ChatMessage) Between(a, b int64) bool {
	return (m.Sender.ID == a && m.Receiver.ID == b) ||
		(m.Sender.ID == b && m.Receiver.ID == a)
}
