package domain

import "time"

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversation turn. The active window lives in memory
// per document session; durable history is a storage concern.
type Message struct {
	// Role is one of RoleSystem, RoleUser, or RoleAssistant.
	Role string

	// Content is the message text.
	Content string
}

// StoredMessage is a persisted conversation turn, kept per document so a
// deleted document cascades to its transcript.
type StoredMessage struct {
	ID         int64
	DocumentID int64
	Role       string
	Content    string
	Timestamp  time.Time
}
