package clippy

import "time"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Label returns the transcript label for the role ("System", "User", "Assistant").
func (r Role) Label() string {
	switch r {
	case RoleSystem:
		return "System"
	case RoleAssistant:
		return "Assistant"
	default:
		return "User"
	}
}

// Message is a single entry in a session's log. It is never mutated after it
// has been appended.
type Message struct {
	Role      Role      `json:"role" yaml:"role"`
	Content   string    `json:"content" yaml:"content"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	MessageID string    `json:"message_id" yaml:"message_id"`
	SessionID string    `json:"session_id" yaml:"session_id"`
}

// ContextMessage is the role/content pair sent to the model as conversation context.
type ContextMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
