package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/longkey1/clippyai/internal/clippy"
)

const (
	systemSeed     = "You are ClippyAI, helping with code analysis and debugging."
	userSeedFormat = "Analyze this code/problem: %s"
)

// Session represents a conversation session
type Session struct {
	ID        string           `json:"id" yaml:"id"` // e.g. "session_20250102_150405_1a2b3c4d"
	CreatedAt time.Time        `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" yaml:"updated_at"`
	Messages  []clippy.Message `json:"messages" yaml:"messages"`
}

// NewSession creates a session seeded with the system message and the
// analysis request wrapping initialText.
func NewSession(initialText string) *Session {
	now := time.Now()
	id := NewID(now)
	return &Session{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		Messages: []clippy.Message{
			{
				Role:      clippy.RoleSystem,
				Content:   systemSeed,
				Timestamp: now,
				MessageID: "sys_001",
				SessionID: id,
			},
			{
				Role:      clippy.RoleUser,
				Content:   AnalysisRequest(initialText),
				Timestamp: now,
				MessageID: "usr_001",
				SessionID: id,
			},
		},
	}
}

// AnalysisRequest wraps text the way the user turn of an analysis is stored.
func AnalysisRequest(text string) string {
	return fmt.Sprintf(userSeedFormat, text)
}

// NewID returns a session identifier composed of the timestamp and a random
// suffix taken from a UUID v4.
func NewID(t time.Time) string {
	return fmt.Sprintf("session_%s_%s", t.Format("20060102_150405"), uuid.New().String()[:8])
}

// AddMessage adds a new message to the session
func (s *Session) AddMessage(role clippy.Role, content string) {
	now := time.Now()
	s.Messages = append(s.Messages, clippy.Message{
		Role:      role,
		Content:   content,
		Timestamp: now,
		MessageID: fmt.Sprintf("%s_%d", role, len(s.Messages)),
		SessionID: s.ID,
	})
	s.UpdatedAt = now
}

// Tail returns the last max messages as role/content pairs in original order.
func (s *Session) Tail(max int) []clippy.ContextMessage {
	start := 0
	if len(s.Messages) > max {
		start = len(s.Messages) - max
	}
	out := make([]clippy.ContextMessage, 0, len(s.Messages)-start)
	for _, m := range s.Messages[start:] {
		out = append(out, clippy.ContextMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

// MessageCount returns the number of messages in the session
func (s *Session) MessageCount() int {
	return len(s.Messages)
}
