// ABOUTME: Message is one speaker/text pair in the conversation history
// ABOUTME: Replaces free-form tuples with a validated, timestamped record
package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role identifies who produced a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry in the session's conversation history
type Message struct {
	ID      string    `json:"id"`
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
	IsError bool      `json:"is_error,omitempty"`
}

// NewMessage creates a Message with validation
func NewMessage(role Role, content string) (*Message, error) {
	if role != RoleUser && role != RoleAssistant {
		return nil, errors.New("role must be user or assistant")
	}
	if strings.TrimSpace(content) == "" {
		return nil, errors.New("message content cannot be empty")
	}
	return &Message{
		ID:      "msg_" + uuid.New().String()[:8],
		Role:    role,
		Content: content,
		At:      time.Now().UTC(),
	}, nil
}
