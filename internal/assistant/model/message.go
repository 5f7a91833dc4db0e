package model

import (
	"time"

	"github.com/cloudwego/eino/schema"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a single entry in a chat thread. Messages are immutable once
// created and are only ever appended to a Chat.
type Message struct {
	Role      Role           `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewMessage stamps a message with the current time.
func NewMessage(role Role, content string, metadata map[string]any) Message {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
		Metadata:  metadata,
	}
}

// ToSchema converts a Message into an Eino schema message for prompt assembly.
// System messages are skipped by callers that only want the dialogue turns.
func (m Message) ToSchema() *schema.Message {
	switch m.Role {
	case RoleAssistant:
		return schema.AssistantMessage(m.Content, nil)
	case RoleSystem:
		return schema.SystemMessage(m.Content)
	default:
		return schema.UserMessage(m.Content)
	}
}

// HistoryToSchema converts the user/assistant turns of a history snapshot into
// Eino schema messages, preserving order.
func HistoryToSchema(history []Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(history))
	for _, m := range history {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			continue
		}
		out = append(out, m.ToSchema())
	}
	return out
}
