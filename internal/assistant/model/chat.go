package model

import (
	"time"
)

// Token budgeting uses a chars-per-token heuristic rather than a real
// tokenizer. The approximation is deliberate and carried through from the
// conversation design; tests document it as such.
const (
	DefaultContextTokens   = 4000
	DefaultSummarizeTokens = 2000
	DefaultCharsPerToken   = 4
)

// Chat is a single conversation thread owned by one user. Messages are
// append-only and strictly ordered by append time.
type Chat struct {
	ID          string    `json:"chat_id"`
	UserID      string    `json:"user_id"`
	Messages    []Message `json:"messages"`
	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
}

// NewChat creates an empty chat thread for the given user.
func NewChat(chatID, userID string) *Chat {
	now := time.Now().UTC()
	return &Chat{
		ID:          chatID,
		UserID:      userID,
		Messages:    []Message{},
		CreatedAt:   now,
		LastUpdated: now,
	}
}

// AddMessage appends a new message and bumps LastUpdated.
func (c *Chat) AddMessage(role Role, content string, metadata map[string]any) Message {
	msg := NewMessage(role, content, metadata)
	c.Messages = append(c.Messages, msg)
	c.LastUpdated = msg.Timestamp
	return msg
}

// ContextWindow returns the longest suffix of messages whose cumulative
// content length stays within maxTokens*charsPerToken characters. It scans
// from the most recent message backward and never splits a message, so the
// returned slice preserves original order and may be empty when even the
// newest message alone exceeds the budget.
func (c *Chat) ContextWindow(maxTokens, charsPerToken int) []Message {
	if maxTokens <= 0 {
		maxTokens = DefaultContextTokens
	}
	if charsPerToken <= 0 {
		charsPerToken = DefaultCharsPerToken
	}
	budget := maxTokens * charsPerToken

	total := 0
	start := len(c.Messages)
	for i := len(c.Messages) - 1; i >= 0; i-- {
		n := len(c.Messages[i].Content)
		if total+n > budget {
			break
		}
		total += n
		start = i
	}

	window := make([]Message, len(c.Messages)-start)
	copy(window, c.Messages[start:])
	return window
}

// NeedsSummarization reports whether the total content length across all
// messages exceeds the summarization threshold.
func (c *Chat) NeedsSummarization(thresholdTokens, charsPerToken int) bool {
	if thresholdTokens <= 0 {
		thresholdTokens = DefaultSummarizeTokens
	}
	if charsPerToken <= 0 {
		charsPerToken = DefaultCharsPerToken
	}
	total := 0
	for _, m := range c.Messages {
		total += len(m.Content)
	}
	return total > thresholdTokens*charsPerToken
}
