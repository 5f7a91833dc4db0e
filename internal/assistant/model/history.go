package model

import (
	"sort"
	"time"
)

// SummaryRecord is the archived digest of one chat thread. A record is
// written at most once per chat and never regenerated afterward.
type SummaryRecord struct {
	ChatID       string    `json:"chat_id"`
	MessageCount int       `json:"message_count"`
	Timestamp    time.Time `json:"timestamp"`
	Summary      string    `json:"summary"`
}

// LongTermHistory keeps per-chat summaries and key topics for a single user,
// giving agents context beyond the bounded window.
type LongTermHistory struct {
	UserID      string                   `json:"user_id"`
	Summaries   map[string]SummaryRecord `json:"summaries"`
	KeyTopics   []string                 `json:"key_topics"`
	CreatedAt   time.Time                `json:"created_at"`
	LastUpdated time.Time                `json:"last_updated"`
}

// NewLongTermHistory creates an empty history for the given user.
func NewLongTermHistory(userID string) *LongTermHistory {
	now := time.Now().UTC()
	return &LongTermHistory{
		UserID:      userID,
		Summaries:   map[string]SummaryRecord{},
		KeyTopics:   []string{},
		CreatedAt:   now,
		LastUpdated: now,
	}
}

// HasSummary reports whether a summary record already exists for the chat.
func (h *LongTermHistory) HasSummary(chatID string) bool {
	_, ok := h.Summaries[chatID]
	return ok
}

// AddSummary records a new chat summary and bumps LastUpdated.
func (h *LongTermHistory) AddSummary(chatID string, rec SummaryRecord) {
	h.Summaries[chatID] = rec
	h.LastUpdated = time.Now().UTC()
}

// Records returns the summaries ordered oldest first.
func (h *LongTermHistory) Records() []SummaryRecord {
	out := make([]SummaryRecord, 0, len(h.Summaries))
	for _, rec := range h.Summaries {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}
