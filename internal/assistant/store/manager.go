package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/savvythreads/server/internal/assistant/model"
	logx "github.com/savvythreads/server/pkg/logger"
)

// UserState owns all chats and the long-term history for one user. Both live
// for the process lifetime and die with the UserState. The embedded mutex
// serializes turns for the same user: the workflow assumes at most one
// in-flight request per user id, and callers take the lock for the duration
// of a turn to preserve message-ordering invariants.
type UserState struct {
	mu sync.Mutex

	UserID          string
	Chats           map[string]*model.Chat
	LongTermHistory *model.LongTermHistory
}

func newUserState(userID string) *UserState {
	return &UserState{
		UserID:          userID,
		Chats:           map[string]*model.Chat{},
		LongTermHistory: model.NewLongTermHistory(userID),
	}
}

// Lock serializes access to this user's chats for one turn.
func (u *UserState) Lock() { u.mu.Lock() }

// Unlock releases the per-user serialization lock.
func (u *UserState) Unlock() { u.mu.Unlock() }

// GetChat returns the chat with the given id, or nil.
func (u *UserState) GetChat(chatID string) *model.Chat {
	return u.Chats[chatID]
}

// GetOrCreateChat returns the chat with the given id, creating it when
// missing. An empty id creates a chat with a generated id.
func (u *UserState) GetOrCreateChat(chatID string) *model.Chat {
	if chatID == "" {
		chatID = fmt.Sprintf("chat_%s", uuid.NewString())
	}
	if chat, ok := u.Chats[chatID]; ok {
		return chat
	}
	chat := model.NewChat(chatID, u.UserID)
	u.Chats[chatID] = chat
	return chat
}

// DeleteChat removes a chat thread. Its summary record, if any, is kept.
func (u *UserState) DeleteChat(chatID string) bool {
	if _, ok := u.Chats[chatID]; !ok {
		return false
	}
	delete(u.Chats, chatID)
	return true
}

// Manager is the process-wide registry of user states: an explicit service
// object constructed once and passed by handle, never an ambient singleton.
// User states are created lazily and never evicted.
type Manager struct {
	mu    sync.RWMutex
	users map[string]*UserState

	cfg     model.ConversationConfig
	archive Archive // optional write-through persistence, may be nil
}

// NewManager creates an empty state registry. archive may be nil to keep all
// state purely in memory.
func NewManager(cfg model.ConversationConfig, archive Archive) *Manager {
	return &Manager{
		users:   map[string]*UserState{},
		cfg:     cfg,
		archive: archive,
	}
}

// GetUserState returns the state for the user, creating it lazily.
func (m *Manager) GetUserState(userID string) *UserState {
	m.mu.RLock()
	us, ok := m.users[userID]
	m.mu.RUnlock()
	if ok {
		return us
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if us, ok = m.users[userID]; ok {
		return us
	}
	us = newUserState(userID)
	m.users[userID] = us
	return us
}

// Config exposes the conversation bounds shared with the orchestrator.
func (m *Manager) Config() model.ConversationConfig {
	return m.cfg
}

// ArchiveMessage persists a message write-through when an archive is
// configured. Failures are logged and never block the turn.
func (m *Manager) ArchiveMessage(ctx context.Context, chatID string, msg model.Message) {
	if m.archive == nil {
		return
	}
	if err := m.archive.AppendMessage(ctx, chatID, msg); err != nil {
		logx.Error().Err(err).Str("chat_id", chatID).Msg("failed to archive message")
	}
}

// ClearArchive drops the persisted messages for a chat when an archive is
// configured. Failures are logged and never block the caller.
func (m *Manager) ClearArchive(ctx context.Context, chatID string) {
	if m.archive == nil {
		return
	}
	if err := m.archive.Clear(ctx, chatID); err != nil {
		logx.Error().Err(err).Str("chat_id", chatID).Msg("failed to clear archive")
	}
}

// SummarizeChatIfNeeded writes a long-term summary record for the chat when
// it first crosses the summarization threshold. The presence check makes the
// operation idempotent: a chat is summarized at most once, and the record is
// never regenerated afterward.
func (m *Manager) SummarizeChatIfNeeded(ctx context.Context, us *UserState, chatID string) {
	chat := us.GetChat(chatID)
	if chat == nil {
		return
	}
	if !chat.NeedsSummarization(m.cfg.SummarizeTokens, m.cfg.CharsPerToken) {
		return
	}
	if us.LongTermHistory.HasSummary(chatID) {
		return
	}

	rec := model.SummaryRecord{
		ChatID:       chatID,
		MessageCount: len(chat.Messages),
		Timestamp:    time.Now().UTC(),
		Summary:      fmt.Sprintf("Summary of chat %s covering %d messages.", chatID, len(chat.Messages)),
	}
	us.LongTermHistory.AddSummary(chatID, rec)

	logx.Debug().
		Str("user_id", us.UserID).
		Str("chat_id", chatID).
		Int("message_count", rec.MessageCount).
		Msg("chat archived into long-term history")

	if m.archive != nil {
		if err := m.archive.SaveSummary(ctx, us.UserID, rec); err != nil {
			logx.Error().Err(err).Str("chat_id", chatID).Msg("failed to archive summary")
		}
	}
}
