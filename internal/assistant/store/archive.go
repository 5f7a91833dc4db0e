package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/savvythreads/server/internal/assistant/model"
	errx "github.com/savvythreads/server/internal/core/error"
	logx "github.com/savvythreads/server/pkg/logger"
)

// Archive persists conversation data outside the in-memory state. The
// orchestration core only requires process-lifetime state; the archive is a
// best-effort write-through so conversations survive restarts.
type Archive interface {
	// AppendMessage appends one message to the chat's durable log.
	AppendMessage(ctx context.Context, chatID string, msg model.Message) error

	// LoadMessages returns the chat's durable log in append order.
	LoadMessages(ctx context.Context, chatID string) ([]model.Message, error)

	// SaveSummary stores a long-term summary record for the user.
	SaveSummary(ctx context.Context, userID string, rec model.SummaryRecord) error

	// Clear removes the chat's durable log.
	Clear(ctx context.Context, chatID string) error
}

// RedisArchive stores chat logs as Redis lists of JSON messages and summary
// records in a per-user hash. A TTL, when set, is extended on every touch.
type RedisArchive struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisArchive(rdb redis.Cmdable, ttl time.Duration) *RedisArchive {
	return &RedisArchive{rdb: rdb, ttl: ttl}
}

func (a *RedisArchive) chatKey(chatID string) string {
	return fmt.Sprintf("chat:%s:messages", chatID)
}

func (a *RedisArchive) summaryKey(userID string) string {
	return fmt.Sprintf("user:%s:summaries", userID)
}

func (a *RedisArchive) AppendMessage(ctx context.Context, chatID string, msg model.Message) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	key := a.chatKey(chatID)

	if err := a.rdb.RPush(ctx, key, b).Err(); err != nil {
		return errx.WrapRedis(err)
	}
	if a.ttl > 0 {
		if ok, err := a.rdb.Expire(ctx, key, a.ttl).Result(); err != nil {
			return errx.WrapRedis(err)
		} else if !ok {
			logx.Warn().Str("key", key).Dur("ttl", a.ttl).Msg("failed to set TTL on chat key")
		}
	}
	return nil
}

func (a *RedisArchive) LoadMessages(ctx context.Context, chatID string) ([]model.Message, error) {
	key := a.chatKey(chatID)

	rows, err := a.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return []model.Message{}, nil
		}
		return nil, errx.WrapRedis(err)
	}

	msgs := make([]model.Message, 0, len(rows))
	for i, s := range rows {
		var m model.Message
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			return nil, fmt.Errorf("unmarshal message at index %d: %w", i, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (a *RedisArchive) SaveSummary(ctx context.Context, userID string, rec model.SummaryRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := a.rdb.HSet(ctx, a.summaryKey(userID), rec.ChatID, b).Err(); err != nil {
		return errx.WrapRedis(err)
	}
	return nil
}

func (a *RedisArchive) Clear(ctx context.Context, chatID string) error {
	if err := a.rdb.Del(ctx, a.chatKey(chatID)).Err(); err != nil {
		return errx.WrapRedis(err)
	}
	return nil
}

var _ Archive = (*RedisArchive)(nil)
