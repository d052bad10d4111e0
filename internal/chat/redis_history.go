package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dvloznov/ai-accountant/internal/domain"
)

const redisKeyPrefix = "chat:history:"

// NewRedisClient connects to addr, which may be host:port or a redis:// URL
// without the scheme, and pings it.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(redisOptions(addr))

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("NewRedisClient: failed to connect to redis: %w", err)
	}
	return client, nil
}

// RedisAddr returns the host:port part of addr with any credentials
// stripped, for logging.
func RedisAddr(addr string) string {
	return redisOptions(addr).Addr
}

func redisOptions(addr string) *redis.Options {
	opt, err := redis.ParseURL(fmt.Sprintf("redis://%s", addr))
	if err != nil {
		return &redis.Options{
			Addr: addr,
		}
	}
	return opt
}

// RedisHistory stores each conversation as a Redis list of JSON messages.
type RedisHistory struct {
	client redis.UniversalClient
	limit  int
	ttl    time.Duration
}

// NewRedisHistory trims each list to limit messages and expires idle
// conversations after ttl. ttl 0 keeps them forever.
func NewRedisHistory(client redis.UniversalClient, limit int, ttl time.Duration) *RedisHistory {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &RedisHistory{client: client, limit: limit, ttl: ttl}
}

func (h *RedisHistory) Append(ctx context.Context, key string, msgs ...domain.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}

	values := make([]interface{}, len(msgs))
	for i, m := range msgs {
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("RedisHistory.Append: marshal message: %w", err)
		}
		values[i] = data
	}

	k := redisKeyPrefix + key
	_, err := h.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, k, values...)
		pipe.LTrim(ctx, k, int64(-h.limit), -1)
		if h.ttl > 0 {
			pipe.Expire(ctx, k, h.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("RedisHistory.Append: %w", err)
	}
	return nil
}

func (h *RedisHistory) List(ctx context.Context, key string) ([]domain.ChatMessage, error) {
	raw, err := h.client.LRange(ctx, redisKeyPrefix+key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("RedisHistory.List: %w", err)
	}

	msgs := make([]domain.ChatMessage, 0, len(raw))
	for _, r := range raw {
		var m domain.ChatMessage
		if err := json.Unmarshal([]byte(r), &m); err != nil {
			return nil, fmt.Errorf("RedisHistory.List: decode message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (h *RedisHistory) Clear(ctx context.Context, key string) error {
	if err := h.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("RedisHistory.Clear: %w", err)
	}
	return nil
}
