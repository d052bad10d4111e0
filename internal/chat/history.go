package chat

import (
	"context"
	"sync"

	"github.com/dvloznov/ai-accountant/internal/domain"
)

// DefaultHistoryLimit is how many messages a conversation keeps.
const DefaultHistoryLimit = 200

// History stores chat messages per conversation key, oldest first.
type History interface {
	Append(ctx context.Context, key string, msgs ...domain.ChatMessage) error
	List(ctx context.Context, key string) ([]domain.ChatMessage, error)
	Clear(ctx context.Context, key string) error
}

var (
	_ History = (*MemoryHistory)(nil)
	_ History = (*RedisHistory)(nil)
)

// MemoryHistory keeps conversations in process memory.
type MemoryHistory struct {
	mu    sync.RWMutex
	limit int
	convs map[string][]domain.ChatMessage
}

// NewMemoryHistory keeps at most limit messages per key; limit <= 0 selects
// DefaultHistoryLimit.
func NewMemoryHistory(limit int) *MemoryHistory {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &MemoryHistory{limit: limit, convs: make(map[string][]domain.ChatMessage)}
}

func (h *MemoryHistory) Append(_ context.Context, key string, msgs ...domain.ChatMessage) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	conv := append(h.convs[key], msgs...)
	if over := len(conv) - h.limit; over > 0 {
		conv = append([]domain.ChatMessage(nil), conv[over:]...)
	}
	h.convs[key] = conv
	return nil
}

func (h *MemoryHistory) List(_ context.Context, key string) ([]domain.ChatMessage, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return append([]domain.ChatMessage{}, h.convs[key]...), nil
}

func (h *MemoryHistory) Clear(_ context.Context, key string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.convs, key)
	return nil
}
