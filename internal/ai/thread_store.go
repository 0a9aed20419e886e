package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"

	"chatbot/internal/pkg/cache"
)

// ThreadStore completion 模式下保存 thread 的对话记录
type ThreadStore interface {
	// Append 追加消息到 thread 末尾
	Append(ctx context.Context, threadID string, msgs ...*schema.Message) error
	// Load 按写入顺序返回 thread 的全部消息，thread 不存在时返回空切片
	Load(ctx context.Context, threadID string) ([]*schema.Message, error)
}

// MemoryThreadStore 进程内 thread 存储
type MemoryThreadStore struct {
	mu      sync.RWMutex
	threads map[string][]*schema.Message
}

// NewMemoryThreadStore 创建内存 thread 存储
func NewMemoryThreadStore() *MemoryThreadStore {
	return &MemoryThreadStore{threads: make(map[string][]*schema.Message)}
}

// Append 追加消息
func (s *MemoryThreadStore) Append(_ context.Context, threadID string, msgs ...*schema.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threads[threadID] = append(s.threads[threadID], msgs...)
	return nil
}

// Load 读取消息
func (s *MemoryThreadStore) Load(_ context.Context, threadID string) ([]*schema.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*schema.Message, len(s.threads[threadID]))
	copy(out, s.threads[threadID])
	return out, nil
}

// RedisThreadStore 基于 Redis list 的 thread 存储，每个元素是一条 JSON 消息
type RedisThreadStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisThreadStore 创建 Redis thread 存储，ttl<=0 表示不过期
func NewRedisThreadStore(client *redis.Client, ttl time.Duration) *RedisThreadStore {
	return &RedisThreadStore{client: client, ttl: ttl}
}

// Append 追加消息
func (s *RedisThreadStore) Append(ctx context.Context, threadID string, msgs ...*schema.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	values := make([]any, 0, len(msgs))
	for _, m := range msgs {
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("marshal thread message: %w", err)
		}
		values = append(values, data)
	}

	key := cache.ThreadKey(threadID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append thread %s: %w", threadID, err)
	}
	return nil
}

// Load 读取消息
func (s *RedisThreadStore) Load(ctx context.Context, threadID string) ([]*schema.Message, error) {
	raw, err := s.client.LRange(ctx, cache.ThreadKey(threadID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load thread %s: %w", threadID, err)
	}

	msgs := make([]*schema.Message, 0, len(raw))
	for _, item := range raw {
		var m schema.Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, fmt.Errorf("decode thread %s message: %w", threadID, err)
		}
		msgs = append(msgs, &m)
	}
	return msgs, nil
}
