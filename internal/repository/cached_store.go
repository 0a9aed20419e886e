package repository

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"chatbot/internal/model"
	"chatbot/internal/pkg/cache"
)

// CachedConversationStore 为 FindConversation 增加 Redis 读穿缓存
// 对话创建后不再修改，缓存无需失效；其余操作直接透传
// 缓存读写失败只记录日志，不影响主流程
type CachedConversationStore struct {
	ConversationStore
	cache *cache.RedisCache
}

// NewCachedConversationStore 包装已有存储
func NewCachedConversationStore(store ConversationStore, c *cache.RedisCache) *CachedConversationStore {
	return &CachedConversationStore{ConversationStore: store, cache: c}
}

// CreateConversation 写入存储后预热缓存
func (s *CachedConversationStore) CreateConversation(ctx context.Context, conv *model.Conversation) error {
	if err := s.ConversationStore.CreateConversation(ctx, conv); err != nil {
		return err
	}
	s.put(ctx, conv)
	return nil
}

// FindConversation 先查缓存，未命中再查存储
func (s *CachedConversationStore) FindConversation(ctx context.Context, convID string) (*model.Conversation, error) {
	var conv model.Conversation
	err := s.cache.Get(ctx, cache.ConversationCacheKey(convID), &conv)
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		log.Warn().Err(err).Str("conversation_id", convID).Msg("conversation cache read failed")
	}

	found, err := s.ConversationStore.FindConversation(ctx, convID)
	if err != nil {
		return nil, err
	}
	s.put(ctx, found)
	return found, nil
}

func (s *CachedConversationStore) put(ctx context.Context, conv *model.Conversation) {
	if err := s.cache.Set(ctx, cache.ConversationCacheKey(conv.ID), conv, cache.ConversationCacheTTL); err != nil {
		log.Warn().Err(err).Str("conversation_id", conv.ID).Msg("conversation cache write failed")
	}
}
