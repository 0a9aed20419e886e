// Package memory 进程内存储，未配置 MongoDB 时和测试中使用
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"chatbot/internal/model"
	"chatbot/internal/pkg/id"
	"chatbot/internal/repository"
)

// ConversationStore 内存版 repository.ConversationStore
// 读写都复制结构体，调用方拿到的指针不会与存储共享
type ConversationStore struct {
	mu            sync.RWMutex
	conversations map[string]*model.Conversation
	messages      map[string][]*model.Message
	now           func() time.Time
}

var _ repository.ConversationStore = (*ConversationStore)(nil)

// NewConversationStore 创建内存对话存储
func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		conversations: make(map[string]*model.Conversation),
		messages:      make(map[string][]*model.Message),
		now:           time.Now,
	}
}

// SetClock 替换时间源
func (s *ConversationStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *ConversationStore) CreateConversation(_ context.Context, conv *model.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conv.ID == "" {
		conv.ID = id.New()
	}
	if _, exists := s.conversations[conv.ID]; exists {
		return fmt.Errorf("conversation %s already exists", conv.ID)
	}
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = s.now()
	}
	conv.MessageSeq = 0

	stored := *conv
	s.conversations[conv.ID] = &stored
	return nil
}

func (s *ConversationStore) FindConversation(_ context.Context, convID string) (*model.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[convID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *conv
	return &out, nil
}

func (s *ConversationStore) ListConversations(_ context.Context, userID string) ([]*model.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.Conversation, 0)
	for _, conv := range s.conversations {
		if conv.UserID == userID {
			out := *conv
			result = append(result, &out)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *ConversationStore) AppendMessage(_ context.Context, msg *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[msg.ConversationID]
	if !ok {
		return repository.ErrNotFound
	}

	conv.MessageSeq++
	msg.Seq = conv.MessageSeq
	if msg.ID == "" {
		msg.ID = id.New()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now()
	}

	stored := *msg
	s.messages[msg.ConversationID] = append(s.messages[msg.ConversationID], &stored)
	return nil
}

func (s *ConversationStore) ListMessages(_ context.Context, conversationID string) ([]*model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.messages[conversationID]
	result := make([]*model.Message, 0, len(stored))
	for _, msg := range stored {
		out := *msg
		result = append(result, &out)
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].Seq < result[j].Seq
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
