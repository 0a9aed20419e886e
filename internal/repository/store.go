package repository

import (
	"context"
	"errors"

	"chatbot/internal/model"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// ConversationStore 对话与消息的持久化接口
type ConversationStore interface {
	// CreateConversation 保存新对话，ID/CreatedAt 为空时由实现填充
	CreateConversation(ctx context.Context, conv *model.Conversation) error

	// FindConversation 按 ID 查询，不存在返回 ErrNotFound
	FindConversation(ctx context.Context, id string) (*model.Conversation, error)

	// ListConversations 查询用户的对话，按创建时间倒序
	ListConversations(ctx context.Context, userID string) ([]*model.Conversation, error)

	// AppendMessage 追加消息并分配对话内序号，对话不存在返回 ErrNotFound
	AppendMessage(ctx context.Context, msg *model.Message) error

	// ListMessages 按 created_at 升序、seq 升序返回对话的全部消息
	ListMessages(ctx context.Context, conversationID string) ([]*model.Message, error)
}
