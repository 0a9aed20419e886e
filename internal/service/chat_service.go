package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"chatbot/internal/ai"
	"chatbot/internal/model"
	"chatbot/internal/pkg/apperr"
	"chatbot/internal/pkg/id"
	"chatbot/internal/repository"
)

// ChatService 对话编排服务
// 职责: 串联存储、助手适配器与轮询器，保证消息写入顺序
type ChatService interface {
	// CreateConversation 创建 thread 并保存对话，任一步失败都不会留下对话记录
	CreateConversation(ctx context.Context, userID string) (*model.Conversation, error)

	// SendMessage 发送一条用户消息并返回助手回复
	SendMessage(ctx context.Context, conversationID, text string) (*SendMessageResult, error)

	// ListMessages 按时间顺序返回对话消息，对话不存在返回 KindConversationNotFound
	ListMessages(ctx context.Context, conversationID string) ([]*model.Message, error)

	// ListConversations 返回用户的对话，最新的在前
	ListConversations(ctx context.Context, userID string) ([]*model.Conversation, error)
}

// SendMessageResult 发送消息结果
type SendMessageResult struct {
	Message *model.Message // 已保存的助手消息
	Mode    ai.Mode
}

type chatService struct {
	store       repository.ConversationStore
	adapter     ai.Adapter
	poller      *ai.Poller
	sendTimeout time.Duration
}

// NewChatService 创建对话服务
// sendTimeout>0 时为每次 SendMessage 附加截止时间
func NewChatService(store repository.ConversationStore, adapter ai.Adapter, poller *ai.Poller, sendTimeout time.Duration) ChatService {
	if poller == nil {
		poller = ai.NewPoller(ai.DefaultMaxPollAttempts, ai.DefaultPollInterval)
	}
	return &chatService{
		store:       store,
		adapter:     adapter,
		poller:      poller,
		sendTimeout: sendTimeout,
	}
}

func (s *chatService) CreateConversation(ctx context.Context, userID string) (*model.Conversation, error) {
	threadID, err := s.adapter.CreateThread(ctx)
	if err != nil {
		return nil, asAdapterError("create thread", err)
	}

	conv := &model.Conversation{
		ID:       id.New(),
		UserID:   userID,
		ThreadID: threadID,
	}
	if err := s.store.CreateConversation(ctx, conv); err != nil {
		log.Error().Err(err).Str("thread_id", threadID).Msg("failed to save conversation")
		return nil, apperr.Persistence("save conversation", err)
	}

	log.Info().
		Str("conversation_id", conv.ID).
		Str("user_id", userID).
		Str("thread_id", threadID).
		Str("mode", string(s.adapter.Mode())).
		Msg("conversation created")

	return conv, nil
}

// SendMessage 处理一轮对话
// 流程: 1. 查询对话 -> 2. 保存用户消息 -> 3. 发起 run -> 4. 轮询至终态 -> 5. 取回复并保存
// 用户消息在调用助手之前落库；run 失败或超时不写入助手消息
func (s *chatService) SendMessage(ctx context.Context, conversationID, text string) (*SendMessageResult, error) {
	if s.sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.sendTimeout)
		defer cancel()
	}

	conv, err := s.findConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	logger := log.With().
		Str("conversation_id", conv.ID).
		Str("thread_id", conv.ThreadID).
		Logger()

	// 1. 保存用户消息
	userMsg := &model.Message{
		ConversationID: conv.ID,
		Role:           model.RoleUser,
		Content:        text,
	}
	if err := s.store.AppendMessage(ctx, userMsg); err != nil {
		logger.Error().Err(err).Msg("failed to save user message")
		return nil, apperr.Persistence("save user message", err)
	}

	// 2. 发起 run，不重试
	run, err := s.adapter.PostAndRun(ctx, conv.ThreadID, text)
	if err != nil {
		logger.Error().Err(err).Msg("failed to start assistant run")
		return nil, asCallError(ctx, "start run", err)
	}

	// 3. 轮询，run 已是终态时直接返回
	run, err = s.poller.Await(ctx, s.adapter, run)
	if err != nil {
		logger.Warn().Err(err).Str("run_id", run.ID).Str("status", string(run.Status)).Msg("assistant run did not complete")
		return nil, err
	}

	// 4. 取回复
	reply, err := s.adapter.FetchLatestReply(ctx, run)
	if err != nil {
		logger.Error().Err(err).Str("run_id", run.ID).Msg("failed to fetch assistant reply")
		return nil, asCallError(ctx, "fetch reply", err)
	}

	// 5. 保存助手消息，回复已生成，调用方断开也要落库
	assistantMsg := &model.Message{
		ConversationID: conv.ID,
		Role:           model.RoleAssistant,
		Content:        reply,
	}
	if err := s.store.AppendMessage(context.WithoutCancel(ctx), assistantMsg); err != nil {
		logger.Error().Err(err).Str("run_id", run.ID).Msg("failed to save assistant message")
		return nil, apperr.Persistence("save assistant message", err)
	}

	logger.Info().
		Str("run_id", run.ID).
		Str("mode", string(s.adapter.Mode())).
		Int("reply_len", len(reply)).
		Msg("message answered")

	return &SendMessageResult{
		Message: assistantMsg,
		Mode:    s.adapter.Mode(),
	}, nil
}

func (s *chatService) ListMessages(ctx context.Context, conversationID string) ([]*model.Message, error) {
	conv, err := s.findConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	msgs, err := s.store.ListMessages(ctx, conv.ID)
	if err != nil {
		return nil, apperr.Persistence("list messages", err)
	}
	return msgs, nil
}

func (s *chatService) ListConversations(ctx context.Context, userID string) ([]*model.Conversation, error) {
	convs, err := s.store.ListConversations(ctx, userID)
	if err != nil {
		return nil, apperr.Persistence("list conversations", err)
	}
	return convs, nil
}

// findConversation ID 格式非法与记录不存在同样视为对话不存在
func (s *chatService) findConversation(ctx context.Context, conversationID string) (*model.Conversation, error) {
	if !id.IsValid(conversationID) {
		return nil, apperr.ConversationNotFound(conversationID)
	}

	conv, err := s.store.FindConversation(ctx, conversationID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.ConversationNotFound(conversationID)
	}
	if err != nil {
		return nil, apperr.Persistence("find conversation", err)
	}
	return conv, nil
}

// asCallError 调用期间 ctx 已结束的归为超时，其余同 asAdapterError
func asCallError(ctx context.Context, msg string, err error) error {
	if ctx.Err() != nil {
		return apperr.Timeout("stopped waiting for assistant run", ctx.Err())
	}
	return asAdapterError(msg, err)
}

// asAdapterError 已分类的错误原样返回，其余归为适配器错误
func asAdapterError(msg string, err error) error {
	if _, ok := apperr.KindOf(err); ok {
		return err
	}
	return apperr.Adapter(msg, err)
}
