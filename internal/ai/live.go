package ai

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	"chatbot/internal/pkg/apperr"
)

// LiveAdapter 基于 OpenAI Assistants API 的适配器
type LiveAdapter struct {
	client      *openai.Client
	assistantID string
}

// NewLiveAdapter 创建 Assistants 适配器
// baseURL 为空时使用官方地址
func NewLiveAdapter(apiKey, assistantID, baseURL string) *LiveAdapter {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	return &LiveAdapter{
		client:      openai.NewClientWithConfig(clientConfig),
		assistantID: assistantID,
	}
}

// Mode 返回运行模式
func (a *LiveAdapter) Mode() Mode {
	return ModeLive
}

// CreateThread 在 OpenAI 创建 thread
func (a *LiveAdapter) CreateThread(ctx context.Context) (string, error) {
	thread, err := a.client.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return "", apperr.Adapter("create thread", err)
	}
	if thread.ID == "" {
		return "", apperr.Adapter("create thread", fmt.Errorf("thread id is empty in response"))
	}
	return thread.ID, nil
}

// PostAndRun 追加用户消息后启动 run
func (a *LiveAdapter) PostAndRun(ctx context.Context, threadID, text string) (*Run, error) {
	_, err := a.client.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    openai.ChatMessageRoleUser,
		Content: text,
	})
	if err != nil {
		return nil, apperr.Adapter("post message to thread", err)
	}

	run, err := a.client.CreateRun(ctx, threadID, openai.RunRequest{
		AssistantID: a.assistantID,
	})
	if err != nil {
		return nil, apperr.Adapter("create run", err)
	}

	log.Info().
		Str("thread_id", threadID).
		Str("run_id", run.ID).
		Str("status", string(run.Status)).
		Msg("assistant run created")

	return toRun(threadID, run), nil
}

// PollRun 查询 run 状态
func (a *LiveAdapter) PollRun(ctx context.Context, run *Run) (*Run, error) {
	latest, err := a.client.RetrieveRun(ctx, run.ThreadID, run.ID)
	if err != nil {
		return nil, apperr.Adapter("retrieve run", err)
	}
	return toRun(run.ThreadID, latest), nil
}

// FetchLatestReply 只取该 run 产生的最新一条消息，避免拉取完整历史
func (a *LiveAdapter) FetchLatestReply(ctx context.Context, run *Run) (string, error) {
	limit := 1
	order := "desc"
	runID := run.ID
	list, err := a.client.ListMessage(ctx, run.ThreadID, &limit, &order, nil, nil, &runID)
	if err != nil {
		return "", apperr.Adapter("list thread messages", err)
	}
	return parseLatestReply(list)
}

// parseLatestReply 从消息列表中解析助手回复文本
// 结构不符合预期时返回 apperr.KindAdapter，不使用占位文本
func parseLatestReply(list openai.MessagesList) (string, error) {
	if len(list.Messages) == 0 {
		return "", apperr.Adapter("parse reply", fmt.Errorf("thread has no messages"))
	}

	msg := list.Messages[0]
	if msg.Role != openai.ChatMessageRoleAssistant {
		return "", apperr.Adapter("parse reply", fmt.Errorf("latest message role is %q, want assistant", msg.Role))
	}

	for _, content := range msg.Content {
		if content.Type == "text" && content.Text != nil {
			return content.Text.Value, nil
		}
	}
	return "", apperr.Adapter("parse reply", fmt.Errorf("message %s has no text content", msg.ID))
}

// toRun 将 OpenAI 的 run 状态归并到本地状态机
// 除 queued/in_progress/completed 外一律视为失败
func toRun(threadID string, r openai.Run) *Run {
	run := &Run{
		ID:       r.ID,
		ThreadID: threadID,
	}

	switch r.Status {
	case openai.RunStatusQueued:
		run.Status = RunQueued
	case openai.RunStatusInProgress:
		run.Status = RunInProgress
	case openai.RunStatusCompleted:
		run.Status = RunCompleted
	default:
		run.Status = RunFailed
		if r.LastError != nil && r.LastError.Message != "" {
			run.Failure = r.LastError.Message
		} else {
			run.Failure = fmt.Sprintf("run ended with status: %s", r.Status)
		}
	}
	return run
}
