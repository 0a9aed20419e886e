package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"chatbot/internal/pkg/apperr"
	"chatbot/internal/pkg/id"
)

// CompletionThreadPrefix completion 模式 thread id 前缀
const CompletionThreadPrefix = "chat-thread-"

// CompletionAdapter 用 ChatModel 模拟 thread/run 语义
// thread 的对话记录保存在 ThreadStore 中，run 在 PostAndRun 内同步完成
type CompletionAdapter struct {
	chatModel    model.BaseChatModel
	threads      ThreadStore
	systemPrompt string
}

// NewCompletionAdapter 创建 completion 适配器
func NewCompletionAdapter(chatModel model.BaseChatModel, threads ThreadStore, systemPrompt string) *CompletionAdapter {
	return &CompletionAdapter{
		chatModel:    chatModel,
		threads:      threads,
		systemPrompt: systemPrompt,
	}
}

// Mode 返回运行模式
func (a *CompletionAdapter) Mode() Mode {
	return ModeCompletion
}

// CreateThread 生成本地 thread id，记录在首次写入时创建
func (a *CompletionAdapter) CreateThread(_ context.Context) (string, error) {
	return CompletionThreadPrefix + id.New(), nil
}

// PostAndRun 以 thread 历史 + 新消息调用模型
// 仅在生成成功后把本轮的用户消息和回复一起写入 thread
func (a *CompletionAdapter) PostAndRun(ctx context.Context, threadID, text string) (*Run, error) {
	history, err := a.threads.Load(ctx, threadID)
	if err != nil {
		return nil, apperr.Adapter("load thread", err)
	}

	input := make([]*schema.Message, 0, len(history)+2)
	if a.systemPrompt != "" {
		input = append(input, schema.SystemMessage(a.systemPrompt))
	}
	input = append(input, history...)
	userMsg := schema.UserMessage(text)
	input = append(input, userMsg)

	runID := "chat-run-" + id.Short()
	resp, err := a.chatModel.Generate(ctx, input)
	if err != nil {
		return nil, apperr.Adapter("generate reply", err)
	}
	if resp == nil {
		return nil, apperr.Adapter("generate reply", fmt.Errorf("model returned no message"))
	}

	if err := a.threads.Append(ctx, threadID, userMsg, schema.AssistantMessage(resp.Content, nil)); err != nil {
		return nil, apperr.Adapter("append thread", err)
	}

	log.Debug().
		Str("thread_id", threadID).
		Str("run_id", runID).
		Int("history", len(history)).
		Msg("completion run finished")

	return &Run{
		ID:       runID,
		ThreadID: threadID,
		Status:   RunCompleted,
		Reply:    resp.Content,
	}, nil
}

// PollRun run 已是终态，原样返回
func (a *CompletionAdapter) PollRun(_ context.Context, run *Run) (*Run, error) {
	return run, nil
}

// FetchLatestReply 返回本次 run 生成的回复
func (a *CompletionAdapter) FetchLatestReply(_ context.Context, run *Run) (string, error) {
	return run.Reply, nil
}
