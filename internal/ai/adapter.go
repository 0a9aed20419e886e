package ai

import (
	"context"
)

// Mode 适配器运行模式，进程启动时确定，生命周期内不变
type Mode string

const (
	ModeLive       Mode = "live"       // OpenAI Assistants API
	ModeMock       Mode = "mock"       // 本地构造回复，无网络调用
	ModeCompletion Mode = "completion" // ChatModel 同步生成，本地维护 thread
)

// RunStatus run 状态
// queued -> in_progress -> {completed | failed}；timed_out 由本地轮询决定
type RunStatus string

const (
	RunQueued     RunStatus = "queued"
	RunInProgress RunStatus = "in_progress"
	RunCompleted  RunStatus = "completed"
	RunFailed     RunStatus = "failed"
	RunTimedOut   RunStatus = "timed_out"
)

// Terminal 是否为终态
func (s RunStatus) Terminal() bool {
	switch s {
	case RunCompleted, RunFailed, RunTimedOut:
		return true
	default:
		return false
	}
}

// Run 一次异步处理的句柄，只存在于单次发送消息的调用中，不持久化
type Run struct {
	ID       string
	ThreadID string
	Status   RunStatus
	Failure  string // 失败原因（外部助手给出）
	Reply    string // mock/completion 模式下预先生成的回复
}

// Adapter 外部助手能力的统一接口
// Live 模式每次调用都有网络 I/O，传输错误以 apperr.KindAdapter 返回
type Adapter interface {
	// Mode 返回运行模式
	Mode() Mode

	// CreateThread 创建 thread，返回外部 thread id
	CreateThread(ctx context.Context) (string, error)

	// PostAndRun 向 thread 追加用户消息并启动 run
	// 该操作不是幂等的，调用方不应在失败后盲目重试
	PostAndRun(ctx context.Context, threadID, text string) (*Run, error)

	// PollRun 查询 run 的最新状态
	PollRun(ctx context.Context, run *Run) (*Run, error)

	// FetchLatestReply 获取 run 所在 thread 最新一条助手回复
	FetchLatestReply(ctx context.Context, run *Run) (string, error)
}
