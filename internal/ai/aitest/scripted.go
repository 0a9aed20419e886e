// Package aitest 提供可编排状态序列的 Adapter，用于测试
package aitest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"chatbot/internal/ai"
	"chatbot/internal/pkg/apperr"
)

// ScriptedAdapter 按预设状态序列推进 run 的适配器
// Statuses[0] 为 PostAndRun 返回的初始状态，之后每次 PollRun 前进一步，序列用尽后停留在最后一个状态
type ScriptedAdapter struct {
	mu sync.Mutex

	AdapterMode ai.Mode
	Statuses    []ai.RunStatus
	Failure     string
	Reply       string

	CreateThreadErr error
	PostErr         error
	PollErr         error
	FetchErr        error

	// StallPoll/StallFetch 让调用阻塞到 ctx 结束，再像真实客户端一样返回传输错误
	StallPoll  bool
	StallFetch bool

	ThreadCalls int
	PostCalls   int
	PollCalls   int
	FetchCalls  int
	Posted      []string
}

// Completing 直接完成并返回 reply 的适配器
func Completing(reply string) *ScriptedAdapter {
	return &ScriptedAdapter{Statuses: []ai.RunStatus{ai.RunCompleted}, Reply: reply}
}

// Mode 返回运行模式，未设置时为 live
func (s *ScriptedAdapter) Mode() ai.Mode {
	if s.AdapterMode == "" {
		return ai.ModeLive
	}
	return s.AdapterMode
}

// CreateThread 返回递增的 thread id
func (s *ScriptedAdapter) CreateThread(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ThreadCalls++
	if s.CreateThreadErr != nil {
		return "", s.CreateThreadErr
	}
	return fmt.Sprintf("thread_%d", s.ThreadCalls), nil
}

// PostAndRun 记录消息，返回处于初始状态的 run
func (s *ScriptedAdapter) PostAndRun(_ context.Context, threadID, text string) (*ai.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.PostCalls++
	if s.PostErr != nil {
		return nil, s.PostErr
	}
	s.Posted = append(s.Posted, text)
	return s.runAt(threadID, 0), nil
}

// PollRun 前进到下一个状态
func (s *ScriptedAdapter) PollRun(ctx context.Context, run *ai.Run) (*ai.Run, error) {
	s.mu.Lock()
	s.PollCalls++
	if s.StallPoll {
		s.mu.Unlock()
		<-ctx.Done()
		return nil, apperr.Adapter("retrieve run", ctx.Err())
	}
	defer s.mu.Unlock()
	if s.PollErr != nil {
		return nil, s.PollErr
	}
	return s.runAt(run.ThreadID, s.PollCalls), nil
}

// FetchLatestReply 返回预设回复
func (s *ScriptedAdapter) FetchLatestReply(ctx context.Context, _ *ai.Run) (string, error) {
	s.mu.Lock()
	s.FetchCalls++
	if s.StallFetch {
		s.mu.Unlock()
		<-ctx.Done()
		return "", apperr.Adapter("list messages", ctx.Err())
	}
	defer s.mu.Unlock()
	if s.FetchErr != nil {
		return "", s.FetchErr
	}
	return s.Reply, nil
}

func (s *ScriptedAdapter) runAt(threadID string, step int) *ai.Run {
	status := ai.RunCompleted
	if n := len(s.Statuses); n > 0 {
		if step >= n {
			step = n - 1
		}
		status = s.Statuses[step]
	}

	run := &ai.Run{ID: "run_1", ThreadID: threadID, Status: status}
	if status == ai.RunFailed {
		run.Failure = s.Failure
	}
	return run
}

// Waits 记录等待次数且不真正睡眠的 WaitFunc
type Waits struct {
	mu    sync.Mutex
	Count int
	Err   error
}

// Wait 实现 ai.WaitFunc
func (w *Waits) Wait(_ context.Context, _ time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Err != nil {
		return w.Err
	}
	w.Count++
	return nil
}

// Calls 返回等待次数
func (w *Waits) Calls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Count
}
