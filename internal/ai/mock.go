package ai

import (
	"context"
	"fmt"
	"time"

	"chatbot/internal/pkg/id"
)

// MockThreadPrefix mock thread id 前缀，与 OpenAI 的 "thread_" 前缀不会冲突
const MockThreadPrefix = "mock-thread-"

// MockAdapter 无外部依赖的确定性适配器
// 未配置凭证时使用，run 创建即完成
type MockAdapter struct {
	now func() time.Time
}

// NewMockAdapter 创建 mock 适配器
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{now: time.Now}
}

// MockReply 生成 mock 回复
func MockReply(text string) string {
	return `Mock Reply: "` + text + `" received successfully.`
}

// Mode 返回运行模式
func (m *MockAdapter) Mode() Mode {
	return ModeMock
}

// CreateThread 本地生成 thread id
func (m *MockAdapter) CreateThread(_ context.Context) (string, error) {
	return fmt.Sprintf("%s%d-%s", MockThreadPrefix, m.now().UnixNano(), id.Short()), nil
}

// PostAndRun 直接返回已完成的 run
func (m *MockAdapter) PostAndRun(_ context.Context, threadID, text string) (*Run, error) {
	return &Run{
		ID:       "mock-run-" + id.Short(),
		ThreadID: threadID,
		Status:   RunCompleted,
		Reply:    MockReply(text),
	}, nil
}

// PollRun mock run 已是终态，原样返回
func (m *MockAdapter) PollRun(_ context.Context, run *Run) (*Run, error) {
	return run, nil
}

// FetchLatestReply 返回 PostAndRun 预先生成的回复
func (m *MockAdapter) FetchLatestReply(_ context.Context, run *Run) (string, error) {
	return run.Reply, nil
}
