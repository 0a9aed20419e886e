package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"chatbot/internal/pkg/apperr"
)

const (
	DefaultPollInterval    = 1200 * time.Millisecond
	DefaultMaxPollAttempts = 15
)

// WaitFunc 在两次轮询之间挂起，ctx 结束时提前返回 ctx.Err()
type WaitFunc func(ctx context.Context, d time.Duration) error

// Poller 有界轮询：固定间隔、固定最大次数
// 放弃轮询只代表本地不再等待，远端 run 可能仍在继续
type Poller struct {
	MaxAttempts int
	Interval    time.Duration
	Wait        WaitFunc
}

// NewPoller 创建轮询器，非法参数回退到默认值
func NewPoller(maxAttempts int, interval time.Duration) *Poller {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxPollAttempts
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		MaxAttempts: maxAttempts,
		Interval:    interval,
		Wait:        sleepContext,
	}
}

// Await 轮询直到 run 进入终态或次数耗尽
//   - completed: 返回 run
//   - failed: 返回 apperr.KindRunFailed，不重试
//   - 次数耗尽: run 标记为 timed_out，返回 apperr.KindTimeout
//   - ctx 结束（等待中或查询中）: 返回 apperr.KindTimeout
func (p *Poller) Await(ctx context.Context, adapter Adapter, run *Run) (*Run, error) {
	wait := p.Wait
	if wait == nil {
		wait = sleepContext
	}

	logger := log.With().Str("thread_id", run.ThreadID).Str("run_id", run.ID).Logger()

	attempts := 0
	for !run.Status.Terminal() {
		if attempts >= p.MaxAttempts {
			last := run.Status
			run.Status = RunTimedOut
			logger.Warn().Int("attempts", attempts).Str("last_status", string(last)).Msg("run did not finish within poll limit")
			return run, apperr.Timeout(fmt.Sprintf("assistant run still %s after %d polls", last, attempts), nil)
		}

		if err := wait(ctx, p.Interval); err != nil {
			return run, apperr.Timeout("stopped waiting for assistant run", err)
		}

		next, err := adapter.PollRun(ctx, run)
		if err != nil {
			if ctx.Err() != nil {
				return run, apperr.Timeout("stopped waiting for assistant run", ctx.Err())
			}
			if _, ok := apperr.KindOf(err); ok {
				return run, err
			}
			return run, apperr.Adapter("poll run", err)
		}
		run = next
		attempts++

		logger.Debug().Int("attempt", attempts).Str("status", string(run.Status)).Msg("polled run")
	}

	if run.Status == RunFailed {
		return run, apperr.RunFailed(run.Failure)
	}
	if run.Status == RunTimedOut {
		return run, apperr.Timeout("assistant run timed out", nil)
	}
	return run, nil
}

// sleepContext 可被取消的等待
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
