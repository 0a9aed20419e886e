package ai_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"chatbot/internal/ai"
	"chatbot/internal/ai/aitest"
	"chatbot/internal/pkg/apperr"
)

func startRun(adapter *aitest.ScriptedAdapter) *ai.Run {
	run, err := adapter.PostAndRun(context.Background(), "thread_1", "hello")
	So(err, ShouldBeNil)
	return run
}

func newTestPoller(maxAttempts int, waits *aitest.Waits) *ai.Poller {
	p := ai.NewPoller(maxAttempts, time.Millisecond)
	p.Wait = waits.Wait
	return p
}

func TestPoller_Await(t *testing.T) {
	Convey("Poller.Await", t, func() {
		ctx := context.Background()
		waits := &aitest.Waits{}

		Convey("queued -> in_progress -> in_progress -> completed 恰好等待三次", func() {
			adapter := &aitest.ScriptedAdapter{Statuses: []ai.RunStatus{
				ai.RunQueued, ai.RunInProgress, ai.RunInProgress, ai.RunCompleted,
			}}

			run, err := newTestPoller(15, waits).Await(ctx, adapter, startRun(adapter))
			So(err, ShouldBeNil)
			So(run.Status, ShouldEqual, ai.RunCompleted)
			So(waits.Calls(), ShouldEqual, 3)
			So(adapter.PollCalls, ShouldEqual, 3)
		})

		Convey("已完成的 run 不等待也不查询", func() {
			adapter := aitest.Completing("hi")

			run, err := newTestPoller(15, waits).Await(ctx, adapter, startRun(adapter))
			So(err, ShouldBeNil)
			So(run.Status, ShouldEqual, ai.RunCompleted)
			So(waits.Calls(), ShouldEqual, 0)
			So(adapter.PollCalls, ShouldEqual, 0)
		})

		Convey("上限为 5 且一直 in_progress 时查询 5 次后超时", func() {
			adapter := &aitest.ScriptedAdapter{Statuses: []ai.RunStatus{ai.RunInProgress}}

			run, err := newTestPoller(5, waits).Await(ctx, adapter, startRun(adapter))
			So(apperr.Is(err, apperr.KindTimeout), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "still in_progress after 5 polls")
			So(run.Status, ShouldEqual, ai.RunTimedOut)
			So(adapter.PollCalls, ShouldEqual, 5)
			So(waits.Calls(), ShouldEqual, 5)
		})

		Convey("run 失败时返回失败原因且不再查询", func() {
			adapter := &aitest.ScriptedAdapter{
				Statuses: []ai.RunStatus{ai.RunQueued, ai.RunFailed, ai.RunCompleted},
				Failure:  "rate_limit_exceeded",
			}

			run, err := newTestPoller(15, waits).Await(ctx, adapter, startRun(adapter))
			So(apperr.Is(err, apperr.KindRunFailed), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "rate_limit_exceeded")
			So(run.Status, ShouldEqual, ai.RunFailed)
			So(adapter.PollCalls, ShouldEqual, 1)
		})

		Convey("查询出错时归类为适配器错误", func() {
			adapter := &aitest.ScriptedAdapter{Statuses: []ai.RunStatus{ai.RunQueued}}
			run := startRun(adapter)
			adapter.PollErr = errors.New("connection reset by peer")

			_, err := newTestPoller(15, waits).Await(ctx, adapter, run)
			So(apperr.Is(err, apperr.KindAdapter), ShouldBeTrue)
			So(adapter.PollCalls, ShouldEqual, 1)
		})

		Convey("已分类的查询错误原样返回", func() {
			adapter := &aitest.ScriptedAdapter{Statuses: []ai.RunStatus{ai.RunQueued}}
			run := startRun(adapter)
			adapter.PollErr = apperr.Adapter("retrieve run", errors.New("502 bad gateway"))

			_, err := newTestPoller(15, waits).Await(ctx, adapter, run)
			So(err, ShouldEqual, adapter.PollErr)
		})

		Convey("等待被取消时按超时处理", func() {
			adapter := &aitest.ScriptedAdapter{Statuses: []ai.RunStatus{ai.RunQueued}}
			waits.Err = context.Canceled

			_, err := newTestPoller(15, waits).Await(ctx, adapter, startRun(adapter))
			So(apperr.Is(err, apperr.KindTimeout), ShouldBeTrue)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(adapter.PollCalls, ShouldEqual, 0)
		})

		Convey("查询进行中 ctx 到期按超时处理", func() {
			adapter := &aitest.ScriptedAdapter{Statuses: []ai.RunStatus{ai.RunInProgress}, StallPoll: true}
			deadlineCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
			defer cancel()

			_, err := newTestPoller(15, waits).Await(deadlineCtx, adapter, startRun(adapter))
			So(apperr.Is(err, apperr.KindTimeout), ShouldBeTrue)
			So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
			So(adapter.PollCalls, ShouldEqual, 1)
		})
	})
}

func TestNewPoller(t *testing.T) {
	Convey("非法参数回退到默认值", t, func() {
		p := ai.NewPoller(0, -time.Second)
		So(p.MaxAttempts, ShouldEqual, ai.DefaultMaxPollAttempts)
		So(p.Interval, ShouldEqual, ai.DefaultPollInterval)
		So(p.Wait, ShouldNotBeNil)
	})

	Convey("默认等待函数在 ctx 结束时提前返回", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		adapter := &aitest.ScriptedAdapter{Statuses: []ai.RunStatus{ai.RunQueued}}
		p := ai.NewPoller(3, time.Hour)

		start := time.Now()
		_, err := p.Await(ctx, adapter, startRun(adapter))
		So(apperr.Is(err, apperr.KindTimeout), ShouldBeTrue)
		So(time.Since(start), ShouldBeLessThan, time.Second)
	})
}
