package ai

import (
	"context"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMockAdapter(t *testing.T) {
	Convey("MockAdapter", t, func() {
		ctx := context.Background()
		m := NewMockAdapter()
		So(m.Mode(), ShouldEqual, ModeMock)

		Convey("thread id 带 mock 前缀且互不相同", func() {
			a, err := m.CreateThread(ctx)
			So(err, ShouldBeNil)
			b, err := m.CreateThread(ctx)
			So(err, ShouldBeNil)

			So(strings.HasPrefix(a, MockThreadPrefix), ShouldBeTrue)
			So(a, ShouldNotEqual, b)
		})

		Convey("run 创建即完成，回复原样包含用户文本", func() {
			run, err := m.PostAndRun(ctx, "mock-thread-1", `say "hi"`)
			So(err, ShouldBeNil)
			So(run.Status, ShouldEqual, RunCompleted)

			polled, err := m.PollRun(ctx, run)
			So(err, ShouldBeNil)
			So(polled, ShouldEqual, run)

			reply, err := m.FetchLatestReply(ctx, run)
			So(err, ShouldBeNil)
			So(reply, ShouldEqual, `Mock Reply: "say "hi"" received successfully.`)
		})
	})
}
