package ai

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"chatbot/internal/config"
)

func TestNewAdapter(t *testing.T) {
	Convey("NewAdapter 按凭证选择模式", t, func() {
		ctx := context.Background()

		Convey("没有 api key 时使用 mock", func() {
			adapter, err := NewAdapter(ctx, &config.AIConfig{AssistantID: "asst_1"}, nil)
			So(err, ShouldBeNil)
			So(adapter.Mode(), ShouldEqual, ModeMock)
		})

		Convey("只有 api key 没有 assistant id 时使用 mock", func() {
			adapter, err := NewAdapter(ctx, &config.AIConfig{APIKey: "sk-test"}, nil)
			So(err, ShouldBeNil)
			So(adapter.Mode(), ShouldEqual, ModeMock)
		})

		Convey("凭证齐全时使用 Assistants API", func() {
			adapter, err := NewAdapter(ctx, &config.AIConfig{Provider: "openai", APIKey: "sk-test", AssistantID: "asst_1"}, nil)
			So(err, ShouldBeNil)
			So(adapter.Mode(), ShouldEqual, ModeLive)
		})

		Convey("chat provider 使用 completion 模式", func() {
			adapter, err := NewAdapter(ctx, &config.AIConfig{Provider: "openai-chat", APIKey: "sk-test", BaseURL: "http://127.0.0.1:1/v1"}, nil)
			So(err, ShouldBeNil)
			So(adapter.Mode(), ShouldEqual, ModeCompletion)
		})

		Convey("未知 provider 报错", func() {
			_, err := NewAdapter(ctx, &config.AIConfig{Provider: "nope", APIKey: "sk-test"}, nil)
			So(err, ShouldNotBeNil)
		})
	})
}
