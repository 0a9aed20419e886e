package service

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"chatbot/internal/ai"
	"chatbot/internal/ai/aitest"
	"chatbot/internal/model"
	"chatbot/internal/pkg/apperr"
	"chatbot/internal/pkg/id"
	"chatbot/internal/repository/memory"
)

// faultyStore 在内存存储上按需注入写入失败
type faultyStore struct {
	*memory.ConversationStore
	createErr error
	appendErr map[model.MessageRole]error
}

func newFaultyStore() *faultyStore {
	return &faultyStore{
		ConversationStore: memory.NewConversationStore(),
		appendErr:         make(map[model.MessageRole]error),
	}
}

func (s *faultyStore) CreateConversation(ctx context.Context, conv *model.Conversation) error {
	if s.createErr != nil {
		return s.createErr
	}
	return s.ConversationStore.CreateConversation(ctx, conv)
}

func (s *faultyStore) AppendMessage(ctx context.Context, msg *model.Message) error {
	if err := s.appendErr[msg.Role]; err != nil {
		return err
	}
	return s.ConversationStore.AppendMessage(ctx, msg)
}

func countRoles(msgs []*model.Message) (user, assistant int) {
	for _, m := range msgs {
		switch m.Role {
		case model.RoleUser:
			user++
		case model.RoleAssistant:
			assistant++
		}
	}
	return user, assistant
}

func fastPoller(maxAttempts int) *ai.Poller {
	p := ai.NewPoller(maxAttempts, time.Millisecond)
	p.Wait = (&aitest.Waits{}).Wait
	return p
}

func TestChatService_MockMode(t *testing.T) {
	Convey("mock 模式下发送消息", t, func() {
		ctx := context.Background()
		store := newFaultyStore()
		svc := NewChatService(store, ai.NewMockAdapter(), nil, 0)

		conv, err := svc.CreateConversation(ctx, "user-1")
		So(err, ShouldBeNil)
		So(conv.ThreadID, ShouldStartWith, ai.MockThreadPrefix)

		result, err := svc.SendMessage(ctx, conv.ID, "hello")
		So(err, ShouldBeNil)
		So(result.Mode, ShouldEqual, ai.ModeMock)
		So(result.Message.Role, ShouldEqual, model.RoleAssistant)
		So(result.Message.Content, ShouldEqual, `Mock Reply: "hello" received successfully.`)

		msgs, err := svc.ListMessages(ctx, conv.ID)
		So(err, ShouldBeNil)
		So(len(msgs), ShouldEqual, 2)
		So(msgs[0].Role, ShouldEqual, model.RoleUser)
		So(msgs[0].Content, ShouldEqual, "hello")
		So(msgs[1].Role, ShouldEqual, model.RoleAssistant)
		So(msgs[1].ID, ShouldEqual, result.Message.ID)
	})
}

func TestChatService_SendMessage(t *testing.T) {
	Convey("ChatService.SendMessage", t, func() {
		ctx := context.Background()
		store := newFaultyStore()
		adapter := &aitest.ScriptedAdapter{
			Statuses: []ai.RunStatus{ai.RunQueued, ai.RunInProgress, ai.RunCompleted},
			Reply:    "Hi, how can I help?",
		}
		svc := NewChatService(store, adapter, fastPoller(5), 0)

		conv, err := svc.CreateConversation(ctx, "user-1")
		So(err, ShouldBeNil)

		Convey("成功时先写用户消息再写助手消息", func() {
			result, err := svc.SendMessage(ctx, conv.ID, "hello")
			So(err, ShouldBeNil)
			So(result.Mode, ShouldEqual, ai.ModeLive)
			So(result.Message.Content, ShouldEqual, "Hi, how can I help?")
			So(adapter.Posted, ShouldResemble, []string{"hello"})
			So(adapter.PollCalls, ShouldEqual, 2)

			msgs, _ := svc.ListMessages(ctx, conv.ID)
			user, assistant := countRoles(msgs)
			So(user, ShouldEqual, 1)
			So(assistant, ShouldEqual, 1)
			So(msgs[0].Role, ShouldEqual, model.RoleUser)
			So(msgs[1].Role, ShouldEqual, model.RoleAssistant)
		})

		Convey("多轮对话保持顺序", func() {
			for _, text := range []string{"one", "two", "three"} {
				_, err := svc.SendMessage(ctx, conv.ID, text)
				So(err, ShouldBeNil)
			}

			msgs, _ := svc.ListMessages(ctx, conv.ID)
			So(len(msgs), ShouldEqual, 6)
			for i, m := range msgs {
				if i%2 == 0 {
					So(m.Role, ShouldEqual, model.RoleUser)
				} else {
					So(m.Role, ShouldEqual, model.RoleAssistant)
				}
				if i > 0 {
					So(m.CreatedAt.Before(msgs[i-1].CreatedAt), ShouldBeFalse)
				}
			}
		})

		Convey("run 失败时只保留用户消息", func() {
			adapter.Statuses = []ai.RunStatus{ai.RunQueued, ai.RunFailed}
			adapter.Failure = "server_error"

			_, err := svc.SendMessage(ctx, conv.ID, "hello")
			So(apperr.Is(err, apperr.KindRunFailed), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "server_error")
			So(adapter.FetchCalls, ShouldEqual, 0)

			msgs, _ := svc.ListMessages(ctx, conv.ID)
			user, assistant := countRoles(msgs)
			So(user, ShouldEqual, 1)
			So(assistant, ShouldEqual, 0)
		})

		Convey("超时时只保留用户消息", func() {
			adapter.Statuses = []ai.RunStatus{ai.RunInProgress}

			_, err := svc.SendMessage(ctx, conv.ID, "hello")
			So(apperr.Is(err, apperr.KindTimeout), ShouldBeTrue)
			So(adapter.PollCalls, ShouldEqual, 5)

			msgs, _ := svc.ListMessages(ctx, conv.ID)
			user, assistant := countRoles(msgs)
			So(user, ShouldEqual, 1)
			So(assistant, ShouldEqual, 0)
		})

		Convey("对话不存在时不调用适配器", func() {
			for _, convID := range []string{id.New(), "not-a-uuid", ""} {
				_, err := svc.SendMessage(ctx, convID, "hello")
				So(apperr.Is(err, apperr.KindConversationNotFound), ShouldBeTrue)
			}
			So(adapter.PostCalls, ShouldEqual, 0)
		})

		Convey("用户消息保存失败时不发起 run", func() {
			store.appendErr[model.RoleUser] = errors.New("write conflict")

			_, err := svc.SendMessage(ctx, conv.ID, "hello")
			So(apperr.Is(err, apperr.KindPersistence), ShouldBeTrue)
			So(adapter.PostCalls, ShouldEqual, 0)
		})

		Convey("发起 run 失败归为适配器错误", func() {
			adapter.PostErr = errors.New("thread already has an active run")

			_, err := svc.SendMessage(ctx, conv.ID, "hello")
			So(apperr.Is(err, apperr.KindAdapter), ShouldBeTrue)

			msgs, _ := svc.ListMessages(ctx, conv.ID)
			So(len(msgs), ShouldEqual, 1)
		})

		Convey("回复解析失败不写助手消息", func() {
			adapter.FetchErr = apperr.Adapter("parse reply", errors.New("message has no text content"))

			_, err := svc.SendMessage(ctx, conv.ID, "hello")
			So(err, ShouldEqual, adapter.FetchErr)

			msgs, _ := svc.ListMessages(ctx, conv.ID)
			_, assistant := countRoles(msgs)
			So(assistant, ShouldEqual, 0)
		})

		Convey("助手消息保存失败返回存储错误", func() {
			store.appendErr[model.RoleAssistant] = errors.New("disk full")

			_, err := svc.SendMessage(ctx, conv.ID, "hello")
			So(apperr.Is(err, apperr.KindPersistence), ShouldBeTrue)

			msgs, _ := svc.ListMessages(ctx, conv.ID)
			So(len(msgs), ShouldEqual, 1)
		})
	})
}

func TestChatService_SendTimeout(t *testing.T) {
	Convey("send_timeout 到期时停止等待", t, func() {
		ctx := context.Background()
		store := newFaultyStore()
		adapter := &aitest.ScriptedAdapter{Statuses: []ai.RunStatus{ai.RunInProgress}}
		svc := NewChatService(store, adapter, ai.NewPoller(15, time.Hour), 20*time.Millisecond)

		conv, err := svc.CreateConversation(ctx, "user-1")
		So(err, ShouldBeNil)

		start := time.Now()
		_, err = svc.SendMessage(ctx, conv.ID, "hello")
		So(apperr.Is(err, apperr.KindTimeout), ShouldBeTrue)
		So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
		So(time.Since(start), ShouldBeLessThan, 5*time.Second)
		So(adapter.PollCalls, ShouldEqual, 0)
	})

	Convey("查询 run 的请求被 send_timeout 打断时归为超时", t, func() {
		ctx := context.Background()
		store := newFaultyStore()
		adapter := &aitest.ScriptedAdapter{Statuses: []ai.RunStatus{ai.RunInProgress}, StallPoll: true}
		svc := NewChatService(store, adapter, ai.NewPoller(15, time.Millisecond), 30*time.Millisecond)

		conv, err := svc.CreateConversation(ctx, "user-1")
		So(err, ShouldBeNil)

		_, err = svc.SendMessage(ctx, conv.ID, "hello")
		So(apperr.Is(err, apperr.KindTimeout), ShouldBeTrue)
		So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
		So(adapter.PollCalls, ShouldEqual, 1)

		msgs, err := svc.ListMessages(ctx, conv.ID)
		So(err, ShouldBeNil)
		So(msgs, ShouldHaveLength, 1)
		So(msgs[0].Role, ShouldEqual, model.RoleUser)
	})

	Convey("取回复的请求被 send_timeout 打断时归为超时", t, func() {
		ctx := context.Background()
		store := newFaultyStore()
		adapter := aitest.Completing("late")
		adapter.StallFetch = true
		svc := NewChatService(store, adapter, fastPoller(5), 30*time.Millisecond)

		conv, err := svc.CreateConversation(ctx, "user-1")
		So(err, ShouldBeNil)

		_, err = svc.SendMessage(ctx, conv.ID, "hello")
		So(apperr.Is(err, apperr.KindTimeout), ShouldBeTrue)
		So(adapter.FetchCalls, ShouldEqual, 1)
	})
}

func TestChatService_CreateConversation(t *testing.T) {
	Convey("ChatService.CreateConversation", t, func() {
		ctx := context.Background()
		store := newFaultyStore()
		adapter := aitest.Completing("ok")
		svc := NewChatService(store, adapter, fastPoller(5), 0)

		Convey("保存失败时不留下对话", func() {
			store.createErr = errors.New("connection refused")

			_, err := svc.CreateConversation(ctx, "user-1")
			So(apperr.Is(err, apperr.KindPersistence), ShouldBeTrue)

			convs, err := svc.ListConversations(ctx, "user-1")
			So(err, ShouldBeNil)
			So(convs, ShouldBeEmpty)
		})

		Convey("创建 thread 失败时不写存储", func() {
			adapter.CreateThreadErr = errors.New("401 unauthorized")

			_, err := svc.CreateConversation(ctx, "user-1")
			So(apperr.Is(err, apperr.KindAdapter), ShouldBeTrue)

			convs, _ := svc.ListConversations(ctx, "user-1")
			So(convs, ShouldBeEmpty)
		})

		Convey("对话列表只包含本人的对话", func() {
			mine, err := svc.CreateConversation(ctx, "user-1")
			So(err, ShouldBeNil)
			So(mine.ThreadID, ShouldEqual, "thread_1")
			_, err = svc.CreateConversation(ctx, "user-2")
			So(err, ShouldBeNil)

			convs, err := svc.ListConversations(ctx, "user-1")
			So(err, ShouldBeNil)
			So(len(convs), ShouldEqual, 1)
			So(convs[0].ID, ShouldEqual, mine.ID)
		})
	})
}

func TestChatService_ListMessages(t *testing.T) {
	Convey("ListMessages 对不存在的对话返回 ConversationNotFound", t, func() {
		svc := NewChatService(newFaultyStore(), ai.NewMockAdapter(), nil, 0)

		_, err := svc.ListMessages(context.Background(), id.New())
		So(apperr.Is(err, apperr.KindConversationNotFound), ShouldBeTrue)
	})

	Convey("新对话的消息列表为空", t, func() {
		ctx := context.Background()
		svc := NewChatService(newFaultyStore(), ai.NewMockAdapter(), nil, 0)
		conv, _ := svc.CreateConversation(ctx, "user-1")

		msgs, err := svc.ListMessages(ctx, conv.ID)
		So(err, ShouldBeNil)
		So(msgs, ShouldBeEmpty)
	})
}
