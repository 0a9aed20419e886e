package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	. "github.com/smartystreets/goconvey/convey"

	"chatbot/internal/model"
	"chatbot/internal/pkg/cache"
	"chatbot/internal/repository"
	"chatbot/internal/repository/memory"
)

func TestCachedConversationStore_RedisUnavailable(t *testing.T) {
	Convey("Redis 不可用时退化为直接读存储", t, func() {
		ctx := context.Background()
		client := redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: 50 * time.Millisecond,
			MaxRetries:  -1,
		})
		defer client.Close()

		inner := memory.NewConversationStore()
		store := repository.NewCachedConversationStore(inner, cache.NewFromClient(client))

		conv := &model.Conversation{UserID: "u1", ThreadID: "thread_1"}
		So(store.CreateConversation(ctx, conv), ShouldBeNil)

		found, err := store.FindConversation(ctx, conv.ID)
		So(err, ShouldBeNil)
		So(found.ThreadID, ShouldEqual, "thread_1")

		_, err = store.FindConversation(ctx, "missing")
		So(err, ShouldEqual, repository.ErrNotFound)

		So(store.AppendMessage(ctx, &model.Message{ConversationID: conv.ID, Role: model.RoleUser, Content: "hi"}), ShouldBeNil)
		msgs, err := store.ListMessages(ctx, conv.ID)
		So(err, ShouldBeNil)
		So(len(msgs), ShouldEqual, 1)
	})
}
