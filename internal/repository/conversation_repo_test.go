package repository

import (
	"context"
	"os"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"chatbot/internal/config"
	"chatbot/internal/model"
	"chatbot/internal/pkg/id"
	"chatbot/internal/pkg/mongodb"
)

// 需要真实 MongoDB：MONGO_URI=mongodb://localhost:27017 go test ./internal/repository/...
func TestConversationRepo_Mongo(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}

	client, err := mongodb.New(&config.MongoConfig{URI: uri, Database: "chatbot_test_" + id.Short(), MaxPoolSize: 5})
	if err != nil {
		t.Fatalf("connect mongo: %v", err)
	}
	defer func() {
		_ = client.Database().Drop(context.Background())
		_ = client.Close(context.Background())
	}()

	if err := mongodb.EnsureIndexes(client.Database()); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	Convey("ConversationRepo", t, func() {
		ctx := context.Background()
		repo := NewConversationRepo(client.Database())

		conv := &model.Conversation{UserID: "u-" + id.Short(), ThreadID: "thread_1"}
		So(repo.CreateConversation(ctx, conv), ShouldBeNil)

		Convey("追加后按顺序读回", func() {
			at := time.Now().Truncate(time.Millisecond)
			for _, role := range []model.MessageRole{model.RoleUser, model.RoleAssistant} {
				So(repo.AppendMessage(ctx, &model.Message{ConversationID: conv.ID, Role: role, Content: string(role), CreatedAt: at}), ShouldBeNil)
			}

			msgs, err := repo.ListMessages(ctx, conv.ID)
			So(err, ShouldBeNil)
			So(len(msgs), ShouldEqual, 2)
			So(msgs[0].Role, ShouldEqual, model.RoleUser)
			So(msgs[1].Role, ShouldEqual, model.RoleAssistant)
			So(msgs[1].Seq, ShouldBeGreaterThan, msgs[0].Seq)
		})

		Convey("对话不存在时拒绝追加", func() {
			err := repo.AppendMessage(ctx, &model.Message{ConversationID: "missing", Role: model.RoleUser})
			So(err, ShouldEqual, ErrNotFound)

			_, err = repo.FindConversation(ctx, "missing")
			So(err, ShouldEqual, ErrNotFound)
		})

		Convey("用户对话列表", func() {
			convs, err := repo.ListConversations(ctx, conv.UserID)
			So(err, ShouldBeNil)
			So(len(convs), ShouldBeGreaterThanOrEqualTo, 1)
		})
	})
}
