package model

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Conversation 对话实体
// ThreadID 由助手适配器在创建时给出，之后不再变化
type Conversation struct {
	ID        string    `bson:"_id" json:"id"`              // UUID
	UserID    string    `bson:"user_id" json:"user_id"`     // 创建者
	ThreadID  string    `bson:"thread_id" json:"thread_id"` // 外部助手 thread id
	CreatedAt time.Time `bson:"created_at" json:"created_at"`

	// MessageSeq 已分配的最大消息序号
	MessageSeq int64 `bson:"message_seq" json:"-"`
}

// MessageRole 消息角色
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message 消息，只追加不修改
// 排序: created_at 升序，相同时按 seq（对话内单调递增）
type Message struct {
	ID             string      `bson:"_id" json:"id"`
	ConversationID string      `bson:"conversation_id" json:"conversation_id"`
	Role           MessageRole `bson:"role" json:"role"`
	Content        string      `bson:"content" json:"content"`
	Seq            int64       `bson:"seq" json:"seq"`
	CreatedAt      time.Time   `bson:"created_at" json:"created_at"`
}

// Collection 返回集合名称
func (c *Conversation) Collection() string {
	return "conversations"
}

// EnsureIndexes 创建和维护索引
func (c *Conversation) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(c.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "user_id", Value: 1}, bson.E{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_user_created"),
		},
		{
			Keys:    bson.D{bson.E{Key: "thread_id", Value: 1}},
			Options: options.Index().SetName("idx_thread_id"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}

// Collection 返回集合名称
func (m *Message) Collection() string {
	return "messages"
}

// EnsureIndexes 创建和维护索引
// (conversation_id, seq) 唯一，保证同一对话内序号不重复
func (m *Message) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(m.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "conversation_id", Value: 1}, bson.E{Key: "seq", Value: 1}},
			Options: options.Index().SetName("idx_conversation_seq").SetUnique(true),
		},
		{
			Keys:    bson.D{bson.E{Key: "conversation_id", Value: 1}, bson.E{Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_conversation_created"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
