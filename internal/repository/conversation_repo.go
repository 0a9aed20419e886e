package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chatbot/internal/model"
	"chatbot/internal/pkg/id"
)

// ConversationRepo 对话仓库（MongoDB）
// 对话与消息分两个集合存放，消息序号由对话文档上的 message_seq 原子分配
type ConversationRepo struct {
	conversations *mongo.Collection
	messages      *mongo.Collection
	now           func() time.Time
}

// NewConversationRepo 创建对话仓库
func NewConversationRepo(db *mongo.Database) *ConversationRepo {
	return &ConversationRepo{
		conversations: db.Collection((&model.Conversation{}).Collection()),
		messages:      db.Collection((&model.Message{}).Collection()),
		now:           time.Now,
	}
}

// CreateConversation 创建对话
func (r *ConversationRepo) CreateConversation(ctx context.Context, conv *model.Conversation) error {
	if conv.ID == "" {
		conv.ID = id.New()
	}
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = r.now()
	}
	conv.MessageSeq = 0

	_, err := r.conversations.InsertOne(ctx, conv)
	return err
}

// FindConversation 根据 ID 查询
func (r *ConversationRepo) FindConversation(ctx context.Context, convID string) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.conversations.FindOne(ctx, bson.M{"_id": convID}).Decode(&conv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListConversations 查询用户对话列表
func (r *ConversationRepo) ListConversations(ctx context.Context, userID string) ([]*model.Conversation, error) {
	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "created_at", Value: -1}})

	cursor, err := r.conversations.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	convs := make([]*model.Conversation, 0)
	if err := cursor.All(ctx, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

// AppendMessage 追加消息
// 先对 message_seq 自增拿到序号（同时确认对话存在），再写入消息
func (r *ConversationRepo) AppendMessage(ctx context.Context, msg *model.Message) error {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"message_seq": 1})

	var conv model.Conversation
	err := r.conversations.FindOneAndUpdate(ctx,
		bson.M{"_id": msg.ConversationID},
		bson.M{"$inc": bson.M{"message_seq": 1}},
		opts,
	).Decode(&conv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if msg.ID == "" {
		msg.ID = id.New()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = r.now()
	}
	msg.Seq = conv.MessageSeq

	_, err = r.messages.InsertOne(ctx, msg)
	return err
}

// ListMessages 查询对话的全部消息
func (r *ConversationRepo) ListMessages(ctx context.Context, conversationID string) ([]*model.Message, error) {
	opts := options.Find().
		SetSort(bson.D{
			bson.E{Key: "created_at", Value: 1},
			bson.E{Key: "seq", Value: 1},
		})

	cursor, err := r.messages.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	msgs := make([]*model.Message, 0)
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}
