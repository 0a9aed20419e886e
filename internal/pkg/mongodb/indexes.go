package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"chatbot/internal/model"
	"chatbot/internal/model/auth"
)

// EnsureIndexes 创建所有模型的索引
// 在应用启动时调用，所有模型都实现了 Model 接口
func EnsureIndexes(db *mongo.Database) error {
	ctx := context.Background()

	models := []Model{
		&model.Conversation{},
		&model.Message{},
		&auth.User{},
	}

	return EnsureAllIndexes(ctx, db, models...)
}
