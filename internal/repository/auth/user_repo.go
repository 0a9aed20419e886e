package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"chatbot/internal/model/auth"
	"chatbot/internal/pkg/id"
)

var (
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateEmail 邮箱已被使用
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserStore 用户存储接口
type UserStore interface {
	Create(ctx context.Context, user *auth.User) error
	FindByID(ctx context.Context, id string) (*auth.User, error)
	FindByEmail(ctx context.Context, email string) (*auth.User, error)
	UpdateLastLoginAt(ctx context.Context, id string, at time.Time) error
}

// NormalizeEmail 邮箱统一小写去空白后存储和查询
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserRepo 用户仓库
// 使用UUID作为ID，无需ObjectID转换
type UserRepo struct {
	collection *mongo.Collection
}

var _ UserStore = (*UserRepo)(nil)

// NewUserRepo 创建用户仓库
func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{
		collection: db.Collection((&auth.User{}).Collection()),
	}
}

// Create 创建用户
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	if user.ID == "" {
		user.ID = id.New()
	}
	user.Email = NormalizeEmail(user.Email)
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	return err
}

// FindByID 根据ID查询用户
func (r *UserRepo) FindByID(ctx context.Context, userID string) (*auth.User, error) {
	return r.findOne(ctx, bson.M{"_id": userID})
}

// FindByEmail 根据邮箱查询用户
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.findOne(ctx, bson.M{"email": NormalizeEmail(email)})
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.M) (*auth.User, error) {
	var user auth.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateLastLoginAt 更新最后登录时间
func (r *UserRepo) UpdateLastLoginAt(ctx context.Context, userID string, at time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"last_login_at": at,
			"updated_at":    at,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}
