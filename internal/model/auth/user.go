package auth

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// User 用户实体
// ID使用UUID格式（string），登录凭证为邮箱+密码
type User struct {
	ID          string     `bson:"_id,omitempty" json:"id"`       // UUID格式的ID
	Name        string     `bson:"name" json:"name"`              // 显示名称
	Email       string     `bson:"email" json:"email"`            // 邮箱（唯一，小写）
	Password    string     `bson:"password" json:"-"`             // bcrypt 哈希，不返回
	Role        UserRole   `bson:"role" json:"role"`              // 角色
	LastLoginAt *time.Time `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
}

// UserRole 用户角色
type UserRole string

const (
	RoleAdmin UserRole = "admin" // 管理员
	RoleUser  UserRole = "user"  // 普通用户
)

// IsValid 检查角色是否有效
func (r UserRole) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

// String 返回角色字符串
func (r UserRole) String() string {
	return string(r)
}

// Collection 返回集合名称
func (u *User) Collection() string {
	return "users"
}

// EnsureIndexes 创建和维护索引
func (u *User) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(u.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_email").SetUnique(true),
		},
		{
			Keys:    bson.D{bson.E{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_created_at"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
