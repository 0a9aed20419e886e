package service

import (
	"context"

	"chatbot/internal/model/auth"
)

// 测试账号
const (
	SeedUserName     = "Test User"
	SeedUserEmail    = "user@test.com"
	SeedUserPassword = "password123"
)

// SeedTestUser 创建测试账号，已存在时不做修改
func SeedTestUser(ctx context.Context, svc *AuthService) (*auth.User, bool, error) {
	return svc.EnsureUser(ctx, SeedUserName, SeedUserEmail, SeedUserPassword, auth.RoleUser)
}
