package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"chatbot/internal/model/auth"
	"chatbot/internal/pkg/jwt"
	"chatbot/internal/pkg/password"
	authRepo "chatbot/internal/repository/auth"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AuthService 认证服务
// 会话为无状态 JWT，由 handler 写入 HttpOnly Cookie，服务端不保存
type AuthService struct {
	userRepo authRepo.UserStore
	jwt      *jwt.JWT
	now      func() time.Time
}

// NewAuthService 创建认证服务
func NewAuthService(userRepo authRepo.UserStore, jwtSecret string, tokenExpiry time.Duration) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		jwt:      jwt.NewJWT(jwtSecret, tokenExpiry),
		now:      time.Now,
	}
}

// LoginResult 登录结果
type LoginResult struct {
	Token     string
	ExpiresIn time.Duration
	User      *auth.User
}

// Login 邮箱 + 密码登录
// 邮箱不存在与密码错误返回同一个错误，不暴露账号是否存在
func (s *AuthService) Login(ctx context.Context, email, pwd string) (*LoginResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, authRepo.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !password.Verify(pwd, user.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate token")
		return nil, fmt.Errorf("generate token: %w", err)
	}

	// 更新最后登录时间，失败不影响登录
	now := s.now()
	if err := s.userRepo.UpdateLastLoginAt(ctx, user.ID, now); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to update last login time")
	} else {
		user.LastLoginAt = &now
	}

	return &LoginResult{
		Token:     token,
		ExpiresIn: s.jwt.GetExpiration(),
		User:      user,
	}, nil
}

// ValidateToken 校验会话 Token，返回用户 ID
func (s *AuthService) ValidateToken(token string) (string, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// GetUserByID 根据ID获取用户信息
func (s *AuthService) GetUserByID(ctx context.Context, userID string) (*auth.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, authRepo.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// EnsureUser 用户不存在时创建，已存在则原样返回
// 返回值 created 表示本次是否新建
func (s *AuthService) EnsureUser(ctx context.Context, name, email, pwd string, role auth.UserRole) (*auth.User, bool, error) {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, authRepo.ErrUserNotFound) {
		return nil, false, fmt.Errorf("find user: %w", err)
	}

	hashed, err := password.Hash(pwd)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}

	user := &auth.User{
		Name:     name,
		Email:    email,
		Password: hashed,
		Role:     role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}
	return user, true, nil
}
