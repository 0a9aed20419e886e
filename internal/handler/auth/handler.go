package auth

import (
	"chatbot/internal/config"
	"chatbot/internal/service"
)

// Handler 认证处理器
// 所有auth相关的Handler方法都通过这个结构体访问Service
type Handler struct {
	authService *service.AuthService
	cookie      config.AuthConfig
}

// NewHandler 创建认证处理器
func NewHandler(authService *service.AuthService, cookie config.AuthConfig) *Handler {
	if cookie.CookieName == "" {
		cookie.CookieName = "token"
	}
	return &Handler{
		authService: authService,
		cookie:      cookie,
	}
}
