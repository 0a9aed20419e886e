package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"chatbot/internal/model/auth"
	httputil "chatbot/internal/pkg/http"
)

// ErrorResponse 错误响应类型别名（使用共用的 http.ErrorResponse）
type ErrorResponse = httputil.ErrorResponse

// UserInfo 用户信息（用于响应，所有API共用）
type UserInfo struct {
	ID          string `json:"id"`                      // 用户ID
	Name        string `json:"name"`                    // 显示名称
	Email       string `json:"email"`                   // 邮箱
	Role        string `json:"role"`                    // 角色：admin/user
	LastLoginAt string `json:"last_login_at,omitempty"` // 最后登录时间
	CreatedAt   string `json:"created_at,omitempty"`    // 创建时间
}

// toUserInfo 将User实体转换为UserInfo（所有API共用）
func toUserInfo(user *auth.User) UserInfo {
	info := UserInfo{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
	}
	if user.LastLoginAt != nil {
		info.LastLoginAt = user.LastLoginAt.Format(time.RFC3339)
	}
	info.CreatedAt = user.CreatedAt.Format(time.RFC3339)
	return info
}

// setSessionCookie 写入会话 Cookie，maxAge<0 表示删除
func (h *Handler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.CookieName, value, maxAge, "/", "", h.cookie.CookieSecure, true)
}
