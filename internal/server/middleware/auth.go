package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chatbot/internal/pkg/ctxutil"
	httputil "chatbot/internal/pkg/http"
)

// ContextKeyUserID gin.Context 中的用户ID键
const ContextKeyUserID = "user_id"

// TokenValidator 校验会话 Token 并返回用户ID
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

// Auth Cookie 认证中间件
// 从 HttpOnly Cookie 中读取 JWT，验证后注入 user_id 到 context
func Auth(validator TokenValidator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.NewErrorResponse(
				40101, httputil.KindUnauthorized, "Access denied. No token provided.",
			))
			return
		}

		userID, err := validator.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.NewErrorResponse(
				40102, httputil.KindUnauthorized, "Invalid or expired token",
			))
			return
		}

		ctx := ctxutil.WithUserID(c.Request.Context(), userID)
		c.Request = c.Request.WithContext(ctx)
		c.Set(ContextKeyUserID, userID)

		c.Next()
	}
}
