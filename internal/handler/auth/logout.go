package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Logout 退出登录
// @Summary      退出登录
// @Description  清除会话 Cookie。Token 为无状态 JWT，服务端不做吊销
// @Tags         认证
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "Logout successful",
	})
}
